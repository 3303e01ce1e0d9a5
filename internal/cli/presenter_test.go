package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

func disableColor(t *testing.T) {
	t.Helper()
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })
}

func TestPresenter_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		decision   confirm.Decision
		input      string
		want       bool
		wantOutput string
	}{
		{
			name:     "not required",
			decision: confirm.Decision{},
			want:     true,
		},
		{
			name:       "accepted",
			decision:   confirm.Decision{Required: true, Reason: "passage 2 will be deleted"},
			input:      "y\n",
			want:       true,
			wantOutput: "passage 2 will be deleted\nContinue? [y/N]: ",
		},
		{
			name:       "accepted in upper case without newline",
			decision:   confirm.Decision{Required: true, Reason: "passage 2 will be deleted"},
			input:      " YES",
			want:       true,
			wantOutput: "passage 2 will be deleted\nContinue? [y/N]: ",
		},
		{
			name:       "empty answer declines",
			decision:   confirm.Decision{Required: true, Reason: "passages 1 and 2 will be merged"},
			input:      "\n",
			want:       false,
			wantOutput: "passages 1 and 2 will be merged\nContinue? [y/N]: ",
		},
		{
			name:       "closed input declines",
			decision:   confirm.Decision{Required: true, Reason: "passages 1 and 2 will be merged"},
			want:       false,
			wantOutput: "passages 1 and 2 will be merged\nContinue? [y/N]: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disableColor(t)
			var out bytes.Buffer
			presenter := NewPresenter(strings.NewReader(tt.input), &out)

			got, err := presenter.Confirm(tt.decision)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOutput, out.String())
		})
	}
}

func TestPresenter_PrintChapters(t *testing.T) {
	disableColor(t)
	var out bytes.Buffer
	presenter := NewPresenter(strings.NewReader(""), &out)

	presenter.PrintChapters([]chapter.Chapter{
		{ID: "ch2", Index: 2, Status: chapter.StatusDraft},
		{ID: "ch1", Index: 1, Title: "La cellule", Objectives: "Décrire la cellule.", Status: chapter.StatusValidated},
	})
	assert.Equal(t, "#1 La cellule [validated] ch1\n    Décrire la cellule.\n#2 Chapitre 2 [draft] ch2\n", out.String())

	out.Reset()
	presenter.PrintChapters(nil)
	assert.Equal(t, "No chapter yet.\n", out.String())
}

func TestPresenter_PrintPassages(t *testing.T) {
	disableColor(t)
	var out bytes.Buffer
	presenter := NewPresenter(strings.NewReader(""), &out)

	presenter.PrintPassages([]passage.Passage{
		{ID: "p2", Index: 2, Text: "Deuxième.", IsManual: true},
		{ID: "p1", Index: 1, Text: "Première."},
	})
	assert.Equal(t, "#1 p1, 9 characters\nPremière.\n\n#2 (edited) p2, 9 characters\nDeuxième.\n\n", out.String())

	out.Reset()
	presenter.PrintPassages(nil)
	assert.Equal(t, "No passage yet.\n", out.String())
}

func TestPresenter_PrintConcepts(t *testing.T) {
	disableColor(t)
	var out bytes.Buffer
	presenter := NewPresenter(strings.NewReader(""), &out)

	presenter.PrintConcepts(track.Track{
		Passages: []passage.Passage{{ID: "p1", Index: 1}, {ID: "p2", Index: 2}},
		Concepts: []concept.Concept{
			{ID: "c1", Name: "La mitose", Definition: "La mitose est une division.", Status: concept.StatusValidated, PassageIDs: []string{"p2", "p1"}},
		},
	})
	assert.Equal(t, "La mitose [validated] #2 #1 c1\n    La mitose est une division.\n", out.String())
}

func TestPresenter_PrintTrack(t *testing.T) {
	tests := []struct {
		name     string
		document *document.Document
		want     string
	}{
		{
			name: "without document",
			want: "Document: none\n",
		},
		{
			name:     "failed document",
			document: &document.Document{FileName: "scan.pdf", Status: document.StatusFailed, Error: "the document contains no usable text after extraction"},
			want:     "Document: scan.pdf failed: the document contains no usable text after extraction\n",
		},
		{
			name:     "processed document",
			document: &document.Document{FileName: "cours.txt", Status: document.StatusProcessed},
			want:     "Document: cours.txt processed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			disableColor(t)
			var out bytes.Buffer
			NewPresenter(strings.NewReader(""), &out).PrintTrack(track.Track{
				ID: "t1", Title: "Biologie", Level: track.LevelA, Document: tt.document,
			})
			assert.Contains(t, out.String(), "Biologie (t1)\nLevel A, 0 chapters\n")
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestPresenter_PrintTracks(t *testing.T) {
	disableColor(t)
	var out bytes.Buffer
	presenter := NewPresenter(strings.NewReader(""), &out)

	presenter.PrintTracks([]track.Track{{ID: "t1", Title: "Biologie", Level: track.LevelB}})
	assert.Equal(t, "t1  Biologie [B] 0 passages, 0 concepts\n", out.String())
}
