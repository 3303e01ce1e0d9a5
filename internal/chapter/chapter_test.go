package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palimpseste/palimpseste/internal/passage"
)

func ids(chapters []Chapter) []string {
	out := make([]string, 0, len(chapters))
	for _, c := range chapters {
		out = append(out, c.ID)
	}
	return out
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		value   string
		want    Status
		wantErr bool
	}{
		{value: "draft", want: StatusDraft},
		{value: "validated", want: StatusValidated},
		{value: "proposed", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseStatus(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutline(t *testing.T) {
	got := Outline("t1", 3)

	assert.Equal(t, []string{"chapter-t1-1", "chapter-t1-2", "chapter-t1-3"}, ids(got))
	for i, c := range got {
		assert.Equal(t, i+1, c.Index)
		assert.Equal(t, "t1", c.TrackID)
		assert.Equal(t, StatusDraft, c.Status)
		assert.Empty(t, c.Title)
	}
	assert.Empty(t, Outline("t1", 0))
}

func TestChapter_Label(t *testing.T) {
	assert.Equal(t, "Chapitre 2", Chapter{Index: 2}.Label())
	assert.Equal(t, "La cellule", Chapter{Index: 2, Title: "La cellule"}.Label())
}

func TestApply(t *testing.T) {
	title := "  La cellule "
	objectives := "Décrire la mitose."
	validated := StatusValidated

	tests := []struct {
		name    string
		id      string
		update  Update
		want    Chapter
		wantErr error
	}{
		{
			name:   "title is trimmed",
			id:     "chapter-t1-2",
			update: Update{Title: &title},
			want:   Chapter{ID: "chapter-t1-2", TrackID: "t1", Index: 2, Title: "La cellule", Status: StatusDraft},
		},
		{
			name:   "every field at once",
			id:     "chapter-t1-1",
			update: Update{Title: &title, Objectives: &objectives, Status: &validated},
			want:   Chapter{ID: "chapter-t1-1", TrackID: "t1", Index: 1, Title: "La cellule", Objectives: "Décrire la mitose.", Status: StatusValidated},
		},
		{
			name:    "unknown chapter",
			id:      "missing",
			update:  Update{Title: &title},
			wantErr: ErrChapterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapters := Outline("t1", 2)
			got, err := Apply(chapters, tt.id, tt.update)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Outline("t1", 2), got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got[Find(got, tt.id)])
			assert.Equal(t, Outline("t1", 2), chapters, "input must not be modified")
		})
	}
}

func TestUpdate_Empty(t *testing.T) {
	title := ""
	assert.True(t, Update{}.Empty())
	assert.False(t, Update{Title: &title}.Empty())
}

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		direction passage.Direction
		wantIDs   []string
		wantErr   error
	}{
		{name: "moves down", id: "chapter-t1-1", direction: passage.DirectionDown, wantIDs: []string{"chapter-t1-2", "chapter-t1-1", "chapter-t1-3"}},
		{name: "moves up", id: "chapter-t1-3", direction: passage.DirectionUp, wantIDs: []string{"chapter-t1-1", "chapter-t1-3", "chapter-t1-2"}},
		{name: "first chapter cannot move up", id: "chapter-t1-1", direction: passage.DirectionUp, wantIDs: []string{"chapter-t1-1", "chapter-t1-2", "chapter-t1-3"}},
		{name: "last chapter cannot move down", id: "chapter-t1-3", direction: passage.DirectionDown, wantIDs: []string{"chapter-t1-1", "chapter-t1-2", "chapter-t1-3"}},
		{name: "unknown direction", id: "chapter-t1-2", direction: passage.Direction("sideways"), wantIDs: []string{"chapter-t1-1", "chapter-t1-2", "chapter-t1-3"}},
		{name: "unknown chapter", id: "missing", direction: passage.DirectionDown, wantIDs: []string{"chapter-t1-1", "chapter-t1-2", "chapter-t1-3"}, wantErr: ErrChapterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Move(Outline("t1", 3), tt.id, tt.direction)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantIDs, ids(got))
			for i, c := range got {
				assert.Equal(t, i+1, c.Index)
			}
		})
	}
}

func TestMove_SortsBeforeSwapping(t *testing.T) {
	outline := Outline("t1", 3)
	shuffled := []Chapter{outline[2], outline[0], outline[1]}

	got, err := Move(shuffled, "chapter-t1-2", passage.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"chapter-t1-2", "chapter-t1-1", "chapter-t1-3"}, ids(got))
}
