package concept

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, value := range []string{"proposed", "validated", "rejected"} {
		got, err := ParseStatus(value)
		require.NoError(t, err)
		assert.Equal(t, Status(value), got)
	}

	_, err := ParseStatus("archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus(t *testing.T) {
	original := Concept{ID: "c1", Name: "Mitose", Status: StatusProposed, PassageIDs: []string{"p1"}}

	got := SetStatus(original, StatusRejected)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, StatusProposed, original.Status)

	got = SetStatus(got, StatusValidated)
	assert.Equal(t, StatusValidated, got.Status)
}

func TestPruneForRemovedPassages(t *testing.T) {
	concepts := []Concept{
		{ID: "c1", Name: "Mitose", Status: StatusValidated, PassageIDs: []string{"p1"}},
		{ID: "c2", Name: "Méiose", Status: StatusProposed, PassageIDs: []string{"p1", "p2"}},
		{ID: "c3", Name: "Noyau", Status: StatusRejected, PassageIDs: []string{"p3"}},
	}

	tests := []struct {
		name    string
		removed []string
		want    []Concept
	}{
		{
			name:    "nothing removed",
			removed: nil,
			want:    concepts,
		},
		{
			name:    "concept left without passages is dropped",
			removed: []string{"p1"},
			want: []Concept{
				{ID: "c2", Name: "Méiose", Status: StatusProposed, PassageIDs: []string{"p2"}},
				{ID: "c3", Name: "Noyau", Status: StatusRejected, PassageIDs: []string{"p3"}},
			},
		},
		{
			name:    "unknown ids change nothing",
			removed: []string{"p9"},
			want:    concepts,
		},
		{
			name:    "every passage removed",
			removed: []string{"p1", "p2", "p3"},
			want:    []Concept{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PruneForRemovedPassages(concepts, tt.removed...)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, []string{"p1", "p2"}, concepts[1].PassageIDs, "input must not be modified")
}

func TestEnsurePassageIDs(t *testing.T) {
	available := map[string]bool{"p1": true, "p2": true}
	got := EnsurePassageIDs([]string{"p2", "p9", "p1", "p2"}, available)
	assert.Equal(t, []string{"p2", "p1"}, got)
	assert.Empty(t, EnsurePassageIDs(nil, available))
}

func TestAddPassage(t *testing.T) {
	available := map[string]bool{"p1": true, "p2": true}
	c := Concept{ID: "c1", Name: "Mitose", PassageIDs: []string{"p1"}}

	got, err := AddPassage(c, "p2", available)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, got.PassageIDs)
	assert.Equal(t, []string{"p1"}, c.PassageIDs)

	got, err = AddPassage(got, "p2", available)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, got.PassageIDs)

	_, err = AddPassage(c, "p9", available)
	assert.ErrorIs(t, err, ErrUnknownPassage)
}

func TestRemovePassage(t *testing.T) {
	available := map[string]bool{"p1": true, "p2": true}

	tests := []struct {
		name      string
		concept   Concept
		passageID string
		want      []string
		wantErr   error
	}{
		{
			name:      "removes a linked passage",
			concept:   Concept{Status: StatusValidated, PassageIDs: []string{"p1", "p2"}},
			passageID: "p1",
			want:      []string{"p2"},
		},
		{
			name:      "unlinked passage is a no-op",
			concept:   Concept{Status: StatusProposed, PassageIDs: []string{"p1"}},
			passageID: "p2",
			want:      []string{"p1"},
		},
		{
			name:      "proposed concept may lose its last passage",
			concept:   Concept{Status: StatusProposed, PassageIDs: []string{"p1"}},
			passageID: "p1",
			want:      []string{},
		},
		{
			name:      "validated concept keeps its last passage",
			concept:   Concept{Name: "Mitose", Status: StatusValidated, PassageIDs: []string{"p1"}},
			passageID: "p1",
			wantErr:   ErrEmptyValidated,
		},
		{
			name:      "unknown passage",
			concept:   Concept{Status: StatusProposed, PassageIDs: []string{"p1"}},
			passageID: "p9",
			wantErr:   ErrUnknownPassage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RemovePassage(tt.concept, tt.passageID, available)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.PassageIDs)
		})
	}
}

func TestDropUngrounded(t *testing.T) {
	got := DropUngrounded([]Concept{
		{ID: "c1", PassageIDs: []string{"p1"}},
		{ID: "c2"},
	})
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestFind(t *testing.T) {
	concepts := []Concept{{ID: "c1"}, {ID: "c2"}}
	assert.Equal(t, 1, Find(concepts, "c2"))
	assert.Equal(t, -1, Find(concepts, "c9"))
}
