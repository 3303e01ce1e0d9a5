package passage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidSplitPoint is returned when a split would fall outside the text or leave an empty side.
var ErrInvalidSplitPoint = errors.New("invalid split point")

// Direction is the way a passage moves in the list.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection parses "up" or "down".
func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case DirectionUp, DirectionDown:
		return Direction(value), nil
	}
	return "", fmt.Errorf("invalid direction %q, valid values are %q or %q", value, DirectionUp, DirectionDown)
}

// Editor applies manual operations to a passage list.
// Every operation returns a new list ordered and numbered 1..N; the input list is never modified.
// Operations on unknown ids or at list boundaries return the input unchanged.
type Editor struct {
	Now   func() time.Time
	NewID func(trackID string) string
}

// NewEditor creates an Editor using the wall clock and random ids.
func NewEditor() *Editor {
	return &Editor{
		Now:   time.Now,
		NewID: newManualID,
	}
}

func newManualID(trackID string) string {
	return fmt.Sprintf("passage-%s-%s", trackID, uuid.NewString())
}

// Edit replaces the text of a passage. Blank text is ignored.
func (e *Editor) Edit(passages []Passage, id string, text string) []Passage {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return passages
	}
	ordered := Sorted(passages)
	position := indexOf(ordered, id)
	if position == -1 {
		return passages
	}

	now := e.Now().UTC()
	ordered[position] = rewrite(ordered[position], trimmed, now)
	return reindex(ordered, now)
}

// Split cuts a passage at the rune index cut. The passage keeps [0, cut) and a new passage
// holding [cut, len) is inserted right after it.
func (e *Editor) Split(passages []Passage, id string, cut int) ([]Passage, error) {
	ordered := Sorted(passages)
	position := indexOf(ordered, id)
	if position == -1 {
		return passages, nil
	}

	current := ordered[position]
	runes := []rune(current.Text)
	if cut <= 0 || cut >= len(runes) {
		return passages, fmt.Errorf("%w: %d is outside (0, %d)", ErrInvalidSplitPoint, cut, len(runes))
	}
	first := strings.TrimSpace(string(runes[:cut]))
	second := strings.TrimSpace(string(runes[cut:]))
	if first == "" || second == "" {
		return passages, fmt.Errorf("%w: cut at %d leaves an empty passage", ErrInvalidSplitPoint, cut)
	}

	now := e.Now().UTC()
	created := Passage{
		ID:        e.NewID(current.TrackID),
		TrackID:   current.TrackID,
		Text:      second,
		Hash:      Hash(second),
		IsManual:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := make([]Passage, 0, len(ordered)+1)
	result = append(result, ordered[:position]...)
	result = append(result, rewrite(current, first, now), created)
	result = append(result, ordered[position+1:]...)
	return reindex(result, now), nil
}

// MergeWithNext joins a passage with its successor, separated by a blank line.
// The merged passage keeps the first id; the second id is returned so callers can prune references to it.
// It returns an empty removed id when nothing was merged.
func (e *Editor) MergeWithNext(passages []Passage, id string) (result []Passage, removedID string) {
	ordered := Sorted(passages)
	position := indexOf(ordered, id)
	if position == -1 || position == len(ordered)-1 {
		return passages, ""
	}

	current, next := ordered[position], ordered[position+1]
	now := e.Now().UTC()
	merged := rewrite(current, current.Text+"\n\n"+next.Text, now)

	result = make([]Passage, 0, len(ordered)-1)
	result = append(result, ordered[:position]...)
	result = append(result, merged)
	result = append(result, ordered[position+2:]...)
	return reindex(result, now), next.ID
}

// Move swaps a passage with its neighbour in the given direction.
func (e *Editor) Move(passages []Passage, id string, direction Direction) []Passage {
	ordered := Sorted(passages)
	position := indexOf(ordered, id)
	if position == -1 {
		return passages
	}

	var target int
	switch direction {
	case DirectionUp:
		target = position - 1
	case DirectionDown:
		target = position + 1
	default:
		return passages
	}
	if target < 0 || target >= len(ordered) {
		return passages
	}

	ordered[position], ordered[target] = ordered[target], ordered[position]
	return reindex(ordered, e.Now().UTC())
}

// Delete removes a passage.
func (e *Editor) Delete(passages []Passage, id string) []Passage {
	ordered := Sorted(passages)
	position := indexOf(ordered, id)
	if position == -1 {
		return passages
	}

	result := make([]Passage, 0, len(ordered)-1)
	result = append(result, ordered[:position]...)
	result = append(result, ordered[position+1:]...)
	return reindex(result, e.Now().UTC())
}

// rewrite marks p as manual with new text.
func rewrite(p Passage, text string, now time.Time) Passage {
	p.Text = text
	p.Hash = Hash(text)
	p.IsManual = true
	p.CharStart = nil
	p.CharEnd = nil
	p.UpdatedAt = now
	return p
}

// reindex numbers passages by position, touching UpdatedAt only where the index changed.
func reindex(passages []Passage, now time.Time) []Passage {
	for i := range passages {
		if passages[i].Index == i+1 {
			continue
		}
		passages[i].Index = i + 1
		passages[i].UpdatedAt = now
	}
	return passages
}

func indexOf(passages []Passage, id string) int {
	for i, p := range passages {
		if p.ID == id {
			return i
		}
	}
	return -1
}
