// Package chapter keeps the ordered outline of a track.
package chapter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/palimpseste/palimpseste/internal/passage"
)

var (
	ErrInvalidStatus   = errors.New("invalid chapter status")
	ErrChapterNotFound = errors.New("chapter not found")
)

// Status is the review state of a chapter.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
)

// ParseStatus parses a status name.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusDraft, StatusValidated:
		return Status(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Chapter is one entry of a track outline. Indexes run from 1 to N without gaps.
type Chapter struct {
	ID         string `json:"id" yaml:"id" db:"id"`
	TrackID    string `json:"trackId" yaml:"track_id" db:"track_id"`
	Index      int    `json:"index" yaml:"index" db:"position"`
	Title      string `json:"title" yaml:"title" db:"title"`
	Objectives string `json:"objectives" yaml:"objectives" db:"objectives"`
	Status     Status `json:"status" yaml:"status" db:"status"`
}

// Label is the title, or "Chapitre N" while the chapter is untitled.
func (c Chapter) Label() string {
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("Chapitre %d", c.Index)
}

// Outline returns count untitled draft chapters for the track.
func Outline(trackID string, count int) []Chapter {
	chapters := make([]Chapter, 0, count)
	for i := 1; i <= count; i++ {
		chapters = append(chapters, Chapter{
			ID:      fmt.Sprintf("chapter-%s-%d", trackID, i),
			TrackID: trackID,
			Index:   i,
			Status:  StatusDraft,
		})
	}
	return chapters
}

// Update holds the fields to change. Nil fields are left untouched.
type Update struct {
	Title      *string
	Objectives *string
	Status     *Status
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Objectives == nil && u.Status == nil
}

// Apply returns the chapters with the update applied to the chapter with the given id.
func Apply(chapters []Chapter, id string, update Update) ([]Chapter, error) {
	position := Find(chapters, id)
	if position == -1 {
		return chapters, fmt.Errorf("%w: %s", ErrChapterNotFound, id)
	}

	result := make([]Chapter, len(chapters))
	copy(result, chapters)
	c := result[position]
	if update.Title != nil {
		c.Title = strings.TrimSpace(*update.Title)
	}
	if update.Objectives != nil {
		c.Objectives = strings.TrimSpace(*update.Objectives)
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	result[position] = c
	return result, nil
}

// Move swaps a chapter with its neighbour and renumbers the outline from 1.
// Moving past either end of the outline is a no-op, as is an unknown direction.
func Move(chapters []Chapter, id string, direction passage.Direction) ([]Chapter, error) {
	ordered := Sorted(chapters)
	position := Find(ordered, id)
	if position == -1 {
		return chapters, fmt.Errorf("%w: %s", ErrChapterNotFound, id)
	}

	var target int
	switch direction {
	case passage.DirectionUp:
		target = position - 1
	case passage.DirectionDown:
		target = position + 1
	default:
		return chapters, nil
	}
	if target < 0 || target >= len(ordered) {
		return chapters, nil
	}

	ordered[position], ordered[target] = ordered[target], ordered[position]
	for i := range ordered {
		ordered[i].Index = i + 1
	}
	return ordered, nil
}

// Sorted returns a copy ordered by index.
func Sorted(chapters []Chapter) []Chapter {
	ordered := make([]Chapter, len(chapters))
	copy(ordered, chapters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	return ordered
}

// Find returns the position of the chapter with the given id, or -1.
func Find(chapters []Chapter, id string) int {
	for i, c := range chapters {
		if c.ID == id {
			return i
		}
	}
	return -1
}
