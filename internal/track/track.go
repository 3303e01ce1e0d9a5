// Package track manages courses (tracks): their chapters, source document, passages and concepts.
package track

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
)

var (
	ErrTrackNotFound    = errors.New("track not found")
	ErrDocumentNotReady = errors.New("the track has no processed document")
	ErrInvalidLevel     = errors.New("invalid level")
	ErrEmptyTitle       = errors.New("title is required")
	ErrInvalidChapters  = errors.New("a track needs at least one chapter")
	ErrPassageNotFound  = errors.New("passage not found")
	ErrUnknownOperation = errors.New("unknown operation")
)

// Level is the audience level of a track.
type Level string

const (
	LevelA Level = "A"
	LevelB Level = "B"
)

// ParseLevel parses "A" or "B", case-insensitively.
func ParseLevel(value string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(value))) {
	case LevelA:
		return LevelA, nil
	case LevelB:
		return LevelB, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLevel, value)
}

// Track is a course: an uploaded document segmented into passages, with the concepts found in them.
type Track struct {
	ID            string             `json:"id" yaml:"id"`
	Title         string             `json:"title" yaml:"title"`
	Description   string             `json:"description,omitempty" yaml:"description,omitempty"`
	Level         Level              `json:"level" yaml:"level"`
	ChaptersCount int                `json:"chaptersCount" yaml:"chapters_count"`
	Chapters      []chapter.Chapter  `json:"chapters" yaml:"chapters"`
	Document      *document.Document `json:"document,omitempty" yaml:"document,omitempty"`
	Passages      []passage.Passage  `json:"passages" yaml:"passages"`
	Concepts      []concept.Concept  `json:"concepts" yaml:"concepts"`
	CreatedAt     time.Time          `json:"createdAt" yaml:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" yaml:"updated_at"`
}

// CreateParams holds the user-provided fields of a new track.
type CreateParams struct {
	Title         string
	Description   string
	Level         Level
	ChaptersCount int
}

// New builds a track with an untitled outline of ChaptersCount chapters and no document.
// The description is trimmed and dropped when blank.
func New(id string, params CreateParams, now time.Time) (Track, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return Track{}, ErrEmptyTitle
	}
	if params.Level != LevelA && params.Level != LevelB {
		return Track{}, fmt.Errorf("%w: %q", ErrInvalidLevel, params.Level)
	}
	if params.ChaptersCount < 1 {
		return Track{}, ErrInvalidChapters
	}

	now = now.UTC()
	return Track{
		ID:            id,
		Title:         title,
		Description:   strings.TrimSpace(params.Description),
		Level:         params.Level,
		ChaptersCount: params.ChaptersCount,
		Chapters:      chapter.Outline(id, params.ChaptersCount),
		Passages:      []passage.Passage{},
		Concepts:      []concept.Concept{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// PassageSet returns the ids of the track's passages.
func (t Track) PassageSet() map[string]bool {
	set := make(map[string]bool, len(t.Passages))
	for _, p := range t.Passages {
		set[p.ID] = true
	}
	return set
}
