// Package concept proposes term/definition pairs from passages and keeps them consistent with passage edits.
package concept

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/cases"
)

var (
	ErrInvalidStatus   = errors.New("invalid concept status")
	ErrUnknownPassage  = errors.New("passage does not exist in the track")
	ErrEmptyValidated  = errors.New("a validated concept needs at least one passage")
	ErrConceptNotFound = errors.New("concept not found")
)

// Status is the review state of a concept.
type Status string

const (
	StatusProposed  Status = "proposed"
	StatusValidated Status = "validated"
	StatusRejected  Status = "rejected"
)

// ParseStatus parses a status name.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusProposed, StatusValidated, StatusRejected:
		return Status(value), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
}

// Concept is a term/definition pair grounded in one or more passages.
type Concept struct {
	ID         string    `json:"id" yaml:"id" db:"id"`
	TrackID    string    `json:"trackId" yaml:"track_id" db:"track_id"`
	Name       string    `json:"name" yaml:"name" db:"name"`
	Definition string    `json:"definition" yaml:"definition" db:"definition"`
	Status     Status    `json:"status" yaml:"status" db:"status"`
	PassageIDs []string  `json:"passageIds" yaml:"passage_ids" db:"-"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at" db:"created_at"`
}

// Key returns the case-folded name used to deduplicate concepts.
func Key(name string) string {
	return cases.Fold().String(name)
}

// Find returns the position of the concept with the given id, or -1.
func Find(concepts []Concept, id string) int {
	for i, c := range concepts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (c Concept) hasPassage(id string) bool {
	for _, passageID := range c.PassageIDs {
		if passageID == id {
			return true
		}
	}
	return false
}
