// Package passage turns course text into ordered passages and applies manual edits to passage lists.
package passage

import (
	"fmt"
	"sort"
	"time"
	"unicode/utf16"
)

// Passage is a contiguous, ordered unit of course text.
// CharStart and CharEnd are rune offsets into the source document and are nil once the passage was edited by hand.
type Passage struct {
	ID        string    `json:"id" yaml:"id" db:"id"`
	TrackID   string    `json:"trackId" yaml:"track_id" db:"track_id"`
	Index     int       `json:"index" yaml:"index" db:"position"`
	Text      string    `json:"text" yaml:"text" db:"text"`
	CharStart *int      `json:"charStart" yaml:"char_start" db:"char_start"`
	CharEnd   *int      `json:"charEnd" yaml:"char_end" db:"char_end"`
	Hash      string    `json:"hash" yaml:"hash" db:"hash"`
	IsManual  bool      `json:"isManual" yaml:"is_manual" db:"is_manual"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at" db:"updated_at"`
}

// Hash returns the 32-bit FNV-1a fingerprint of text as 8 lowercase hex digits.
// It iterates UTF-16 code units so fingerprints stay compatible with passages produced by the web client.
func Hash(text string) string {
	h := uint32(2166136261)
	for _, unit := range utf16.Encode([]rune(text)) {
		h ^= uint32(unit)
		h *= 16777619
	}
	return fmt.Sprintf("%08x", h)
}

// HasManual reports whether any passage was touched by a manual operation.
func HasManual(passages []Passage) bool {
	for _, p := range passages {
		if p.IsManual {
			return true
		}
	}
	return false
}

// IDs returns the passage ids in list order.
func IDs(passages []Passage) []string {
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.ID
	}
	return ids
}

// Find returns the passage with the given id.
func Find(passages []Passage, id string) (Passage, bool) {
	for _, p := range passages {
		if p.ID == id {
			return p, true
		}
	}
	return Passage{}, false
}

// Sorted returns a copy of passages ordered by Index.
func Sorted(passages []Passage) []Passage {
	ordered := make([]Passage, len(passages))
	copy(ordered, passages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	return ordered
}

// Len returns the length of the passage text in runes.
func (p Passage) Len() int {
	return len([]rune(p.Text))
}

// HasOffsets reports whether the passage still maps to a source range.
func (p Passage) HasOffsets() bool {
	return p.CharStart != nil && p.CharEnd != nil
}
