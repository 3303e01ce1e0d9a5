package concept

import (
	"time"

	"github.com/google/uuid"

	"github.com/palimpseste/palimpseste/internal/passage"
)

// Extractor scans passages for definitional sentences.
type Extractor struct {
	Patterns []Pattern
	NewID    func() string
	Now      func() time.Time
}

// NewExtractor creates an Extractor with the default French patterns.
func NewExtractor() *Extractor {
	return &Extractor{
		Patterns: DefaultPatterns,
		NewID:    uuid.NewString,
		Now:      time.Now,
	}
}

// Extract returns one proposed concept per distinct name found in the passages, in order of first appearance.
// A name seen again in a later passage adds that passage to the first concept; the first sentence stays the definition.
// It returns nil when nothing matches.
func (e *Extractor) Extract(passages []passage.Passage, trackID string) []Concept {
	now := e.Now().UTC()
	positions := make(map[string]int)
	var concepts []Concept

	for _, p := range passage.Sorted(passages) {
		for _, sentence := range SplitSentences(p.Text) {
			found, ok := matchSentence(e.Patterns, sentence)
			if !ok {
				continue
			}

			key := Key(found.name)
			if position, exists := positions[key]; exists {
				if !concepts[position].hasPassage(p.ID) {
					concepts[position].PassageIDs = append(concepts[position].PassageIDs, p.ID)
				}
				continue
			}

			positions[key] = len(concepts)
			concepts = append(concepts, Concept{
				ID:         e.NewID(),
				TrackID:    trackID,
				Name:       found.name,
				Definition: found.definition,
				Status:     StatusProposed,
				PassageIDs: []string{p.ID},
				CreatedAt:  now,
			})
		}
	}
	return concepts
}

// Merge folds extracted concepts into the existing ones. A concept whose name already exists only contributes
// its passage ids; the existing status and definition are kept. Other concepts are appended as proposed.
func Merge(existing, extracted []Concept) []Concept {
	result := cloneAll(existing)
	positions := make(map[string]int, len(result))
	for i, c := range result {
		if _, ok := positions[Key(c.Name)]; !ok {
			positions[Key(c.Name)] = i
		}
	}

	for _, c := range extracted {
		key := Key(c.Name)
		if position, ok := positions[key]; ok {
			for _, id := range c.PassageIDs {
				if !result[position].hasPassage(id) {
					result[position].PassageIDs = append(result[position].PassageIDs, id)
				}
			}
			continue
		}

		added := clone(c)
		added.Status = StatusProposed
		positions[key] = len(result)
		result = append(result, added)
	}
	return result
}

func clone(c Concept) Concept {
	c.PassageIDs = append([]string(nil), c.PassageIDs...)
	return c
}

func cloneAll(concepts []Concept) []Concept {
	result := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		result = append(result, clone(c))
	}
	return result
}
