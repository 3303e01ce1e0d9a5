// Package confirm decides which destructive operations need the user's explicit consent.
// It never performs the operations itself.
package confirm

import (
	"fmt"

	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
)

// Operation names an action that may require confirmation.
type Operation string

const (
	OperationRegenerate      Operation = "regenerate"
	OperationDeletePassage   Operation = "delete-passage"
	OperationMergePassages   Operation = "merge-passages"
	OperationReplaceDocument Operation = "replace-document"
)

// Decision tells the caller whether to ask before proceeding, and what to say.
type Decision struct {
	Required bool   `json:"required"`
	Reason   string `json:"reason,omitempty"`
}

var notRequired = Decision{}

// Regenerate requires confirmation when segmenting again would discard existing passages.
func Regenerate(existing []passage.Passage) Decision {
	if len(existing) == 0 {
		return notRequired
	}
	manual := 0
	for _, p := range existing {
		if p.IsManual {
			manual++
		}
	}
	if manual > 0 {
		return Decision{
			Required: true,
			Reason:   fmt.Sprintf("%d of %d passages were edited by hand and their changes will be lost", manual, len(existing)),
		}
	}
	return Decision{
		Required: true,
		Reason:   fmt.Sprintf("the %d existing passages and the concepts grounded in them will be replaced", len(existing)),
	}
}

// DeletePassage always requires confirmation.
func DeletePassage(p passage.Passage) Decision {
	return Decision{
		Required: true,
		Reason:   fmt.Sprintf("passage %d will be deleted", p.Index),
	}
}

// MergePassages always requires confirmation.
func MergePassages(first, second passage.Passage) Decision {
	return Decision{
		Required: true,
		Reason:   fmt.Sprintf("passages %d and %d will be merged", first.Index, second.Index),
	}
}

// ReplaceDocument requires confirmation when the track already has a document.
func ReplaceDocument(existing *document.Document) Decision {
	if existing == nil {
		return notRequired
	}
	return Decision{
		Required: true,
		Reason:   fmt.Sprintf("the document %q is already attached and will be replaced", existing.FileName),
	}
}
