package passage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCorruptPassages is wrapped by every problem Validate reports.
var ErrCorruptPassages = errors.New("corrupt passage list")

// Validate checks a persisted passage list: indices 1..N without gaps or duplicates, unique ids,
// non-empty trimmed text, hashes matching text and ordered offsets.
func Validate(passages []Passage) error {
	var errs []error
	seenIDs := make(map[string]bool, len(passages))
	seenIndexes := make(map[int]bool, len(passages))

	for _, p := range passages {
		if seenIDs[p.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate id %s", ErrCorruptPassages, p.ID))
		}
		seenIDs[p.ID] = true

		if p.Index < 1 || p.Index > len(passages) {
			errs = append(errs, fmt.Errorf("%w: passage %s has index %d outside 1..%d", ErrCorruptPassages, p.ID, p.Index, len(passages)))
		} else if seenIndexes[p.Index] {
			errs = append(errs, fmt.Errorf("%w: index %d is used twice", ErrCorruptPassages, p.Index))
		}
		seenIndexes[p.Index] = true

		if strings.TrimSpace(p.Text) == "" {
			errs = append(errs, fmt.Errorf("%w: passage %s has empty text", ErrCorruptPassages, p.ID))
		}
		if got := Hash(p.Text); got != p.Hash {
			errs = append(errs, fmt.Errorf("%w: passage %s hash is %s, text hashes to %s", ErrCorruptPassages, p.ID, p.Hash, got))
		}
		if (p.CharStart == nil) != (p.CharEnd == nil) {
			errs = append(errs, fmt.Errorf("%w: passage %s has only one offset", ErrCorruptPassages, p.ID))
		} else if p.HasOffsets() && *p.CharStart >= *p.CharEnd {
			errs = append(errs, fmt.Errorf("%w: passage %s offsets %d >= %d", ErrCorruptPassages, p.ID, *p.CharStart, *p.CharEnd))
		}
	}
	return errors.Join(errs...)
}
