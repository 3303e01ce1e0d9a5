package concept

import "fmt"

// SetStatus returns c with a new status. Any transition is allowed.
func SetStatus(c Concept, status Status) Concept {
	c = clone(c)
	c.Status = status
	return c
}

// PruneForRemovedPassages drops removed passage ids from every concept and discards concepts left without passages.
func PruneForRemovedPassages(concepts []Concept, removedIDs ...string) []Concept {
	if len(removedIDs) == 0 {
		return concepts
	}
	removed := make(map[string]bool, len(removedIDs))
	for _, id := range removedIDs {
		removed[id] = true
	}

	result := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		kept := make([]string, 0, len(c.PassageIDs))
		for _, id := range c.PassageIDs {
			if !removed[id] {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			continue
		}
		c.PassageIDs = kept
		result = append(result, c)
	}
	return result
}

// EnsurePassageIDs deduplicates ids and keeps only those present in available, preserving order.
func EnsurePassageIDs(ids []string, available map[string]bool) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !available[id] || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// AddPassage grounds c in one more passage, which must be one of available.
func AddPassage(c Concept, passageID string, available map[string]bool) (Concept, error) {
	if !available[passageID] {
		return c, fmt.Errorf("%w: %s", ErrUnknownPassage, passageID)
	}
	if c.hasPassage(passageID) {
		return c, nil
	}
	c = clone(c)
	c.PassageIDs = append(c.PassageIDs, passageID)
	return c, nil
}

// RemovePassage drops one grounding passage from c. A validated concept cannot lose its last passage;
// other concepts may end up empty and are expected to be pruned by the caller.
func RemovePassage(c Concept, passageID string, available map[string]bool) (Concept, error) {
	if !available[passageID] {
		return c, fmt.Errorf("%w: %s", ErrUnknownPassage, passageID)
	}
	if !c.hasPassage(passageID) {
		return c, nil
	}
	if c.Status == StatusValidated && len(c.PassageIDs) == 1 {
		return c, fmt.Errorf("%w: %s", ErrEmptyValidated, c.Name)
	}

	c = clone(c)
	kept := c.PassageIDs[:0]
	for _, id := range c.PassageIDs {
		if id != passageID {
			kept = append(kept, id)
		}
	}
	c.PassageIDs = kept
	return c, nil
}

// DropUngrounded removes concepts without any passage.
func DropUngrounded(concepts []Concept) []Concept {
	result := make([]Concept, 0, len(concepts))
	for _, c := range concepts {
		if len(c.PassageIDs) > 0 {
			result = append(result, c)
		}
	}
	return result
}
