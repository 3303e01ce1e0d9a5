package passage

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	DefaultMinLength = 300
	DefaultMaxLength = 1200
)

// textRange is a half-open rune range [start, end) of the source text.
type textRange struct {
	start int
	end   int
}

func (r textRange) length() int {
	return r.end - r.start
}

// Segmenter splits document text into passages.
// Paragraphs are coalesced greedily up to MaxLength runes, longer paragraphs are cut at sentence ends
// and chunks shorter than MinLength are absorbed by a neighbour when the result still fits in MaxLength.
type Segmenter struct {
	MinLength int
	MaxLength int
	Now       func() time.Time
}

// NewSegmenter creates a Segmenter with the given bounds.
func NewSegmenter(minLength, maxLength int) *Segmenter {
	return &Segmenter{
		MinLength: minLength,
		MaxLength: maxLength,
		Now:       time.Now,
	}
}

// Segment returns a freshly numbered passage list for the track.
// Offsets are rune positions in the text passed in.
func (s *Segmenter) Segment(text string, trackID string) []Passage {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	ranges := s.ranges(runes)
	createdAt := s.Now().UTC()

	passages := make([]Passage, 0, len(ranges))
	for i, r := range ranges {
		passageText := string(runes[r.start:r.end])
		hash := Hash(passageText)
		start, end := r.start, r.end
		passages = append(passages, Passage{
			ID:        generatedID(trackID, i+1, hash),
			TrackID:   trackID,
			Index:     i + 1,
			Text:      passageText,
			CharStart: &start,
			CharEnd:   &end,
			Hash:      hash,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}
	return passages
}

func generatedID(trackID string, index int, hash string) string {
	return fmt.Sprintf("passage-%s-%d-%s", trackID, index, hash[:8])
}

func (s *Segmenter) ranges(text []rune) []textRange {
	paragraphs := splitParagraphs(text)
	chunks := s.chunkParagraphs(text, paragraphs)
	merged := s.absorbShortChunks(text, chunks)
	return trimAll(text, merged)
}

// splitParagraphs cuts text on blank lines: a newline, optional whitespace, then at least one more newline.
func splitParagraphs(text []rune) []textRange {
	var paragraphs []textRange
	last := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		end := i + 1
		for end < len(text) && isSpace(text[end]) {
			end++
		}
		// the separator stops after the last newline of the whitespace run
		for end > i+1 && text[end-1] != '\n' {
			end--
		}
		if end == i+1 {
			continue
		}
		if i > last {
			if p := trimRange(text, last, i); p.length() > 0 {
				paragraphs = append(paragraphs, p)
			}
		}
		last = end
		i = end - 1
	}
	if last < len(text) {
		if p := trimRange(text, last, len(text)); p.length() > 0 {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

func (s *Segmenter) chunkParagraphs(text []rune, paragraphs []textRange) []textRange {
	var chunks []textRange
	var current *textRange

	flush := func() {
		if current == nil {
			return
		}
		if trimmed := trimRange(text, current.start, current.end); trimmed.length() > 0 {
			chunks = append(chunks, trimmed)
		}
		current = nil
	}

	for _, paragraph := range paragraphs {
		if paragraph.length() > s.MaxLength {
			flush()
			chunks = append(chunks, s.splitLongRange(text, paragraph)...)
			continue
		}
		if current == nil {
			p := paragraph
			current = &p
			continue
		}
		if paragraph.end-current.start <= s.MaxLength {
			current.end = paragraph.end
			continue
		}
		flush()
		p := paragraph
		current = &p
	}
	flush()
	return chunks
}

func (s *Segmenter) splitLongRange(text []rune, r textRange) []textRange {
	var ranges []textRange
	offset := r.start
	for offset < r.end {
		if r.end-offset <= s.MaxLength {
			ranges = append(ranges, trimRange(text, offset, r.end))
			break
		}
		windowEnd := min(offset+s.MaxLength+1, len(text))
		next := offset + s.breakIndex(text[offset:windowEnd])
		ranges = append(ranges, trimRange(text, offset, next))
		offset = next
	}

	kept := ranges[:0]
	for _, entry := range ranges {
		if entry.length() > 0 {
			kept = append(kept, entry)
		}
	}
	return kept
}

// breakIndex returns where to cut window: after the last sentence end or newline run whose
// cut length lies within [MinLength, MaxLength], or at MaxLength when there is none.
func (s *Segmenter) breakIndex(window []rune) int {
	if len(window) <= s.MaxLength {
		return len(window)
	}
	limit := s.MaxLength

	lastValid := -1
	consider := func(end int) {
		if end >= s.MinLength && end <= limit {
			lastValid = end
		}
	}
	for i := 0; i < len(window); {
		switch r := window[i]; {
		case isSentenceEnd(r):
			j := i + 1
			for j < len(window) && isSpace(window[j]) {
				j++
			}
			if j > i+1 {
				consider(j)
				i = j
				continue
			}
		case r == '\n':
			j := i + 1
			for j < len(window) && window[j] == '\n' {
				j++
			}
			consider(j)
			i = j
			continue
		}
		i++
	}
	if lastValid != -1 {
		return lastValid
	}
	return limit
}

// absorbShortChunks merges every non-final chunk under MinLength into the next chunk, or else into the
// previous one, as long as the merged span fits in MaxLength. Chunks that fit nowhere stay short.
func (s *Segmenter) absorbShortChunks(text []rune, chunks []textRange) []textRange {
	var merged []textRange
	for i := 0; i < len(chunks); i++ {
		current := chunks[i]
		if current.length() >= s.MinLength || i == len(chunks)-1 {
			merged = append(merged, current)
			continue
		}

		next := chunks[i+1]
		if next.end-current.start <= s.MaxLength {
			chunks[i+1] = textRange{start: current.start, end: next.end}
			continue
		}

		if len(merged) > 0 {
			previous := merged[len(merged)-1]
			if current.end-previous.start <= s.MaxLength {
				merged[len(merged)-1] = textRange{start: previous.start, end: current.end}
				continue
			}
		}

		merged = append(merged, current)
	}
	return trimAll(text, merged)
}

func trimAll(text []rune, ranges []textRange) []textRange {
	result := make([]textRange, 0, len(ranges))
	for _, r := range ranges {
		if trimmed := trimRange(text, r.start, r.end); trimmed.length() > 0 {
			result = append(result, trimmed)
		}
	}
	return result
}

func trimRange(text []rune, start, end int) textRange {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return textRange{start: start, end: end}
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}
