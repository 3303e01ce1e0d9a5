package document

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultMaxControlRatio is the largest share of control characters accepted in PDF text.
const DefaultMaxControlRatio = 0.2

// Normalizer validates extracted text before segmentation.
type Normalizer struct {
	MaxControlRatio float64
}

func NewNormalizer(maxControlRatio float64) *Normalizer {
	return &Normalizer{MaxControlRatio: maxControlRatio}
}

// Normalize trims raw and rejects empty text. Text extracted from a PDF is also rejected
// when control characters other than line breaks and tabs exceed MaxControlRatio.
func (n *Normalizer) Normalize(raw string, format Format) (string, error) {
	text := strings.TrimFunc(raw, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
	if text == "" {
		return "", ErrEmptyDocument
	}

	if format == FormatPDF {
		if ratio := controlRatio(text); ratio > n.MaxControlRatio {
			return "", fmt.Errorf("%w: %.0f%% control characters", ErrUnreadableDocument, ratio*100)
		}
	}
	return text, nil
}

func controlRatio(text string) float64 {
	var total, control int
	for _, r := range text {
		total++
		if r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			control++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(control) / float64(total)
}
