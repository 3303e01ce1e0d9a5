package concept

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Pattern recognizes one definitional sentence shape. The first submatch is the concept label.
type Pattern struct {
	Name string
	Expr *regexp.Regexp
}

// Label returns the raw label captured from sentence.
func (p Pattern) Label(sentence string) (string, bool) {
	match := p.Expr.FindStringSubmatch(sentence)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// DefaultPatterns are tried in order; the first one yielding a valid name wins.
var DefaultPatterns = []Pattern{
	{
		// "Photosynthèse : processus par lequel ..." or "Mitose - division ..."
		Name: "separator",
		Expr: regexp.MustCompile(`(?i)^([^:]{3,80})\s*[:–-]\s+(.{10,})$`),
	},
	{
		// "La mitose est une étape ..."
		Name: "copula",
		Expr: regexp.MustCompile(`(?i)^(.{3,80})\s+(est|sont|désigne|désignent|correspond|correspondent|renvoie|renvoient|signifie|signifient|se définit|se definit|se définissent|se definissent|se définit comme|se definissent comme)\b`),
	},
	{
		// "On appelle cytoplasme le contenu ..."
		Name: "naming",
		Expr: regexp.MustCompile(`(?i)^On appelle\s+([^,]{3,80})\s+`),
	},
}

const (
	minNameLength = 3
	maxNameLength = 80
	maxNameWords  = 8
)

var stopNames = map[string]bool{
	"il":    true,
	"elle":  true,
	"ils":   true,
	"elles": true,
	"ce":    true,
	"cela":  true,
	"ceci":  true,
	"on":    true,
	"nous":  true,
	"vous":  true,
	"je":    true,
	"tu":    true,
}

var (
	quotePattern             = regexp.MustCompile(`[“”"«»]`)
	trailingSeparatorPattern = regexp.MustCompile(`\s*[:–-]\s*$`)
)

// NormalizeName strips quotes, collapses whitespace and removes a trailing colon or dash.
func NormalizeName(value string) string {
	value = quotePattern.ReplaceAllString(value, "")
	value = strings.Join(strings.Fields(value), " ")
	value = trailingSeparatorPattern.ReplaceAllString(value, "")
	return strings.TrimSpace(value)
}

// IsValidName reports whether a normalized label can name a concept.
func IsValidName(name string) bool {
	length := utf8.RuneCountInString(name)
	if length < minNameLength || length > maxNameLength {
		return false
	}
	if stopNames[strings.ToLower(strings.TrimSpace(name))] {
		return false
	}
	return len(strings.Fields(name)) <= maxNameWords
}

// SplitSentences collapses whitespace and cuts after '.', '!' or '?' followed by a space.
func SplitSentences(text string) []string {
	collapsed := []rune(strings.Join(strings.Fields(text), " "))

	var sentences []string
	start := 0
	for i := 0; i < len(collapsed); i++ {
		switch collapsed[i] {
		case '.', '!', '?':
			if i+1 < len(collapsed) && collapsed[i+1] == ' ' {
				if sentence := strings.TrimSpace(string(collapsed[start : i+1])); sentence != "" {
					sentences = append(sentences, sentence)
				}
				start = i + 2
			}
		}
	}
	if start < len(collapsed) {
		if sentence := strings.TrimSpace(string(collapsed[start:])); sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}

// candidate is a concept name found in a sentence.
type candidate struct {
	name       string
	definition string
}

func matchSentence(patterns []Pattern, sentence string) (candidate, bool) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return candidate{}, false
	}
	for _, pattern := range patterns {
		raw, ok := pattern.Label(sentence)
		if !ok {
			continue
		}
		name := NormalizeName(raw)
		if !IsValidName(name) {
			continue
		}
		return candidate{name: name, definition: sentence}, true
	}
	return candidate{}, false
}
