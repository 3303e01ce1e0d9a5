package document

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	pdfLiteralPattern = regexp.MustCompile(`\(([^()]*)\)`)
	pdfUnescaper      = strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\b`, "\b",
		`\f`, "\f",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
)

// ExtractPDFText reads the literal strings of a PDF file. It does not inflate compressed streams,
// so it only recovers text from PDFs that store their content uncompressed.
func ExtractPDFText(data []byte) (string, error) {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}

	var chunks []string
	for _, match := range pdfLiteralPattern.FindAllStringSubmatch(string(decoded), -1) {
		if match[1] == "" {
			continue
		}
		chunks = append(chunks, pdfUnescaper.Replace(match[1]))
	}
	return strings.Join(strings.Fields(strings.Join(chunks, " ")), " "), nil
}
