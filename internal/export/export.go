// Package export renders a track as a markdown review sheet and converts it to PDF.
package export

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"github.com/mandolyte/mdtopdf"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

const reviewSheetTemplateName = "review-sheet.md.go.tmpl"

//go:embed templates/review-sheet.md.go.tmpl
var fallbackReviewSheetTemplate string

// ParseReviewTemplate parses the template at templatePath, falling back to the embedded one
// when templatePath is empty, missing or invalid.
func ParseReviewTemplate(templatePath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).
				Funcs(funcMap).
				ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a review sheet template",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(reviewSheetTemplateName).
		Funcs(funcMap).
		Parse(fallbackReviewSheetTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// Sheet is the data passed to the review sheet template.
type Sheet struct {
	Title         string
	Description   string
	Level         track.Level
	ChaptersCount int
	Chapters      []chapter.Chapter
	DocumentName  string
	Passages      []passage.Passage
	Concepts      []SheetConcept
}

// SheetConcept is a concept with the numbers of the passages it is grounded in.
type SheetConcept struct {
	Name           string
	Definition     string
	Status         concept.Status
	PassageIndexes []string
}

// NewSheet orders the track's chapters and passages and resolves concept passage ids to passage numbers.
// Ids that no longer match a passage are skipped.
func NewSheet(t track.Track) Sheet {
	passages := passage.Sorted(t.Passages)
	indexes := make(map[string]int, len(passages))
	for _, p := range passages {
		indexes[p.ID] = p.Index
	}

	sheet := Sheet{
		Title:         t.Title,
		Description:   t.Description,
		Level:         t.Level,
		ChaptersCount: t.ChaptersCount,
		Chapters:      chapter.Sorted(t.Chapters),
		Passages:      passages,
		Concepts:      make([]SheetConcept, 0, len(t.Concepts)),
	}
	if t.Document != nil {
		sheet.DocumentName = t.Document.FileName
	}
	for _, c := range t.Concepts {
		entry := SheetConcept{
			Name:           c.Name,
			Definition:     c.Definition,
			Status:         c.Status,
			PassageIndexes: []string{},
		}
		for _, id := range c.PassageIDs {
			if index, ok := indexes[id]; ok {
				entry.PassageIndexes = append(entry.PassageIndexes, strconv.Itoa(index))
			}
		}
		sheet.Concepts = append(sheet.Concepts, entry)
	}
	return sheet
}

// Exporter writes review sheets into Directory.
type Exporter struct {
	Directory string
	Template  *template.Template
}

// NewExporter creates an Exporter using the template at templatePath, or the embedded one.
func NewExporter(directory string, templatePath string) (*Exporter, error) {
	tmpl, err := ParseReviewTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	return &Exporter{
		Directory: directory,
		Template:  tmpl,
	}, nil
}

// WriteMarkdown renders the review sheet of t to <Directory>/<track id>.md and returns its path.
func (e *Exporter) WriteMarkdown(t track.Track) (string, error) {
	if err := os.MkdirAll(e.Directory, 0755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", e.Directory, err)
	}

	markdownPath := filepath.Join(e.Directory, t.ID+".md")
	file, err := os.Create(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.Create(%s) > %w", markdownPath, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := e.Template.Execute(file, NewSheet(t)); err != nil {
		return "", fmt.Errorf("template.Execute() > %w", err)
	}
	return markdownPath, nil
}

// WritePDF renders the review sheet of t and converts it to PDF next to the markdown file.
func (e *Exporter) WritePDF(t track.Track) (string, error) {
	markdownPath, err := e.WriteMarkdown(t)
	if err != nil {
		return "", err
	}
	return ConvertMarkdownToPDF(markdownPath)
}

// ConvertMarkdownToPDF converts a markdown file to a PDF file in the same directory.
func ConvertMarkdownToPDF(markdownPath string) (string, error) {
	if !strings.HasSuffix(markdownPath, ".md") {
		return "", fmt.Errorf("input file must have .md extension: %s", markdownPath)
	}

	content, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("os.ReadFile(%s) > %w", markdownPath, err)
	}

	pdfPath := strings.TrimSuffix(markdownPath, ".md") + ".pdf"
	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}
