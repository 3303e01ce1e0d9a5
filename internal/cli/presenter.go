// Package cli prints tracks in the terminal and asks for confirmation before destructive operations.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/palimpseste/palimpseste/internal/chapter"
	"github.com/palimpseste/palimpseste/internal/concept"
	"github.com/palimpseste/palimpseste/internal/confirm"
	"github.com/palimpseste/palimpseste/internal/document"
	"github.com/palimpseste/palimpseste/internal/passage"
	"github.com/palimpseste/palimpseste/internal/track"
)

// Presenter writes tracks to stdoutWriter and reads answers from stdinReader.
type Presenter struct {
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	bold         *color.Color
	italic       *color.Color
	faint        *color.Color
}

func NewPresenter(stdin io.Reader, stdout io.Writer) *Presenter {
	return &Presenter{
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		bold:         color.New(color.Bold),
		italic:       color.New(color.Italic),
		faint:        color.New(color.Faint),
	}
}

// PrintTracks prints one line per track.
func (p *Presenter) PrintTracks(tracks []track.Track) {
	if len(tracks) == 0 {
		_, _ = fmt.Fprintln(p.stdoutWriter, "No track yet.")
		return
	}
	for _, t := range tracks {
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s  %s [%s] %d passages, %d concepts\n",
			p.faint.Sprint(t.ID), p.bold.Sprint(t.Title), t.Level, len(t.Passages), len(t.Concepts))
	}
}

// PrintTrack prints the track header and its document state.
func (p *Presenter) PrintTrack(t track.Track) {
	_, _ = fmt.Fprintf(p.stdoutWriter, "%s (%s)\n", p.bold.Sprint(t.Title), t.ID)
	if t.Description != "" {
		_, _ = fmt.Fprintln(p.stdoutWriter, p.italic.Sprint(t.Description))
	}
	_, _ = fmt.Fprintf(p.stdoutWriter, "Level %s, %d chapters\n", t.Level, t.ChaptersCount)

	doc := t.Document
	switch {
	case doc == nil:
		_, _ = fmt.Fprintln(p.stdoutWriter, "Document: none")
	case doc.Status == document.StatusProcessed:
		_, _ = fmt.Fprintf(p.stdoutWriter, "Document: %s %s\n", doc.FileName, color.GreenString(string(doc.Status)))
	case doc.Status == document.StatusFailed:
		_, _ = fmt.Fprintf(p.stdoutWriter, "Document: %s %s: %s\n", doc.FileName, color.RedString(string(doc.Status)), doc.Error)
	default:
		_, _ = fmt.Fprintf(p.stdoutWriter, "Document: %s %s\n", doc.FileName, color.YellowString(string(doc.Status)))
	}
	_, _ = fmt.Fprintf(p.stdoutWriter, "%d passages, %d concepts\n", len(t.Passages), len(t.Concepts))
}

// PrintChapters prints the outline in order. Untitled chapters show their default label.
func (p *Presenter) PrintChapters(chapters []chapter.Chapter) {
	if len(chapters) == 0 {
		_, _ = fmt.Fprintln(p.stdoutWriter, "No chapter yet.")
		return
	}
	for _, c := range chapter.Sorted(chapters) {
		status := color.YellowString(string(c.Status))
		if c.Status == chapter.StatusValidated {
			status = color.GreenString(string(c.Status))
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s %s [%s] %s\n",
			p.bold.Sprintf("#%d", c.Index), c.Label(), status, p.faint.Sprint(c.ID))
		if c.Objectives != "" {
			_, _ = fmt.Fprintf(p.stdoutWriter, "    %s\n", p.italic.Sprint(c.Objectives))
		}
	}
}

// PrintPassages prints passages in order, marking the ones edited by hand.
func (p *Presenter) PrintPassages(passages []passage.Passage) {
	if len(passages) == 0 {
		_, _ = fmt.Fprintln(p.stdoutWriter, "No passage yet.")
		return
	}
	for _, item := range passage.Sorted(passages) {
		marker := ""
		if item.IsManual {
			marker = " " + color.YellowString("(edited)")
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s%s %s, %d characters\n",
			p.bold.Sprintf("#%d", item.Index), marker, p.faint.Sprint(item.ID), item.Len())
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s\n\n", item.Text)
	}
}

// PrintConcepts prints concepts with their status and the numbers of their passages.
func (p *Presenter) PrintConcepts(t track.Track) {
	if len(t.Concepts) == 0 {
		_, _ = fmt.Fprintln(p.stdoutWriter, "No concept yet.")
		return
	}
	indexes := make(map[string]int, len(t.Passages))
	for _, item := range t.Passages {
		indexes[item.ID] = item.Index
	}

	for _, c := range t.Concepts {
		var numbers []string
		for _, id := range c.PassageIDs {
			if index, ok := indexes[id]; ok {
				numbers = append(numbers, "#"+strconv.Itoa(index))
			}
		}
		_, _ = fmt.Fprintf(p.stdoutWriter, "%s [%s] %s %s\n",
			p.bold.Sprint(c.Name), statusColor(c.Status), strings.Join(numbers, " "), p.faint.Sprint(c.ID))
		_, _ = fmt.Fprintf(p.stdoutWriter, "    %s\n", p.italic.Sprint(c.Definition))
	}
}

func statusColor(status concept.Status) string {
	switch status {
	case concept.StatusValidated:
		return color.GreenString(string(status))
	case concept.StatusRejected:
		return color.RedString(string(status))
	}
	return color.YellowString(string(status))
}

// Confirm asks the user to approve decision. It returns true without asking when no confirmation is required.
// An answer other than y or yes declines.
func (p *Presenter) Confirm(decision confirm.Decision) (bool, error) {
	if !decision.Required {
		return true, nil
	}

	_, _ = fmt.Fprintf(p.stdoutWriter, "%s\n", color.YellowString(decision.Reason))
	_, _ = fmt.Fprint(p.stdoutWriter, "Continue? [y/N]: ")
	answer, err := p.stdinReader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("stdinReader.ReadString() > %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
