package nbbook

import (
	"fmt"
	"strings"

	"github.com/alnah/go-nbbook/internal/latex"
	"github.com/alnah/go-nbbook/internal/notebook"
	"github.com/alnah/go-nbbook/internal/pipeline"
)

// Severity grades a Diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a non-fatal anomaly found while combining chapters.
type Diagnostic struct {
	Severity Severity
	Chapter  string
	Message  string
}

// LabelResult is the replacement for a chapter's first cell: the heading,
// the label cell and, when the first cell had more text, the remainder.
type LabelResult struct {
	Cells       []*notebook.Cell
	Diagnostics []Diagnostic
}

// SectionLabel returns the LaTeX label of a chapter: "sec:" + chapterID.
func SectionLabel(chapterID string) string {
	return latex.SectionLabel(chapterID)
}

// NewLabelCell returns the raw LaTeX cell marking the start of a chapter.
func NewLabelCell(chapterID string) *notebook.Cell {
	return notebook.NewRawCell(`\label{`+SectionLabel(chapterID)+`}`, notebook.MimeLaTeX)
}

// AddSectionLabel splits a chapter's first cell after its heading and
// inserts the chapter label. The heading is either a "# " line or a title
// line underlined with "===". A first cell that is not markdown is still
// processed and reported as a critical diagnostic.
func AddSectionLabel(cell *notebook.Cell, chapterID string) (*LabelResult, error) {
	if cell == nil {
		return nil, &NoHeaderError{Chapter: chapterID}
	}

	result := &LabelResult{}
	if cell.CellType != notebook.CellMarkdown {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityCritical,
			Chapter:  chapterID,
			Message:  fmt.Sprintf("first cell is %q, should be %q", cell.CellType, notebook.CellMarkdown),
		})
	}

	lines := strings.Split(pipeline.NormalizeLineEndings(cell.Source), "\n")
	var headerLines int
	switch {
	case strings.HasPrefix(lines[0], "# "):
		headerLines = 1
	case len(lines) > 1 && strings.HasPrefix(lines[1], "==="):
		headerLines = 2
	default:
		return nil, &NoHeaderError{Chapter: chapterID}
	}

	heading := notebook.NewMarkdownCell(strings.Join(lines[:headerLines], "\n"))
	heading.Metadata = cell.Metadata.Clone()
	result.Cells = append(result.Cells, heading, NewLabelCell(chapterID))

	if rest := strings.TrimSpace(strings.Join(lines[headerLines:], "\n")); rest != "" {
		result.Cells = append(result.Cells, notebook.NewMarkdownCell(rest))
	}
	return result, nil
}
