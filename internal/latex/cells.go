package latex

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alnah/go-nbbook/internal/logfields"
	"github.com/alnah/go-nbbook/internal/notebook"
	"github.com/alnah/go-nbbook/internal/pipeline"
)

// Output MIME types in the order they are preferred for rendering.
var outputPriority = []string{
	notebook.MimeLaTeX,
	"application/pdf",
	"image/png",
	"image/jpeg",
	"text/markdown",
	"text/plain",
}

var imageExtensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

// Raw cell formats included in LaTeX output.
var latexRawFormats = map[string]bool{
	notebook.MimeLaTeX: true,
	"latex":            true,
	"tex":              true,
}

// ansiEscape matches terminal control sequences found in tracebacks.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`)

// Renderer turns the cells of a notebook into a LaTeX document body.
type Renderer struct {
	markdown *Markdown
	hl       *Highlighter
	filters  pipeline.FilterChain
	imageDir string
	logger   *slog.Logger
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithFilters appends text filters run on every markdown fragment after it
// has been converted to LaTeX.
func WithFilters(filters ...pipeline.TextFilter) RendererOption {
	return func(r *Renderer) {
		r.filters = append(r.filters, filters...)
	}
}

// WithHighlightStyle selects the chroma style for code.
func WithHighlightStyle(name string) RendererOption {
	return func(r *Renderer) {
		r.hl = NewHighlighter(name)
	}
}

// WithImageDir resolves relative markdown image paths against dir.
func WithImageDir(dir string) RendererOption {
	return func(r *Renderer) {
		r.imageDir = dir
	}
}

// WithLogger sets the logger for render diagnostics.
func WithLogger(l *slog.Logger) RendererOption {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRenderer returns a Renderer for one document.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		hl:     NewHighlighter(DefaultStyle),
		logger: logfields.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.markdown = NewMarkdown(r.hl, NewSlugger())
	r.markdown.ImageDir = r.imageDir
	return r
}

// MarkdownChain returns the ordered filters applied to one markdown
// fragment: normalize, markdown2latex, then the configured filters.
func (r *Renderer) MarkdownChain(attachments map[string]notebook.MimeBundle, res *Resources) pipeline.FilterChain {
	chain := pipeline.FilterChain{
		pipeline.NormalizeFilter(),
		r.markdown.Filter(attachments, res),
	}
	return append(chain, r.filters...)
}

// Render renders every cell of nb. Files referenced by the output are added
// to res.
func (r *Renderer) Render(nb *notebook.Notebook, res *Resources) (string, error) {
	language := nb.Language()
	var b strings.Builder
	for i, cell := range nb.Cells {
		out, err := r.renderCell(i, cell, language, res)
		if err != nil {
			return "", fmt.Errorf("cell %d: %w", i, err)
		}
		if out == "" {
			continue
		}
		b.WriteString(out)
		if !strings.HasSuffix(out, "\n") {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func (r *Renderer) renderCell(index int, cell *notebook.Cell, language string, res *Resources) (string, error) {
	switch cell.CellType {
	case notebook.CellMarkdown:
		if cell.Transient.RemoveSource {
			return "", nil
		}
		return r.MarkdownChain(cell.Attachments, res).Run(cell.Source)
	case notebook.CellRaw:
		if cell.Transient.RemoveSource || !IsLaTeXRaw(cell) {
			return "", nil
		}
		return cell.Source, nil
	case notebook.CellCode:
		return r.renderCode(index, cell, language, res)
	default:
		r.logger.Warn("skipping cell of unknown type",
			slog.String("cell_type", cell.CellType),
			logfields.Cell(index))
		return "", nil
	}
}

func (r *Renderer) renderCode(index int, cell *notebook.Cell, language string, res *Resources) (string, error) {
	var b strings.Builder
	if !cell.Transient.RemoveSource && strings.TrimSpace(cell.Source) != "" {
		code, err := r.hl.Highlight(cell.Source, language)
		if err != nil {
			return "", err
		}
		b.WriteString(code)
	}
	for j, out := range cell.Outputs {
		rendered, err := r.renderOutput(fmt.Sprintf("output_%d_%d", index, j), out, res)
		if err != nil {
			return "", fmt.Errorf("output %d: %w", j, err)
		}
		if rendered == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(rendered)
	}
	return b.String(), nil
}

func (r *Renderer) renderOutput(name string, out notebook.Output, res *Resources) (string, error) {
	switch out.OutputType {
	case notebook.OutputStream:
		return Verbatim(StripANSI(string(out.Text))), nil
	case notebook.OutputError:
		return Verbatim(StripANSI(strings.Join(out.Traceback, "\n"))), nil
	case notebook.OutputDisplayData, notebook.OutputExecuteResult:
		return r.renderData(name, out.Data, res)
	default:
		return "", nil
	}
}

func (r *Renderer) renderData(name string, data notebook.MimeBundle, res *Resources) (string, error) {
	for _, mime := range outputPriority {
		payload, ok := data.Get(mime)
		if !ok {
			continue
		}
		switch mime {
		case notebook.MimeLaTeX:
			return payload, nil
		case "text/markdown":
			return r.MarkdownChain(nil, res).Run(payload)
		case "text/plain":
			return Verbatim(StripANSI(payload)), nil
		default:
			raw, err := decodeBase64(payload)
			if err != nil {
				return "", fmt.Errorf("decoding %s: %w", mime, err)
			}
			p := res.Add(name+imageExtensions[mime], raw)
			return "\\begin{center}\n" + imageCommand + "{" + p + "}\n\\end{center}\n", nil
		}
	}
	return "", nil
}

// IsLaTeXRaw reports whether a raw cell targets LaTeX output.
func IsLaTeXRaw(cell *notebook.Cell) bool {
	format := cell.Metadata.String("raw_mimetype")
	if format == "" {
		format = cell.Metadata.String("format")
	}
	return latexRawFormats[strings.ToLower(format)]
}

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	return ansiEscape.ReplaceAllString(s, "")
}
