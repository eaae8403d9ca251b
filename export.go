package nbbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-nbbook/internal/assets"
	"github.com/alnah/go-nbbook/internal/dateutil"
	"github.com/alnah/go-nbbook/internal/fileutil"
	"github.com/alnah/go-nbbook/internal/latex"
	"github.com/alnah/go-nbbook/internal/logfields"
	"github.com/alnah/go-nbbook/internal/notebook"
	"github.com/alnah/go-nbbook/internal/pipeline"
)

// DefaultOutputFile is the output base name when none is given.
const DefaultOutputFile = "combined"

// scratchPrefix names the per-export compilation directory.
const scratchPrefix = "nbbook"

// TextFilter is a named text transformation run on every markdown fragment
// after it has been converted to LaTeX.
type TextFilter = pipeline.TextFilter

// TagPolicy lists the cell and output tags that remove content.
type TagPolicy = pipeline.TagPolicy

// DefaultTagPolicy removes cells tagged "hidden" or "remove_cell", the
// source of cells tagged "hidden" or "remove_input", and the outputs of
// cells tagged "hidden" or "remove_output".
func DefaultTagPolicy() TagPolicy {
	return pipeline.DefaultTagPolicy()
}

// ExportOptions describes one export.
type ExportOptions struct {
	// OutputFile is the output path; its extension is replaced by .tex or
	// .pdf. Empty means "combined" in the current directory.
	OutputFile string
	PDF        bool

	TemplateFile      string // template path; overrides TemplateName
	TemplateName      string // loaded through the exporter's TemplateLoader
	ExtraPreambleFile string // appended after the template's base header

	// Tags selects removed content. Nil means DefaultTagPolicy.
	Tags *TagPolicy

	// Title page. An empty Title falls back to the "title" metadata of the
	// book, an empty Author to its "authors" metadata. Date accepts "auto"
	// and "auto:FORMAT".
	Title  string
	Author string
	Date   string

	// KeepCombined also writes the combined notebook as <stem>.ipynb.
	KeepCombined bool
}

// ExportResult lists what an export wrote.
type ExportResult struct {
	TexPath      string   // empty in PDF mode
	PDFPath      string   // empty in LaTeX mode
	NotebookPath string   // set with KeepCombined
	Resources    []string // extracted files, relative to the output directory
	Pages        int      // PDF page count, 0 when unknown
}

// Exporter renders a combined book to LaTeX and optionally compiles it.
type Exporter struct {
	links          *TextFilter
	compiler       Compiler
	loader         TemplateLoader
	logger         *slog.Logger
	highlightStyle string
	now            func() time.Time
}

// WithLinkResolver sets the filter that turns chapter links into
// references. By default a resolver is built from the combined chapters.
func WithLinkResolver(f TextFilter) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.links = &f
	})
}

// WithCompiler sets the PDF compiler. Default: xelatex, 3 passes.
func WithCompiler(c Compiler) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.compiler = c
	})
}

// WithTemplateLoader sets where named templates are loaded from.
func WithTemplateLoader(l TemplateLoader) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.loader = l
	})
}

// WithHighlightStyle selects the chroma style for code listings.
func WithHighlightStyle(name string) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.highlightStyle = name
	})
}

// withClock fixes the time used to resolve "auto" dates.
func withClock(now func() time.Time) ExporterOption {
	return exporterOptionFunc(func(e *Exporter) {
		e.now = now
	})
}

// NewExporter returns an Exporter with the given options.
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{
		logger:         logfields.Discard(),
		highlightStyle: latex.DefaultStyle,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt.applyExporter(e)
	}
	if e.compiler == nil {
		lc := NewLatexCompiler(DefaultEngine, DefaultPasses)
		lc.Logger = e.logger
		e.compiler = lc
	}
	return e
}

// Export filters, renders and writes the book. Nothing is written unless
// the whole document rendered. In PDF mode the engine runs in a scratch
// directory that is removed before Export returns.
func (e *Exporter) Export(ctx context.Context, book *Combined, opts ExportOptions) (*ExportResult, error) {
	if book == nil || book.Notebook == nil {
		return nil, ErrNilDocument
	}

	outDir, stem := splitOutputFile(opts.OutputFile)
	e.logger.Info("converting", slog.String("format", formatName(opts.PDF)), logfields.Path(filepath.Join(outDir, stem)))

	policy := DefaultTagPolicy()
	if opts.Tags != nil {
		policy = *opts.Tags
	}
	filtered, err := policy.Preprocess(book.Notebook)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRender, policy.Name(), err)
	}
	e.logger.Debug("preprocessed",
		logfields.Stage(policy.Name()),
		logfields.Count(len(book.Notebook.Cells)-len(filtered.Cells)))

	tmpl, err := e.loadTemplate(opts)
	if err != nil {
		return nil, err
	}

	doc, err := e.document(book, filtered, opts, stem)
	if err != nil {
		return nil, err
	}

	links := e.links
	if links == nil {
		f := latex.NewLinkResolver(book.ChapterIDs()).Filter()
		links = &f
	}
	renderOpts := []latex.RendererOption{
		latex.WithFilters(*links),
		latex.WithHighlightStyle(e.highlightStyle),
		latex.WithLogger(e.logger),
	}
	// The engine runs in a scratch directory, away from the chapters.
	if opts.PDF && len(book.Chapters) > 0 {
		renderOpts = append(renderOpts, latex.WithImageDir(filepath.Dir(book.Chapters[0].Path)))
	}
	renderer := latex.NewRenderer(renderOpts...)
	res := latex.NewResources(stem + "_files")
	doc.Body, err = renderer.Render(filtered, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	var tex bytes.Buffer
	if err := tmpl.Render(&tex, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	result := &ExportResult{Resources: res.Paths()}
	if opts.PDF {
		result.PDFPath, err = e.compile(ctx, outDir, stem, tex.Bytes(), res.Files)
		if err != nil {
			return nil, err
		}
		if result.Pages, err = PageCount(result.PDFPath); err != nil {
			e.logger.Warn("could not count pages", logfields.Path(result.PDFPath), logfields.Error(err))
		}
		result.Resources = nil
	} else {
		result.TexPath, err = writeLatex(outDir, stem, tex.Bytes(), res.Files)
		if err != nil {
			return nil, err
		}
	}

	if opts.KeepCombined {
		result.NotebookPath = filepath.Join(outDir, stem+notebook.ExtNotebook)
		if err := notebook.WriteFile(result.NotebookPath, book.Notebook); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	e.logger.Info("exported",
		logfields.Path(firstNonEmpty(result.PDFPath, result.TexPath)),
		logfields.Count(len(res.Files)),
		logfields.Pages(result.Pages))
	return result, nil
}

func (e *Exporter) loadTemplate(opts ExportOptions) (*assets.Template, error) {
	var (
		tmpl *assets.Template
		err  error
	)
	if opts.TemplateFile != "" {
		tmpl, err = assets.LoadTemplateFile(opts.TemplateFile)
	} else {
		var loader assets.AssetLoader
		if e.loader != nil {
			loader = e.loader
		}
		tmpl, err = assets.LoadTemplate(loader, opts.TemplateName)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}

	if opts.ExtraPreambleFile == "" {
		return tmpl, nil
	}
	preamble, err := assets.ReadPreamble(opts.ExtraPreambleFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	tmpl, err = tmpl.WithPreamble(preamble)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	e.logger.Debug("added extra preamble", logfields.Path(opts.ExtraPreambleFile))
	return tmpl, nil
}

// document fills the title page fields.
func (e *Exporter) document(book *Combined, filtered *notebook.Notebook, opts ExportOptions, stem string) (assets.Document, error) {
	date, err := dateutil.Resolve(opts.Date, e.now())
	if err != nil {
		return assets.Document{}, fmt.Errorf("%w: date: %w", ErrTemplate, err)
	}
	doc := assets.Document{
		Title:  opts.Title,
		Author: opts.Author,
		Date:   date,
	}
	if doc.Title == "" {
		doc.Title = filtered.Metadata.String("title")
	}
	if doc.Title == "" && len(book.Chapters) > 0 {
		doc.Title = stem
	}
	if doc.Author == "" {
		doc.Author = strings.Join(metadataAuthors(filtered.Metadata), ", ")
	}
	return doc, nil
}

// compile builds the PDF in a scratch directory and copies it to outDir.
func (e *Exporter) compile(ctx context.Context, outDir, stem string, tex []byte, files map[string][]byte) (string, error) {
	scratch, cleanup, err := fileutil.ScratchDir(scratchPrefix)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	defer cleanup()

	if _, err := writeLatex(scratch, stem, tex, files); err != nil {
		return "", err
	}

	built, err := e.compiler.Compile(ctx, scratch, stem+".tex")
	if err != nil {
		var compileErr *CompileError
		if errors.As(err, &compileErr) {
			compileErr.LogPath = keepLog(scratch, outDir, stem)
		}
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	pdfPath := filepath.Join(outDir, stem+".pdf")
	if err := fileutil.CopyFile(built, pdfPath); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return pdfPath, nil
}

// keepLog copies the engine log of a failed build next to the output.
func keepLog(scratch, outDir, stem string) string {
	src := filepath.Join(scratch, stem+".log")
	if !fileutil.FileExists(src) {
		return ""
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return ""
	}
	dst := filepath.Join(outDir, stem+".log")
	if err := fileutil.CopyFile(src, dst); err != nil {
		return ""
	}
	return dst
}

// writeLatex writes <dir>/<stem>.tex and the extracted files.
func writeLatex(dir, stem string, tex []byte, files map[string][]byte) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	if err := fileutil.WriteFiles(dir, files); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	texPath := filepath.Join(dir, stem+".tex")
	// #nosec G306 -- generated document is meant to be readable
	if err := os.WriteFile(texPath, tex, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return texPath, nil
}

// splitOutputFile returns the output directory and the base name without
// extension.
func splitOutputFile(outputFile string) (dir, stem string) {
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}
	stem = fileutil.Stem(outputFile)
	if stem == "" || stem == "." {
		stem = DefaultOutputFile
	}
	return filepath.Dir(outputFile), stem
}

// metadataAuthors reads nbformat "authors" metadata: a list of {"name": ...}
// objects or plain strings.
func metadataAuthors(m notebook.Metadata) []string {
	list, ok := m["authors"].([]any)
	if !ok {
		return nil
	}
	var names []string
	for _, item := range list {
		switch v := item.(type) {
		case string:
			names = append(names, v)
		case map[string]any:
			if name, ok := v["name"].(string); ok && name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

func formatName(pdf bool) string {
	if pdf {
		return "pdf"
	}
	return "latex"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
