package nbbook

import (
	"context"
	"log/slog"

	"github.com/alnah/go-nbbook/internal/latex"
	"github.com/alnah/go-nbbook/internal/logfields"
)

// BuildOptions configures CombineAndConvert.
type BuildOptions struct {
	SourceDir string // empty = current directory
	Pattern   string // empty = DefaultChapterPattern
	Export    ExportOptions

	Engine         string // empty = DefaultEngine
	Passes         int    // 0 = DefaultPasses
	TemplateDir    string // searched before the built-in templates
	HighlightStyle string
	Logger         *slog.Logger

	// Compiler replaces the LaTeX engine driver, mostly for tests.
	Compiler Compiler
}

// CombineAndConvert discovers the chapters of SourceDir, combines them and
// exports the book. Cross-chapter links are resolved against the
// discovered chapter IDs.
func CombineAndConvert(ctx context.Context, opts BuildOptions) (*ExportResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logfields.Discard()
	}

	chapters, err := DiscoverChapters(opts.SourceDir, opts.Pattern)
	if err != nil {
		return nil, err
	}
	if len(chapters) == 0 {
		logger.Warn("no chapters found", logfields.Path(opts.SourceDir), slog.String("pattern", opts.Pattern))
	}

	book, err := CombineNotebooks(chapters, WithLogger(logger))
	if err != nil {
		return nil, err
	}

	compiler := opts.Compiler
	if compiler == nil {
		lc := NewLatexCompiler(opts.Engine, opts.Passes)
		lc.Logger = logger
		compiler = lc
	}

	exporterOpts := []ExporterOption{
		WithLogger(logger),
		WithCompiler(compiler),
		WithLinkResolver(NewLinkResolver(ChapterIDs(chapters))),
	}
	if opts.HighlightStyle != "" {
		exporterOpts = append(exporterOpts, WithHighlightStyle(opts.HighlightStyle))
	}
	if opts.TemplateDir != "" {
		loader, err := NewTemplateLoader(opts.TemplateDir)
		if err != nil {
			return nil, err
		}
		exporterOpts = append(exporterOpts, WithTemplateLoader(loader))
	}

	return NewExporter(exporterOpts...).Export(ctx, book, opts.Export)
}

// NewLinkResolver returns the resolve_references filter for the given
// chapter IDs.
func NewLinkResolver(chapterIDs []string) TextFilter {
	return latex.NewLinkResolver(chapterIDs).Filter()
}
