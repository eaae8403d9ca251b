package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	nbbook "github.com/alnah/go-nbbook"
	"github.com/alnah/go-nbbook/internal/config"
	"github.com/alnah/go-nbbook/internal/hints"
	"github.com/alnah/go-nbbook/internal/logfields"
)

// builder runs the pipeline for one resolved configuration.
type builder struct {
	cfg     *config.Config
	env     *Environment
	logger  *slog.Logger
	quiet   bool
	verbose bool
}

// build runs discovery, combination and export once and reports what was
// written.
func (b *builder) build(ctx context.Context) (*nbbook.ExportResult, error) {
	start := b.env.Now()

	chapters, err := nbbook.DiscoverChapters(b.cfg.Input.SourceDir, b.cfg.Input.Pattern)
	if err != nil {
		return nil, fmt.Errorf("discovering chapters: %w", err)
	}
	if len(chapters) == 0 && !b.quiet {
		fmt.Fprintf(b.env.Stderr, "warning: no chapters in %s%s\n", sourceDirName(b.cfg), hints.ForNoChapters(b.cfg.Input.Pattern))
	}

	result, err := nbbook.CombineAndConvert(ctx, b.buildOptions())
	if err != nil {
		return nil, err
	}

	b.printResult(result, len(chapters), b.env.Now().Sub(start))
	return result, nil
}

// buildOptions maps the configuration onto the library's options.
func (b *builder) buildOptions() nbbook.BuildOptions {
	cfg := b.cfg
	export := nbbook.ExportOptions{
		OutputFile:        cfg.Output.File,
		PDF:               cfg.Output.PDF,
		ExtraPreambleFile: cfg.Latex.Preamble,
		Tags:              tagPolicy(cfg.Tags),
		Title:             cfg.Document.Title,
		Author:            cfg.Document.Author,
		Date:              cfg.Document.Date,
		KeepCombined:      cfg.Output.SaveCombined,
		TemplateName:      cfg.Latex.TemplateName,
	}
	if cfg.Latex.Template != "" {
		if isTemplateFile(cfg.Latex.Template) {
			export.TemplateFile = cfg.Latex.Template
		} else {
			export.TemplateName = cfg.Latex.Template
		}
	}

	return nbbook.BuildOptions{
		SourceDir:      cfg.Input.SourceDir,
		Pattern:        cfg.Input.Pattern,
		Export:         export,
		Engine:         cfg.Latex.Engine,
		Passes:         cfg.Latex.Passes,
		TemplateDir:    cfg.Latex.TemplateDir,
		HighlightStyle: cfg.Latex.HighlightStyle,
		Logger:         b.logger,
		Compiler:       b.env.Compiler,
	}
}

// tagPolicy starts from the default policy and replaces every list the
// configuration sets. An empty list disables that kind of removal.
func tagPolicy(tags config.TagsConfig) *nbbook.TagPolicy {
	policy := nbbook.DefaultTagPolicy()
	if tags.RemoveCell != nil {
		policy.RemoveCellTags = tags.RemoveCell
	}
	if tags.RemoveOutput != nil {
		policy.RemoveAllOutputsTags = tags.RemoveOutput
	}
	if tags.RemoveInput != nil {
		policy.RemoveInputTags = tags.RemoveInput
	}
	if tags.RemoveSingleOutput != nil {
		policy.RemoveSingleOutputTags = tags.RemoveSingleOutput
	}
	return &policy
}

// printResult lists written files on stdout unless quiet.
func (b *builder) printResult(r *nbbook.ExportResult, chapters int, elapsed time.Duration) {
	b.logger.Info("book built",
		logfields.Count(chapters),
		logfields.Pages(r.Pages),
		logfields.DurationMS(elapsed.Milliseconds()),
	)
	if b.quiet {
		return
	}

	w := b.env.Stdout
	switch {
	case r.PDFPath != "" && r.Pages > 0:
		fmt.Fprintf(w, "wrote %s (%d chapters, %d pages)\n", r.PDFPath, chapters, r.Pages)
	case r.PDFPath != "":
		fmt.Fprintf(w, "wrote %s (%d chapters)\n", r.PDFPath, chapters)
	default:
		fmt.Fprintf(w, "wrote %s (%d chapters)\n", r.TexPath, chapters)
	}
	if r.NotebookPath != "" {
		fmt.Fprintf(w, "wrote %s\n", r.NotebookPath)
	}
	if b.verbose {
		for _, res := range r.Resources {
			fmt.Fprintf(w, "  resource %s\n", res)
		}
		fmt.Fprintf(w, "done in %s\n", elapsed.Round(time.Millisecond))
	}
}

func sourceDirName(cfg *config.Config) string {
	if cfg.Input.SourceDir == "" {
		return "."
	}
	return filepath.Clean(cfg.Input.SourceDir)
}
