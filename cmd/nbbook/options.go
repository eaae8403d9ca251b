package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-nbbook/internal/config"
	"github.com/alnah/go-nbbook/internal/dateutil"
	"github.com/alnah/go-nbbook/internal/fileutil"
)

// ErrTooManyArgs is returned when more than one source directory is given.
var ErrTooManyArgs = errors.New("too many arguments")

// resolveConfig layers defaults, the config file, NBBOOK_* variables and
// flags, in that order, and validates the result. The "auto" date is
// resolved once here so every rebuild of a watch session agrees.
func resolveConfig(f *cliFlags, positional []string, env *Environment) (*config.Config, error) {
	if len(positional) > 1 {
		return nil, fmt.Errorf("%w: expected at most one source directory, got %s", ErrTooManyArgs, strings.Join(positional, " "))
	}

	cfg := config.DefaultConfig()
	if f.common.config != "" {
		loaded, err := config.LoadConfig(f.common.config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(env.Lookup); err != nil {
		return nil, err
	}
	mergeFlags(f, positional, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	date, err := dateutil.Resolve(cfg.Document.Date, env.Now())
	if err != nil {
		return nil, fmt.Errorf("document.date: %w", err)
	}
	cfg.Document.Date = date

	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(f *cliFlags, positional []string, cfg *config.Config) {
	if len(positional) == 1 {
		cfg.Input.SourceDir = positional[0]
	}
	if f.pattern != "" {
		cfg.Input.Pattern = f.pattern
	}

	if f.outputFile != "" {
		cfg.Output.File = f.outputFile
	}
	if f.changed("pdf") {
		cfg.Output.PDF = f.pdf
	}
	if f.changed("save-combined") {
		cfg.Output.SaveCombined = f.saveCombined
	}

	if f.changed("remove-cell-tag") {
		cfg.Tags.RemoveCell = f.tags.removeCell
	}
	if f.changed("remove-output-tag") {
		cfg.Tags.RemoveOutput = f.tags.removeOutput
	}
	if f.changed("remove-input-tag") {
		cfg.Tags.RemoveInput = f.tags.removeInput
	}

	if f.document.title != "" {
		cfg.Document.Title = f.document.title
	}
	if f.document.author != "" {
		cfg.Document.Author = f.document.author
	}
	if f.document.date != "" {
		cfg.Document.Date = f.document.date
	}

	if f.latex.template != "" {
		cfg.Latex.Template = f.latex.template
	}
	if f.latex.preamble != "" {
		cfg.Latex.Preamble = f.latex.preamble
	}
	if f.latex.engine != "" {
		cfg.Latex.Engine = f.latex.engine
	}
}

// isTemplateFile reports whether a --template value names a file rather
// than a template known to the loader.
func isTemplateFile(value string) bool {
	return fileutil.IsFilePath(value) ||
		strings.HasSuffix(value, ".tex.tmpl") ||
		strings.HasSuffix(value, ".tplx") ||
		fileutil.FileExists(value)
}
