package main

import (
	"errors"
	"os"
	"path/filepath"

	nbbook "github.com/alnah/go-nbbook"
	"github.com/alnah/go-nbbook/internal/config"
	"github.com/alnah/go-nbbook/internal/dateutil"
	"github.com/alnah/go-nbbook/internal/hints"
	"github.com/alnah/go-nbbook/internal/notebook"
)

// Exit codes for the nbbook CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Book built
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, template or pattern
	ExitIO       = 3 // Chapter or output file problems
	ExitNoHeader = 4 // A chapter does not start with a title
	ExitLatex    = 5 // LaTeX engine missing or compilation failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, nbbook.ErrNoHeader) {
		return ExitNoHeader
	}

	if errors.Is(err, nbbook.ErrEngineNotFound) ||
		errors.Is(err, nbbook.ErrCompile) {
		return ExitLatex
	}

	// Checked before I/O: a missing template or config file is a usage problem.
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, filepath.ErrBadPattern) ||
		errors.Is(err, nbbook.ErrTemplate) ||
		errors.Is(err, ErrTooManyArgs) {
		return ExitUsage
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, nbbook.ErrReadChapter) ||
		errors.Is(err, nbbook.ErrWriteOutput) ||
		errors.Is(err, notebook.ErrUnsupportedFormat) {
		return ExitIO
	}

	return ExitGeneral
}

// hintFor returns the actionable hint matching err, or "". engine names the
// configured LaTeX engine.
func hintFor(err error, engine string) string {
	var (
		noHeader *nbbook.NoHeaderError
		compile  *nbbook.CompileError
	)
	switch {
	case errors.As(err, &noHeader):
		return hints.ForNoHeader()
	case errors.As(err, &compile):
		return hints.ForCompile(compile.LogPath)
	case errors.Is(err, nbbook.ErrEngineNotFound):
		return hints.ForEngineNotFound(engine)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(userConfigPaths())
	case errors.Is(err, nbbook.ErrTemplate):
		return hints.ForTemplateNotFound(nbbook.TemplateNames())
	case errors.Is(err, nbbook.ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}

// userConfigPaths lists where a named config is looked up in the user
// config directory.
func userConfigPaths() []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "nbbook", "config.yaml")}
}
