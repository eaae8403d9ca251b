package main

import (
	"io"
	"log/slog"
)

// newLogger returns the CLI's text logger: Info by default, Debug with
// --verbose, Error with --quiet.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
