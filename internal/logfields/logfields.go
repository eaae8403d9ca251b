// Package logfields holds canonical log attribute names so every package
// logs the same keys for the same things.
package logfields

import "log/slog"

const (
	KeyChapter    = "chapter"
	KeyCell       = "cell"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyStage      = "stage"
	KeyFilter     = "filter"
	KeyEngine     = "engine"
	KeyPass       = "pass"
	KeyPages      = "pages"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Chapter(id string) slog.Attr   { return slog.String(KeyChapter, id) }
func Cell(index int) slog.Attr      { return slog.Int(KeyCell, index) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr   { return slog.String(KeyStage, name) }
func Filter(name string) slog.Attr  { return slog.String(KeyFilter, name) }
func Engine(name string) slog.Attr  { return slog.String(KeyEngine, name) }
func Pass(n int) slog.Attr          { return slog.Int(KeyPass, n) }
func Pages(n int) slog.Attr         { return slog.Int(KeyPages, n) }
func DurationMS(ms int64) slog.Attr { return slog.Int64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
