package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	nbbook "github.com/alnah/go-nbbook"
	"github.com/alnah/go-nbbook/internal/fileutil"
	"github.com/alnah/go-nbbook/internal/logfields"
)

// debounceDelay groups the burst of events an editor produces on save.
const debounceDelay = 300 * time.Millisecond

// watch builds the book, then rebuilds it each time a chapter file of the
// source directory changes, until ctx is canceled. Build failures are
// reported and the watch goes on.
func (b *builder) watch(ctx context.Context) error {
	dir := sourceDirName(b.cfg)
	if !fileutil.DirExists(dir) {
		return fmt.Errorf("watching %s: %w", dir, os.ErrNotExist)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	b.rebuild(ctx)
	return watchLoop(ctx, watcher.Events, watcher.Errors, chapterFilter(b.cfg.Input.Pattern, b.outputPaths()), debounceDelay, func() {
		b.rebuild(ctx)
	}, b.logger)
}

// rebuild runs one build and prints its error instead of returning it.
func (b *builder) rebuild(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := b.build(ctx); err != nil {
		fmt.Fprintf(b.env.Stderr, "error: %v%s\n", err, hintFor(err, b.cfg.Latex.Engine))
	}
	if !b.quiet {
		fmt.Fprintf(b.env.Stdout, "watching %s for changes (Ctrl+C to stop)\n", sourceDirName(b.cfg))
	}
}

// outputPaths lists the files a build writes, so that writing them never
// triggers another build.
func (b *builder) outputPaths() []string {
	out := b.cfg.Output.File
	if out == "" {
		out = nbbook.DefaultOutputFile
	}
	stem := strings.TrimSuffix(out, filepath.Ext(out))
	return []string{stem + ".tex", stem + ".pdf", stem + ".ipynb", stem + ".log"}
}

// watchLoop calls rebuild once no accepted event has arrived for delay.
// Rebuilds run on the loop goroutine, so they never overlap.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, accept func(fsnotify.Event) bool, delay time.Duration, rebuild func(), logger *slog.Logger) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !accept(ev) {
				continue
			}
			logger.Debug("chapter changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(delay)
			} else {
				timer.Reset(delay)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", logfields.Error(err))
		case <-fire:
			fire = nil
			rebuild()
		}
	}
}

// chapterFilter accepts content changes to files matching pattern, except
// editor temporaries and the build's own outputs.
func chapterFilter(pattern string, outputs []string) func(fsnotify.Event) bool {
	if pattern == "" {
		pattern = nbbook.DefaultChapterPattern
	}
	skip := make(map[string]bool, len(outputs))
	for _, p := range outputs {
		if abs, err := filepath.Abs(p); err == nil {
			skip[abs] = true
		}
	}

	return func(ev fsnotify.Event) bool {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
			!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
			return false
		}
		base := filepath.Base(ev.Name)
		if shouldIgnoreFile(base) {
			return false
		}
		if ok, _ := filepath.Match(pattern, base); !ok {
			return false
		}
		if abs, err := filepath.Abs(ev.Name); err == nil && skip[abs] {
			return false
		}
		return true
	}
}

// shouldIgnoreFile returns true for hidden, swap and backup files.
func shouldIgnoreFile(base string) bool {
	return strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")
}
