package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-nbbook/internal/notebook"
)

var fixedNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

// testEnv returns an environment writing to buffers, with vars as the
// only environment variables.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: &stdout,
		Stderr: &stderr,
		Lookup: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
	}
	return env, &stdout, &stderr
}

// writeBook writes one notebook per source into dir, named by key.
func writeBook(t *testing.T, dir string, chapters map[string]string) {
	t.Helper()
	for name, source := range chapters {
		nb := notebook.New()
		nb.Cells = append(nb.Cells, notebook.NewMarkdownCell(source))
		if err := notebook.WriteFile(filepath.Join(dir, name), nb); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func twoChapterBook(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeBook(t, dir, map[string]string{
		"01-intro.ipynb": "# Intro\nSee [the end](02-end.ipynb).",
		"02-end.ipynb":   "# End\nBack to [intro](01-intro.ipynb#top).",
	})
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// stubCompiler writes a placeholder PDF, or fails with err.
type stubCompiler struct {
	err error
}

func (s *stubCompiler) Compile(_ context.Context, dir, texFile string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	out := filepath.Join(dir, strings.TrimSuffix(texFile, ".tex")+".pdf")
	return out, os.WriteFile(out, []byte("%PDF-1.5\n"), 0o644)
}

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
