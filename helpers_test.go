package nbbook

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-nbbook/internal/fileutil"
	"github.com/alnah/go-nbbook/internal/notebook"
)

// writeChapter writes a notebook made of cells to dir/name and returns its path.
func writeChapter(t *testing.T, dir, name string, meta notebook.Metadata, cells ...*notebook.Cell) string {
	t.Helper()
	nb := notebook.New()
	if meta != nil {
		nb.Metadata = meta
	}
	nb.Cells = append(nb.Cells, cells...)
	path := filepath.Join(dir, name)
	if err := notebook.WriteFile(path, nb); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func writeText(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func readText(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func taggedCell(c *notebook.Cell, tags ...string) *notebook.Cell {
	list := make([]any, len(tags))
	for i, tag := range tags {
		list[i] = tag
	}
	c.Metadata["tags"] = list
	return c
}

// fakeCompiler writes a placeholder PDF instead of running TeX.
type fakeCompiler struct {
	mu      sync.Mutex
	dirs    []string
	texSeen string
	err     error
	log     string // written as <stem>.log before failing
}

func (f *fakeCompiler) Compile(_ context.Context, dir, texFile string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirs = append(f.dirs, dir)

	data, err := os.ReadFile(filepath.Join(dir, texFile))
	if err != nil {
		return "", err
	}
	f.texSeen = string(data)

	stem := strings.TrimSuffix(texFile, ".tex")
	if f.log != "" {
		_ = os.WriteFile(filepath.Join(dir, stem+".log"), []byte(f.log), 0o644)
	}
	if f.err != nil {
		return "", f.err
	}
	out := filepath.Join(dir, stem+".pdf")
	if err := os.WriteFile(out, []byte("%PDF-1.5\n%fake\n"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (f *fakeCompiler) scratchRemoved(t *testing.T) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.dirs) == 0 {
		t.Fatal("compiler was never called")
	}
	for _, d := range f.dirs {
		if fileutil.DirExists(d) {
			t.Errorf("scratch dir %s survived the export", d)
		}
	}
}
