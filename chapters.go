package nbbook

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-nbbook/internal/fileutil"
)

// DefaultChapterPattern matches notebooks named like "01-intro.ipynb".
const DefaultChapterPattern = "*-*.ipynb"

// Chapter is one source file of the book.
type Chapter struct {
	Path string
	ID   string // file name without extension; the label and link target
}

// NewChapter returns the chapter stored at path.
func NewChapter(path string) Chapter {
	return Chapter{Path: path, ID: fileutil.Stem(path)}
}

// DiscoverChapters lists the files of sourceDir whose name matches pattern,
// sorted by name. Subdirectories are not searched. An empty sourceDir means
// the current directory and an empty pattern means DefaultChapterPattern.
func DiscoverChapters(sourceDir, pattern string) ([]Chapter, error) {
	if sourceDir == "" {
		sourceDir = "."
	}
	if pattern == "" {
		pattern = DefaultChapterPattern
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("chapter pattern %q: %w", pattern, err)
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}

	chapters := []Chapter{}
	for _, entry := range entries {
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok {
			continue
		}
		path := filepath.Join(sourceDir, entry.Name())
		if entry.IsDir() || !fileutil.FileExists(path) {
			continue
		}
		chapters = append(chapters, NewChapter(path))
	}

	slices.SortFunc(chapters, func(a, b Chapter) int {
		return strings.Compare(filepath.Base(a.Path), filepath.Base(b.Path))
	})
	return chapters, nil
}

// ChapterIDs returns the IDs of chapters in order.
func ChapterIDs(chapters []Chapter) []string {
	ids := make([]string, len(chapters))
	for i, ch := range chapters {
		ids[i] = ch.ID
	}
	return ids
}
