package latex

import (
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Resources collects the binary files an export references: extracted
// output images and markdown attachments. Keys are paths relative to the
// output directory, with forward slashes as LaTeX expects.
type Resources struct {
	FilesDir string
	Files    map[string][]byte
}

// NewResources returns an empty set storing files under filesDir.
func NewResources(filesDir string) *Resources {
	return &Resources{FilesDir: filesDir, Files: make(map[string][]byte)}
}

// Add stores data under name and returns the path to reference from the
// document. Clashing names get a numeric suffix before the extension.
func (r *Resources) Add(name string, data []byte) string {
	name = filepath.Base(filepath.FromSlash(name))
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	p := path.Join(r.FilesDir, name)
	for i := 1; ; i++ {
		if _, taken := r.Files[p]; !taken {
			break
		}
		p = path.Join(r.FilesDir, stem+"_"+strconv.Itoa(i)+ext)
	}
	r.Files[p] = data
	return p
}

// Paths returns the stored paths in sorted order.
func (r *Resources) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
