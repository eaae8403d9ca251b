package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-nbbook/internal/yamlutil"
)

// yamlFrontMatter is the only front matter format accepted in markdown chapters.
var yamlFrontMatter = frontmatter.NewFormat("---", "---", yamlutil.FrontMatterUnmarshal)

// Sentinel errors for reading chapter sources.
var (
	ErrUnsupportedFormat = errors.New("unsupported notebook format")
	ErrUnsupportedSource = errors.New("unsupported chapter source extension")
)

// Extensions recognised by ReadFile.
const (
	ExtNotebook     = ".ipynb"
	ExtMarkdown     = ".md"
	ExtMarkdownLong = ".markdown"
)

// ReadFile reads a chapter source. Notebooks are decoded from JSON; markdown
// files become a single markdown cell whose YAML front matter, if any, is the
// notebook metadata.
func ReadFile(path string) (*Notebook, error) {
	f, err := os.Open(path) // #nosec G304 -- discovered chapter path
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ExtNotebook:
		return Read(f)
	case ExtMarkdown, ExtMarkdownLong:
		return ReadMarkdown(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, filepath.Ext(path))
	}
}

// Read decodes an nbformat 4 notebook.
func Read(r io.Reader) (*Notebook, error) {
	nb := New()
	dec := json.NewDecoder(r)
	if err := dec.Decode(nb); err != nil {
		return nil, fmt.Errorf("decoding notebook: %w", err)
	}
	if nb.NBFormat != FormatMajor {
		return nil, fmt.Errorf("%w: nbformat %d (want %d)", ErrUnsupportedFormat, nb.NBFormat, FormatMajor)
	}
	if nb.Metadata == nil {
		nb.Metadata = Metadata{}
	}
	cells := nb.Cells[:0]
	for _, c := range nb.Cells {
		if c != nil {
			cells = append(cells, c)
		}
	}
	nb.Cells = cells
	return nb, nil
}

// ReadMarkdown turns a markdown document into a one-cell notebook.
func ReadMarkdown(r io.Reader) (*Notebook, error) {
	var meta map[string]any
	body, err := frontmatter.Parse(r, &meta, yamlFrontMatter)
	if err != nil {
		return nil, fmt.Errorf("parsing front matter: %w", err)
	}

	nb := New()
	nb.Metadata = Metadata(meta).Clone()
	body = bytes.TrimLeft(body, "\r\n")
	if len(bytes.TrimSpace(body)) > 0 {
		nb.Cells = append(nb.Cells, NewMarkdownCell(string(body)))
	}
	return nb, nil
}

// Write encodes nb with the one-space indentation Jupyter uses.
func Write(w io.Writer, nb *Notebook) error {
	data, err := json.MarshalIndent(nb, "", " ")
	if err != nil {
		return fmt.Errorf("encoding notebook: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteFile writes nb to path.
func WriteFile(path string, nb *Notebook) error {
	var buf bytes.Buffer
	if err := Write(&buf, nb); err != nil {
		return err
	}
	// #nosec G306 -- notebooks are meant to be readable
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
