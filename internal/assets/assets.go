package assets

import (
	"fmt"
	"os"
)

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadTemplate loads and parses a template with the given loader, or the
// embedded templates when loader is nil.
func LoadTemplate(loader AssetLoader, name string) (*Template, error) {
	if loader == nil {
		loader = defaultLoader
	}
	if name == "" {
		name = DefaultTemplateName
	}
	source, err := loader.LoadTemplate(name)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(name, source)
}

// LoadTemplateFile loads and parses the template stored at path. The file
// must carry a template extension and stay within its own directory.
func LoadTemplateFile(path string) (*Template, error) {
	dir, name, err := SplitTemplatePath(path)
	if err != nil {
		return nil, err
	}
	loader, err := NewFilesystemLoader(dir)
	if err != nil {
		return nil, err
	}
	return LoadTemplate(loader, name)
}

// ReadPreamble reads an extra preamble file.
func ReadPreamble(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied preamble path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetRead, err)
	}
	return string(data), nil
}
