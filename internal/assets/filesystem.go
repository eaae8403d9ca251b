package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Template file extensions, in lookup order.
const (
	TemplateExt       = ".tex.tmpl"
	LegacyTemplateExt = ".tplx"
)

var templateExts = []string{TemplateExt, LegacyTemplateExt}

// FilesystemLoader loads templates from a directory on the filesystem.
type FilesystemLoader struct {
	basePath string
}

// NewFilesystemLoader creates a FilesystemLoader for the given base path.
// Returns ErrInvalidBasePath if the path is not a valid, readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	// Containment checks compare resolved paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}

	return &FilesystemLoader{basePath: absPath}, nil
}

// LoadTemplate loads {basePath}/{name}.tex.tmpl, or {name}.tplx when the
// first is absent.
func (f *FilesystemLoader) LoadTemplate(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	for _, ext := range templateExts {
		filePath := filepath.Join(f.basePath, name+ext)
		if err := f.verifyPathContainment(filePath); err != nil {
			return "", err
		}

		content, err := os.ReadFile(filePath) // #nosec G304 -- path validated above
		if err == nil {
			return string(content), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
		}
	}
	return "", fmt.Errorf("%w: %q in %s", ErrTemplateNotFound, name, f.basePath)
}

// verifyPathContainment ensures the resolved file path is within basePath,
// following symlinks so a link cannot point outside it.
func (f *FilesystemLoader) verifyPathContainment(filePath string) error {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve path", ErrPathTraversal)
	}

	// A missing file keeps its unresolved path; opening it fails later.
	if realPath, err := filepath.EvalSymlinks(absFilePath); err == nil {
		absFilePath = realPath
	}

	if !strings.HasPrefix(absFilePath, f.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: path escapes base directory", ErrPathTraversal)
	}

	return nil
}

// SplitTemplatePath splits a template file path into the directory to load
// from and the template name.
func SplitTemplatePath(path string) (dir, name string, err error) {
	base := filepath.Base(path)
	for _, ext := range templateExts {
		if stem, ok := strings.CutSuffix(base, ext); ok {
			return filepath.Dir(path), stem, nil
		}
	}
	return "", "", fmt.Errorf("%w: %q must end in %s or %s", ErrInvalidAssetName, base, TemplateExt, LegacyTemplateExt)
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
