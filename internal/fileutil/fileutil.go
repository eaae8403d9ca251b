// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrPrefixEmpty       = errors.New("scratch directory prefix cannot be empty")
	ErrPrefixInvalid     = errors.New("prefix contains path separator or null byte")
	ErrNameOutsideTarget = errors.New("file name escapes target directory")
)

// ScratchDir creates a temporary working directory. The returned cleanup
// removes it and everything inside; it is safe to call more than once.
func ScratchDir(prefix string) (dir string, cleanup func(), err error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", nil, err
	}

	dir, err = os.MkdirTemp("", prefix+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// ValidatePrefix checks that a prefix is safe for use in temp directory names.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return ErrPrefixEmpty
	}
	if strings.ContainsAny(prefix, "/\\\x00") {
		return ErrPrefixInvalid
	}
	return nil
}

// WriteFiles writes files under dir, creating parent directories as needed.
// Names are slash separated and must stay inside dir.
func WriteFiles(dir string, files map[string][]byte) error {
	for name, data := range files {
		target, err := Within(dir, name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return fmt.Errorf("creating directory for %s: %w", name, err)
		}
		// #nosec G306 -- exported resources are meant to be readable
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// Within joins a slash separated name onto dir and rejects results outside it.
func Within(dir, name string) (string, error) {
	if name == "" || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", ErrNameOutsideTarget, name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrNameOutsideTarget, name)
	}
	return target, nil
}

// CopyFile copies src to dst, replacing dst if it exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- caller-controlled build artifact
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) // #nosec G304 -- caller-controlled output path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

// Stem returns the base name of path without its extension.
//
// Examples:
//   - "book/01-intro.ipynb" -> "01-intro"
//   - "combined" -> "combined"
//   - "archive.tar.gz" -> "archive.tar"
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "course" -> false (name)
//   - "./book.yaml" -> true (relative path)
//   - "/etc/nbbook/book.yaml" -> true (absolute)
//   - "C:\books\book.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
