package pipeline

import (
	"path/filepath"
	"strings"
)

// ResolveLocalPath makes a relative image path absolute against baseDir, so
// the LaTeX engine finds it from any working directory. The result uses
// forward slashes, which every TeX engine accepts.
//
// Returned unchanged:
//   - URLs (http, https, file, data, protocol-relative) and anchors
//   - absolute paths
//   - paths that would leave baseDir
//   - everything, when baseDir is empty
func ResolveLocalPath(target, baseDir string) string {
	if baseDir == "" || !isRelativePath(target) {
		return target
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		return target
	}
	absPath := filepath.Join(absDir, filepath.FromSlash(target))
	if !isPathUnderDir(absPath, absDir) {
		return target
	}
	return filepath.ToSlash(absPath)
}

// isRelativePath returns true if the path should be resolved.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	if strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://") ||
		strings.HasPrefix(path, "file://") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "attachment:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	if strings.HasPrefix(path, "#") {
		return false
	}

	return !filepath.IsAbs(path) && !strings.HasPrefix(path, "/")
}

// isPathUnderDir checks if absPath is under dir (prevents path traversal).
func isPathUnderDir(absPath, dir string) bool {
	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(dir)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}

	return strings.HasPrefix(cleanPath+string(filepath.Separator), cleanDir)
}
