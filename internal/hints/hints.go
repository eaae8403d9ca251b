// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-nbbook/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForEngineNotFound returns hints for a LaTeX engine missing from PATH.
// Inside containers and CI it points at the TeX Live packages to install.
func ForEngineNotFound(engine string) string {
	var hints []string

	inCI := os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != ""

	if inCI || IsInContainer() {
		hints = append(hints, "install texlive-xetex and texlive-latex-extra in the image")
	} else {
		hints = append(hints, "install TeX Live or MiKTeX and make sure "+engine+" is on PATH")
	}
	hints = append(hints, "or drop --pdf to keep the .tex output")

	return formatHints(hints)
}

// ForCompile returns a hint for a failed LaTeX run.
func ForCompile(logPath string) string {
	if logPath == "" {
		return format("rerun with --verbose to see the engine output")
	}
	return format("see " + logPath + " for the full engine log")
}

// ForNoHeader explains what the first cell of a chapter must look like.
func ForNoHeader() string {
	return format(`start the chapter's first markdown cell with "# Title" or a "===" underlined title`)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/nbbook/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/nbbook") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForTemplateNotFound lists the templates that can be used instead.
func ForTemplateNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForNoChapters returns a hint when discovery matched nothing.
func ForNoChapters(pattern string) string {
	return format("no file matched " + pattern + "; chapters are named like 01-intro.ipynb")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
