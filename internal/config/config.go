// Package config loads the YAML configuration of a book build.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/alnah/go-nbbook/internal/fileutil"
	"github.com/alnah/go-nbbook/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config")
)

// Field length limits.
const (
	MaxPathLength    = 4096
	MaxPatternLength = 256
	MaxTitleLength   = 200
	MaxAuthorLength  = 200
	MaxDateLength    = 60
	MaxTagLength     = 100
	MaxTags          = 50
	MaxStyleLength   = 50
)

// Defaults.
const (
	DefaultPattern    = "*-*.ipynb"
	DefaultOutputFile = "combined"
	DefaultEngine     = "xelatex"
	DefaultPasses     = 3
	MaxPasses         = 5
)

// Engines lists the LaTeX engines a build may run.
var Engines = []string{"xelatex", "pdflatex", "lualatex"}

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "NBBOOK_"

// Config holds all configuration for a book build.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Output   OutputConfig   `yaml:"output"`
	Tags     TagsConfig     `yaml:"tags"`
	Latex    LatexConfig    `yaml:"latex"`
	Document DocumentConfig `yaml:"document"`
}

// InputConfig selects the chapter files.
type InputConfig struct {
	SourceDir string `yaml:"sourceDir"` // Empty = current directory
	Pattern   string `yaml:"pattern"`   // Glob on file names
}

// OutputConfig defines what the build writes.
type OutputConfig struct {
	File         string `yaml:"file"`         // Output path; extension is replaced
	PDF          bool   `yaml:"pdf"`          // Compile to PDF instead of keeping .tex
	SaveCombined bool   `yaml:"saveCombined"` // Also write the combined .ipynb
}

// TagsConfig lists the cell tags that remove content. A nil list keeps the
// built-in default; an empty list disables that kind of removal.
type TagsConfig struct {
	RemoveCell         []string `yaml:"removeCell"`
	RemoveOutput       []string `yaml:"removeOutput"`
	RemoveInput        []string `yaml:"removeInput"`
	RemoveSingleOutput []string `yaml:"removeSingleOutput"`
}

// LatexConfig defines templating and compilation.
type LatexConfig struct {
	Template       string `yaml:"template"`       // Template file; empty = TemplateName
	TemplateDir    string `yaml:"templateDir"`    // Searched before the embedded templates
	TemplateName   string `yaml:"templateName"`   // Default: "article"
	Preamble       string `yaml:"preamble"`       // File appended to the template header
	Engine         string `yaml:"engine"`         // xelatex, pdflatex or lualatex
	Passes         int    `yaml:"passes"`         // Engine runs; 0 = default
	HighlightStyle string `yaml:"highlightStyle"` // chroma style name
}

// DocumentConfig holds title page metadata.
type DocumentConfig struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Date   string `yaml:"date"` // Literal, "auto" or "auto:FORMAT"
}

// Validate checks values and field lengths. Called by LoadConfig, and by the
// CLI once flags and environment have been applied.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"input.sourceDir", c.Input.SourceDir, MaxPathLength},
		{"input.pattern", c.Input.Pattern, MaxPatternLength},
		{"output.file", c.Output.File, MaxPathLength},
		{"latex.template", c.Latex.Template, MaxPathLength},
		{"latex.templateDir", c.Latex.TemplateDir, MaxPathLength},
		{"latex.templateName", c.Latex.TemplateName, MaxStyleLength},
		{"latex.preamble", c.Latex.Preamble, MaxPathLength},
		{"latex.highlightStyle", c.Latex.HighlightStyle, MaxStyleLength},
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.author", c.Document.Author, MaxAuthorLength},
		{"document.date", c.Document.Date, MaxDateLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	tagLists := []struct {
		name string
		tags []string
	}{
		{"tags.removeCell", c.Tags.RemoveCell},
		{"tags.removeOutput", c.Tags.RemoveOutput},
		{"tags.removeInput", c.Tags.RemoveInput},
		{"tags.removeSingleOutput", c.Tags.RemoveSingleOutput},
	}
	for _, l := range tagLists {
		if len(l.tags) > MaxTags {
			return fmt.Errorf("%w: %s: %d tags, max %d", ErrInvalidConfig, l.name, len(l.tags), MaxTags)
		}
		for i, tag := range l.tags {
			if err := validateFieldLength(fmt.Sprintf("%s[%d]", l.name, i), tag, MaxTagLength); err != nil {
				return err
			}
		}
	}

	if c.Input.Pattern != "" {
		if _, err := filepath.Match(c.Input.Pattern, ""); err != nil {
			return fmt.Errorf("%w: input.pattern %q: %v", ErrInvalidConfig, c.Input.Pattern, err)
		}
	}
	if c.Latex.Engine != "" && !slices.Contains(Engines, c.Latex.Engine) {
		return fmt.Errorf("%w: latex.engine %q (must be one of %s)", ErrInvalidConfig, c.Latex.Engine, strings.Join(Engines, ", "))
	}
	if c.Latex.Passes < 0 || c.Latex.Passes > MaxPasses {
		return fmt.Errorf("%w: latex.passes must be between 1 and %d (0 for the default), got %d", ErrInvalidConfig, MaxPasses, c.Latex.Passes)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Input:  InputConfig{SourceDir: "", Pattern: DefaultPattern},
		Output: OutputConfig{File: DefaultOutputFile},
		Latex: LatexConfig{
			Engine: DefaultEngine,
			Passes: DefaultPasses,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overrides fields from NBBOOK_* variables. Lists are comma
// separated; an empty value clears the list.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"SOURCE_DIR", &c.Input.SourceDir},
		{"PATTERN", &c.Input.Pattern},
		{"OUTPUT_FILE", &c.Output.File},
		{"TEMPLATE", &c.Latex.Template},
		{"TEMPLATE_DIR", &c.Latex.TemplateDir},
		{"PREAMBLE", &c.Latex.Preamble},
		{"ENGINE", &c.Latex.Engine},
		{"HIGHLIGHT_STYLE", &c.Latex.HighlightStyle},
		{"TITLE", &c.Document.Title},
		{"AUTHOR", &c.Document.Author},
		{"DATE", &c.Document.Date},
	}
	for _, s := range strs {
		if v, ok := lookup(EnvPrefix + s.key); ok {
			*s.dst = v
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"PDF", &c.Output.PDF},
		{"SAVE_COMBINED", &c.Output.SaveCombined},
	}
	for _, b := range bools {
		if v, ok := lookup(EnvPrefix + b.key); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not a boolean", ErrInvalidConfig, EnvPrefix, b.key, v)
			}
			*b.dst = parsed
		}
	}

	if v, ok := lookup(EnvPrefix + "PASSES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sPASSES=%q is not a number", ErrInvalidConfig, EnvPrefix, v)
		}
		c.Latex.Passes = n
	}

	lists := []struct {
		key string
		dst *[]string
	}{
		{"REMOVE_CELL_TAGS", &c.Tags.RemoveCell},
		{"REMOVE_OUTPUT_TAGS", &c.Tags.RemoveOutput},
		{"REMOVE_INPUT_TAGS", &c.Tags.RemoveInput},
		{"REMOVE_SINGLE_OUTPUT_TAGS", &c.Tags.RemoveSingleOutput},
	}
	for _, l := range lists {
		if v, ok := lookup(EnvPrefix + l.key); ok {
			*l.dst = SplitList(v)
		}
	}
	return nil
}

// SplitList splits a comma separated list, dropping blanks. The result is
// never nil.
func SplitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/nbbook/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "nbbook", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
