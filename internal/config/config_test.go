package config

// Notes:
// - resolveConfigPath's ~/.config/nbbook branch depends on the user's home and
//   is only exercised through the "not found" error listing.
// - Tests that change the working directory are not parallel.
// - ApplyEnv takes a lookup function so tests never touch the process
//   environment.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// ---------------------------------------------------------------------------
// TestDefaultConfig - Built-in values
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Input.Pattern != DefaultPattern {
		t.Errorf("Input.Pattern = %q, want %q", cfg.Input.Pattern, DefaultPattern)
	}
	if cfg.Output.File != DefaultOutputFile {
		t.Errorf("Output.File = %q, want %q", cfg.Output.File, DefaultOutputFile)
	}
	if cfg.Latex.Engine != DefaultEngine {
		t.Errorf("Latex.Engine = %q, want %q", cfg.Latex.Engine, DefaultEngine)
	}
	if cfg.Latex.Passes != DefaultPasses {
		t.Errorf("Latex.Passes = %d, want %d", cfg.Latex.Passes, DefaultPasses)
	}
	if cfg.Tags.RemoveCell != nil {
		t.Errorf("Tags.RemoveCell = %v, want nil (built-in default)", cfg.Tags.RemoveCell)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestValidate - Value and length checks
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults", func(*Config) {}, nil},
		{"pdflatex", func(c *Config) { c.Latex.Engine = "pdflatex" }, nil},
		{"empty engine", func(c *Config) { c.Latex.Engine = "" }, nil},
		{"unknown engine", func(c *Config) { c.Latex.Engine = "tectonic" }, ErrInvalidConfig},
		{"zero passes", func(c *Config) { c.Latex.Passes = 0 }, nil},
		{"max passes", func(c *Config) { c.Latex.Passes = MaxPasses }, nil},
		{"too many passes", func(c *Config) { c.Latex.Passes = MaxPasses + 1 }, ErrInvalidConfig},
		{"negative passes", func(c *Config) { c.Latex.Passes = -1 }, ErrInvalidConfig},
		{"bad pattern", func(c *Config) { c.Input.Pattern = "[" }, ErrInvalidConfig},
		{"title too long", func(c *Config) { c.Document.Title = strings.Repeat("x", MaxTitleLength+1) }, ErrFieldTooLong},
		{"title at limit", func(c *Config) { c.Document.Title = strings.Repeat("x", MaxTitleLength) }, nil},
		{"date too long", func(c *Config) { c.Document.Date = strings.Repeat("x", MaxDateLength+1) }, ErrFieldTooLong},
		{"tag too long", func(c *Config) { c.Tags.RemoveInput = []string{strings.Repeat("t", MaxTagLength+1)} }, ErrFieldTooLong},
		{"too many tags", func(c *Config) { c.Tags.RemoveCell = make([]string, MaxTags+1) }, ErrInvalidConfig},
		{"empty tag list", func(c *Config) { c.Tags.RemoveOutput = []string{} }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ErrorNamesField(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Tags.RemoveSingleOutput = []string{"ok", strings.Repeat("t", MaxTagLength+1)}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "tags.removeSingleOutput[1]") {
		t.Errorf("Validate() error = %v, want it to name tags.removeSingleOutput[1]", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading
// ---------------------------------------------------------------------------

func TestLoadConfig_FilePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, "book.yaml", `
input:
  sourceDir: chapters
output:
  pdf: true
tags:
  removeCell: [solution]
  removeOutput: []
latex:
  engine: lualatex
document:
  title: Intro to Go
  date: auto
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := DefaultConfig()
	want.Input.SourceDir = "chapters"
	want.Output.PDF = true
	want.Tags.RemoveCell = []string{"solution"}
	want.Tags.RemoveOutput = []string{}
	want.Latex.Engine = "lualatex"
	want.Document.Title = "Intro to Go"
	want.Document.Date = "auto"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		arg     string
		wantErr error
	}{
		{"empty name", "", ErrEmptyConfigName},
		{"missing file", filepath.Join(dir, "missing.yaml"), ErrConfigNotFound},
		{"unknown field", writeConfig(t, dir, "unknown.yaml", "output:\n  html: true\n"), ErrConfigParse},
		{"syntax error", writeConfig(t, dir, "broken.yaml", "input: [\n"), ErrConfigParse},
		{"invalid engine", writeConfig(t, dir, "engine.yaml", "latex:\n  engine: context\n"), ErrInvalidConfig},
		{"name not found", "nbbook-no-such-config-name", ErrConfigNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadConfig(tt.arg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig(%q) error = %v, want %v", tt.arg, err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_ByNameInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "course.yml", "document:\n  author: Ada\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("course")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Document.Author != "Ada" {
		t.Errorf("Document.Author = %q, want Ada", cfg.Document.Author)
	}
	if cfg.Input.Pattern != DefaultPattern {
		t.Errorf("Input.Pattern = %q, want default kept", cfg.Input.Pattern)
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnv - NBBOOK_* overrides
// ---------------------------------------------------------------------------

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"NBBOOK_SOURCE_DIR":         "src",
		"NBBOOK_ENGINE":             "pdflatex",
		"NBBOOK_PDF":                "true",
		"NBBOOK_PASSES":             "2",
		"NBBOOK_REMOVE_CELL_TAGS":   "hide, draft ,",
		"NBBOOK_REMOVE_OUTPUT_TAGS": "",
		"NBBOOK_DATE":               "auto:YYYY",
		"OTHER_PDF":                 "false",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Input.SourceDir != "src" {
		t.Errorf("SourceDir = %q", cfg.Input.SourceDir)
	}
	if cfg.Latex.Engine != "pdflatex" || cfg.Latex.Passes != 2 {
		t.Errorf("Latex = %+v", cfg.Latex)
	}
	if !cfg.Output.PDF {
		t.Error("Output.PDF = false, want true")
	}
	if diff := cmp.Diff([]string{"hide", "draft"}, cfg.Tags.RemoveCell); diff != "" {
		t.Errorf("RemoveCell mismatch (-want +got):\n%s", diff)
	}
	if cfg.Tags.RemoveOutput == nil || len(cfg.Tags.RemoveOutput) != 0 {
		t.Errorf("RemoveOutput = %#v, want empty non-nil", cfg.Tags.RemoveOutput)
	}
	if cfg.Tags.RemoveInput != nil {
		t.Errorf("RemoveInput = %v, want untouched nil", cfg.Tags.RemoveInput)
	}
	if cfg.Document.Date != "auto:YYYY" {
		t.Errorf("Date = %q", cfg.Document.Date)
	}
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad bool", map[string]string{"NBBOOK_PDF": "maybe"}},
		{"bad passes", map[string]string{"NBBOOK_PASSES": "three"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := DefaultConfig().ApplyEnv(envMap(tt.env))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("ApplyEnv() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{" a , b ,, c ", []string{"a", "b", "c"}},
		{",,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.want, SplitList(tt.in)); diff != "" {
				t.Errorf("SplitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
