package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-nbbook/internal/config"
)

// ---------------------------------------------------------------------------
// TestParseFlags - Flag parsing
// ---------------------------------------------------------------------------

func TestParseFlags(t *testing.T) {
	t.Parallel()

	f, positional, err := parseFlags([]string{
		"book",
		"--pdf",
		"--remove-cell-tag", "solution",
		"--remove-cell-tag", "draft",
		"--remove-input-tag", "",
		"-c", "team",
		"-v",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}

	if diff := cmp.Diff([]string{"book"}, positional); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if !f.pdf || !f.common.verbose || f.common.config != "team" {
		t.Errorf("flags = %+v", f)
	}
	if diff := cmp.Diff([]string{"solution", "draft"}, f.tags.removeCell); diff != "" {
		t.Errorf("removeCell mismatch (-want +got):\n%s", diff)
	}
	if !f.changed("remove-input-tag") || f.changed("remove-output-tag") {
		t.Error("changed() must report exactly the flags given")
	}
}

func TestParseFlags_Unknown(t *testing.T) {
	t.Parallel()

	if _, _, err := parseFlags([]string{"--bogus"}); err == nil {
		t.Error("parseFlags() expected error for unknown flag")
	}
}

// ---------------------------------------------------------------------------
// TestMergeFlags - Flags override config values
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	base := func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Output.PDF = true
		cfg.Document.Title = "From Config"
		cfg.Tags.RemoveCell = []string{"config-tag"}
		return cfg
	}

	tests := []struct {
		name       string
		args       []string
		modify     func(*config.Config)
		wantSource string
	}{
		{
			name:   "no flags keeps config",
			args:   nil,
			modify: func(*config.Config) {},
		},
		{
			name:       "positional source dir",
			args:       []string{"chapters"},
			modify:     func(*config.Config) {},
			wantSource: "chapters",
		},
		{
			name:   "explicit false overrides config true",
			args:   []string{"--pdf=false"},
			modify: func(c *config.Config) { c.Output.PDF = false },
		},
		{
			name: "strings override",
			args: []string{"--title", "Flag", "--engine", "lualatex", "--pattern", "ch*.ipynb", "-o", "out/book"},
			modify: func(c *config.Config) {
				c.Document.Title = "Flag"
				c.Latex.Engine = "lualatex"
				c.Input.Pattern = "ch*.ipynb"
				c.Output.File = "out/book"
			},
		},
		{
			name:   "tag flag replaces config list",
			args:   []string{"--remove-cell-tag", "solution"},
			modify: func(c *config.Config) { c.Tags.RemoveCell = []string{"solution"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, positional, err := parseFlags(tt.args)
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			got := base()
			mergeFlags(f, positional, got)

			want := base()
			tt.modify(want)
			want.Input.SourceDir = tt.wantSource
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveConfig - Layering and validation
// ---------------------------------------------------------------------------

func TestResolveConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "book.yaml")
	writeText(t, path, "output:\n  file: from-file\ndocument:\n  title: File Title\n  date: auto:long\n")

	f, positional, err := parseFlags([]string{"-c", path, "--title", "Flag Title"})
	if err != nil {
		t.Fatal(err)
	}
	env, _, _ := testEnv(map[string]string{"NBBOOK_OUTPUT_FILE": "from-env"})

	cfg, err := resolveConfig(f, positional, env)
	if err != nil {
		t.Fatalf("resolveConfig() error = %v", err)
	}
	if cfg.Output.File != "from-env" {
		t.Errorf("Output.File = %q, want environment value", cfg.Output.File)
	}
	if cfg.Document.Title != "Flag Title" {
		t.Errorf("Document.Title = %q, want flag value", cfg.Document.Title)
	}
	if cfg.Document.Date != "October 19, 2026" {
		t.Errorf("Document.Date = %q, want resolved auto date", cfg.Document.Date)
	}
}

func TestResolveConfig_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		vars    map[string]string
		wantErr error
	}{
		{"two positionals", []string{"a", "b"}, nil, ErrTooManyArgs},
		{"bad env bool", nil, map[string]string{"NBBOOK_PDF": "maybe"}, config.ErrInvalidConfig},
		{"bad passes", nil, map[string]string{"NBBOOK_PASSES": "9"}, config.ErrInvalidConfig},
		{"bad date", []string{"--date", "auto:"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, positional, err := parseFlags(tt.args)
			if err != nil {
				t.Fatal(err)
			}
			env, _, _ := testEnv(tt.vars)
			_, err = resolveConfig(f, positional, env)
			if err == nil {
				t.Fatal("resolveConfig() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if code := exitCodeFor(err); code != ExitUsage {
				t.Errorf("exitCodeFor(%v) = %d, want %d", err, code, ExitUsage)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTagPolicy - Config lists over the default policy
// ---------------------------------------------------------------------------

func TestTagPolicy(t *testing.T) {
	t.Parallel()

	got := tagPolicy(config.TagsConfig{
		RemoveCell:  []string{"solution"},
		RemoveInput: []string{},
	})

	if diff := cmp.Diff([]string{"solution"}, got.RemoveCellTags); diff != "" {
		t.Errorf("RemoveCellTags mismatch (-want +got):\n%s", diff)
	}
	if len(got.RemoveInputTags) != 0 {
		t.Errorf("RemoveInputTags = %v, an empty list disables removal", got.RemoveInputTags)
	}
	if diff := cmp.Diff([]string{"hidden", "remove_output"}, got.RemoveAllOutputsTags); diff != "" {
		t.Errorf("unset list should keep the default (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// TestIsTemplateFile - Template name or path
// ---------------------------------------------------------------------------

func TestIsTemplateFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"article", false},
		{"book.tex.tmpl", true},
		{"classic.tplx", true},
		{"templates/article", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			if got := isTemplateFile(tt.value); got != tt.want {
				t.Errorf("isTemplateFile(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
