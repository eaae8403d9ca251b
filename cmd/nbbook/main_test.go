package main

// Notes:
// - runMain: we test the whole command with a stub compiler, so no TeX
//   installation is needed. The real engine is covered by the library's
//   ExecRunner tests.
// - main itself is not tested: it only wires os.Args, signals and os.Exit.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	nbbook "github.com/alnah/go-nbbook"
)

// ---------------------------------------------------------------------------
// TestRunMain_Latex - Default LaTeX output
// ---------------------------------------------------------------------------

func TestRunMain_Latex(t *testing.T) {
	t.Parallel()

	src := twoChapterBook(t)
	out := filepath.Join(t.TempDir(), "book")
	env, stdout, stderr := testEnv(nil)

	code := runMain(context.Background(), []string{src, "--output-file", out, "--title", "Notes", "--date", "auto:iso"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, stderr)
	}

	tex := readFile(t, out+".tex")
	for _, want := range []string{
		`\title{Notes}`,
		`\date{2026-10-19}`,
		`See Section \ref{sec:02-end}`,
		`Back to Section \ref{sec:01-intro}`,
	} {
		if !strings.Contains(tex, want) {
			t.Errorf("tex missing %q", want)
		}
	}
	if !strings.Contains(stdout.String(), "wrote "+out+".tex (2 chapters)") {
		t.Errorf("stdout = %q", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_PDF - PDF mode with an injected compiler
// ---------------------------------------------------------------------------

func TestRunMain_PDF(t *testing.T) {
	t.Parallel()

	src := twoChapterBook(t)
	outDir := t.TempDir()
	env, stdout, stderr := testEnv(nil)
	env.Compiler = &stubCompiler{}

	code := runMain(context.Background(), []string{src, "-o", filepath.Join(outDir, "book"), "--pdf", "--save-combined"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, stderr)
	}
	for _, name := range []string{"book.pdf", "book.ipynb"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "book.tex")); err == nil {
		t.Error("PDF mode must not leave the .tex next to the output")
	}
	if !strings.Contains(stdout.String(), "book.pdf") {
		t.Errorf("stdout = %q", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Quiet - Quiet mode prints nothing on success
// ---------------------------------------------------------------------------

func TestRunMain_Quiet(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv(nil)
	code := runMain(context.Background(), []string{twoChapterBook(t), "-q", "-o", filepath.Join(t.TempDir(), "b")}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, stderr)
	}
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("quiet run wrote stdout=%q stderr=%q", stdout, stderr)
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_EnvAndFlags - NBBOOK_* variables lose to flags
// ---------------------------------------------------------------------------

func TestRunMain_EnvAndFlags(t *testing.T) {
	t.Parallel()

	src := twoChapterBook(t)
	out := filepath.Join(t.TempDir(), "book")
	env, _, stderr := testEnv(map[string]string{
		"NBBOOK_TITLE":  "From Env",
		"NBBOOK_AUTHOR": "Env Author",
	})

	code := runMain(context.Background(), []string{src, "-o", out, "--author", "Flag Author"}, env)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, stderr:\n%s", code, stderr)
	}
	tex := readFile(t, out+".tex")
	if !strings.Contains(tex, `\title{From Env}`) {
		t.Error("environment title not applied")
	}
	if !strings.Contains(tex, `\author{Flag Author}`) {
		t.Error("flag author should win over the environment")
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_ExitCodes - Failures map to documented exit codes
// ---------------------------------------------------------------------------

func TestRunMain_ExitCodes(t *testing.T) {
	t.Parallel()

	noHeader := t.TempDir()
	writeBook(t, noHeader, map[string]string{
		"01-ok.ipynb":  "# Fine",
		"02-bad.ipynb": "Just prose.",
	})

	tests := []struct {
		name       string
		args       func(out string) []string
		compiler   nbbook.Compiler
		wantCode   int
		wantStderr string
	}{
		{
			name:       "unknown flag",
			args:       func(string) []string { return []string{"--no-such-flag"} },
			wantCode:   ExitUsage,
			wantStderr: "Usage: nbbook",
		},
		{
			name:       "too many arguments",
			args:       func(string) []string { return []string{"a", "b"} },
			wantCode:   ExitUsage,
			wantStderr: "too many arguments",
		},
		{
			name:     "unknown engine",
			args:     func(out string) []string { return []string{twoChapterBook(t), "-o", out, "--engine", "tex"} },
			wantCode: ExitUsage,
		},
		{
			name:     "bad pattern",
			args:     func(out string) []string { return []string{twoChapterBook(t), "-o", out, "--pattern", "["} },
			wantCode: ExitUsage,
		},
		{
			name:       "missing config",
			args:       func(out string) []string { return []string{"-c", filepath.Join(t.TempDir(), "none.yaml"), "-o", out} },
			wantCode:   ExitUsage,
			wantStderr: "hint: use --config",
		},
		{
			name:       "unknown template",
			args:       func(out string) []string { return []string{twoChapterBook(t), "-o", out, "--template", "memoir"} },
			wantCode:   ExitUsage,
			wantStderr: "available: article",
		},
		{
			name:     "missing source directory",
			args:     func(out string) []string { return []string{filepath.Join(t.TempDir(), "missing"), "-o", out} },
			wantCode: ExitIO,
		},
		{
			name:       "chapter without title",
			args:       func(out string) []string { return []string{noHeader, "-o", out} },
			wantCode:   ExitNoHeader,
			wantStderr: "02-bad.ipynb",
		},
		{
			name:       "engine not found",
			args:       func(out string) []string { return []string{twoChapterBook(t), "-o", out, "--pdf"} },
			compiler:   &stubCompiler{err: fmt.Errorf("%w: xelatex", nbbook.ErrEngineNotFound)},
			wantCode:   ExitLatex,
			wantStderr: "drop --pdf",
		},
		{
			name: "compile failure",
			args: func(out string) []string { return []string{twoChapterBook(t), "-o", out, "--pdf"} },
			compiler: &stubCompiler{err: &nbbook.CompileError{
				Engine: "xelatex", Pass: 1, Message: "Undefined control sequence", Err: fmt.Errorf("exit status 1"),
			}},
			wantCode:   ExitLatex,
			wantStderr: "Undefined control sequence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(t.TempDir(), "book")
			env, _, stderr := testEnv(nil)
			env.Compiler = tt.compiler

			if code := runMain(context.Background(), tt.args(out), env); code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d; stderr:\n%s", code, tt.wantCode, stderr)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
			if _, err := os.Stat(out + ".tex"); err == nil {
				t.Error("failed run left a .tex file")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_HelpAndVersion - Informational flags
// ---------------------------------------------------------------------------

func TestRunMain_HelpAndVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--help"}, "Usage: nbbook [flags] [source_dir]"},
		{[]string{"-h"}, "--remove-cell-tag"},
		{[]string{"--version"}, "nbbook " + Version},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			t.Parallel()

			env, stdout, _ := testEnv(nil)
			if code := runMain(context.Background(), tt.args, env); code != ExitSuccess {
				t.Fatalf("runMain(%v) = %d", tt.args, code)
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("stdout missing %q:\n%s", tt.want, stdout)
			}
		})
	}
}
