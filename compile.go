package nbbook

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/alnah/go-nbbook/internal/fileutil"
	"github.com/alnah/go-nbbook/internal/logfields"
	"github.com/alnah/go-nbbook/internal/process"
)

// Engine defaults.
const (
	DefaultEngine = "xelatex"
	DefaultPasses = 3
)

// Compiler turns a .tex file into a PDF.
type Compiler interface {
	// Compile builds texFile, a name relative to dir, and returns the path
	// of the produced PDF.
	Compile(ctx context.Context, dir, texFile string) (string, error)
}

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. Cancelling the context
// kills the whole process group.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- engine name is validated by config
	cmd.Dir = dir
	process.Configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// LatexCompiler runs a TeX engine several times so that cross-references
// and the table of contents settle.
type LatexCompiler struct {
	Engine   string
	Passes   int
	Runner   CommandRunner
	LookPath func(file string) (string, error)
	Logger   *slog.Logger
}

// NewLatexCompiler returns a compiler for engine. Empty engine and
// non-positive passes select the defaults.
func NewLatexCompiler(engine string, passes int) *LatexCompiler {
	return &LatexCompiler{
		Engine:   engine,
		Passes:   passes,
		Runner:   &ExecRunner{},
		LookPath: exec.LookPath,
		Logger:   logfields.Discard(),
	}
}

// Compile runs the engine with -interaction=nonstopmode -halt-on-error in
// dir and returns the path of <stem>.pdf.
func (c *LatexCompiler) Compile(ctx context.Context, dir, texFile string) (string, error) {
	engine := c.Engine
	if engine == "" {
		engine = DefaultEngine
	}
	passes := c.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}
	logger := c.Logger
	if logger == nil {
		logger = logfields.Discard()
	}

	if c.LookPath != nil {
		if _, err := c.LookPath(engine); err != nil {
			return "", fmt.Errorf("%w: %s", ErrEngineNotFound, engine)
		}
	}

	args := []string{"-interaction=nonstopmode", "-halt-on-error", texFile}
	for pass := 1; pass <= passes; pass++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		start := time.Now()
		stdout, stderr, err := c.Runner.Run(ctx, dir, engine, args...)
		logger.Debug("latex pass",
			logfields.Engine(engine),
			logfields.Pass(pass),
			logfields.DurationMS(time.Since(start).Milliseconds()))

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			if errors.Is(err, exec.ErrNotFound) {
				return "", fmt.Errorf("%w: %s", ErrEngineNotFound, engine)
			}
			logger.Debug("engine output", logfields.Engine(engine), slog.String("stdout", stdout), slog.String("stderr", stderr))
			return "", &CompileError{
				Engine:  engine,
				Pass:    pass,
				Message: firstTeXError(stdout),
				Err:     err,
			}
		}
	}

	pdfPath := filepath.Join(dir, fileutil.Stem(texFile)+".pdf")
	if !fileutil.FileExists(pdfPath) {
		return "", &CompileError{Engine: engine, Pass: passes, Message: "engine produced no PDF"}
	}
	return pdfPath, nil
}

// firstTeXError returns the first "! ..." line of TeX output.
func firstTeXError(output string) string {
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, "! ") {
			return strings.TrimPrefix(line, "! ")
		}
	}
	return ""
}

// PageCount returns the number of pages of a PDF file.
func PageCount(path string) (n int, err error) {
	// The PDF reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	return reader.NumPage(), nil
}
