package nbbook

import (
	"errors"
	"fmt"
)

// Sentinel errors for library operations.
var (
	ErrNoHeader    = errors.New("first cell has no chapter heading")
	ErrReadChapter = errors.New("failed to read chapter")
	ErrNilDocument = errors.New("combined document cannot be nil")
	ErrRender      = errors.New("failed to render document")
	ErrTemplate    = errors.New("template error")
	ErrWriteOutput = errors.New("failed to write output")

	// LaTeX toolchain errors.
	ErrCompile        = errors.New("LaTeX compilation failed")
	ErrEngineNotFound = errors.New("LaTeX engine not found")
)

// NoHeaderError reports a chapter whose first cell does not start with a
// level 1 heading. It matches ErrNoHeader.
type NoHeaderError struct {
	Chapter string // chapter ID
	Path    string // chapter file, empty when unknown
}

func (e *NoHeaderError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("chapter %s: %v", e.Chapter, ErrNoHeader)
	}
	return fmt.Sprintf("failed to find header in %s: %v", e.Path, ErrNoHeader)
}

func (e *NoHeaderError) Unwrap() error { return ErrNoHeader }

// CompileError reports a failed engine run. It matches ErrCompile.
type CompileError struct {
	Engine  string
	Pass    int
	Message string // first "!" line of the engine output, if any
	LogPath string // engine log kept next to the output, if any
	Err     error  // process error
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("%v: %s pass %d", ErrCompile, e.Engine, e.Pass)
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompile}
	}
	return []error{ErrCompile, e.Err}
}
