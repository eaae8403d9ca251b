package main

import (
	"io"
	"os"
	"time"

	nbbook "github.com/alnah/go-nbbook"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Lookup func(key string) (string, bool) // environment variables

	// Compiler replaces the LaTeX engine driver when set.
	Compiler nbbook.Compiler
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Lookup: os.LookupEnv,
	}
}
