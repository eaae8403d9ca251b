package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	nbbook "github.com/alnah/go-nbbook"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	env := DefaultEnv()

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	code := runMain(ctx, os.Args[1:], env)
	stop()
	os.Exit(code)
}

// runMain parses args, builds the book (once, or on every change with
// --watch) and returns the process exit code.
func runMain(ctx context.Context, args []string, env *Environment) int {
	f, positional, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		printUsage(env.Stderr)
		return ExitUsage
	}
	if f.help {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if f.version {
		fmt.Fprintf(env.Stdout, "nbbook %s\n", Version)
		return ExitSuccess
	}

	cfg, err := resolveConfig(f, positional, env)
	if err != nil {
		return reportError(env, err, "")
	}

	logger := newLogger(env.Stderr, f.common.quiet, f.common.verbose)
	b := &builder{cfg: cfg, env: env, logger: logger, quiet: f.common.quiet, verbose: f.common.verbose}

	if f.watch {
		err = b.watch(ctx)
	} else {
		_, err = b.build(ctx)
	}
	if err != nil {
		return reportError(env, err, cfg.Latex.Engine)
	}
	return ExitSuccess
}

// reportError prints err with its hint and returns the matching exit code.
func reportError(env *Environment, err error, engine string) int {
	if engine == "" {
		engine = nbbook.DefaultEngine
	}
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, engine))
	return exitCodeFor(err)
}
