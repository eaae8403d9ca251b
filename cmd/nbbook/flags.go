package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags that control the CLI itself.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// tagFlags holds the repeatable tag removal flags. A flag given at least once
// replaces the configured list.
type tagFlags struct {
	removeCell   []string
	removeOutput []string
	removeInput  []string
}

// documentFlags holds title page flags.
type documentFlags struct {
	title  string
	author string
	date   string
}

// latexFlags holds templating and engine flags.
type latexFlags struct {
	template string
	preamble string
	engine   string
}

// cliFlags holds every flag of the nbbook command.
type cliFlags struct {
	common       commonFlags
	outputFile   string
	pdf          bool
	pattern      string
	saveCombined bool
	watch        bool
	tags         tagFlags
	document     documentFlags
	latex        latexFlags
	help         bool
	version      bool

	// changed reports whether a flag was given on the command line.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addTagFlags adds the tag removal flags to a FlagSet.
func addTagFlags(fs *flag.FlagSet, f *tagFlags) {
	fs.StringArrayVar(&f.removeCell, "remove-cell-tag", nil, "drop cells with this tag (repeatable)")
	fs.StringArrayVar(&f.removeOutput, "remove-output-tag", nil, "drop the outputs of cells with this tag (repeatable)")
	fs.StringArrayVar(&f.removeInput, "remove-input-tag", nil, "hide the source of cells with this tag (repeatable)")
}

// addDocumentFlags adds title page flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "book title (\"\" = notebook metadata)")
	fs.StringVar(&f.author, "author", "", "book author (\"\" = notebook metadata)")
	fs.StringVar(&f.date, "date", "", "date: literal, \"auto\" or \"auto:FORMAT\"")
}

// addLatexFlags adds templating and engine flags to a FlagSet.
func addLatexFlags(fs *flag.FlagSet, f *latexFlags) {
	fs.StringVar(&f.template, "template", "", "template name or file")
	fs.StringVar(&f.preamble, "preamble", "", "LaTeX file appended to the template header")
	fs.StringVar(&f.engine, "engine", "", "LaTeX engine: xelatex, pdflatex, lualatex")
}

// newFlagSet registers every flag of the command on a fresh FlagSet.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("nbbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	fs.StringVarP(&f.outputFile, "output-file", "o", "", "output file; extension becomes .tex or .pdf")
	fs.BoolVar(&f.pdf, "pdf", false, "compile the book to PDF")
	fs.StringVar(&f.pattern, "pattern", "", "glob selecting chapter files")
	fs.BoolVar(&f.saveCombined, "save-combined", false, "also write the combined notebook")
	fs.BoolVar(&f.watch, "watch", false, "rebuild when a chapter changes")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")
	fs.BoolVar(&f.version, "version", false, "show version information")

	addCommonFlags(fs, &f.common)
	addTagFlags(fs, &f.tags)
	addDocumentFlags(fs, &f.document)
	addLatexFlags(fs, &f.latex)

	return fs
}

// parseFlags parses command line arguments (without the program name) and
// returns the positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.changed = fs.Changed
	return f, fs.Args(), nil
}
