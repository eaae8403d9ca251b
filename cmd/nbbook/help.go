package main

import (
	"fmt"
	"io"
)

// printUsage prints the command's usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbbook [flags] [source_dir]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Combine chapter notebooks into one book and export it to LaTeX or PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  source_dir    Directory holding the chapters (default: current directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --pattern <glob>           Chapter files (default: *-*.ipynb)")
	fmt.Fprintln(w, "  -o, --output-file <path>       Output file (default: combined)")
	fmt.Fprintln(w, "      --pdf                      Compile to PDF instead of writing .tex")
	fmt.Fprintln(w, "      --save-combined            Also write the combined notebook")
	fmt.Fprintln(w, "      --watch                    Rebuild when a chapter changes")
	fmt.Fprintln(w, "  -c, --config <name>            Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tags (repeatable, replace the defaults):")
	fmt.Fprintln(w, "      --remove-cell-tag <tag>    Drop tagged cells (default: hidden, remove_cell)")
	fmt.Fprintln(w, "      --remove-output-tag <tag>  Drop outputs (default: hidden, remove_output)")
	fmt.Fprintln(w, "      --remove-input-tag <tag>   Hide source (default: hidden, remove_input)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Document:")
	fmt.Fprintln(w, "      --title <s>                Book title (default: notebook metadata)")
	fmt.Fprintln(w, "      --author <s>               Book author (default: notebook metadata)")
	fmt.Fprintln(w, "      --date <s>                 Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                                 Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D, dddd, ddd")
	fmt.Fprintln(w, "                                 Presets: iso, european, us, long, full, month")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "LaTeX:")
	fmt.Fprintln(w, "      --template <name|path>     Template name or .tex.tmpl/.tplx file")
	fmt.Fprintln(w, "      --preamble <path>          File appended to the template header")
	fmt.Fprintln(w, "      --engine <s>               xelatex (default), pdflatex, lualatex")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                    Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                  Show debug logs and timing")
	fmt.Fprintln(w, "      --version                  Show version information")
	fmt.Fprintln(w, "  -h, --help                     Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 error, 2 usage, 3 I/O, 4 chapter without title, 5 LaTeX")
}
