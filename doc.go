// Package nbbook assembles a directory of chapter notebooks into one book
// and exports it as LaTeX or a compiled PDF.
//
// # Quick Start
//
// Discover, combine and export in one call:
//
//	result, err := nbbook.CombineAndConvert(ctx, nbbook.BuildOptions{
//	    SourceDir: "book",
//	    Export: nbbook.ExportOptions{
//	        OutputFile: "out/book",
//	        PDF:        true,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.PDFPath, result.Pages)
//
// # Pipeline
//
// A build runs these stages in order, on a single goroutine:
//
//  1. Discovery: files matching the pattern (default "*-*.ipynb") are sorted
//     by name. The name order is the chapter order.
//  2. Combination: the first cell of every chapter must start with a level 1
//     heading. A \label{sec:<chapter>} raw cell is inserted right after it,
//     and the rest of the chapter is appended unchanged.
//  3. Tag filtering: cells tagged "hidden", "remove_cell", "remove_input" or
//     "remove_output" (configurable) lose the cell, its source or its outputs.
//  4. Rendering: markdown cells go through the normalize, markdown2latex and
//     resolve_references filters. Links to another chapter's file become
//     "Section \ref{sec:<chapter>}".
//  5. Output: the document template is filled and written as <stem>.tex with
//     images under <stem>_files/, or compiled to <stem>.pdf.
//
// # Templates
//
// Templates are text/template files using ((* and *)) as delimiters. A
// template must define a "super_header" template and a "header" block; an
// extra preamble file is appended after the base header without copying the
// template. See internal/assets/templates/article.tex.tmpl for the built-in
// layout.
//
// # Errors
//
// A chapter without a heading fails the build with a *NoHeaderError naming
// the file. Other failures wrap ErrReadChapter, ErrTemplate, ErrRender,
// ErrWriteOutput, ErrCompile or ErrEngineNotFound.
package nbbook
