// Package assets provides the LaTeX document templates used for export.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - templates embedded at compile time ("article")
//	    ├── FilesystemLoader  - templates from a directory on disk
//	    └── AssetResolver     - custom directory first, embedded as fallback
//
// # Templates
//
// Templates are text/template files using ((* and *)) as delimiters, so they
// do not clash with TeX braces. A template renders a Document and must define
// a "super_header" template holding the preamble and a "header" block that
// calls it. WithPreamble derives a template whose header is the base header
// followed by extra preamble text.
//
//	{basePath}/
//	└── {name}.tex.tmpl
//
// # Security
//
// Template names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
