// Package pipeline holds the notebook transformation stages that run before
// and during LaTeX serialization:
//   - text filters, composed into an explicitly ordered FilterChain
//   - markdown preprocessing (line endings, Unicode NFC, math protection)
//   - tag-based removal of cells, inputs and outputs
//
// Rendering to LaTeX lives in internal/latex; this package only prepares
// the content it consumes.
package pipeline
