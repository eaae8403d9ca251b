package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateParse indicates a template is not valid text/template syntax.
	ErrTemplateParse = errors.New("invalid template")

	// ErrTemplateRender indicates executing a template failed.
	ErrTemplateRender = errors.New("template rendering failed")

	// ErrNoHeaderBlock indicates a template cannot take extra preamble
	// because it lacks the "super_header" template.
	ErrNoHeaderBlock = errors.New("template has no super_header block")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
