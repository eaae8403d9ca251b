package assets

// AssetLoader defines the contract for loading LaTeX templates.
type AssetLoader interface {
	// LoadTemplate loads a template source by name (without extension).
	// Returns ErrTemplateNotFound if the template doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadTemplate(name string) (string, error)
}
