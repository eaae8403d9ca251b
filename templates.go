package nbbook

import (
	"fmt"

	"github.com/alnah/go-nbbook/internal/assets"
)

// DefaultTemplate is the name of the built-in document template.
const DefaultTemplate = assets.DefaultTemplateName

// TemplateLoader loads document template sources by name.
// Implementations may read from a directory, an embed.FS, a database, etc.
type TemplateLoader interface {
	// LoadTemplate returns the template source for name (without extension).
	LoadTemplate(name string) (string, error)
}

// NewTemplateLoader returns a loader reading <name>.tex.tmpl (or
// <name>.tplx) from dir, falling back to the built-in templates. An empty
// dir uses only the built-in templates.
func NewTemplateLoader(dir string) (TemplateLoader, error) {
	resolver, err := assets.NewAssetResolver(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	return resolver, nil
}

// TemplateNames lists the built-in template names.
func TemplateNames() []string {
	return assets.EmbeddedNames()
}
