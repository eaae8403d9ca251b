package pipeline

import (
	"fmt"

	"github.com/alnah/go-nbbook/internal/notebook"
)

// TextFilter is a named text transformation applied while serializing a
// fragment of the document.
type TextFilter struct {
	Name  string
	Apply func(text string) (string, error)
}

// Pure wraps an infallible transformation as a TextFilter.
func Pure(name string, fn func(string) string) TextFilter {
	return TextFilter{
		Name:  name,
		Apply: func(s string) (string, error) { return fn(s), nil },
	}
}

// FilterChain applies its filters in declaration order.
type FilterChain []TextFilter

// Run passes text through every filter. The first failure stops the chain
// and is reported with the filter's name.
func (c FilterChain) Run(text string) (string, error) {
	for _, f := range c {
		out, err := f.Apply(text)
		if err != nil {
			return "", fmt.Errorf("filter %s: %w", f.Name, err)
		}
		text = out
	}
	return text, nil
}

// Names lists the filter names in application order.
func (c FilterChain) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.Name
	}
	return names
}

// Preprocessor transforms a whole notebook before serialization.
// Implementations must not modify their input.
type Preprocessor interface {
	Name() string
	Preprocess(nb *notebook.Notebook) (*notebook.Notebook, error)
}
