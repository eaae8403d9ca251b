package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName checks that a template name is safe for use as a file
// name: not empty, no path separators, no dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
