package content

import (
	"fmt"
	"regexp"
)

var codenameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)

// Type describes one class of content entry (immutable value object).
// Identity is the codename assigned by the delivery API.
type Type struct {
	codename string
	name     string
}

// NewType validates and creates a content Type.
// Codename: ^[a-z0-9_]+$, required. Name is display-only and may be empty.
func NewType(codename, name string) (Type, error) {
	if codename == "" {
		return Type{}, fmt.Errorf("content type codename is required")
	}
	if !codenameRegex.MatchString(codename) {
		return Type{}, fmt.Errorf("content type codename %q must be lowercase alphanumeric with underscores", codename)
	}
	return Type{codename: codename, name: name}, nil
}

// Codename returns the content type codename.
func (t Type) Codename() string { return t.codename }

// Name returns the display name.
func (t Type) Name() string { return t.name }
