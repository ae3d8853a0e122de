package tokens

import "strings"

// Token is a design token offered to doodles as a custom property.
type Token struct {
	// Name is the hyphenated token path, e.g. "color-primary".
	Name        string `json:"name"`
	Value       string `json:"$value"`
	Type        string `json:"$type,omitempty"`
	Description string `json:"$description,omitempty"`

	// FilePath is the file this token was loaded from
	FilePath string `json:"-"`

	// Prefix is the CSS variable prefix for this token
	Prefix string `json:"-"`
}

// CSSVariableName returns the CSS custom property name for this token
// e.g., "--color-primary" or "--my-prefix-color-primary"
func (t *Token) CSSVariableName() string {
	name := strings.ReplaceAll(t.Name, ".", "-")
	if t.Prefix != "" {
		prefix := strings.ReplaceAll(t.Prefix, ".", "-")
		return "--" + prefix + "-" + name
	}
	return "--" + name
}
