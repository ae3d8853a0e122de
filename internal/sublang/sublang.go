// Package sublang defines the contract between the composer and the
// embedded languages (vector markup, shaders, patterns).
package sublang

import "fmt"

// Language compiles source to a tree and renders the tree to text.
type Language interface {
	Name() string
	Compile(source string) (any, error)
	Render(tree any) (string, error)
}

// Run compiles and renders source in one step.
func Run(l Language, source string) (string, error) {
	tree, err := l.Compile(source)
	if err != nil {
		return "", fmt.Errorf("compile %s: %w", l.Name(), err)
	}
	out, err := l.Render(tree)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", l.Name(), err)
	}
	return out, nil
}

// TypeError reports a tree handed to the wrong language.
type TypeError struct {
	Language string
	Tree     any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s: unexpected tree %T", e.Language, e.Tree)
}
