package svg

import (
	"bennypowers.dev/cssdoodle/internal/parser"
	"bennypowers.dev/cssdoodle/internal/sublang"
)

// Language is the vector markup language. Wrapper names the root element
// and defaults to svg.
type Language struct {
	Wrapper string
}

var _ sublang.Language = Language{}

func (Language) Name() string { return "svg" }

func (l Language) Compile(source string) (any, error) {
	if l.Wrapper == "" {
		return Parse(source), nil
	}
	return Parse(source, l.Wrapper), nil
}

func (Language) Render(tree any) (string, error) {
	root, ok := tree.(*parser.Block)
	if !ok {
		return "", &sublang.TypeError{Language: "svg", Tree: tree}
	}
	return Render(root), nil
}
