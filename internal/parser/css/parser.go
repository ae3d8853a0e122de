// Package css inspects compiled stylesheets with tree-sitter: the
// declarations they make, the custom properties they reference and the
// syntax errors the grammar recovered from.
package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser wraps a tree-sitter CSS parser.
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close releases the tree-sitter parser.
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Inspect parses source with a pooled parser.
func Inspect(source string) (*Report, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Parse(source)
}

// Parse parses a stylesheet.
func (p *Parser) Parse(source string) (*Report, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	report := &Report{}
	p.walk(tree.RootNode(), src, "", report)
	return report, nil
}

func (p *Parser) walk(node *sitter.Node, src []byte, selector string, report *Report) {
	if node == nil {
		return
	}
	switch {
	case node.IsMissing():
		report.Problems = append(report.Problems, Problem{
			Message: "missing " + node.Kind(),
			Range:   rangeOf(node),
		})
		return
	case node.IsError():
		report.Problems = append(report.Problems, Problem{
			Message: "unexpected " + snippet(text(node, src)),
			Range:   rangeOf(node),
		})
	}

	switch node.Kind() {
	case "rule_set":
		if s := firstChild(node, "selectors"); s != nil {
			selector = text(s, src)
		}
	case "declaration":
		p.declaration(node, src, selector, report)
	case "call_expression":
		p.call(node, src, report)
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		p.walk(node.Child(i), src, selector, report)
	}
}

func (p *Parser) declaration(node *sitter.Node, src []byte, selector string, report *Report) {
	var property string
	var values []string
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			property = text(child, src)
		case ":", ";", "important":
		default:
			if property != "" {
				values = append(values, strings.TrimSpace(text(child, src)))
			}
		}
	}
	if property == "" {
		return
	}
	report.Declarations = append(report.Declarations, &Declaration{
		Selector: selector,
		Property: property,
		Value:    strings.Join(values, " "),
		Range:    rangeOf(node),
	})
}

func (p *Parser) call(node *sitter.Node, src []byte, report *Report) {
	name := firstChild(node, "function_name")
	args := firstChild(node, "arguments")
	if name == nil || args == nil || text(name, src) != "var" {
		return
	}
	vc := &VarCall{Range: rangeOf(node)}
	n := 0
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		switch child.Kind() {
		case "(", ")", ",":
			continue
		}
		value := strings.TrimSpace(text(child, src))
		switch n {
		case 0:
			vc.Name = value
		case 1:
			vc.Fallback = &value
		}
		n++
	}
	if vc.Name != "" {
		report.VarCalls = append(report.VarCalls, vc)
	}
}

func firstChild(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child.Kind() == kind {
			return child
		}
	}
	return nil
}

func text(node *sitter.Node, src []byte) string {
	return string(src[node.StartByte():node.EndByte()])
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 24 {
		s = s[:24] + "..."
	}
	return fmt.Sprintf("%q", s)
}

func rangeOf(node *sitter.Node) Range {
	start, end := node.StartPosition(), node.EndPosition()
	return Range{
		Start: Position{Line: uint32(start.Row), Character: uint32(start.Column)}, //nolint:gosec // G115: tree-sitter positions are bounded by file size
		End:   Position{Line: uint32(end.Row), Character: uint32(end.Column)},     //nolint:gosec // G115: tree-sitter positions are bounded by file size
	}
}
