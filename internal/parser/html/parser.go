// Package html finds <css-doodle> elements in HTML documents.
package html

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

// TagName is the doodle element name.
const TagName = "css-doodle"

// Parser handles parsing HTML to extract doodle elements
type Parser struct {
	parser       *sitter.Parser
	elementQuery *sitter.Query
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}

		elementQuery, qerr := sitter.NewQuery(htmlLang, `
			(element
				(start_tag (tag_name) @tag)
				(#eq? @tag "`+TagName+`")) @element
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile element query: %v", qerr))
		}

		return &Parser{
			parser:       parser,
			elementQuery: elementQuery,
		}
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

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.elementQuery != nil {
		p.elementQuery.Close()
	}
}

// Doodles finds the outermost <css-doodle> elements of an HTML document.
// Doodles nested in another doodle stay part of its content.
func Doodles(source string) []Element {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ParseDoodles(source)
}

// ParseDoodles extracts doodle elements in document order.
func (p *Parser) ParseDoodles(source string) []Element {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var (
		elements []Element
		lastEnd  uint
	)
	matches := cursor.Matches(p.elementQuery, tree.RootNode(), sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var (
			node  sitter.Node
			found bool
			tag   string
		)
		for _, capture := range match.Captures {
			switch p.elementQuery.CaptureNames()[capture.Index] {
			case "element":
				node, found = capture.Node, true
			case "tag":
				tag = string(sourceBytes[capture.Node.StartByte():capture.Node.EndByte()])
			}
		}
		if !found || !strings.EqualFold(tag, TagName) {
			continue
		}
		if len(elements) > 0 && node.StartByte() < lastEnd {
			continue
		}
		if el, ok := element(&node, sourceBytes); ok {
			elements = append(elements, el)
			lastEnd = node.EndByte()
		}
	}
	return elements
}

func element(node *sitter.Node, src []byte) (Element, bool) {
	var start, end *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		switch child := node.Child(i); child.Kind() {
		case "start_tag":
			start = child
		case "end_tag":
			end = child
		}
	}
	if start == nil {
		return Element{}, false
	}
	to := node.EndByte()
	if end != nil {
		to = end.StartByte()
	}
	pos := start.EndPosition()
	return Element{
		Content:    string(src[start.EndByte():to]),
		Attributes: attributes(start, src),
		StartLine:  pos.Row,
		StartCol:   pos.Column,
	}, true
}

func attributes(start *sitter.Node, src []byte) map[string]string {
	attrs := map[string]string{}
	for i := uint(0); i < start.ChildCount(); i++ {
		attr := start.Child(i)
		if attr.Kind() != "attribute" {
			continue
		}
		var name, value string
		for j := uint(0); j < attr.ChildCount(); j++ {
			child := attr.Child(j)
			switch child.Kind() {
			case "attribute_name":
				name = strings.ToLower(string(src[child.StartByte():child.EndByte()]))
			case "attribute_value":
				value = string(src[child.StartByte():child.EndByte()])
			case "quoted_attribute_value":
				value = strings.Trim(string(src[child.StartByte():child.EndByte()]), `"'`)
			}
		}
		if name != "" {
			attrs[name] = value
		}
	}
	return attrs
}
