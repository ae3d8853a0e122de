// Package js finds doodles in JS/TS sources: templates tagged with
// a doodle tag, and <css-doodle> elements in html templates.
package js

import (
	"fmt"
	"slices"
	"sync"

	htmlparser "bennypowers.dev/cssdoodle/internal/parser/html"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Tags are the template tags whose templates hold doodle source.
var Tags = []string{"doodle", "CSSDoodle"}

// Parser handles parsing JS/TS to extract doodles from tagged template literals
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
	genericQuery  *sitter.Query // matches tag<Type>`...` (generic form parsed by JS grammar as binary_expression)
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		// tag<Type>`...` is valid TypeScript, but the JS grammar reads it
		// as two binary expressions.
		genericQuery, qerr := sitter.NewQuery(jsLang, `
			(binary_expression
				left: (binary_expression
					left: (identifier) @tag)
				right: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile generic query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
			genericQuery:  genericQuery,
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
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
	if p.genericQuery != nil {
		p.genericQuery.Close()
	}
}

// Doodles finds the doodles of a JS/TS source with a pooled parser.
func Doodles(source string) []Template {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ParseTemplates(source)
}

// ParseTemplates finds doodle templates, in source order.
func (p *Parser) ParseTemplates(source string) []Template {
	sourceBytes := []byte(source)
	tree := p.parser.Parse(sourceBytes, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	var templates []Template
	for _, query := range []*sitter.Query{p.templateQuery, p.genericQuery} {
		templates = p.runTemplateQuery(query, root, sourceBytes, templates)
	}
	slices.SortStableFunc(templates, func(a, b Template) int {
		return compareStart(a, b)
	})
	return templates
}

func compareStart(a, b Template) int {
	if len(a.Segments) == 0 || len(b.Segments) == 0 {
		return len(a.Segments) - len(b.Segments)
	}
	sa, sb := a.Segments[0], b.Segments[0]
	if sa.StartLine != sb.StartLine {
		return int(sa.StartLine) - int(sb.StartLine) //nolint:gosec // G115: line numbers are bounded by file size
	}
	return int(sa.StartCol) - int(sb.StartCol) //nolint:gosec // G115: columns are bounded by file size
}

// runTemplateQuery executes a single tree-sitter query against the parsed tree,
// appending the doodles it finds to templates.
func (p *Parser) runTemplateQuery(query *sitter.Query, root *sitter.Node, sourceBytes []byte, templates []Template) []Template {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	matches := cursor.Matches(query, root, sourceBytes)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tagName string
		var templateNode sitter.Node
		foundTemplate := false

		for _, capture := range match.Captures {
			switch query.CaptureNames()[capture.Index] {
			case "tag":
				tagName = string(sourceBytes[capture.Node.StartByte():capture.Node.EndByte()])
			case "template":
				templateNode = capture.Node
				foundTemplate = true
			}
		}
		if !foundTemplate {
			continue
		}

		segments := extractSegments(&templateNode, sourceBytes)
		switch {
		case slices.Contains(Tags, tagName):
			if len(segments) > 0 {
				templates = append(templates, Template{Tag: tagName, Segments: segments})
			}
		case tagName == "html":
			templates = append(templates, htmlDoodles(segments)...)
		}
	}
	return templates
}

// htmlDoodles finds <css-doodle> elements in the segments of an html
// template. An element split by a substitution is not found.
func htmlDoodles(segments []Segment) []Template {
	var out []Template
	for _, seg := range segments {
		for _, el := range htmlparser.Doodles(seg.Content) {
			line, col := el.StartLine+seg.StartLine, el.StartCol
			if el.StartLine == 0 {
				col += seg.StartCol
			}
			out = append(out, Template{
				Tag:        "html",
				Segments:   []Segment{{Content: el.Content, StartLine: line, StartCol: col}},
				Attributes: el.Attributes,
			})
		}
	}
	return out
}

// extractSegments splits a template_string node into literal text segments
// (string_fragment nodes), skipping ${...} substitutions
func extractSegments(templateNode *sitter.Node, sourceBytes []byte) []Segment {
	var segments []Segment

	for i := uint(0); i < templateNode.ChildCount(); i++ {
		child := templateNode.Child(i)
		if child.Kind() == "string_fragment" {
			content := string(sourceBytes[child.StartByte():child.EndByte()])
			segments = append(segments, Segment{
				Content:   content,
				StartLine: child.StartPosition().Row,
				StartCol:  child.StartPosition().Column,
			})
		}
	}

	return segments
}
