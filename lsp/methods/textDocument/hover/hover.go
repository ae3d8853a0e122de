// Package hover documents the builtins and design tokens under the cursor.
package hover

import (
	"bytes"
	"strings"
	"text/template"

	"bennypowers.dev/cssdoodle/internal/functions"
	"bennypowers.dev/cssdoodle/internal/position"
	"bennypowers.dev/cssdoodle/internal/property"
	"bennypowers.dev/cssdoodle/internal/selector"
	"bennypowers.dev/cssdoodle/lsp/helpers"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Note: {{.CSSVariableName}} calls the Token.CSSVariableName() method
var tokenHoverTemplate = template.Must(template.New("tokenHover").Parse(`# {{.CSSVariableName}}
{{if .Description}}
{{.Description}}
{{end}}
**Value**: ` + "`{{.Value}}`" + `
{{if .Type}}**Type**: ` + "`{{.Type}}`" + `
{{end}}{{if .FilePath}}
*Defined in: {{.FilePath}}*
{{end}}`))

var builtinHoverTemplate = template.Must(template.New("builtinHover").Parse(`# @{{.Name}}
{{if .Kinds}}
*{{.Kinds}}*
{{end}}{{range .Docs}}
{{.}}
{{end}}`))

var selectorDocs = map[string]string{
	"at":     "Matches the cell at column x, row y.",
	"nth":    "Matches cells by index: a number, `odd`, `even` or `an+b`.",
	"row":    "Matches cells by row: a number, `odd`, `even` or `an+b`.",
	"col":    "Matches cells by column: a number, `odd`, `even` or `an+b`.",
	"x":      "Matches cells by column: a number, `odd`, `even` or `an+b`.",
	"y":      "Matches cells by row: a number, `odd`, `even` or `an+b`.",
	"even":   "Matches cells where x + y is even.",
	"odd":    "Matches cells where x + y is odd.",
	"random": "Matches a random share of cells, half by default.",
	"match":  "Matches cells for which the expression is true.",
	"hover":  "Styles the cell, or a neighbor at an offset, while the cell is hovered.",
}

var propertyDocs = map[string]string{
	"size":    "Width, height and optional aspect ratio. Paper sizes such as `a4 portrait` are accepted.",
	"place":   "Positions the cell absolutely at an x, y point.",
	"grid":    "The grid size and, after `/`, the container size and fill.",
	"gap":     "Space between cells.",
	"seed":    "Seed for the random functions.",
	"shape":   "Clips the cell to a preset or generated polygon.",
	"use":     "Splices rules from custom properties.",
	"content": "Text content of the cell.",
}

type builtinDoc struct {
	Name  string
	Kinds string
	Docs  []string
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// describe documents "@name" as a property, selector or function,
// depending on what follows it in the source.
func describe(name, next string) (builtinDoc, bool) {
	doc := builtinDoc{Name: name}
	var kinds []string
	if strings.HasPrefix(next, ":") && property.Is(name) {
		kinds = append(kinds, "property")
		doc.Docs = append(doc.Docs, propertyDocs[property.Resolve(name)])
	} else {
		if _, ok := selector.Lookup(name); ok {
			kinds = append(kinds, "selector")
			doc.Docs = append(doc.Docs, selectorDocs[name])
		}
		if b, ok := functions.Lookup(name); ok {
			kinds = append(kinds, "function")
			if b.Doc != "" {
				doc.Docs = append(doc.Docs, b.Doc)
			}
			if resolved := functions.Resolve(name); resolved != name {
				doc.Docs = append(doc.Docs, "Alias of `@"+resolved+"`.")
			}
		}
	}
	if len(kinds) == 0 {
		return doc, false
	}
	doc.Kinds = strings.Join(kinds, ", ")
	return doc, true
}

// Hover handles the textDocument/hover request
func Hover(req *types.RequestContext, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := req.Server.Document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	content := doc.Content()
	offset, ok := position.Offset(content, params.Position.Line, params.Position.Character)
	if !ok {
		return nil, nil
	}
	if _, inside := helpers.At(helpers.Spans(doc), offset); !inside {
		return nil, nil
	}

	start, end := helpers.WordAt(content, offset)
	word := content[start:end]
	var text string
	var err error
	switch {
	case strings.HasPrefix(word, "--"):
		token := req.Server.TokenManager().Get(word)
		if token == nil {
			return nil, nil
		}
		text, err = render(tokenHoverTemplate, token)
	case strings.HasPrefix(word, "@") && len(word) > 1:
		d, found := describe(word[1:], strings.TrimLeft(content[end:], " \t"))
		if !found {
			return nil, nil
		}
		text, err = render(builtinHoverTemplate, d)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	r := helpers.Range(content, start, end)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
		Range: &r,
	}, nil
}
