// Package completion completes builtin names after "@" and token custom
// properties after "--".
package completion

import (
	"strings"

	"bennypowers.dev/cssdoodle/internal/functions"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/position"
	"bennypowers.dev/cssdoodle/internal/property"
	"bennypowers.dev/cssdoodle/internal/selector"
	"bennypowers.dev/cssdoodle/lsp/helpers"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// TriggerCharacters start a completion request.
var TriggerCharacters = []string{"@", "-"}

// Completion handles the textDocument/completion request
func Completion(req *types.RequestContext, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	pos := params.Position
	log.Debug("Completion requested: %s at line %d, char %d", uri, pos.Line, pos.Character)

	doc := req.Server.Document(uri)
	if doc == nil {
		return nil, nil
	}
	content := doc.Content()
	offset, ok := position.Offset(content, pos.Line, pos.Character)
	if !ok {
		return nil, nil
	}
	if _, inside := helpers.At(helpers.Spans(doc), offset); !inside {
		return nil, nil
	}

	start, end := helpers.WordAt(content, offset)
	prefix := content[start:offset]
	replace := helpers.Range(content, start, end)

	var items []protocol.CompletionItem
	switch {
	case strings.HasPrefix(prefix, "@"):
		items = builtins(prefix[1:], replace)
	case strings.HasPrefix(prefix, "--"):
		items = variables(req.Server, prefix, replace)
	default:
		return nil, nil
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}

func item(label, detail, doc string, kind protocol.CompletionItemKind, replace protocol.Range) protocol.CompletionItem {
	it := protocol.CompletionItem{
		Label:    label,
		Kind:     &kind,
		Detail:   &detail,
		TextEdit: protocol.TextEdit{Range: replace, NewText: label},
	}
	if doc != "" {
		it.Documentation = protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: doc}
	}
	return it
}

func builtins(prefix string, replace protocol.Range) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, name := range property.Names() {
		if strings.HasPrefix(name, prefix) {
			items = append(items, item("@"+name, "property", "", protocol.CompletionItemKindProperty, replace))
		}
	}
	for _, name := range selector.Names() {
		if strings.HasPrefix(name, prefix) {
			items = append(items, item("@"+name, "selector", "", protocol.CompletionItemKindKeyword, replace))
		}
	}
	for _, name := range functions.Names() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		b, _ := functions.Lookup(name)
		detail := "function"
		if resolved := functions.Resolve(name); resolved != name {
			detail = "alias of @" + resolved
		}
		items = append(items, item("@"+name, detail, b.Doc, protocol.CompletionItemKindFunction, replace))
	}
	return items
}

func variables(ctx types.ServerContext, prefix string, replace protocol.Range) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, token := range ctx.TokenManager().GetAll() {
		name := token.CSSVariableName()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		detail := token.Value
		if token.Type != "" {
			detail = token.Type + ": " + token.Value
		}
		items = append(items, item(name, detail, token.Description, protocol.CompletionItemKindVariable, replace))
	}
	return items
}
