package textDocument_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/lsp/methods/textDocument"
	"bennypowers.dev/cssdoodle/lsp/testutil"
	"bennypowers.dev/cssdoodle/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func open(t *testing.T, req *types.RequestContext, uri, languageID, text string) {
	t.Helper()
	require.NoError(t, textDocument.DidOpen(req, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	}))
}

func TestDidOpen(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	req := types.NewRequestContext(ctx, nil)

	open(t, req, "file:///a.doodle", "cssdoodle", "@grid: 5;")
	require.NotNil(t, ctx.Document("file:///a.doodle"))
	assert.Equal(t, []string{"file:///a.doodle"}, ctx.Published)

	open(t, req, "file:///a.py", "python", "print()")
	assert.Nil(t, ctx.Document("file:///a.py"))
	assert.Len(t, ctx.Published, 1)
}

func TestDidChange(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	req := types.NewRequestContext(ctx, nil)
	open(t, req, "file:///a.doodle", "cssdoodle", "@grid: 5;")

	err := textDocument.DidChange(req, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.doodle"},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEvent{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 7},
				End:   protocol.Position{Line: 0, Character: 8},
			},
			Text: "9",
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "@grid: 9;", ctx.Document("file:///a.doodle").Content())
	assert.Len(t, ctx.Published, 2)

	t.Run("untracked documents are ignored", func(t *testing.T) {
		err := textDocument.DidChange(req, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///a.py"},
				Version:                2,
			},
		})
		assert.NoError(t, err)
	})
}

func TestDidClose(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	var notified []protocol.PublishDiagnosticsParams
	glspCtx := &glsp.Context{Notify: func(method string, params any) {
		if method == protocol.ServerTextDocumentPublishDiagnostics {
			notified = append(notified, params.(protocol.PublishDiagnosticsParams))
		}
	}}
	req := types.NewRequestContext(ctx, glspCtx)
	open(t, req, "file:///a.doodle", "cssdoodle", "@grid: 5;")

	require.NoError(t, textDocument.DidClose(req, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///a.doodle"},
	}))
	assert.Nil(t, ctx.Document("file:///a.doodle"))
	require.Len(t, notified, 1)
	assert.Empty(t, notified[0].Diagnostics)
}
