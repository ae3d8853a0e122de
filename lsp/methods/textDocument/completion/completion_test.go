package completion_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/internal/tokens"
	"bennypowers.dev/cssdoodle/lsp/methods/textDocument/completion"
	"bennypowers.dev/cssdoodle/lsp/testutil"
	"bennypowers.dev/cssdoodle/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func complete(t *testing.T, ctx *testutil.MockServerContext, uri string, line, char uint32) *protocol.CompletionList {
	t.Helper()
	result, err := completion.Completion(types.NewRequestContext(ctx, nil), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: char},
		},
	})
	require.NoError(t, err)
	if result == nil {
		return nil
	}
	list, ok := result.(*protocol.CompletionList)
	require.True(t, ok)
	return list
}

// labels maps each label to the detail of its first item.
func labels(list *protocol.CompletionList) map[string]string {
	out := map[string]string{}
	for _, item := range list.Items {
		if _, seen := out[item.Label]; !seen && item.Detail != nil {
			out[item.Label] = *item.Detail
		}
	}
	return out
}

func TestCompletion(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	require.NoError(t, ctx.TokenManager().Add(&tokens.Token{Name: "brand", Value: "red", Type: "color"}))
	require.NoError(t, ctx.TokenManager().Add(&tokens.Token{Name: "space", Value: "4px"}))

	t.Run("builtins after @", func(t *testing.T) {
		uri := "file:///a.doodle"
		ctx.DocumentManager().DidOpen(uri, "cssdoodle", 1, "@")
		list := complete(t, ctx, uri, 0, 1)
		require.NotNil(t, list)
		got := labels(list)
		assert.Equal(t, "property", got["@size"])
		assert.Equal(t, "selector", got["@nth"])
		assert.Equal(t, "function", got["@p"])
	})

	t.Run("filtered by prefix", func(t *testing.T) {
		uri := "file:///b.doodle"
		ctx.DocumentManager().DidOpen(uri, "cssdoodle", 1, "background: @pic")
		list := complete(t, ctx, uri, 0, 16)
		require.NotNil(t, list)
		got := labels(list)
		assert.Equal(t, "alias of @p", got["@pick"])
		assert.NotContains(t, got, "@p")

		for _, item := range list.Items {
			edit, ok := item.TextEdit.(protocol.TextEdit)
			require.True(t, ok)
			assert.Equal(t, protocol.Position{Line: 0, Character: 12}, edit.Range.Start)
			assert.Equal(t, protocol.Position{Line: 0, Character: 16}, edit.Range.End)
		}
	})

	t.Run("tokens after --", func(t *testing.T) {
		uri := "file:///c.doodle"
		ctx.DocumentManager().DidOpen(uri, "cssdoodle", 1, "color: var(--b")
		list := complete(t, ctx, uri, 0, 14)
		require.NotNil(t, list)
		got := labels(list)
		assert.Equal(t, "color: red", got["--brand"])
		assert.NotContains(t, got, "--space")
	})

	t.Run("plain words", func(t *testing.T) {
		uri := "file:///d.doodle"
		ctx.DocumentManager().DidOpen(uri, "cssdoodle", 1, "color: re")
		assert.Nil(t, complete(t, ctx, uri, 0, 9))
	})

	t.Run("outside doodles", func(t *testing.T) {
		uri := "file:///e.html"
		ctx.DocumentManager().DidOpen(uri, "html", 1, "<p>@</p>")
		assert.Nil(t, complete(t, ctx, uri, 0, 4))
	})
}
