// Package textDocument handles document synchronization.
package textDocument

import (
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/source"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen tracks documents that can hold doodles and publishes their
// diagnostics. Other documents are ignored.
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	td := params.TextDocument
	log.Info("Document opened: %s (language: %s, version: %d)", td.URI, td.LanguageID, td.Version)
	if !source.IsSupportedLanguage(td.LanguageID) {
		return nil
	}
	req.Server.DocumentManager().DidOpen(td.URI, td.LanguageID, int(td.Version), td.Text)
	publish(req, td.URI)
	return nil
}

// DidChange handles the textDocument/didChange notification
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if req.Server.Document(uri) == nil {
		return nil
	}
	log.Debug("Document changed: %s (version: %d, changes: %d)", uri, params.TextDocument.Version, len(params.ContentChanges))
	if err := req.Server.DocumentManager().DidChange(uri, int(params.TextDocument.Version), params.ContentChanges); err != nil {
		return err
	}
	publish(req, uri)
	return nil
}

// DidClose forgets the document and clears its diagnostics.
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if req.Server.Document(uri) == nil {
		return nil
	}
	log.Info("Document closed: %s", uri)
	if err := req.Server.DocumentManager().DidClose(uri); err != nil {
		return err
	}
	if req.GLSP != nil && req.GLSP.Notify != nil {
		req.GLSP.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func publish(req *types.RequestContext, uri string) {
	if err := req.Server.PublishDiagnostics(req.GLSP, uri); err != nil {
		req.Warn("failed to publish diagnostics for %s: %w", uri, err)
	}
}
