// Package workspace handles workspace notifications and client logging.
package workspace

import (
	"path/filepath"
	"slices"

	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// IsWorkspaceFile reports whether path is a config file or one of the
// token files cfg loads.
func IsWorkspaceFile(cfg config.Config, path string) bool {
	base := filepath.Base(path)
	if base == "package.json" || slices.Contains(config.FileNames, base) {
		return true
	}
	clean := filepath.Clean(path)
	for _, tf := range cfg.Tokens {
		if filepath.Clean(cfg.Resolve(tf.Path)) == clean {
			return true
		}
	}
	return false
}

// DidChangeWatchedFiles reloads the workspace when a config or token
// file changes, then refreshes the diagnostics of the open documents.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	cfg := req.Server.Config()
	changed := slices.ContainsFunc(params.Changes, func(e protocol.FileEvent) bool {
		return IsWorkspaceFile(cfg, documents.URIToPath(e.URI))
	})
	if !changed {
		return nil
	}

	log.Info("Workspace files changed, reloading")
	if err := req.Server.LoadWorkspace(); err != nil {
		req.Warn("failed to reload workspace: %w", err)
	}
	for _, doc := range req.Server.AllDocuments() {
		if err := req.Server.PublishDiagnostics(req.GLSP, doc.URI()); err != nil {
			req.Warn("failed to publish diagnostics for %s: %w", doc.URI(), err)
		}
	}
	return nil
}
