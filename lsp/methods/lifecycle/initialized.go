package lifecycle

import (
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized loads the workspace and watches its config and token files.
// Failures are warnings: the server works without tokens.
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")
	req.Server.SetGLSPContext(req.GLSP)

	if err := req.Server.LoadWorkspace(); err != nil {
		req.Warn("failed to load workspace: %w", err)
	}
	if err := req.Server.RegisterFileWatchers(req.GLSP); err != nil {
		req.Warn("failed to register file watchers: %w", err)
	}
	return nil
}
