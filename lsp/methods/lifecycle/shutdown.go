package lifecycle

import (
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/types"
)

// Shutdown handles the LSP shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	return nil
}
