package lifecycle

import (
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SetTrace maps the client trace value to the log level: "verbose" logs
// debug messages, "off" and "messages" log info and above.
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	if params.Value == protocol.TraceValueVerbose {
		log.SetLevel(log.LevelDebug)
	} else {
		log.SetLevel(log.LevelInfo)
	}
	log.Info("Trace level set to: %s", params.Value)
	return nil
}
