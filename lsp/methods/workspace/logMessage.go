package workspace

import (
	"fmt"

	"bennypowers.dev/cssdoodle/internal/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// LogError logs to stderr and, with a client context, to the client.
func LogError(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Error("%s", message)
	notifyLog(context, protocol.MessageTypeError, message)
}

// LogWarning logs to stderr and, with a client context, to the client.
func LogWarning(context *glsp.Context, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	log.Warn("%s", message)
	notifyLog(context, protocol.MessageTypeWarning, message)
}

func notifyLog(context *glsp.Context, kind protocol.MessageType, message string) {
	if context == nil || context.Notify == nil {
		return
	}
	go context.Notify(protocol.ServerWindowLogMessage, &protocol.LogMessageParams{
		Type:    kind,
		Message: message,
	})
}
