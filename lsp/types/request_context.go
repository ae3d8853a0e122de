// Package types holds what the LSP handlers share: the server context and
// the per-request context.
package types

import (
	"fmt"

	"github.com/tliron/glsp"
)

// RequestContext is the request-scoped view of the server.
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

// NewRequestContext creates a new request context
func NewRequestContext(server ServerContext, glsp *glsp.Context) *RequestContext {
	return &RequestContext{
		Server: server,
		GLSP:   glsp,
	}
}

// Warn records a non-fatal problem. The middleware logs warnings after
// the handler returns.
func (r *RequestContext) Warn(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Errorf(format, args...))
}

// Warnings returns the recorded warnings.
func (r *RequestContext) Warnings() []error {
	return r.warnings
}
