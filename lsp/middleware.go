package lsp

import (
	"fmt"
	"runtime/debug"

	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/lsp/methods/workspace"
	"bennypowers.dev/cssdoodle/lsp/types"
	"github.com/tliron/glsp"
)

// recoverPanic turns a handler panic into an error logged to stderr and
// to the client.
func recoverPanic(ctx *glsp.Context, methodName string, err *error) {
	if r := recover(); r != nil {
		log.Error("PANIC in %s: %v\nStack trace:\n%s", methodName, r, debug.Stack())
		workspace.LogError(ctx, "Internal error in %s: %v", methodName, r)
		*err = fmt.Errorf("internal error in %s", methodName)
	}
}

// finish logs the warnings of a request and wraps its error.
func finish(ctx *glsp.Context, req *types.RequestContext, methodName string, err error) error {
	for _, w := range req.Warnings() {
		workspace.LogWarning(ctx, "%s: %v", methodName, w)
	}
	if err != nil {
		workspace.LogError(ctx, "%s: %v", methodName, err)
		return fmt.Errorf("%s: %w", methodName, err)
	}
	log.Debug("%s completed", methodName)
	return nil
}

// method wraps an LSP request handler.
func method[P, R any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(ctx *glsp.Context, params P) (result R, err error) {
		defer recoverPanic(ctx, methodName, &err)
		log.Debug("%s started", methodName)
		req := types.NewRequestContext(s, ctx)
		result, err = handler(req, params)
		if err = finish(ctx, req, methodName, err); err != nil {
			var zero R
			return zero, err
		}
		return result, nil
	}
}

// notify wraps an LSP notification handler.
func notify[P any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) error,
) func(*glsp.Context, P) error {
	return func(ctx *glsp.Context, params P) (err error) {
		defer recoverPanic(ctx, methodName, &err)
		log.Debug("%s started", methodName)
		req := types.NewRequestContext(s, ctx)
		return finish(ctx, req, methodName, handler(req, params))
	}
}

// noParam wraps an LSP handler that takes no params, like Shutdown.
func noParam(
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext) error,
) func(*glsp.Context) error {
	return func(ctx *glsp.Context) (err error) {
		defer recoverPanic(ctx, methodName, &err)
		log.Debug("%s started", methodName)
		req := types.NewRequestContext(s, ctx)
		return finish(ctx, req, methodName, handler(req))
	}
}
