package types

import (
	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/internal/tokens"
	"github.com/tliron/glsp"
)

// ServerContext provides the dependencies of the LSP handlers.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// Compilation
	Compiler() *composer.Compiler
	TokenManager() *tokens.Manager
	// Variables are the token custom properties doodles may read.
	Variables() map[string]string

	// Workspace
	RootPath() string
	SetRootPath(path string)
	Config() config.Config
	// LoadWorkspace discovers the config under the root path and loads
	// its token files.
	LoadWorkspace() error
	RegisterFileWatchers(ctx *glsp.Context) error

	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)
	PublishDiagnostics(ctx *glsp.Context, uri string) error
}
