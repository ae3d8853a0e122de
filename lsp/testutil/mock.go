// Package testutil provides a mock server context for handler tests.
package testutil

import (
	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/internal/tokens"
	"bennypowers.dev/cssdoodle/lsp/types"
	"github.com/tliron/glsp"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext implements types.ServerContext for testing. The
// callbacks override the default behavior.
type MockServerContext struct {
	docs        *documents.Manager
	tokens      *tokens.Manager
	compiler    *composer.Compiler
	rootPath    string
	config      config.Config
	glspContext *glsp.Context

	LoadWorkspaceFunc      func() error
	RegisterWatchersFunc   func(*glsp.Context) error
	PublishDiagnosticsFunc func(*glsp.Context, string) error

	LoadWorkspaceCalled    bool
	RegisterWatchersCalled bool
	// Published lists the URIs passed to PublishDiagnostics.
	Published []string
}

// NewMockServerContext creates a new mock server context with default behavior
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:     documents.NewManager(),
		tokens:   tokens.NewManager(),
		compiler: composer.New(),
		config:   config.Default(),
	}
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// AllDocuments returns all tracked documents
func (m *MockServerContext) AllDocuments() []*documents.Document {
	return m.docs.GetAll()
}

// Compiler returns the doodle compiler
func (m *MockServerContext) Compiler() *composer.Compiler {
	return m.compiler
}

// TokenManager returns the token manager
func (m *MockServerContext) TokenManager() *tokens.Manager {
	return m.tokens
}

// Variables resolves the tokens added to the token manager.
func (m *MockServerContext) Variables() map[string]string {
	return m.tokens.Variables()
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// Config returns the workspace configuration
func (m *MockServerContext) Config() config.Config {
	return m.config
}

// SetConfig sets the workspace configuration
func (m *MockServerContext) SetConfig(cfg config.Config) {
	m.config = cfg
}

// LoadWorkspace records the call and runs LoadWorkspaceFunc.
func (m *MockServerContext) LoadWorkspace() error {
	m.LoadWorkspaceCalled = true
	if m.LoadWorkspaceFunc != nil {
		return m.LoadWorkspaceFunc()
	}
	return nil
}

// RegisterFileWatchers records the call and runs RegisterWatchersFunc.
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// GLSPContext returns the GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext sets the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

// PublishDiagnostics records the URI and runs PublishDiagnosticsFunc.
func (m *MockServerContext) PublishDiagnostics(context *glsp.Context, uri string) error {
	m.Published = append(m.Published, uri)
	if m.PublishDiagnosticsFunc != nil {
		return m.PublishDiagnosticsFunc(context, uri)
	}
	return nil
}
