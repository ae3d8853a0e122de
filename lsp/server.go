// Package lsp is the doodle language server: diagnostics from compiling
// the doodles of open documents, hover, completion and color decorations.
package lsp

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/tokens"
	"bennypowers.dev/cssdoodle/lsp/methods/lifecycle"
	"bennypowers.dev/cssdoodle/lsp/methods/textDocument"
	"bennypowers.dev/cssdoodle/lsp/methods/textDocument/completion"
	"bennypowers.dev/cssdoodle/lsp/methods/textDocument/diagnostic"
	documentcolor "bennypowers.dev/cssdoodle/lsp/methods/textDocument/documentColor"
	"bennypowers.dev/cssdoodle/lsp/methods/textDocument/hover"
	"bennypowers.dev/cssdoodle/lsp/methods/workspace"
	"bennypowers.dev/cssdoodle/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

var _ types.ServerContext = (*Server)(nil)

// Server is the doodle language server.
type Server struct {
	documents  *documents.Manager
	tokens     *tokens.Manager
	compiler   *composer.Compiler
	glspServer *server.Server

	mu        sync.RWMutex // protects the fields below
	context   *glsp.Context
	rootPath  string
	config    config.Config
	variables map[string]string
}

// NewServer creates a new doodle language server
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		tokens:    tokens.NewManager(),
		compiler:  composer.New(),
		config:    config.Default(),
	}

	handler := protocol.Handler{
		Initialize:                     method(s, "initialize", lifecycle.Initialize),
		Initialized:                    notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                       noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                       notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeWatchedFiles: notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:            notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:          notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:           notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentHover:              method(s, "textDocument/hover", hover.Hover),
		TextDocumentCompletion:         method(s, "textDocument/completion", completion.Completion),
		TextDocumentColor:              method(s, "textDocument/documentColor", documentcolor.DocumentColor),
		TextDocumentColorPresentation:  method(s, "textDocument/colorPresentation", documentcolor.ColorPresentation),
	}

	s.glspServer = server.NewServer(&handler, lifecycle.ServerName, false)
	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// AllDocuments returns all tracked documents
func (s *Server) AllDocuments() []*documents.Document {
	return s.documents.GetAll()
}

// Compiler returns the doodle compiler
func (s *Server) Compiler() *composer.Compiler {
	return s.compiler
}

// TokenManager returns the token manager
func (s *Server) TokenManager() *tokens.Manager {
	return s.tokens
}

// Variables returns the token custom properties, resolved when the
// workspace was loaded.
func (s *Server) Variables() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variables
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPath
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rootPath = path
}

// Config returns the workspace configuration
func (s *Server) Config() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// LoadWorkspace discovers the configuration from the root path and
// reloads the token files. Without a root path the defaults apply.
func (s *Server) LoadWorkspace() error {
	root := s.RootPath()
	cfg := config.Default()
	var err error
	if root != "" {
		cfg, err = config.Discover(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	s.tokens.Clear()
	loadErr := s.tokens.LoadConfig(cfg)
	variables := s.tokens.Variables()
	log.Info("Workspace loaded: %d tokens", s.tokens.Count())

	s.mu.Lock()
	s.config = cfg
	s.variables = variables
	s.mu.Unlock()
	return loadErr
}

// GLSPContext returns the client context
func (s *Server) GLSPContext() *glsp.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

// SetGLSPContext sets the client context
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx
}

// PublishDiagnostics publishes the diagnostics of a document
func (s *Server) PublishDiagnostics(context *glsp.Context, uri string) error {
	if context == nil || context.Notify == nil {
		context = s.GLSPContext()
	}
	if context == nil || context.Notify == nil {
		return fmt.Errorf("cannot publish diagnostics: no client context available")
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// RegisterFileWatchers asks the client to report changes of config files
// and of the token files the config loads.
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// An empty context (tests without a client) cannot make requests
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	cfg := s.Config()
	var watchers []protocol.FileSystemWatcher
	for _, name := range slices.Concat(config.FileNames, []string{"package.json"}) {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: "**/" + name})
	}
	for _, tf := range cfg.Tokens {
		watchers = append(watchers, protocol.FileSystemWatcher{
			GlobPattern: filepath.ToSlash(filepath.Clean(cfg.Resolve(tf.Path))),
		})
	}

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{{
			ID:     "cssdoodle-file-watcher",
			Method: "workspace/didChangeWatchedFiles",
			RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
				Watchers: watchers,
			},
		}},
	}

	// client/registerCapability is a request; calling it from the handler
	// goroutine would block reading its response.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Debug("File watcher registration completed")
	}(context)

	log.Info("Sent file watcher registration request (%d watchers)", len(watchers))
	return nil
}
