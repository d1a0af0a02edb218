package lsp

import (
	"encoding/json"
	"fmt"
	"sync"

	"bennypowers.dev/embedls/internal/documents"
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/parser/css"
	"bennypowers.dev/embedls/internal/parser/html"
	"bennypowers.dev/embedls/internal/parser/js"
	"bennypowers.dev/embedls/internal/uriutil"
	"bennypowers.dev/embedls/lsp/methods/lifecycle"
	"bennypowers.dev/embedls/lsp/methods/textDocument"
	"bennypowers.dev/embedls/lsp/methods/textDocument/diagnostic"
	documentcolor "bennypowers.dev/embedls/lsp/methods/textDocument/documentColor"
	documentlink "bennypowers.dev/embedls/lsp/methods/textDocument/documentLink"
	documentsymbol "bennypowers.dev/embedls/lsp/methods/textDocument/documentSymbol"
	foldingrange "bennypowers.dev/embedls/lsp/methods/textDocument/foldingRange"
	"bennypowers.dev/embedls/lsp/methods/textDocument/hover"
	"bennypowers.dev/embedls/lsp/methods/workspace"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Name is the server name reported to clients
const Name = "embedded-language-server"

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server represents the Embedded Language Server
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server

	// configMu protects every field below it
	configMu                   sync.RWMutex
	context                    *glsp.Context
	rootURI                    string
	rootPath                   string
	config                     types.ServerConfig // effective configuration
	projectSettings            json.RawMessage    // from .embedlsrc.*, nil when absent
	clientSettings             json.RawMessage    // from the client, nil when absent
	clientCapabilities         *protocol.ClientCapabilities
	clientDiagnosticCapability *bool // nil until initialize has been intercepted
	usePullDiagnostics         bool
	configWatcher              *configWatcher // nil unless the client cannot watch files
}

// NewServer creates a new Embedded Language Server
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		config:    types.DefaultConfig(),
	}

	protocolHandler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		WorkspaceDidChangeWatchedFiles:  notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentHover:               method(s, "textDocument/hover", hover.Hover),
		TextDocumentColor:               method(s, "textDocument/documentColor", documentcolor.DocumentColor),
		TextDocumentColorPresentation:   method(s, "textDocument/colorPresentation", documentcolor.ColorPresentation),
		TextDocumentDocumentLink:        method(s, "textDocument/documentLink", documentlink.DocumentLink),
		TextDocumentDocumentSymbol:      method(s, "textDocument/documentSymbol", documentsymbol.DocumentSymbol),
		TextDocumentFoldingRange:        method(s, "textDocument/foldingRange", foldingrange.FoldingRange),
	}

	// glsp speaks LSP 3.16; CustomHandler adds the 3.17 pull diagnostics
	// request on top of protocol.Handler
	customHandler := &CustomHandler{
		Handler: &protocolHandler,
		server:  s,
	}

	s.glspServer = server.NewServer(customHandler, Name, false)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close stops the local configuration watcher and releases the pooled
// tree-sitter parsers. It is safe to call Close multiple times.
func (s *Server) Close() error {
	s.stopConfigWatcher()
	html.ClosePool()
	css.ClosePool()
	js.ClosePool()
	return nil
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

// IsMarkupDocument reports whether doc gets embedded-language features,
// by language ID and the configured include and exclude globs
func (s *Server) IsMarkupDocument(doc *documents.Document) bool {
	if doc == nil {
		return false
	}
	s.configMu.RLock()
	cfg, root := s.config, s.rootPath
	s.configMu.RUnlock()

	path := ""
	if !uriutil.IsRemote(doc.URI()) {
		path = uriutil.URIToPath(doc.URI())
	}
	return cfg.IsMarkup(doc.LanguageID(), path, root)
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// ClientCapabilities returns the capabilities sent with initialize, or nil
func (s *Server) ClientCapabilities() *protocol.ClientCapabilities {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.clientCapabilities
}

// SetClientCapabilities stores the capabilities sent with initialize
func (s *Server) SetClientCapabilities(caps protocol.ClientCapabilities) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.clientCapabilities = &caps
}

// PreferredHoverFormat returns the markup kind hover content is rendered in
func (s *Server) PreferredHoverFormat() protocol.MarkupKind {
	return types.HoverFormat(s.ClientCapabilities())
}

// GLSPContext returns the GLSP context
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

// ClientDiagnosticCapability returns the detected client diagnostic capability.
// Returns nil if capability detection has not yet occurred (e.g., before initialize).
func (s *Server) ClientDiagnosticCapability() *bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.clientDiagnosticCapability
}

// SetClientDiagnosticCapability records whether the raw initialize params
// declared textDocument.diagnostic
func (s *Server) SetClientDiagnosticCapability(hasCapability bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.clientDiagnosticCapability = &hasCapability
}

// UsePullDiagnostics returns whether the client pulls diagnostics (LSP 3.17).
// When true, textDocument/publishDiagnostics is never sent.
func (s *Server) UsePullDiagnostics() bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.usePullDiagnostics
}

// SetUsePullDiagnostics sets whether to use pull diagnostics
func (s *Server) SetUsePullDiagnostics(use bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.usePullDiagnostics = use
}

// PublishDiagnostics pushes diagnostics for a document
func (s *Server) PublishDiagnostics(context *glsp.Context, uri string) error {
	workingContext := context
	if workingContext == nil {
		workingContext = s.GLSPContext()
	}
	if workingContext == nil || workingContext.Notify == nil {
		return fmt.Errorf("cannot publish diagnostics: no client context available")
	}

	// The client will ask
	if s.UsePullDiagnostics() {
		return nil
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}

	log.Debug("Publishing %d diagnostics for %s", len(diagnostics), uri)
	workingContext.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})

	return nil
}
