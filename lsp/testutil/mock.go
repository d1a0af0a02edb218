package testutil

import (
	"encoding/json"
	"sync"

	"bennypowers.dev/embedls/internal/documents"
	"bennypowers.dev/embedls/internal/uriutil"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext implements types.ServerContext for testing.
// It provides a minimal implementation with configurable behavior via callback functions.
type MockServerContext struct {
	docs               *documents.Manager
	rootURI            string
	rootPath           string
	config             types.ServerConfig
	clientSettings     json.RawMessage
	glspContext        *glsp.Context
	clientCapabilities *protocol.ClientCapabilities
	pullDiagnostics    bool
	diagnosticSupport  *bool

	// Optional callbacks for custom behavior in tests
	LoadProjectConfigFunc  func() error
	RegisterWatchersFunc   func(*glsp.Context) error
	PublishDiagnosticsFunc func(*glsp.Context, string) error

	// Tracking for tests that need to verify methods were called
	mu                     sync.Mutex
	LoadProjectConfigCalls int
	RegisterWatchersCalled bool
	PublishedURIs          []string
}

// NewMockServerContext creates a new mock server context with default behavior
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:   documents.NewManager(),
		config: types.DefaultConfig(),
	}
}

// OpenDocument is a test convenience for DocumentManager().DidOpen
func (m *MockServerContext) OpenDocument(uri, languageID, content string) *documents.Document {
	_ = m.docs.DidOpen(uri, languageID, 1, content)
	return m.docs.Get(uri)
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

// IsMarkupDocument applies the configured language and glob rules
func (m *MockServerContext) IsMarkupDocument(doc *documents.Document) bool {
	if doc == nil {
		return false
	}
	return m.config.IsMarkup(doc.LanguageID(), uriutil.URIToPath(doc.URI()), m.rootPath)
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// GetConfig returns the server configuration
func (m *MockServerContext) GetConfig() types.ServerConfig {
	return m.config
}

// SetConfig replaces the server configuration
func (m *MockServerContext) SetConfig(config types.ServerConfig) {
	m.config = config
}

// SetClientSettings overlays settings on the defaults
func (m *MockServerContext) SetClientSettings(settings json.RawMessage) error {
	config, err := types.DefaultConfig().Overlay(settings)
	if err != nil {
		return err
	}
	m.clientSettings = settings
	m.config = config
	return nil
}

// ClientSettings returns the last settings passed to SetClientSettings
func (m *MockServerContext) ClientSettings() json.RawMessage {
	return m.clientSettings
}

// LoadProjectConfig records the call and runs LoadProjectConfigFunc if set
func (m *MockServerContext) LoadProjectConfig() error {
	m.mu.Lock()
	m.LoadProjectConfigCalls++
	m.mu.Unlock()
	if m.LoadProjectConfigFunc != nil {
		return m.LoadProjectConfigFunc()
	}
	return nil
}

// RegisterFileWatchers registers file watchers with the client
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// ClientCapabilities returns the stored client capabilities
func (m *MockServerContext) ClientCapabilities() *protocol.ClientCapabilities {
	return m.clientCapabilities
}

// SetClientCapabilities stores the client capabilities
func (m *MockServerContext) SetClientCapabilities(caps protocol.ClientCapabilities) {
	m.clientCapabilities = &caps
}

// PreferredHoverFormat returns markdown unless the client only accepts plain text
func (m *MockServerContext) PreferredHoverFormat() protocol.MarkupKind {
	return types.HoverFormat(m.clientCapabilities)
}

// GLSPContext returns the GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext sets the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

// ClientDiagnosticCapability returns the value set by SetClientDiagnosticCapability
func (m *MockServerContext) ClientDiagnosticCapability() *bool {
	return m.diagnosticSupport
}

// SetClientDiagnosticCapability simulates detection from raw initialize params
func (m *MockServerContext) SetClientDiagnosticCapability(supported bool) {
	m.diagnosticSupport = &supported
}

// UsePullDiagnostics reports whether the client pulls diagnostics
func (m *MockServerContext) UsePullDiagnostics() bool {
	return m.pullDiagnostics
}

// SetUsePullDiagnostics sets whether the client pulls diagnostics
func (m *MockServerContext) SetUsePullDiagnostics(use bool) {
	m.pullDiagnostics = use
}

// PublishDiagnostics records uri and runs PublishDiagnosticsFunc if set
func (m *MockServerContext) PublishDiagnostics(context *glsp.Context, uri string) error {
	m.mu.Lock()
	m.PublishedURIs = append(m.PublishedURIs, uri)
	m.mu.Unlock()
	if m.PublishDiagnosticsFunc != nil {
		return m.PublishDiagnosticsFunc(context, uri)
	}
	return nil
}
