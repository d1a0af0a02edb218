package types

import (
	"encoding/json"

	"bennypowers.dev/embedls/internal/documents"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerContext provides all dependencies needed for LSP handlers.
// Handlers depend on this interface rather than the concrete server so they
// can be tested against a mock.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document

	// IsMarkupDocument reports whether embedded-language features apply to doc
	IsMarkupDocument(doc *documents.Document) bool

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration
	GetConfig() ServerConfig
	SetClientSettings(settings json.RawMessage) error
	LoadProjectConfig() error
	RegisterFileWatchers(ctx *glsp.Context) error

	// Client capabilities
	ClientCapabilities() *protocol.ClientCapabilities
	SetClientCapabilities(caps protocol.ClientCapabilities)
	PreferredHoverFormat() protocol.MarkupKind

	// LSP context (for publishing diagnostics, etc.)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	// Diagnostics
	ClientDiagnosticCapability() *bool
	UsePullDiagnostics() bool
	SetUsePullDiagnostics(use bool)
	PublishDiagnostics(context *glsp.Context, uri string) error
}
