package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/embedls/lsp"
	"bennypowers.dev/embedls/lsp/methods/textDocument"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FixtureRoot returns the path to the test fixtures directory
func FixtureRoot() string {
	return filepath.Join("..", "fixtures")
}

// LoadMarkupFixture loads a markup fixture file and returns the content
func LoadMarkupFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(FixtureRoot(), "markup", name)
	data, err := os.ReadFile(path) //nolint:gosec // G304: Test fixture path - test code only
	require.NoError(t, err, "Failed to load markup fixture: %s", name)
	return string(data)
}

// NewTestServer creates a new LSP server for testing
func NewTestServer(t *testing.T) *lsp.Server {
	t.Helper()
	server, err := lsp.NewServer()
	require.NoError(t, err, "Failed to create test server")
	t.Cleanup(func() { _ = server.Close() })
	return server
}

// OpenMarkupFixture opens a markup fixture file in the server as html
func OpenMarkupFixture(t *testing.T, server *lsp.Server, uri, fixtureName string) string {
	t.Helper()
	content := LoadMarkupFixture(t, fixtureName)
	params := &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "html",
			Version:    1,
			Text:       content,
		},
	}
	req := types.NewRequestContext(server, nil)
	err := textDocument.DidOpen(req, params)
	require.NoError(t, err, "Failed to open markup fixture: %s", fixtureName)
	return content
}
