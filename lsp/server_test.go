package lsp

import (
	"sync"
	"testing"

	"bennypowers.dev/embedls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestIsMarkupDocument(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		languageID string
		expected   bool
	}{
		{"html language", "file:///work/page.txt", "html", true},
		{"included extension", "file:///work/templates/page.htm", "plaintext", true},
		{"excluded path", "file:///work/node_modules/pkg/index.html", "html", false},
		{"css file", "file:///work/styles.css", "css", false},
		{"remote html", "https://example.com/index.html", "html", true},
		{"remote by extension only", "https://example.com/index.html", "plaintext", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.SetRootPath("/work")
			require.NoError(t, s.DocumentManager().DidOpen(tt.uri, tt.languageID, 1, "<p></p>"))

			assert.Equal(t, tt.expected, s.IsMarkupDocument(s.Document(tt.uri)))
		})
	}

	t.Run("nil document", func(t *testing.T) {
		assert.False(t, newTestServer(t).IsMarkupDocument(nil))
	})
}

func TestPreferredHoverFormat(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, protocol.MarkupKindMarkdown, s.PreferredHoverFormat())

	s.SetClientCapabilities(protocol.ClientCapabilities{
		TextDocument: &protocol.TextDocumentClientCapabilities{
			Hover: &protocol.HoverClientCapabilities{
				ContentFormat: []protocol.MarkupKind{protocol.MarkupKindPlainText},
			},
		},
	})
	assert.Equal(t, protocol.MarkupKindPlainText, s.PreferredHoverFormat())
}

// recorder captures notifications sent through a glsp.Context
type recorder struct {
	mu     sync.Mutex
	method []string
	params []any
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.method = append(r.method, method)
			r.params = append(r.params, params)
		},
	}
}

func TestPublishDiagnostics(t *testing.T) {
	const uri = "file:///work/index.html"

	t.Run("push", func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.DocumentManager().DidOpen(uri, "html", 1, "<script>)))</script>"))
		var rec recorder

		require.NoError(t, s.PublishDiagnostics(rec.context(), uri))

		require.Equal(t, []string{protocol.ServerTextDocumentPublishDiagnostics}, rec.method)
		params, ok := rec.params[0].(protocol.PublishDiagnosticsParams)
		require.True(t, ok)
		assert.Equal(t, uri, params.URI)
		assert.NotEmpty(t, params.Diagnostics)
	})

	t.Run("falls back to the stored context", func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.DocumentManager().DidOpen(uri, "html", 1, "<p></p>"))
		var rec recorder
		s.SetGLSPContext(rec.context())

		require.NoError(t, s.PublishDiagnostics(nil, uri))
		assert.Len(t, rec.method, 1)
	})

	t.Run("pull sends nothing", func(t *testing.T) {
		s := newTestServer(t)
		require.NoError(t, s.DocumentManager().DidOpen(uri, "html", 1, "<script>)))</script>"))
		s.SetUsePullDiagnostics(true)
		var rec recorder

		require.NoError(t, s.PublishDiagnostics(rec.context(), uri))
		assert.Empty(t, rec.method)
	})

	t.Run("no client", func(t *testing.T) {
		s := newTestServer(t)
		require.Error(t, s.PublishDiagnostics(nil, uri))
		require.Error(t, s.PublishDiagnostics(&glsp.Context{}, uri))
	})
}

func TestServer_Accessors(t *testing.T) {
	s := newTestServer(t)

	s.SetRootURI("file:///work")
	s.SetRootPath("/work")
	assert.Equal(t, "file:///work", s.RootURI())
	assert.Equal(t, "/work", s.RootPath())

	assert.Nil(t, s.ClientCapabilities())
	assert.Nil(t, s.ClientDiagnosticCapability())
	s.SetClientDiagnosticCapability(true)
	require.NotNil(t, s.ClientDiagnosticCapability())
	assert.True(t, *s.ClientDiagnosticCapability())

	assert.False(t, s.UsePullDiagnostics())
	s.SetUsePullDiagnostics(true)
	assert.True(t, s.UsePullDiagnostics())

	require.NoError(t, s.DocumentManager().DidOpen("file:///work/a.html", "html", 1, ""))
	assert.Len(t, s.AllDocuments(), 1)

	// Close may be called repeatedly
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
}

func TestServer_ImplementsServerContext(t *testing.T) {
	var ctx types.ServerContext = newTestServer(t)
	assert.Equal(t, types.DefaultConfig(), ctx.GetConfig())
}
