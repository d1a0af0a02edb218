package documentlink

import (
	"strings"
	"testing"

	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/testutil"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const uri = "file:///work/site/index.html"

func links(t *testing.T, ctx *testutil.MockServerContext) []protocol.DocumentLink {
	t.Helper()
	req := types.NewRequestContext(ctx, nil)
	result, err := DocumentLink(req, &protocol.DocumentLinkParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	return result
}

func TestDocumentLink(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target string
	}{
		{name: "relative", src: `"./app.js"`, target: "file:///work/site/app.js"},
		{name: "parent directory", src: `'../lib/x.js'`, target: "file:///work/lib/x.js"},
		{name: "root relative", src: `"/vendor/y.js"`, target: "file:///work/vendor/y.js"},
		{name: "unquoted", src: `z.js`, target: "file:///work/site/z.js"},
		{name: "absolute url", src: `"https://cdn.example.com/a.js"`, target: "https://cdn.example.com/a.js"},
		{name: "protocol relative", src: `"//cdn.example.com/a.js"`, target: "https://cdn.example.com/a.js"},
		{name: "query string", src: `"app.js?v=2"`, target: "file:///work/site/app.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := "<script src=" + tt.src + "></script>"
			ctx := testutil.NewMockServerContext()
			ctx.SetRootURI("file:///work")
			ctx.SetRootPath("/work")
			ctx.OpenDocument(uri, "html", text)

			got := links(t, ctx)
			require.Len(t, got, 1)
			require.NotNil(t, got[0].Target)
			assert.Equal(t, tt.target, *got[0].Target)

			inner := strings.Trim(tt.src, `"'`)
			start := strings.Index(text, inner)
			assert.Equal(t, helpers.ToRange(text, start, start+len(inner)), got[0].Range)
		})
	}
}

func TestDocumentLink_Skipped(t *testing.T) {
	text := "<script src=\"\"></script><img src=\"a.png\"><script>let x</script>"
	ctx := testutil.NewMockServerContext()
	ctx.OpenDocument(uri, "html", text)

	assert.Empty(t, links(t, ctx))
}

func TestDocumentLink_UnknownDocument(t *testing.T) {
	assert.Empty(t, links(t, testutil.NewMockServerContext()))
}
