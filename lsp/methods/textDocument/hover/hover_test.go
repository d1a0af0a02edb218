package hover

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

const page = "<style>\na { color: red !important }\n</style>\n" +
	"<p style=\"margin: 0\" onclick=\"go()\">text</p>\n" +
	"<script>\nfunction greet() {}\n</script>\n" +
	"<script type=\"text/typescript\">let x = 1</script>"

const uri = "file:///work/index.html"

func hoverAt(t *testing.T, ctx *testutil.MockServerContext, text, needle string) *protocol.Hover {
	t.Helper()
	index := strings.Index(text, needle)
	require.GreaterOrEqual(t, index, 0, "needle %q", needle)

	req := types.NewRequestContext(ctx, nil)
	result, err := Hover(req, &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     helpers.ToPosition(text, index),
		},
	})
	require.NoError(t, err)
	return result
}

func content(t *testing.T, h *protocol.Hover) string {
	t.Helper()
	require.NotNil(t, h)
	markup, ok := h.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	return markup.Value
}

func TestHover(t *testing.T) {
	tests := []struct {
		name   string
		needle string
		want   string
	}{
		{
			name:   "declaration in style block",
			needle: "color",
			want:   "```css\na {\n  color: red !important;\n}\n```",
		},
		{
			name:   "style attribute",
			needle: "margin",
			want:   "```css\nmargin: 0;\n```",
		},
		{
			name:   "function name",
			needle: "greet",
			want:   "```javascript\nfunction greet\n```",
		},
		{
			name:   "event handler",
			needle: "go()",
			want:   "Embedded `javascript`",
		},
		{
			name:   "typescript",
			needle: "let x",
			want:   "Embedded `typescript`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewMockServerContext()
			ctx.OpenDocument(uri, "html", page)

			got := hoverAt(t, ctx, page, tt.needle)
			assert.Equal(t, tt.want, content(t, got))
			assert.Equal(t, protocol.MarkupKindMarkdown, got.Contents.(protocol.MarkupContent).Kind)
		})
	}
}

func TestHover_Range(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	ctx.OpenDocument(uri, "html", page)

	got := hoverAt(t, ctx, page, "greet")
	require.NotNil(t, got.Range)

	start := strings.Index(page, "greet")
	assert.Equal(t, helpers.ToRange(page, start, start+len("greet")), *got.Range)
}

func TestHover_Plaintext(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	ctx.SetClientCapabilities(protocol.ClientCapabilities{
		TextDocument: &protocol.TextDocumentClientCapabilities{
			Hover: &protocol.HoverClientCapabilities{
				ContentFormat: []protocol.MarkupKind{protocol.MarkupKindPlainText},
			},
		},
	})
	ctx.OpenDocument(uri, "html", page)

	got := hoverAt(t, ctx, page, "color")
	assert.Equal(t, "a { color: red !important; }", content(t, got))
	assert.Equal(t, protocol.MarkupKindPlainText, got.Contents.(protocol.MarkupContent).Kind)
}

func TestHover_Nothing(t *testing.T) {
	t.Run("markup text", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.OpenDocument(uri, "html", page)
		assert.Nil(t, hoverAt(t, ctx, page, "text</p>"))
	})

	t.Run("between declarations", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		text := "<style>\n\n  a {}\n</style>"
		ctx.OpenDocument(uri, "html", text)
		assert.Nil(t, hoverAt(t, ctx, text, "\n  a"))
	})

	t.Run("unknown document", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		assert.Nil(t, hoverAt(t, ctx, page, "color"))
	})

	t.Run("not a markup document", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.SetRootPath("/work")
		ctx.OpenDocument(uri, "css", page)
		ctx.SetConfig(types.ServerConfig{Languages: []string{"html"}})
		assert.Nil(t, hoverAt(t, ctx, page, "color"))
	})
}
