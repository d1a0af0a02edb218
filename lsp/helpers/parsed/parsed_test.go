package parsed_test

import (
	"testing"

	"bennypowers.dev/embedls/internal/documents"
	parsercss "bennypowers.dev/embedls/internal/parser/css"
	"bennypowers.dev/embedls/lsp/helpers/parsed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = "<style>a { color: red }</style>\n<script>\nfunction f() {}\nconst s = css`b { color: blue }`;\n</script>"

func TestStyles_SharedPerSnapshot(t *testing.T) {
	doc := documents.NewDocument("file:///page.html", "html", 1, page)

	first, err := parsed.Styles(doc)
	require.NoError(t, err)
	second, err := parsed.Styles(doc)
	require.NoError(t, err)

	assert.Same(t, first, second)
	require.Len(t, first.Colors, 1)
	assert.Equal(t, "red", first.Colors[0].Text)
}

func TestStyles_ContentChangesInvalidate(t *testing.T) {
	// Same URI and version, as when a document is closed and reopened
	before := documents.NewDocument("file:///reopened.html", "html", 1, "<style>a { color: red }</style>")
	after := documents.NewDocument("file:///reopened.html", "html", 1, "<style>a { color: green }</style>")

	first, err := parsed.Styles(before)
	require.NoError(t, err)
	second, err := parsed.Styles(after)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	require.Len(t, second.Colors, 1)
	assert.Equal(t, "green", second.Colors[0].Text)
}

func TestScriptsAndTemplates(t *testing.T) {
	doc := documents.NewDocument("file:///scripts.html", "html", 3, page)

	scripts, err := parsed.Scripts(doc)
	require.NoError(t, err)
	var names []string
	for _, s := range scripts.Symbols {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"f", "s"}, names)

	templates, err := parsed.Templates(doc)
	require.NoError(t, err)
	require.Len(t, templates.Colors, 1)
	assert.Equal(t, "blue", templates.Colors[0].Text)
	assert.Equal(t, "blue", page[templates.Colors[0].Span.Start:templates.Colors[0].Span.End])
}

func TestFlush(t *testing.T) {
	doc := documents.NewDocument("file:///flush.html", "html", 1, page)

	first, err := parsed.Styles(doc)
	require.NoError(t, err)
	parsed.Flush()
	second, err := parsed.Styles(doc)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, first, second)
}

func TestStyles_ConcurrentRequests(t *testing.T) {
	doc := documents.NewDocument("file:///concurrent.html", "html", 1, page)

	type outcome struct {
		styles *parsercss.ParseResult
		err    error
	}
	results := make(chan outcome, 8)
	for range 8 {
		go func() {
			styles, err := parsed.Styles(doc)
			results <- outcome{styles, err}
		}()
	}

	var first *parsercss.ParseResult
	for range 8 {
		got := <-results
		require.NoError(t, got.err)
		if first == nil {
			first = got.styles
			continue
		}
		assert.Same(t, first, got.styles)
	}
}
