package embed_test

import (
	"strings"
	"testing"

	"bennypowers.dev/embedls/internal/embed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	kind       embed.TokenKind
	start, end int
}

// fakeTokenizer replays a fixed token stream regardless of the text it is given
type fakeTokenizer struct {
	tokens []fakeToken
}

func (f *fakeTokenizer) CreateScanner(text string) embed.Scanner {
	return &fakeScanner{text: text, tokens: f.tokens, pos: -1}
}

type fakeScanner struct {
	text   string
	tokens []fakeToken
	pos    int
}

func (s *fakeScanner) Scan() embed.TokenKind {
	if s.pos < len(s.tokens) {
		s.pos++
	}
	if s.pos >= len(s.tokens) {
		return embed.TokenEOS
	}
	return s.tokens[s.pos].kind
}

func (s *fakeScanner) current() fakeToken {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return fakeToken{kind: embed.TokenEOS, start: len(s.text), end: len(s.text)}
	}
	return s.tokens[s.pos]
}

func (s *fakeScanner) TokenOffset() int { return s.current().start }
func (s *fakeScanner) TokenEnd() int    { return s.current().end }
func (s *fakeScanner) TokenText() string {
	t := s.current()
	return s.text[t.start:t.end]
}

// streamBuilder locates each token's text in the document, left to right
type streamBuilder struct {
	t      *testing.T
	text   string
	cursor int
	tokens []fakeToken
}

func stream(t *testing.T, text string) *streamBuilder {
	return &streamBuilder{t: t, text: text}
}

func (b *streamBuilder) add(kind embed.TokenKind, needle string) *streamBuilder {
	b.t.Helper()
	idx := strings.Index(b.text[b.cursor:], needle)
	require.GreaterOrEqual(b.t, idx, 0, "token %q not found after offset %d", needle, b.cursor)
	start := b.cursor + idx
	end := start + len(needle)
	b.tokens = append(b.tokens, fakeToken{kind: kind, start: start, end: end})
	b.cursor = end
	return b
}

func (b *streamBuilder) tokenizer() *fakeTokenizer {
	return &fakeTokenizer{tokens: b.tokens}
}

func TestScan_StyleBlock(t *testing.T) {
	text := `<style>a{color:red}</style>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "style").
		add(embed.TokenStyles, "a{color:red}").
		add(embed.TokenEndTag, "</style>").
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	assert.Equal(t, embed.Region{LanguageID: "css", Start: 7, End: 19}, result.Regions[0])
	assert.Empty(t, result.Imports)
}

func TestScan_ScriptTypes(t *testing.T) {
	tests := []struct {
		name      string
		typeValue string
		want      string
	}{
		{name: "module", typeValue: `"module"`, want: "javascript"},
		{name: "text/javascript", typeValue: `"text/javascript"`, want: "javascript"},
		{name: "application/javascript", typeValue: `'application/javascript'`, want: "javascript"},
		{name: "text/ecmascript", typeValue: `"text/ecmascript"`, want: "javascript"},
		{name: "application/ecmascript", typeValue: `"application/ecmascript"`, want: "javascript"},
		{name: "text/babel", typeValue: `"text/babel"`, want: "javascript"},
		{name: "typescript", typeValue: `"text/typescript"`, want: "typescript"},
		{name: "template", typeValue: `"text/html"`, want: ""},
		{name: "unquoted module is not recognised", typeValue: `module`, want: ""},
		{name: "match is case sensitive", typeValue: `"TEXT/JAVASCRIPT"`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := `<script type=` + tt.typeValue + `>let x=1;</script>`
			tz := stream(t, text).
				add(embed.TokenStartTag, "script").
				add(embed.TokenAttributeName, "type").
				add(embed.TokenAttributeValue, tt.typeValue).
				add(embed.TokenScript, "let x=1;").
				tokenizer()

			result := embed.Scan(tz, text)

			require.Len(t, result.Regions, 1)
			assert.Equal(t, tt.want, result.Regions[0].LanguageID)
			assert.False(t, result.Regions[0].IsAttributeValue)
		})
	}
}

func TestScan_ScriptDefaultsToJavaScript(t *testing.T) {
	text := `<script>go()</script>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "script").
		add(embed.TokenScript, "go()").
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	assert.Equal(t, "javascript", result.Regions[0].LanguageID)
}

func TestScan_StartTagResetsScriptLanguage(t *testing.T) {
	text := `<script type="text/html"><p></p></script><script>run()</script>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "script").
		add(embed.TokenAttributeName, "type").
		add(embed.TokenAttributeValue, `"text/html"`).
		add(embed.TokenScript, "<p></p>").
		add(embed.TokenEndTag, "</script>").
		add(embed.TokenStartTag, "script").
		add(embed.TokenScript, "run()").
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 2)
	assert.Equal(t, "", result.Regions[0].LanguageID)
	assert.Equal(t, "javascript", result.Regions[1].LanguageID)
}

func TestScan_ScriptImports(t *testing.T) {
	text := `<SCRIPT src="app.js"></SCRIPT><script src='lib.js'></script><script src=bare.js></script>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "SCRIPT").
		add(embed.TokenAttributeName, "src").
		add(embed.TokenAttributeValue, `"app.js"`).
		add(embed.TokenStartTag, "script").
		add(embed.TokenAttributeName, "src").
		add(embed.TokenAttributeValue, `'lib.js'`).
		add(embed.TokenStartTag, "script").
		add(embed.TokenAttributeName, "src").
		add(embed.TokenAttributeValue, `bare.js`).
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Imports, 3)
	// Only the leading quote is removed
	assert.Equal(t, `app.js"`, result.Imports[0].Value)
	assert.Equal(t, `lib.js'`, result.Imports[1].Value)
	assert.Equal(t, `bare.js`, result.Imports[2].Value)
	assert.Equal(t, strings.Index(text, `"app.js"`), result.Imports[0].Start)
	assert.Empty(t, result.Regions)
}

func TestScan_SrcOnOtherTagsIsNotAnImport(t *testing.T) {
	text := `<img src="a.png">`
	tz := stream(t, text).
		add(embed.TokenStartTag, "img").
		add(embed.TokenAttributeName, "src").
		add(embed.TokenAttributeValue, `"a.png"`).
		tokenizer()

	result := embed.Scan(tz, text)

	assert.Empty(t, result.Imports)
	assert.Empty(t, result.Regions)
}

func TestScan_AttributeRegions(t *testing.T) {
	text := `<div style="color:red" onclick='f()' title="x" OnMouseOver="g()" STYLE=margin:0>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "div").
		add(embed.TokenAttributeName, "style").
		add(embed.TokenAttributeValue, `"color:red"`).
		add(embed.TokenAttributeName, "onclick").
		add(embed.TokenAttributeValue, `'f()'`).
		add(embed.TokenAttributeName, "title").
		add(embed.TokenAttributeValue, `"x"`).
		add(embed.TokenAttributeName, "OnMouseOver").
		add(embed.TokenAttributeValue, `"g()"`).
		add(embed.TokenAttributeName, "STYLE").
		add(embed.TokenAttributeValue, `margin:0`).
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 4)

	style := result.Regions[0]
	assert.Equal(t, "css", style.LanguageID)
	assert.True(t, style.IsAttributeValue)
	assert.Equal(t, "color:red", text[style.Start:style.End])

	onclick := result.Regions[1]
	assert.Equal(t, "javascript", onclick.LanguageID)
	assert.Equal(t, "f()", text[onclick.Start:onclick.End])

	mouseOver := result.Regions[2]
	assert.Equal(t, "javascript", mouseOver.LanguageID)
	assert.Equal(t, "g()", text[mouseOver.Start:mouseOver.End])

	unquoted := result.Regions[3]
	assert.Equal(t, "css", unquoted.LanguageID)
	assert.Equal(t, "margin:0", text[unquoted.Start:unquoted.End])
}

func TestScan_QuoteTrimChecksOnlyLeadingCharacter(t *testing.T) {
	// The value token is missing its closing quote; the last character is
	// still dropped.
	text := `<p style="color:red>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "p").
		add(embed.TokenAttributeName, "style").
		add(embed.TokenAttributeValue, `"color:red`).
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	r := result.Regions[0]
	assert.Equal(t, "color:re", text[r.Start:r.End])
}

func TestScan_PendingAttributeIsCleared(t *testing.T) {
	text := `<div style="a:b" "c:d">`
	tz := stream(t, text).
		add(embed.TokenStartTag, "div").
		add(embed.TokenAttributeName, "style").
		add(embed.TokenAttributeValue, `"a:b"`).
		add(embed.TokenAttributeValue, `"c:d"`).
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	assert.Equal(t, "a:b", text[result.Regions[0].Start:result.Regions[0].End])
}

func TestScan_TypeOnNonScriptTagIsAnOrdinaryAttribute(t *testing.T) {
	text := `<input type="text/typescript"><script>a()</script>`
	tz := stream(t, text).
		add(embed.TokenStartTag, "input").
		add(embed.TokenAttributeName, "type").
		add(embed.TokenAttributeValue, `"text/typescript"`).
		add(embed.TokenStartTag, "script").
		add(embed.TokenScript, "a()").
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	assert.Equal(t, "javascript", result.Regions[0].LanguageID)
}

func TestScan_LoneQuoteValueKeepsStartBeforeEnd(t *testing.T) {
	text := `<p style=">`
	tz := stream(t, text).
		add(embed.TokenStartTag, "p").
		add(embed.TokenAttributeName, "style").
		add(embed.TokenAttributeValue, `"`).
		tokenizer()

	result := embed.Scan(tz, text)

	require.Len(t, result.Regions, 1)
	assert.LessOrEqual(t, result.Regions[0].Start, result.Regions[0].End)
}

func TestAttributeLanguage(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"style", "css"},
		{"Style", "css"},
		{"styles", ""},
		{"onclick", "javascript"},
		{"ONLOAD", "javascript"},
		{"on", ""},
		{"on-click", ""},
		{"class", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, embed.AttributeLanguage(tt.name))
		})
	}
}

func TestResult_LanguageAt(t *testing.T) {
	result := &embed.Result{
		Regions: []embed.Region{
			{LanguageID: "css", Start: 7, End: 19},
			{LanguageID: "", Start: 40, End: 50},
			{LanguageID: "javascript", Start: 60, End: 70},
		},
	}

	assert.Equal(t, "html", result.LanguageAt(0))
	assert.Equal(t, "css", result.LanguageAt(7))
	assert.Equal(t, "css", result.LanguageAt(19))
	assert.Equal(t, "html", result.LanguageAt(45), "unclassified regions read as html")
	assert.Equal(t, "javascript", result.LanguageAt(65))

	css := result.RegionsFor("css")
	require.Len(t, css, 1)
	assert.Equal(t, 7, css[0].Start)
}

func TestTokenKind_String(t *testing.T) {
	assert.Equal(t, "StartTag", embed.TokenStartTag.String())
	assert.Equal(t, "EOS", embed.TokenEOS.String())
	assert.Equal(t, "Unknown", embed.TokenKind(99).String())
}
