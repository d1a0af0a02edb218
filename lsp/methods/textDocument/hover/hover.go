package hover

import (
	"bytes"
	"fmt"
	"slices"
	"text/template"

	"bennypowers.dev/embedls/internal/documents"
	"bennypowers.dev/embedls/internal/embed"
	"bennypowers.dev/embedls/internal/log"
	parsercss "bennypowers.dev/embedls/internal/parser/css"
	"bennypowers.dev/embedls/internal/parser/html"
	parserjs "bennypowers.dev/embedls/internal/parser/js"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/helpers/css"
	"bennypowers.dev/embedls/lsp/helpers/parsed"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// declarationHover is rendered for a CSS declaration
type declarationHover struct {
	Selector  string
	Property  string
	Value     string
	Important bool
}

// symbolHover is rendered for a script declaration name
type symbolHover struct {
	Keyword string
	Name    string
}

var declarationTemplate = template.Must(template.New("declaration").Parse("```css\n" +
	`{{if .Selector}}{{.Selector}} {
  {{.Property}}: {{.Value}}{{if .Important}} !important{{end}};
}{{else}}{{.Property}}: {{.Value}}{{if .Important}} !important{{end}};{{end}}` +
	"\n```"))

var declarationPlaintextTemplate = template.Must(template.New("declarationPlaintext").Parse(
	`{{if .Selector}}{{.Selector}} { {{.Property}}: {{.Value}}{{if .Important}} !important{{end}}; }{{else}}{{.Property}}: {{.Value}}{{if .Important}} !important{{end}};{{end}}`))

var symbolTemplate = template.Must(template.New("symbol").Parse("```javascript\n{{.Keyword}} {{.Name}}\n```"))

var symbolPlaintextTemplate = template.Must(template.New("symbolPlaintext").Parse(`{{.Keyword}} {{.Name}}`))

var languageTemplate = template.Must(template.New("language").Parse("Embedded `{{.}}`"))

var languagePlaintextTemplate = template.Must(template.New("languagePlaintext").Parse(`Embedded {{.}}`))

func render(markdown, plaintext *template.Template, format protocol.MarkupKind, data any) (string, error) {
	tmpl := markdown
	if format == protocol.MarkupKindPlainText {
		tmpl = plaintext
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func createHoverResponse(content, text string, start, end int, format protocol.MarkupKind) *protocol.Hover {
	rng := helpers.ToRange(text, start, end)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  format,
			Value: content,
		},
		Range: &rng,
	}
}

// Hover handles the textDocument/hover request
func Hover(req *types.RequestContext, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debug("Hover requested: %s at line %d, char %d", uri, position.Line, position.Character)

	doc := req.Server.Document(uri)
	if !req.Server.IsMarkupDocument(doc) {
		return nil, nil
	}

	text := doc.Content()
	offset := helpers.ToOffset(text, position)
	region, ok := doc.Embedded().RegionAt(offset)

	switch {
	case embed.IsInStyleRegion(html.Tokenizer{}, text, offset),
		ok && region.LanguageID == embed.LanguageCSS:
		return hoverCSS(req, doc, offset)
	case ok && region.LanguageID == embed.LanguageJavaScript:
		return hoverScript(req, doc, region, offset)
	case ok && region.LanguageID != "":
		content, err := render(languageTemplate, languagePlaintextTemplate, req.Server.PreferredHoverFormat(), region.LanguageID)
		if err != nil {
			return nil, fmt.Errorf("failed to render language hover: %w", err)
		}
		return createHoverResponse(content, text, region.Start, region.End, req.Server.PreferredHoverFormat()), nil
	}

	return nil, nil
}

func hoverCSS(req *types.RequestContext, doc *documents.Document, offset int) (*protocol.Hover, error) {
	text := doc.Content()
	result, err := parsed.Styles(doc)
	if err != nil {
		return nil, err
	}

	decl := result.DeclarationAt(offset)
	if decl == nil {
		return nil, nil
	}

	data := declarationHover{
		Property:  decl.Property,
		Value:     decl.Value,
		Important: decl.Important,
	}
	if rule := css.EnclosingRule(allRules(result), offset); rule != nil {
		data.Selector = rule.Selector
	}

	format := req.Server.PreferredHoverFormat()
	content, err := render(declarationTemplate, declarationPlaintextTemplate, format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render declaration hover: %w", err)
	}
	return createHoverResponse(content, text, decl.Span.Start, decl.Span.End, format), nil
}

// allRules returns the top-level rules and those directly inside at-rules
func allRules(result *parsercss.ParseResult) []*parsercss.Rule {
	rules := slices.Clone(result.Rules)
	for _, at := range result.AtRules {
		rules = append(rules, at.Rules...)
	}
	return rules
}

func hoverScript(req *types.RequestContext, doc *documents.Document, region embed.Region, offset int) (*protocol.Hover, error) {
	text := doc.Content()
	format := req.Server.PreferredHoverFormat()

	result, err := parsed.Scripts(doc)
	if err != nil {
		return nil, err
	}

	if symbol := symbolAt(result.Symbols, offset); symbol != nil {
		content, err := render(symbolTemplate, symbolPlaintextTemplate, format, symbolHover{
			Keyword: keyword(symbol.Kind),
			Name:    symbol.Name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render symbol hover: %w", err)
		}
		return createHoverResponse(content, text, symbol.NameSpan.Start, symbol.NameSpan.End, format), nil
	}

	content, err := render(languageTemplate, languagePlaintextTemplate, format, region.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("failed to render language hover: %w", err)
	}
	return createHoverResponse(content, text, region.Start, region.End, format), nil
}

// symbolAt finds the symbol, or class member, whose name contains offset
func symbolAt(symbols []*parserjs.Symbol, offset int) *parserjs.Symbol {
	for _, s := range symbols {
		if s.NameSpan.Start <= offset && offset <= s.NameSpan.End {
			return s
		}
		if child := symbolAt(s.Children, offset); child != nil {
			return child
		}
	}
	return nil
}

func keyword(kind parserjs.SymbolKind) string {
	switch kind {
	case parserjs.SymbolFunction:
		return "function"
	case parserjs.SymbolClass:
		return "class"
	case parserjs.SymbolMethod:
		return "(method)"
	case parserjs.SymbolConstant:
		return "const"
	default:
		return "let"
	}
}
