package js

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// Parser handles parsing JavaScript with tree-sitter
type Parser struct {
	parser        *sitter.Parser
	templateQuery *sitter.Query
}

var jsLang = sitter.NewLanguage(tree_sitter_javascript.Language())

// parserPool is a pool of reusable JS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(jsLang); err != nil {
			panic(fmt.Sprintf("failed to set JS language: %v", err))
		}

		templateQuery, qerr := sitter.NewQuery(jsLang, `
			(call_expression
				function: (identifier) @tag
				arguments: (template_string) @template)
		`)
		if qerr != nil {
			panic(fmt.Sprintf("failed to compile template query: %v", qerr))
		}

		return &Parser{
			parser:        parser,
			templateQuery: templateQuery,
		}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
	if p.templateQuery != nil {
		p.templateQuery.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Parse parses a script body that starts at offset in the enclosing document
func (p *Parser) Parse(source string, offset int) (*ParseResult, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse JavaScript")
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{source: src, offset: offset, result: &ParseResult{}}
	w.collectErrors(root)
	for i := uint(0); i < root.ChildCount(); i++ {
		w.statement(root.Child(i))
	}
	w.result.Templates = p.templates(root, w)
	return w.result, nil
}

// templates finds tagged template literals and splits them at ${...}
// boundaries
func (p *Parser) templates(root *sitter.Node, w *walker) []TemplateRegion {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	var regions []TemplateRegion
	matches := cursor.Matches(p.templateQuery, root, w.source)
	for match := matches.Next(); match != nil; match = matches.Next() {
		var tagName string
		var templateNode sitter.Node
		foundTemplate := false

		for _, capture := range match.Captures {
			switch p.templateQuery.CaptureNames()[capture.Index] {
			case "tag":
				tagName = w.text(&capture.Node)
			case "template":
				templateNode = capture.Node
				foundTemplate = true
			}
		}
		if !foundTemplate {
			continue
		}

		var segments []Segment
		for i := uint(0); i < templateNode.ChildCount(); i++ {
			child := templateNode.Child(i)
			if child != nil && child.Kind() == "string_fragment" {
				segments = append(segments, Segment{
					Content: w.text(child),
					Start:   w.span(child).Start,
				})
			}
		}
		if len(segments) > 0 {
			regions = append(regions, TemplateRegion{Segments: segments, Tag: tagName})
		}
	}
	return regions
}

type walker struct {
	source []byte
	offset int
	result *ParseResult
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.source[node.StartByte():node.EndByte()])
}

func (w *walker) span(node *sitter.Node) Span {
	return Span{
		Start: w.offset + int(node.StartByte()), //nolint:gosec // G115: byte offsets are bounded by the source size
		End:   w.offset + int(node.EndByte()),   //nolint:gosec // G115: byte offsets are bounded by the source size
	}
}

// statement records the symbols declared by a top-level statement
func (w *walker) statement(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "export_statement":
		if decl := node.ChildByFieldName("declaration"); decl != nil {
			w.statement(decl)
		}
	case "function_declaration", "generator_function_declaration":
		if sym := w.named(node, SymbolFunction); sym != nil {
			w.result.Symbols = append(w.result.Symbols, sym)
		}
	case "class_declaration":
		if sym := w.class(node); sym != nil {
			w.result.Symbols = append(w.result.Symbols, sym)
		}
	case "lexical_declaration", "variable_declaration":
		w.variables(node)
	}
}

func (w *walker) named(node *sitter.Node, kind SymbolKind) *Symbol {
	name := node.ChildByFieldName("name")
	if name == nil {
		return nil
	}
	return &Symbol{
		Name:     w.text(name),
		Kind:     kind,
		Span:     w.span(node),
		NameSpan: w.span(name),
	}
}

func (w *walker) class(node *sitter.Node) *Symbol {
	sym := w.named(node, SymbolClass)
	if sym == nil {
		return nil
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return sym
	}
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil || child.Kind() != "method_definition" {
			continue
		}
		if method := w.named(child, SymbolMethod); method != nil {
			sym.Children = append(sym.Children, method)
		}
	}
	return sym
}

// variables records each declarator of a const, let or var statement.
// Declarators bound to a function expression are reported as functions.
func (w *walker) variables(node *sitter.Node) {
	kind := SymbolVariable
	if first := node.Child(0); first != nil && first.Kind() == "const" {
		kind = SymbolConstant
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		name := child.ChildByFieldName("name")
		if name == nil || name.Kind() != "identifier" {
			// Destructuring patterns have no single name
			continue
		}

		symKind := kind
		if value := child.ChildByFieldName("value"); value != nil {
			switch value.Kind() {
			case "arrow_function", "function_expression", "function", "generator_function":
				symKind = SymbolFunction
			case "class":
				symKind = SymbolClass
			}
		}

		w.result.Symbols = append(w.result.Symbols, &Symbol{
			Name:     w.text(name),
			Kind:     symKind,
			Span:     w.span(node),
			NameSpan: w.span(name),
		})
	}
}

// collectErrors records ERROR and MISSING nodes. Subtrees without errors are
// skipped.
func (w *walker) collectErrors(node *sitter.Node) {
	switch {
	case node.IsMissing():
		w.result.Errors = append(w.result.Errors, &SyntaxError{
			Message: fmt.Sprintf("missing %q", node.Kind()),
			Missing: true,
			Span:    w.span(node),
		})
		return
	case node.IsError():
		w.result.Errors = append(w.result.Errors, &SyntaxError{
			Message: fmt.Sprintf("unexpected %q", snippet(w.text(node))),
			Span:    w.span(node),
		})
		return
	case !node.HasError():
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			w.collectErrors(child)
		}
	}
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 24 {
		cut := 24
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}
