package css

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(cssLang); err != nil {
			panic(fmt.Sprintf("failed to set CSS language: %v", err))
		}
		return &Parser{parser: parser}
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
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// inlineSelector wraps declaration lists so they parse as a rule block
const inlineSelector = "x{"

// Parse parses a stylesheet. Spans are byte offsets into source.
func (p *Parser) Parse(source string) (*ParseResult, error) {
	src := []byte(source)
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	w := &walker{source: src, result: &ParseResult{}}
	root := tree.RootNode()
	w.collectErrors(root)
	for i := uint(0); i < root.ChildCount(); i++ {
		w.topLevel(root.Child(i))
	}
	return w.result, nil
}

// ParseAt parses a stylesheet that starts at offset in an enclosing
// document, such as the body of a css tagged template
func (p *Parser) ParseAt(source string, offset int) (*ParseResult, error) {
	result, err := p.Parse(source)
	if err != nil {
		return nil, err
	}
	result.shift(offset)
	return result, nil
}

// ParseInline parses the declaration list of a style attribute. offset is
// where value starts in the enclosing document; returned spans are relative
// to that document.
func (p *Parser) ParseInline(value string, offset int) (*ParseResult, error) {
	result, err := p.Parse(inlineSelector + value + "}")
	if err != nil {
		return nil, err
	}

	// The synthetic rule is not part of the document
	result.Rules = nil
	result.shift(offset - len(inlineSelector))

	lo, hi := offset, offset+len(value)
	for _, e := range result.Errors {
		e.Span.Start = max(lo, min(e.Span.Start, hi))
		e.Span.End = max(e.Span.Start, min(e.Span.End, hi))
	}
	return result, nil
}

type walker struct {
	source []byte
	result *ParseResult
}

func (w *walker) text(node *sitter.Node) string {
	return string(w.source[node.StartByte():node.EndByte()])
}

func span(node *sitter.Node) Span {
	return Span{
		Start: int(node.StartByte()), //nolint:gosec // G115: byte offsets are bounded by the source size
		End:   int(node.EndByte()),   //nolint:gosec // G115: byte offsets are bounded by the source size
	}
}

func isAtRule(kind string) bool {
	return kind == "at_rule" || strings.HasSuffix(kind, "_statement")
}

func (w *walker) topLevel(node *sitter.Node) {
	if node == nil {
		return
	}
	switch kind := node.Kind(); {
	case kind == "rule_set":
		w.result.Rules = append(w.result.Rules, w.rule(node))
	case kind == "declaration":
		w.declaration(node)
	case isAtRule(kind):
		w.result.AtRules = append(w.result.AtRules, w.atRule(node))
	}
}

// rule handles rule_set and keyframe_block nodes. Everything before the
// block is the selector.
func (w *walker) rule(node *sitter.Node) *Rule {
	rule := &Rule{Span: span(node)}
	selector := rule.Span
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "block" {
			continue
		}
		selector.End = span(child).Start
		rule.Declarations, rule.Rules = w.block(child)
		break
	}

	raw := string(w.source[selector.Start:selector.End])
	rule.Selector = strings.TrimSpace(raw)
	lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
	rule.SelectorSpan = Span{Start: selector.Start + lead, End: selector.Start + lead + len(rule.Selector)}
	return rule
}

func (w *walker) block(node *sitter.Node) ([]*Declaration, []*Rule) {
	var decls []*Declaration
	var rules []*Rule
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch kind := child.Kind(); {
		case kind == "declaration":
			if d := w.declaration(child); d != nil {
				decls = append(decls, d)
			}
		case kind == "rule_set", kind == "keyframe_block":
			rules = append(rules, w.rule(child))
		case kind == "block", kind == "keyframe_block_list":
			d, r := w.block(child)
			decls = append(decls, d...)
			rules = append(rules, r...)
		case isAtRule(kind):
			// Nested at-rules contribute their declarations and rules to the
			// enclosing rule
			at := w.atRule(child)
			rules = append(rules, at.Rules...)
		}
	}
	return decls, rules
}

func (w *walker) atRule(node *sitter.Node) *AtRule {
	at := &AtRule{Span: span(node)}
	preludeStart, preludeEnd := -1, int(node.EndByte()) //nolint:gosec // G115: byte offsets are bounded by the source size

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		switch {
		case i == 0:
			at.Name = w.text(child)
			preludeStart = int(child.EndByte()) //nolint:gosec // G115: byte offsets are bounded by the source size
		case kind == "block" || kind == "keyframe_block_list":
			preludeEnd = int(child.StartByte()) //nolint:gosec // G115: byte offsets are bounded by the source size
			_, at.Rules = w.block(child)
		}
	}

	if preludeStart >= 0 && preludeStart <= preludeEnd {
		at.Prelude = strings.TrimSpace(strings.TrimSuffix(
			strings.TrimSpace(string(w.source[preludeStart:preludeEnd])), ";"))
	}
	return at
}

func (w *walker) declaration(node *sitter.Node) *Declaration {
	decl := &Declaration{Span: span(node)}
	seenColon := false
	valueStart, valueEnd := -1, -1

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		kind := child.Kind()
		switch {
		case kind == "property_name":
			decl.Property = w.text(child)
			decl.PropertySpan = span(child)
		case kind == ":":
			seenColon = true
		case kind == ";":
		case kind == "important":
			decl.Important = true
		case seenColon:
			s := span(child)
			if valueStart < 0 {
				valueStart = s.Start
			}
			valueEnd = s.End
			w.colors(child)
		}
	}

	if decl.Property == "" {
		return nil
	}
	if valueStart >= 0 {
		decl.ValueSpan = Span{Start: valueStart, End: valueEnd}
		decl.Value = string(w.source[valueStart:valueEnd])
	} else {
		decl.ValueSpan = Span{Start: decl.PropertySpan.End, End: decl.PropertySpan.End}
	}

	w.result.Declarations = append(w.result.Declarations, decl)
	return decl
}

// colors finds color literals in a value node
func (w *walker) colors(node *sitter.Node) {
	switch node.Kind() {
	case "color_value":
		w.addColor(node, ColorHex)
		return
	case "plain_value":
		if IsNamedColor(w.text(node)) {
			w.addColor(node, ColorNamed)
		}
		return
	case "call_expression":
		if IsColorFunction(w.functionName(node)) {
			w.addColor(node, ColorFunction)
			return
		}
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			w.colors(child)
		}
	}
}

func (w *walker) functionName(call *sitter.Node) string {
	for i := uint(0); i < call.ChildCount(); i++ {
		if c := call.Child(i); c != nil && c.Kind() == "function_name" {
			return w.text(c)
		}
	}
	return ""
}

func (w *walker) addColor(node *sitter.Node, kind ColorKind) {
	w.result.Colors = append(w.result.Colors, &Color{
		Text: w.text(node),
		Kind: kind,
		Span: span(node),
	})
}

// collectErrors records ERROR and MISSING nodes. Subtrees without errors are
// skipped.
func (w *walker) collectErrors(node *sitter.Node) {
	switch {
	case node.IsMissing():
		w.result.Errors = append(w.result.Errors, &SyntaxError{
			Message: fmt.Sprintf("missing %q", node.Kind()),
			Missing: true,
			Span:    span(node),
		})
		return
	case node.IsError():
		w.result.Errors = append(w.result.Errors, &SyntaxError{
			Message: fmt.Sprintf("unexpected %q", snippet(w.text(node))),
			Span:    span(node),
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

// snippet shortens error text for messages
func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 24 {
		// Back off to a rune boundary
		cut := 24
		for cut > 0 && s[cut]&0xC0 == 0x80 {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}
