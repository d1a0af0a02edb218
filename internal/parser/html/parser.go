package html

import (
	"fmt"
	"sync"

	"bennypowers.dev/embedls/internal/embed"
	"bennypowers.dev/embedls/internal/log"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
)

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable tree-sitter HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}
		return parser
	},
}

func acquireParser() *sitter.Parser {
	p := parserPool.Get().(*sitter.Parser)
	p.Reset()
	return p
}

func releaseParser(p *sitter.Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*sitter.Parser); ok && p != nil {
			p.Close()
		}
	}
}

// CreateScanner tokenizes text and returns a Scanner positioned before the
// first token
func (Tokenizer) CreateScanner(text string) embed.Scanner {
	return &Scanner{
		text:   text,
		tokens: Tokenize(text),
		pos:    -1,
	}
}

// Tokenize returns the tokens of an HTML document in source order.
// The end-of-stream token is not included.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	parser := acquireParser()
	defer releaseParser(parser)

	source := []byte(text)
	tree := parser.Parse(source, nil)
	if tree == nil {
		log.Warn("HTML parse produced no tree (%d bytes)", len(source))
		return nil
	}
	defer tree.Close()

	return collect(tree.RootNode(), nil)
}

// collect walks node in document order, appending the tokens it produces
func collect(node *sitter.Node, tokens []Token) []Token {
	if node == nil {
		return tokens
	}

	switch node.Kind() {
	case "start_tag", "self_closing_tag":
		return collectTag(node, tokens)

	case "style_element":
		return collectRawTextElement(node, embed.TokenStyles, tokens)

	case "script_element":
		return collectRawTextElement(node, embed.TokenScript, tokens)

	case "end_tag", "erroneous_end_tag":
		return append(tokens, tokenFor(embed.TokenEndTag, node))

	case "comment":
		return append(tokens, tokenFor(embed.TokenComment, node))

	case "text":
		return append(tokens, tokenFor(embed.TokenContent, node))

	case "doctype":
		return append(tokens, tokenFor(embed.TokenOther, node))
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		tokens = collect(node.Child(i), tokens)
	}
	return tokens
}

// collectTag emits the tag name followed by each attribute's name and value
func collectTag(node *sitter.Node, tokens []Token) []Token {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "tag_name":
			tokens = append(tokens, tokenFor(embed.TokenStartTag, child))
		case "attribute":
			tokens = collectAttribute(child, tokens)
		}
	}
	return tokens
}

func collectAttribute(node *sitter.Node, tokens []Token) []Token {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "attribute_name":
			tokens = append(tokens, tokenFor(embed.TokenAttributeName, child))
		case "attribute_value", "quoted_attribute_value":
			// The quoted form spans the quotes as well
			tokens = append(tokens, tokenFor(embed.TokenAttributeValue, child))
		}
	}
	return tokens
}

// collectRawTextElement handles <style> and <script>, whose body is a single
// raw_text node. An empty element has a zero-width raw_text node and gets no
// body token.
func collectRawTextElement(node *sitter.Node, bodyKind embed.TokenKind, tokens []Token) []Token {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "raw_text" {
			if child.StartByte() < child.EndByte() {
				tokens = append(tokens, tokenFor(bodyKind, child))
			}
			continue
		}
		tokens = collect(child, tokens)
	}
	return tokens
}

func tokenFor(kind embed.TokenKind, node *sitter.Node) Token {
	return Token{
		Kind:  kind,
		Start: int(node.StartByte()), //nolint:gosec // G115: byte offsets are bounded by the document size
		End:   int(node.EndByte()),   //nolint:gosec // G115: byte offsets are bounded by the document size
	}
}

// Scan advances to the next token
func (s *Scanner) Scan() embed.TokenKind {
	if s.pos < len(s.tokens) {
		s.pos++
	}
	if s.pos >= len(s.tokens) {
		return embed.TokenEOS
	}
	return s.tokens[s.pos].Kind
}

func (s *Scanner) current() Token {
	if s.pos < 0 || s.pos >= len(s.tokens) {
		return Token{Kind: embed.TokenEOS, Start: len(s.text), End: len(s.text)}
	}
	return s.tokens[s.pos]
}

// TokenOffset returns the byte offset of the current token
func (s *Scanner) TokenOffset() int {
	return s.current().Start
}

// TokenEnd returns the byte offset just past the current token
func (s *Scanner) TokenEnd() int {
	return s.current().End
}

// TokenText returns the source text of the current token
func (s *Scanner) TokenText() string {
	t := s.current()
	return s.text[t.Start:t.End]
}
