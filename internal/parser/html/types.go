package html

import "bennypowers.dev/embedls/internal/embed"

// Token is one lexical unit of an HTML document
type Token struct {
	Kind  embed.TokenKind
	Start int
	End   int
}

// Scanner replays a tokenized HTML document. It implements embed.Scanner.
type Scanner struct {
	text   string
	tokens []Token
	pos    int
}

// Tokenizer turns HTML text into Scanners using the tree-sitter HTML grammar.
// The zero value is ready to use and safe for concurrent use.
type Tokenizer struct{}

var _ embed.Tokenizer = Tokenizer{}
