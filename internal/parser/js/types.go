package js

// SymbolKind classifies a declaration found in a script
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolClass
	SymbolMethod
	SymbolVariable
	SymbolConstant
)

// Span is a half-open byte range
type Span struct {
	Start int
	End   int
}

// Symbol is a named declaration. Classes carry their methods as children.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Span     Span
	NameSpan Span
	Children []*Symbol
}

// Segment represents a literal text segment from a template string,
// between ${...} expression boundaries
type Segment struct {
	// Content is the literal text of this segment
	Content string
	// Start is the byte offset of the segment in the enclosing document
	Start int
}

// TemplateRegion represents a tagged template literal such as css`...`
type TemplateRegion struct {
	// Segments contains the literal text parts of the template, split at ${...} boundaries
	Segments []Segment
	// Tag is the template tag function name
	Tag string
}

// SyntaxError is an ERROR or MISSING node reported by tree-sitter
type SyntaxError struct {
	Message string
	Missing bool
	Span    Span
}

// ParseResult contains the declarations, templates and syntax errors of a
// script. All spans are relative to the enclosing document.
type ParseResult struct {
	Symbols   []*Symbol
	Templates []TemplateRegion
	Errors    []*SyntaxError
}
