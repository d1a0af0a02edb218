package embed

// TokenKind classifies a token produced by a markup Scanner
type TokenKind int

const (
	// TokenOther is any token the region scanner does not act on
	TokenOther TokenKind = iota
	// TokenStartTag is the name of an opening tag
	TokenStartTag
	// TokenEndTag is a closing tag
	TokenEndTag
	// TokenAttributeName is the name of an attribute inside a start tag
	TokenAttributeName
	// TokenAttributeValue is the raw attribute value, including any quotes
	TokenAttributeValue
	// TokenStyles is the raw content of a <style> element
	TokenStyles
	// TokenScript is the raw content of a <script> element
	TokenScript
	// TokenComment is an HTML comment
	TokenComment
	// TokenContent is text content between tags
	TokenContent
	// TokenEOS marks the end of the token stream
	TokenEOS
)

var tokenKindNames = [...]string{
	TokenOther:          "Other",
	TokenStartTag:       "StartTag",
	TokenEndTag:         "EndTag",
	TokenAttributeName:  "AttributeName",
	TokenAttributeValue: "AttributeValue",
	TokenStyles:         "Styles",
	TokenScript:         "Script",
	TokenComment:        "Comment",
	TokenContent:        "Content",
	TokenEOS:            "EOS",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "Unknown"
	}
	return tokenKindNames[k]
}

// Scanner is a pull-based token stream over a single document.
// Each call to Scan advances to the next token and returns its kind.
// Once TokenEOS is returned, every further call returns TokenEOS.
type Scanner interface {
	Scan() TokenKind
	// TokenOffset is the byte offset where the current token starts
	TokenOffset() int
	// TokenEnd is the byte offset just past the current token
	TokenEnd() int
	// TokenText is the source text of the current token
	TokenText() string
}

// Tokenizer creates Scanners. Implementations must guarantee that every
// Scanner eventually yields TokenEOS; the region scanner does not guard
// against a stream that never ends.
type Tokenizer interface {
	CreateScanner(text string) Scanner
}

// Language identifiers assigned to regions
const (
	LanguageCSS        = "css"
	LanguageJavaScript = "javascript"
	LanguageTypeScript = "typescript"
	LanguageHTML       = "html"
)

// Region is a span of embedded-language content inside a markup document.
// An empty LanguageID means the content was recognised but should not be
// treated as any embeddable language.
type Region struct {
	LanguageID       string
	Start            int
	End              int
	IsAttributeValue bool
}

// Contains reports whether offset lies within [Start, End]
func (r Region) Contains(offset int) bool {
	return r.Start <= offset && offset <= r.End
}

// Result is everything one pass of the region scanner collects
type Result struct {
	Regions []Region
	// Imports are script src values with one leading quote removed
	Imports []Import
}

// Import is a <script src> reference found while scanning
type Import struct {
	// Value is the attribute value with a single leading quote stripped.
	// A trailing quote, if any, is kept.
	Value string
	// Start and End span the raw attribute value token
	Start int
	End   int
}

// RegionAt returns the first region containing offset
func (r *Result) RegionAt(offset int) (Region, bool) {
	for _, region := range r.Regions {
		if region.Contains(offset) {
			return region, true
		}
	}
	return Region{}, false
}

// LanguageAt returns the embedded language at offset, or LanguageHTML
// when the offset is outside every classified region
func (r *Result) LanguageAt(offset int) string {
	region, ok := r.RegionAt(offset)
	if !ok || region.LanguageID == "" {
		return LanguageHTML
	}
	return region.LanguageID
}

// RegionsFor returns the regions classified with languageID
func (r *Result) RegionsFor(languageID string) []Region {
	var regions []Region
	for _, region := range r.Regions {
		if region.LanguageID == languageID {
			regions = append(regions, region)
		}
	}
	return regions
}
