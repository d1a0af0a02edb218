package css

// ColorKind classifies how a color is spelled in the source
type ColorKind int

const (
	// ColorHex is a hash color such as #fff or #336699cc
	ColorHex ColorKind = iota
	// ColorNamed is a named color keyword such as rebeccapurple
	ColorNamed
	// ColorFunction is an rgb(), rgba(), hsl(), hsla() or hwb() call
	ColorFunction
)

// Span is a half-open byte range in the parsed source
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset falls within the span, end inclusive so a
// cursor just after the last character still counts
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset <= s.End
}

// Declaration is a single property: value pair
type Declaration struct {
	Property string
	Value    string
	// Important is true when the value carries !important
	Important bool

	Span         Span
	PropertySpan Span
	ValueSpan    Span
}

// Rule is a rule set, with its own declarations and any nested rules
type Rule struct {
	Selector     string
	Span         Span
	SelectorSpan Span
	Declarations []*Declaration
	Rules        []*Rule
}

// AtRule is an at-rule such as @media or @keyframes, with the rules it wraps
type AtRule struct {
	Name    string
	Prelude string
	Span    Span
	Rules   []*Rule
}

// Color is a color literal found in a declaration value
type Color struct {
	Text string
	Kind ColorKind
	Span Span
}

// SyntaxError is an ERROR or MISSING node reported by tree-sitter
type SyntaxError struct {
	Message string
	Missing bool
	Span    Span
}

// ParseResult contains the results of parsing CSS
type ParseResult struct {
	// Rules are the top-level rule sets, in source order
	Rules []*Rule
	// AtRules are the top-level at-rules, in source order
	AtRules []*AtRule
	// Declarations holds every declaration, however deeply nested
	Declarations []*Declaration
	Colors       []*Color
	Errors       []*SyntaxError
}

// DeclarationAt returns the declaration whose span contains offset, or nil
func (r *ParseResult) DeclarationAt(offset int) *Declaration {
	for _, d := range r.Declarations {
		if d.Span.Contains(offset) {
			return d
		}
	}
	return nil
}

// shift moves every span in the result by delta bytes
func (r *ParseResult) shift(delta int) {
	move := func(s *Span) {
		s.Start += delta
		s.End += delta
	}
	var moveRules func(rules []*Rule)
	moveRules = func(rules []*Rule) {
		for _, rule := range rules {
			move(&rule.Span)
			move(&rule.SelectorSpan)
			moveRules(rule.Rules)
		}
	}
	moveRules(r.Rules)
	for _, at := range r.AtRules {
		move(&at.Span)
		moveRules(at.Rules)
	}
	for _, d := range r.Declarations {
		move(&d.Span)
		move(&d.PropertySpan)
		move(&d.ValueSpan)
	}
	for _, c := range r.Colors {
		move(&c.Span)
	}
	for _, e := range r.Errors {
		move(&e.Span)
	}
}
