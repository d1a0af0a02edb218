// Package css prepares embedded CSS for analysis and formats CSS values for
// the editor.
package css

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"bennypowers.dev/embedls/internal/embed"
	parsercss "bennypowers.dev/embedls/internal/parser/css"
	"bennypowers.dev/embedls/internal/parser/js"
	"github.com/mazznoer/csscolorparser"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ParseEmbedded parses every CSS region of a markup document.
// Style blocks are parsed together as the byte-aligned projection of the
// document; style attributes are parsed one at a time as declaration lists.
// All spans in the result are byte offsets into text.
func ParseEmbedded(text string, scan *embed.Result) (*parsercss.ParseResult, error) {
	var blocks, inline []embed.Region
	for _, r := range scan.RegionsFor(embed.LanguageCSS) {
		if r.IsAttributeValue {
			inline = append(inline, r)
		} else {
			blocks = append(blocks, r)
		}
	}

	merged := &parsercss.ParseResult{}
	if len(blocks) == 0 && len(inline) == 0 {
		return merged, nil
	}

	parser := parsercss.AcquireParser()
	defer parsercss.ReleaseParser(parser)

	if len(blocks) > 0 {
		result, err := parser.Parse(embed.Project(text, blocks))
		if err != nil {
			return nil, fmt.Errorf("failed to parse style blocks: %w", err)
		}
		merge(merged, result)
	}

	for _, r := range inline {
		result, err := parser.ParseInline(text[r.Start:r.End], r.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse style attribute at %d: %w", r.Start, err)
		}
		merge(merged, result)
	}

	sortBySpan(merged)
	return merged, nil
}

// ParseTemplates parses the literal segments of css tagged templates found
// in scripts. Segments are parsed separately since ${...} splits them.
func ParseTemplates(templates []js.TemplateRegion) (*parsercss.ParseResult, error) {
	merged := &parsercss.ParseResult{}

	parser := parsercss.AcquireParser()
	defer parsercss.ReleaseParser(parser)

	for _, tmpl := range templates {
		if tmpl.Tag != "css" {
			continue
		}
		for _, seg := range tmpl.Segments {
			result, err := parser.ParseAt(seg.Content, seg.Start)
			if err != nil {
				return nil, fmt.Errorf("failed to parse css template segment at %d: %w", seg.Start, err)
			}
			// Segments are fragments; their syntax errors are meaningless
			result.Errors = nil
			merge(merged, result)
		}
	}

	sortBySpan(merged)
	return merged, nil
}

func merge(dst, src *parsercss.ParseResult) {
	dst.Rules = append(dst.Rules, src.Rules...)
	dst.AtRules = append(dst.AtRules, src.AtRules...)
	dst.Declarations = append(dst.Declarations, src.Declarations...)
	dst.Colors = append(dst.Colors, src.Colors...)
	dst.Errors = append(dst.Errors, src.Errors...)
}

func sortBySpan(r *parsercss.ParseResult) {
	slices.SortStableFunc(r.Declarations, func(a, b *parsercss.Declaration) int {
		return a.Span.Start - b.Span.Start
	})
	slices.SortStableFunc(r.Colors, func(a, b *parsercss.Color) int {
		return a.Span.Start - b.Span.Start
	})
	slices.SortStableFunc(r.Errors, func(a, b *parsercss.SyntaxError) int {
		return a.Span.Start - b.Span.Start
	})
}

// EnclosingRule returns the innermost rule whose block contains offset
func EnclosingRule(rules []*parsercss.Rule, offset int) *parsercss.Rule {
	for _, rule := range rules {
		if !rule.Span.Contains(offset) {
			continue
		}
		if inner := EnclosingRule(rule.Rules, offset); inner != nil {
			return inner
		}
		return rule
	}
	return nil
}

// ParseColor parses a CSS color literal into an LSP color
func ParseColor(value string) (*protocol.Color, error) {
	value = strings.TrimSpace(value)

	parsed, err := csscolorparser.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("unsupported color format: %s", value)
	}

	return &protocol.Color{
		Red:   protocol.Decimal(parsed.R),
		Green: protocol.Decimal(parsed.G),
		Blue:  protocol.Decimal(parsed.B),
		Alpha: protocol.Decimal(parsed.A),
	}, nil
}

// FormatColor renders an LSP color in the notations the editor can offer:
// hex first, then rgb() or rgba(), then hsl() or hsla()
func FormatColor(color protocol.Color) []string {
	c := csscolorparser.Color{
		R: float64(color.Red),
		G: float64(color.Green),
		B: float64(color.Blue),
		A: float64(color.Alpha),
	}

	r, g, b := channel(c.R), channel(c.G), channel(c.B)
	h, s, l := hsl(c.R, c.G, c.B)
	opaque := c.A >= 1

	out := []string{c.HexString()}
	if opaque {
		out = append(out,
			fmt.Sprintf("rgb(%d, %d, %d)", r, g, b),
			fmt.Sprintf("hsl(%s, %s%%, %s%%)", number(h), number(s), number(l)),
		)
	} else {
		a := number(c.A)
		out = append(out,
			fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, a),
			fmt.Sprintf("hsla(%s, %s%%, %s%%, %s)", number(h), number(s), number(l), a),
		)
	}
	return out
}

func channel(v float64) int {
	return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// number formats with at most two decimals and no trailing zeros
func number(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// hsl converts rgb in [0,1] to hue in degrees and saturation and lightness
// in percent
func hsl(r, g, b float64) (h, s, l float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2

	d := maxC - minC
	if d == 0 {
		return 0, 0, l * 100
	}

	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}

	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h * 60, s * 100, l * 100
}
