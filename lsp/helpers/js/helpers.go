// Package js gathers the scripts embedded in a markup document
package js

import (
	"fmt"
	"slices"

	"bennypowers.dev/embedls/internal/embed"
	"bennypowers.dev/embedls/internal/parser/js"
)

// ParseScripts parses every JavaScript region of a markup document.
// Symbols are only collected from <script> bodies; event handler attributes
// contribute templates and errors but declare nothing visible to the outline.
func ParseScripts(text string, scan *embed.Result) (*js.ParseResult, error) {
	merged := &js.ParseResult{}

	regions := scan.RegionsFor(embed.LanguageJavaScript)
	if len(regions) == 0 {
		return merged, nil
	}

	parser := js.AcquireParser()
	defer js.ReleaseParser(parser)

	for _, r := range regions {
		result, err := parser.Parse(text[r.Start:r.End], r.Start)
		if err != nil {
			return nil, fmt.Errorf("failed to parse script at %d: %w", r.Start, err)
		}
		if !r.IsAttributeValue {
			merged.Symbols = append(merged.Symbols, result.Symbols...)
		}
		merged.Templates = append(merged.Templates, result.Templates...)
		merged.Errors = append(merged.Errors, result.Errors...)
	}

	slices.SortStableFunc(merged.Errors, func(a, b *js.SyntaxError) int {
		return a.Span.Start - b.Span.Start
	})
	return merged, nil
}
