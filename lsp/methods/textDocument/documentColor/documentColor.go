package documentcolor

import (
	"fmt"
	"slices"
	"strings"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/helpers/css"
	"bennypowers.dev/embedls/lsp/helpers/parsed"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentColor handles the textDocument/documentColor request. Colors are
// collected from style blocks, style attributes and css tagged templates.
func DocumentColor(req *types.RequestContext, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	uri := params.TextDocument.URI

	log.Debug("DocumentColor requested: %s", uri)

	doc := req.Server.Document(uri)
	if !req.Server.IsMarkupDocument(doc) || !req.Server.GetConfig().Colors {
		return nil, nil
	}

	text := doc.Content()
	styles, err := parsed.Styles(doc)
	if err != nil {
		return nil, err
	}
	templates, err := parsed.Templates(doc)
	if err != nil {
		return nil, err
	}

	found := slices.Concat(styles.Colors, templates.Colors)
	colors := make([]protocol.ColorInformation, 0, len(found))
	for _, c := range found {
		color, err := css.ParseColor(c.Text)
		if err != nil {
			// Don't fail the request; middleware logs the warnings
			req.AddWarning(fmt.Errorf("failed to parse color %q: %w", c.Text, err))
			continue
		}
		colors = append(colors, protocol.ColorInformation{
			Range: helpers.ToRange(text, c.Span.Start, c.Span.End),
			Color: *color,
		})
	}

	log.Debug("Found %d colors", len(colors))
	return colors, nil
}

// ColorPresentation handles the textDocument/colorPresentation request.
// Each presentation replaces the requested range with the color spelled
// in one notation, keeping the notation already used first.
func ColorPresentation(req *types.RequestContext, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	uri := params.TextDocument.URI

	log.Debug("ColorPresentation requested: %s", uri)

	labels := css.FormatColor(params.Color)

	if doc := req.Server.Document(uri); doc != nil {
		text := doc.Content()
		start := helpers.ToOffset(text, params.Range.Start)
		end := helpers.ToOffset(text, params.Range.End)
		if start < end {
			labels = preferNotation(labels, notationOf(text[start:end]))
		}
	}

	presentations := make([]protocol.ColorPresentation, 0, len(labels))
	for _, label := range labels {
		presentations = append(presentations, protocol.ColorPresentation{
			Label: label,
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: label,
			},
		})
	}
	return presentations, nil
}

type notation int

const (
	notationHex notation = iota
	notationRGB
	notationHSL
)

// notationOf classifies the current spelling of a color. Named colors
// count as hex.
func notationOf(value string) notation {
	value = strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(value, "rgb"):
		return notationRGB
	case strings.HasPrefix(value, "hsl"):
		return notationHSL
	}
	return notationHex
}

// preferNotation moves the label in notation n to the front. labels are in
// the order css.FormatColor returns them.
func preferNotation(labels []string, n notation) []string {
	i := int(n)
	if i <= 0 || i >= len(labels) {
		return labels
	}
	out := make([]string, 0, len(labels))
	out = append(out, labels[i])
	out = append(out, labels[:i]...)
	return append(out, labels[i+1:]...)
}
