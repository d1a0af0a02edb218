package foldingrange

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// FoldingRange handles the textDocument/foldingRange request. Each style or
// script block spanning several lines folds from the line of its opening
// tag to the line before its closing tag.
func FoldingRange(req *types.RequestContext, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	uri := params.TextDocument.URI

	log.Debug("FoldingRange requested: %s", uri)

	doc := req.Server.Document(uri)
	if !req.Server.IsMarkupDocument(doc) {
		return nil, nil
	}

	text := doc.Content()
	kind := string(protocol.FoldingRangeKindRegion)

	var ranges []protocol.FoldingRange
	for _, region := range doc.Embedded().Regions {
		if region.IsAttributeValue {
			continue
		}
		startLine := helpers.ToPosition(text, region.Start).Line
		endLine := helpers.ToPosition(text, region.End).Line
		// Folding a single line hides nothing
		if endLine < startLine+2 {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: startLine,
			EndLine:   endLine - 1,
			Kind:      &kind,
		})
	}

	return ranges, nil
}
