package documentlink

import (
	"strings"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/uriutil"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DocumentLink handles the textDocument/documentLink request, linking
// every <script src> reference
func DocumentLink(req *types.RequestContext, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	uri := params.TextDocument.URI

	log.Debug("DocumentLink requested: %s", uri)

	doc := req.Server.Document(uri)
	if !req.Server.IsMarkupDocument(doc) {
		return nil, nil
	}

	text := doc.Content()
	imports := doc.Embedded().Imports
	links := make([]protocol.DocumentLink, 0, len(imports))
	for _, imp := range imports {
		// The scanner strips the opening quote only
		ref := strings.TrimRight(imp.Value, `"'`)

		target, ok := uriutil.ResolveReference(uri, req.Server.RootURI(), ref)
		if !ok {
			continue
		}

		start, end := imp.Start, imp.End
		if start < end && isQuote(text[start]) {
			start++
		}
		if end > start && isQuote(text[end-1]) {
			end--
		}

		links = append(links, protocol.DocumentLink{
			Range:   helpers.ToRange(text, start, end),
			Target:  &target,
			Tooltip: &ref,
		})
	}

	return links, nil
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}
