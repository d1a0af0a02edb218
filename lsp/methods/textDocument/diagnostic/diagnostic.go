package diagnostic

import (
	"fmt"
	"slices"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/helpers/parsed"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	// SourceCSS marks syntax errors in embedded CSS
	SourceCSS = "embedded-css"
	// SourceJS marks syntax errors in embedded JavaScript
	SourceJS = "embedded-js"
	// SourceScan marks findings of the region scanner itself
	SourceScan = "embedded-language-server"
)

// DocumentDiagnostic handles the textDocument/diagnostic request (pull diagnostics).
//
// This is an LSP 3.17 feature. Since glsp v0.2.2 only supports LSP 3.16, this handler
// is called via CustomHandler which intercepts the method before it reaches protocol.Handler.
func DocumentDiagnostic(req *types.RequestContext, params *DocumentDiagnosticParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debug("Pull diagnostics requested for: %s", uri)

	diagnostics, err := GetDiagnostics(req.Server, uri)
	if err != nil {
		return nil, err
	}

	return RelatedFullDocumentDiagnosticReport{
		Kind:  string(DiagnosticFull),
		Items: diagnostics,
	}, nil
}

// GetDiagnostics returns the syntax diagnostics of the regions embedded in a
// document. The result is never nil for a markup document so that clients
// clear stale diagnostics.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	doc := ctx.Document(uri)
	if doc == nil {
		return nil, nil
	}
	if !ctx.IsMarkupDocument(doc) {
		return nil, nil
	}

	diagnostics := []protocol.Diagnostic{}
	if !ctx.GetConfig().Diagnostics {
		return diagnostics, nil
	}

	text := doc.Content()
	scan := doc.Embedded()

	styles, err := parsed.Styles(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded CSS: %w", err)
	}
	for _, e := range styles.Errors {
		diagnostics = appendUnique(diagnostics, newDiagnostic(
			helpers.ToRange(text, e.Span.Start, e.Span.End),
			protocol.DiagnosticSeverityError,
			SourceCSS,
			e.Message,
		))
	}

	scripts, err := parsed.Scripts(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded JavaScript: %w", err)
	}
	for _, e := range scripts.Errors {
		diagnostics = appendUnique(diagnostics, newDiagnostic(
			helpers.ToRange(text, e.Span.Start, e.Span.End),
			protocol.DiagnosticSeverityError,
			SourceJS,
			e.Message,
		))
	}

	for _, r := range scan.Regions {
		if r.LanguageID != "" || r.IsAttributeValue || r.Start == r.End {
			continue
		}
		diagnostics = append(diagnostics, newDiagnostic(
			helpers.ToRange(text, r.Start, r.End),
			protocol.DiagnosticSeverityHint,
			SourceScan,
			"script content is not analyzed",
		))
	}

	slices.SortStableFunc(diagnostics, func(a, b protocol.Diagnostic) int {
		if a.Range.Start.Line != b.Range.Start.Line {
			return int(a.Range.Start.Line) - int(b.Range.Start.Line)
		}
		return int(a.Range.Start.Character) - int(b.Range.Start.Character)
	})

	return diagnostics, nil
}

func newDiagnostic(rng protocol.Range, severity protocol.DiagnosticSeverity, source, message string) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    rng,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// appendUnique drops d when an earlier diagnostic from the same source
// already covers part of its range. Tree-sitter often reports one mistake
// as several neighbouring error nodes.
func appendUnique(diagnostics []protocol.Diagnostic, d protocol.Diagnostic) []protocol.Diagnostic {
	for _, existing := range diagnostics {
		if *existing.Source == *d.Source && helpers.RangesIntersect(existing.Range, d.Range) {
			return diagnostics
		}
	}
	return append(diagnostics, d)
}
