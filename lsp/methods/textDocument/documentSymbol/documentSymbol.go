package documentsymbol

import (
	"cmp"
	"slices"

	"bennypowers.dev/embedls/internal/log"
	parsercss "bennypowers.dev/embedls/internal/parser/css"
	parserjs "bennypowers.dev/embedls/internal/parser/js"
	"bennypowers.dev/embedls/lsp/helpers"
	"bennypowers.dev/embedls/lsp/helpers/parsed"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// symbol is an outline entry in byte offsets, converted to LSP ranges last
type symbol struct {
	name      string
	detail    string
	kind      protocol.SymbolKind
	start     int
	end       int
	nameStart int
	nameEnd   int
	children  []*symbol
}

// DocumentSymbol handles the textDocument/documentSymbol request. The
// outline holds CSS rules and at-rules and the declarations of classic and
// module scripts. Clients without hierarchical support get a flat list.
func DocumentSymbol(req *types.RequestContext, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI

	log.Debug("DocumentSymbol requested: %s", uri)

	doc := req.Server.Document(uri)
	if !req.Server.IsMarkupDocument(doc) {
		return nil, nil
	}

	text := doc.Content()
	styles, err := parsed.Styles(doc)
	if err != nil {
		return nil, err
	}
	scripts, err := parsed.Scripts(doc)
	if err != nil {
		return nil, err
	}

	var symbols []*symbol
	for _, rule := range styles.Rules {
		symbols = append(symbols, fromRule(rule))
	}
	for _, at := range styles.AtRules {
		symbols = append(symbols, fromAtRule(at))
	}
	for _, s := range scripts.Symbols {
		symbols = append(symbols, fromScript(s))
	}
	slices.SortStableFunc(symbols, func(a, b *symbol) int {
		return cmp.Compare(a.start, b.start)
	})

	if types.SupportsHierarchicalSymbols(req.Server.ClientCapabilities()) {
		return toDocumentSymbols(text, symbols), nil
	}
	return toSymbolInformation(text, uri, "", symbols), nil
}

func fromRule(rule *parsercss.Rule) *symbol {
	s := &symbol{
		name:      rule.Selector,
		kind:      protocol.SymbolKindClass,
		start:     rule.Span.Start,
		end:       rule.Span.End,
		nameStart: rule.SelectorSpan.Start,
		nameEnd:   rule.SelectorSpan.End,
	}
	for _, d := range rule.Declarations {
		s.children = append(s.children, &symbol{
			name:      d.Property,
			detail:    d.Value,
			kind:      protocol.SymbolKindProperty,
			start:     d.Span.Start,
			end:       d.Span.End,
			nameStart: d.PropertySpan.Start,
			nameEnd:   d.PropertySpan.End,
		})
	}
	for _, nested := range rule.Rules {
		s.children = append(s.children, fromRule(nested))
	}
	slices.SortStableFunc(s.children, func(a, b *symbol) int {
		return cmp.Compare(a.start, b.start)
	})
	return s
}

func fromAtRule(at *parsercss.AtRule) *symbol {
	name := at.Name
	if at.Prelude != "" {
		name += " " + at.Prelude
	}
	s := &symbol{
		name:      name,
		kind:      protocol.SymbolKindNamespace,
		start:     at.Span.Start,
		end:       at.Span.End,
		nameStart: at.Span.Start,
		nameEnd:   min(at.Span.Start+len(at.Name), at.Span.End),
	}
	for _, rule := range at.Rules {
		s.children = append(s.children, fromRule(rule))
	}
	return s
}

func fromScript(in *parserjs.Symbol) *symbol {
	s := &symbol{
		name:      in.Name,
		kind:      scriptKind(in.Kind),
		start:     in.Span.Start,
		end:       in.Span.End,
		nameStart: in.NameSpan.Start,
		nameEnd:   in.NameSpan.End,
	}
	for _, child := range in.Children {
		s.children = append(s.children, fromScript(child))
	}
	return s
}

func scriptKind(kind parserjs.SymbolKind) protocol.SymbolKind {
	switch kind {
	case parserjs.SymbolFunction:
		return protocol.SymbolKindFunction
	case parserjs.SymbolClass:
		return protocol.SymbolKindClass
	case parserjs.SymbolMethod:
		return protocol.SymbolKindMethod
	case parserjs.SymbolConstant:
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

func toDocumentSymbols(text string, symbols []*symbol) []protocol.DocumentSymbol {
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, s := range symbols {
		ds := protocol.DocumentSymbol{
			Name:           s.name,
			Kind:           s.kind,
			Range:          helpers.ToRange(text, s.start, s.end),
			SelectionRange: helpers.ToRange(text, s.nameStart, s.nameEnd),
		}
		if s.detail != "" {
			detail := s.detail
			ds.Detail = &detail
		}
		if len(s.children) > 0 {
			ds.Children = toDocumentSymbols(text, s.children)
		}
		out = append(out, ds)
	}
	return out
}

func toSymbolInformation(text, uri, container string, symbols []*symbol) []protocol.SymbolInformation {
	var out []protocol.SymbolInformation
	for _, s := range symbols {
		info := protocol.SymbolInformation{
			Name: s.name,
			Kind: s.kind,
			Location: protocol.Location{
				URI:   uri,
				Range: helpers.ToRange(text, s.start, s.end),
			},
		}
		if container != "" {
			c := container
			info.ContainerName = &c
		}
		out = append(out, info)
		out = append(out, toSymbolInformation(text, uri, s.name, s.children)...)
	}
	return out
}
