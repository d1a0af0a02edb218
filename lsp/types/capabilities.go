package types

import (
	"slices"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// HoverFormat picks the hover markup kind from the client's declared
// preferences. Markdown is used when the client states nothing.
func HoverFormat(caps *protocol.ClientCapabilities) protocol.MarkupKind {
	if caps == nil || caps.TextDocument == nil || caps.TextDocument.Hover == nil {
		return protocol.MarkupKindMarkdown
	}
	formats := caps.TextDocument.Hover.ContentFormat
	if len(formats) == 0 || slices.Contains(formats, protocol.MarkupKindMarkdown) {
		return protocol.MarkupKindMarkdown
	}
	return protocol.MarkupKindPlainText
}

// SupportsHierarchicalSymbols reports whether documentSymbol may answer with
// nested DocumentSymbol values instead of flat SymbolInformation
func SupportsHierarchicalSymbols(caps *protocol.ClientCapabilities) bool {
	if caps == nil || caps.TextDocument == nil || caps.TextDocument.DocumentSymbol == nil {
		// No capabilities at all, as in tests and simple clients
		return true
	}
	support := caps.TextDocument.DocumentSymbol.HierarchicalDocumentSymbolSupport
	return support != nil && *support
}

// SupportsWatchedFilesRegistration reports whether the client accepts
// dynamic registration of workspace/didChangeWatchedFiles
func SupportsWatchedFilesRegistration(caps *protocol.ClientCapabilities) bool {
	if caps == nil || caps.Workspace == nil || caps.Workspace.DidChangeWatchedFiles == nil {
		return false
	}
	reg := caps.Workspace.DidChangeWatchedFiles.DynamicRegistration
	return reg != nil && *reg
}
