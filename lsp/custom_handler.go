package lsp

import (
	"encoding/json"

	"bennypowers.dev/embedls/lsp/methods/textDocument/diagnostic"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// CustomHandler wraps protocol.Handler to add methods glsp v0.2.2 does not
// know about. glsp implements LSP 3.16, so the 3.17 pull diagnostics
// request and capability are handled here.
type CustomHandler struct {
	*protocol.Handler // Pointer to avoid copying embedded mutex
	server            *Server
}

// Handle implements glsp.Handler interface
func (h *CustomHandler) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	switch context.Method {
	case "initialize":
		// The 3.16 InitializeParams struct drops textDocument.diagnostic, so
		// detect it from the raw JSON, then initialize as usual
		h.server.SetClientDiagnosticCapability(DetectPullDiagnosticsSupport(context.Params))

	case diagnostic.MethodDocumentDiagnostic:
		var params diagnostic.DocumentDiagnosticParams
		if err := json.Unmarshal(context.Params, &params); err != nil {
			return nil, true, false, err
		}

		pull := method(h.server, diagnostic.MethodDocumentDiagnostic, diagnostic.DocumentDiagnostic)
		result, err := pull(context, &params)
		if err != nil {
			return nil, true, true, err
		}
		return result, true, true, nil
	}

	return h.Handler.Handle(context)
}
