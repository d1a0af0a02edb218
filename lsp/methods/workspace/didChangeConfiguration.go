package workspace

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification
func DidChangeConfiguration(req *types.RequestContext, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	settings, err := types.ParseSettings(params.Settings)
	if err != nil {
		// Keep the current configuration
		req.AddWarning(err)
		return nil
	}

	if err := req.Server.SetClientSettings(settings); err != nil {
		req.AddWarning(err)
		return nil
	}

	log.Debug("New configuration: %+v", req.Server.GetConfig())

	RepublishDiagnostics(req)
	return nil
}

// RepublishDiagnostics pushes fresh diagnostics for every open document,
// after a change that can affect all of them
func RepublishDiagnostics(req *types.RequestContext) {
	glspCtx := req.Server.GLSPContext()
	if glspCtx == nil || req.Server.UsePullDiagnostics() {
		return
	}
	for _, doc := range req.Server.AllDocuments() {
		if err := req.Server.PublishDiagnostics(glspCtx, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
}
