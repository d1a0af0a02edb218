package lifecycle

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the LSP initialized notification
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")

	// Kept for pushing diagnostics outside of a request
	req.Server.SetGLSPContext(req.GLSP)

	// Neither failure prevents the server from working
	if err := req.Server.LoadProjectConfig(); err != nil {
		req.AddWarning(err)
	}
	if err := req.Server.RegisterFileWatchers(req.GLSP); err != nil {
		req.AddWarning(err)
	}

	return nil
}
