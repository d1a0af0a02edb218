package workspace

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/uriutil"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles handles the workspace/didChangeWatchedFiles
// notification. A change to any project configuration file reloads the
// configuration.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	log.Debug("Watched files changed: %d files", len(params.Changes))

	root := req.Server.RootPath()
	needsReload := false
	for _, change := range params.Changes {
		path := uriutil.URIToPath(change.URI)
		if types.IsProjectConfigFile(path, root) {
			log.Info("Project configuration changed: %s (type: %d)", path, change.Type)
			needsReload = true
		}
	}

	if !needsReload {
		return nil
	}

	if err := req.Server.LoadProjectConfig(); err != nil {
		req.AddWarning(err)
		return nil
	}

	RepublishDiagnostics(req)
	return nil
}
