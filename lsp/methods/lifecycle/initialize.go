package lifecycle

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/uriutil"
	"bennypowers.dev/embedls/internal/version"
	"bennypowers.dev/embedls/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/embedls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported in serverInfo
const ServerName = "embedded-language-server"

// InitializeResult is protocol.InitializeResult with untyped capabilities,
// so that LSP 3.17 fields unknown to glsp can be advertised
type InitializeResult struct {
	Capabilities map[string]any                       `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

// Initialize handles the LSP initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	req.Server.SetClientCapabilities(params.Capabilities)

	// CustomHandler detects the capability from the raw params before this
	// handler runs; without it, fall back to push
	supportsPullDiagnostics := false
	if detected := req.Server.ClientDiagnosticCapability(); detected != nil {
		supportsPullDiagnostics = *detected
	}
	req.Server.SetUsePullDiagnostics(supportsPullDiagnostics)
	if supportsPullDiagnostics {
		log.Info("Using pull diagnostics model (LSP 3.17)")
	} else {
		log.Info("Using push diagnostics model")
	}

	setWorkspaceRoot(req.Server, params)

	if params.InitializationOptions != nil {
		settings, err := types.ParseSettings(params.InitializationOptions)
		if err == nil {
			err = req.Server.SetClientSettings(settings)
		}
		if err != nil {
			req.AddWarning(err)
		}
	}

	return InitializeResult{
		Capabilities: Capabilities(supportsPullDiagnostics),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: strPtr(version.GetVersion()),
		},
	}, nil
}

// setWorkspaceRoot prefers rootUri, then rootPath, then the first
// workspace folder
func setWorkspaceRoot(server types.ServerContext, params *protocol.InitializeParams) {
	switch {
	case params.RootURI != nil && *params.RootURI != "":
		server.SetRootURI(*params.RootURI)
		server.SetRootPath(uriutil.URIToPath(*params.RootURI))
	case params.RootPath != nil && *params.RootPath != "":
		server.SetRootPath(*params.RootPath)
		server.SetRootURI(uriutil.PathToURI(*params.RootPath))
	case len(params.WorkspaceFolders) > 0:
		uri := params.WorkspaceFolders[0].URI
		server.SetRootURI(uri)
		server.SetRootPath(uriutil.URIToPath(uri))
	default:
		return
	}
	log.Info("Workspace root: %s", server.RootPath())
}

// Capabilities returns the server capabilities. A map is used instead of
// protocol.ServerCapabilities because glsp v0.2.2 has no diagnosticProvider.
func Capabilities(pullDiagnostics bool) map[string]any {
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := map[string]any{
		"textDocumentSync": protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
		},
		"hoverProvider":          true,
		"colorProvider":          true,
		"documentLinkProvider":   protocol.DocumentLinkOptions{ResolveProvider: boolPtr(false)},
		"documentSymbolProvider": true,
		"foldingRangeProvider":   true,
	}

	if pullDiagnostics {
		capabilities["diagnosticProvider"] = diagnostic.DiagnosticOptions{
			Identifier:            ServerName,
			InterFileDependencies: false,
			WorkspaceDiagnostics:  false,
		}
	}

	return capabilities
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
