package lsp

import (
	"path/filepath"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// RegisterFileWatchers asks the client to watch the project configuration
// files. Clients without dynamic registration get a local fsnotify watcher
// on the workspace root instead.
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// An empty glsp.Context, as in tests, cannot send requests
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	root := s.RootPath()
	if root == "" {
		log.Info("No file watchers to register")
		return nil
	}

	if !types.SupportsWatchedFilesRegistration(s.ClientCapabilities()) {
		log.Info("Client does not support dynamic file watcher registration")
		if err := s.watchConfigLocally(root); err != nil {
			log.Warn("Cannot watch project configuration: %v", err)
		}
		return nil
	}

	watchers := make([]protocol.FileSystemWatcher, 0, len(types.ProjectConfigFiles))
	for _, name := range types.ProjectConfigFiles {
		watchers = append(watchers, protocol.FileSystemWatcher{
			GlobPattern: filepath.ToSlash(filepath.Join(root, name)),
		})
	}

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     "embedded-language-server-config-watcher",
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: watchers,
				},
			},
		},
	}

	// client/registerCapability is a request. Calling it synchronously from
	// a handler would block the message loop that reads the response.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Debug("File watcher registration completed")
	}(context)

	log.Info("Sent file watcher registration request (%d watchers)", len(watchers))
	return nil
}
