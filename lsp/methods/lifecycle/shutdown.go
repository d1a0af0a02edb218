package lifecycle

import (
	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/parser/css"
	"bennypowers.dev/embedls/internal/parser/html"
	"bennypowers.dev/embedls/internal/parser/js"
	"bennypowers.dev/embedls/lsp/types"
)

// Shutdown handles the LSP shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")

	html.ClosePool()
	css.ClosePool()
	js.ClosePool()

	return nil
}
