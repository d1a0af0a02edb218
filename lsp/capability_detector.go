package lsp

import (
	"encoding/json"
)

// DetectPullDiagnosticsSupport reports whether the raw initialize params
// declare textDocument.diagnostic, the LSP 3.17 pull diagnostics
// capability. Any parse failure means push diagnostics.
func DetectPullDiagnosticsSupport(rawParams json.RawMessage) bool {
	var initParams struct {
		Capabilities struct {
			TextDocument *struct {
				Diagnostic *json.RawMessage `json:"diagnostic"`
			} `json:"textDocument"`
		} `json:"capabilities"`
	}

	if err := json.Unmarshal(rawParams, &initParams); err != nil {
		return false
	}

	if initParams.Capabilities.TextDocument == nil {
		return false
	}

	// Presence is what counts, even when the value is an empty object
	return initParams.Capabilities.TextDocument.Diagnostic != nil
}
