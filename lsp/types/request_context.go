package types

import (
	"github.com/tliron/glsp"
)

// RequestContext is handed to every handler. Server answers questions about
// open documents and configuration; GLSP is nil when a handler runs outside
// a live connection, as in tests.
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

// NewRequestContext pairs the server with the connection a request came in on
func NewRequestContext(server ServerContext, glsp *glsp.Context) *RequestContext {
	return &RequestContext{
		Server: server,
		GLSP:   glsp,
	}
}

// AddWarning records a problem that should not fail the request, such as a
// color literal csscolorparser rejects. Middleware reports them once the
// handler returns. Nil errors are ignored.
func (r *RequestContext) AddWarning(err error) {
	if err != nil {
		r.warnings = append(r.warnings, err)
	}
}

// Warnings returns the recorded warnings in the order they were added
func (r *RequestContext) Warnings() []error {
	return r.warnings
}

// HasWarnings reports whether the handler recorded anything
func (r *RequestContext) HasWarnings() bool {
	return len(r.warnings) > 0
}
