// Package parsed caches the parse results of a document snapshot so that
// hover, colors, symbols and diagnostics share one parse per edit.
// Results are shared between requests and must not be modified.
package parsed

import (
	"fmt"
	"hash/maphash"
	"time"

	"bennypowers.dev/embedls/internal/documents"
	"bennypowers.dev/embedls/internal/log"
	parsercss "bennypowers.dev/embedls/internal/parser/css"
	parserjs "bennypowers.dev/embedls/internal/parser/js"
	"bennypowers.dev/embedls/lsp/helpers/css"
	"bennypowers.dev/embedls/lsp/helpers/js"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	expiration      = 5 * time.Minute
	cleanupInterval = 10 * time.Minute
)

var (
	cache  = gocache.New(expiration, cleanupInterval)
	flight singleflight.Group
	seed   = maphash.MakeSeed()
)

// key identifies a snapshot by content as well as URI and version, since a
// reopened document starts over at the same version
func key(kind string, doc *documents.Document) string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%x", kind, doc.URI(), doc.Version(), maphash.String(seed, doc.Content()))
}

func cached[V any](kind string, doc *documents.Document, parse func() (V, error)) (V, error) {
	k := key(kind, doc)
	if value, found := cache.Get(k); found {
		if v, ok := value.(V); ok {
			log.Debug("Parse cache hit: %s %s@%d", kind, doc.URI(), doc.Version())
			return v, nil
		}
	}

	// Concurrent requests on one snapshot wait for a single parse
	value, err, _ := flight.Do(k, func() (any, error) {
		if value, found := cache.Get(k); found {
			return value, nil
		}
		v, err := parse()
		if err != nil {
			return nil, err
		}
		cache.SetDefault(k, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return value.(V), nil
}

// Styles returns the CSS of every style block and style attribute in doc
func Styles(doc *documents.Document) (*parsercss.ParseResult, error) {
	return cached("css", doc, func() (*parsercss.ParseResult, error) {
		return css.ParseEmbedded(doc.Content(), doc.Embedded())
	})
}

// Scripts returns the parsed JavaScript regions of doc
func Scripts(doc *documents.Document) (*parserjs.ParseResult, error) {
	return cached("js", doc, func() (*parserjs.ParseResult, error) {
		return js.ParseScripts(doc.Content(), doc.Embedded())
	})
}

// Templates returns the CSS inside css tagged templates of doc's scripts
func Templates(doc *documents.Document) (*parsercss.ParseResult, error) {
	return cached("css-templates", doc, func() (*parsercss.ParseResult, error) {
		scripts, err := Scripts(doc)
		if err != nil {
			return nil, err
		}
		return css.ParseTemplates(scripts.Templates)
	})
}

// Flush drops every cached result
func Flush() {
	cache.Flush()
}
