package documents

import (
	"sync"

	"bennypowers.dev/embedls/internal/embed"
	"bennypowers.dev/embedls/internal/parser/html"
)

// Document is an immutable snapshot of a text document open in the editor.
// Changes produce a new Document, so a snapshot can be read from any
// goroutine while later edits are applied.
type Document struct {
	uri        string
	languageID string
	content    string
	version    int

	scanOnce sync.Once
	scan     *embed.Result
}

// NewDocument creates a new document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

// URI returns the document's URI
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the document's content
func (d *Document) Content() string {
	return d.content
}

// Embedded returns the embedded-language regions of the document.
// The scan runs once per snapshot.
func (d *Document) Embedded() *embed.Result {
	d.scanOnce.Do(func() {
		d.scan = embed.Scan(html.Tokenizer{}, d.content)
	})
	return d.scan
}

// withContent returns the next snapshot of d
func (d *Document) withContent(content string, version int) *Document {
	return NewDocument(d.uri, d.languageID, version, content)
}
