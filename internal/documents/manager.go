package documents

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/embedls/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager tracks the documents the client has open
type Manager struct {
	documents map[string]*Document
	mu        sync.RWMutex
}

// NewManager creates a new document manager
func NewManager() *Manager {
	return &Manager{
		documents: make(map[string]*Document),
	}
}

// Get retrieves a document by URI
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// GetAll returns all managed documents
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	return docs
}

// DidOpen handles the textDocument/didOpen notification
func (m *Manager) DidOpen(uri, languageID string, version int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[uri] = NewDocument(uri, languageID, version, content)
	return nil
}

// DidClose handles the textDocument/didClose notification
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[uri]; !exists {
		return fmt.Errorf("document not found: %s", uri)
	}

	delete(m.documents, uri)
	return nil
}

// DidChange handles the textDocument/didChange notification.
// A change without a range replaces the whole document.
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return fmt.Errorf("document not found: %s", uri)
	}
	if version < doc.Version() {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", doc.Version(), version)
	}

	content := doc.Content()
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := applyIncrementalChange(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		content = next
	}

	m.documents[uri] = doc.withContent(content, version)
	return nil
}

// ContentChanges normalizes the mixed change list glsp decodes from a
// didChange notification. Whole-document changes come back without a range.
func ContentChanges(raw []any) []protocol.TextDocumentContentChangeEvent {
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(raw))
	for _, c := range raw {
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, change)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: change.Text})
		}
	}
	return changes
}

// applyIncrementalChange replaces the text covered by changeRange.
// Lines are validated; columns past the end of a line clamp to its end.
func applyIncrementalChange(content string, changeRange protocol.Range, text string) (string, error) {
	lineCount := strings.Count(content, "\n") + 1
	if int(changeRange.Start.Line) > lineCount {
		return "", fmt.Errorf("start line %d out of bounds (total lines: %d)", changeRange.Start.Line, lineCount)
	}
	if int(changeRange.End.Line) > lineCount {
		return "", fmt.Errorf("end line %d out of bounds (total lines: %d)", changeRange.End.Line, lineCount)
	}

	start := position.PositionToOffset(content, position.Position{
		Line:      changeRange.Start.Line,
		Character: changeRange.Start.Character,
	})
	end := position.PositionToOffset(content, position.Position{
		Line:      changeRange.End.Line,
		Character: changeRange.End.Character,
	})
	if end < start {
		return "", fmt.Errorf("change range ends (%d) before it starts (%d)", end, start)
	}

	return content[:start] + text + content[end:], nil
}
