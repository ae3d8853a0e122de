// Package documents tracks the text documents an editor has open.
package documents

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"bennypowers.dev/cssdoodle/internal/position"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Manager manages text documents for the language server
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

// GetAll returns the managed documents ordered by URI.
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].uri < docs[j].uri })
	return docs
}

// DidOpen handles the textDocument/didOpen notification
func (m *Manager) DidOpen(uri, languageID string, version int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documents[uri] = NewDocument(uri, languageID, version, content)
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

// DidChange applies full or incremental changes in order.
func (m *Manager) DidChange(uri string, version int, changes []any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return fmt.Errorf("document not found: %s", uri)
	}

	content := doc.Content()
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				content = c.Text
				continue
			}
			next, err := Edit(content, *c.Range, c.Text)
			if err != nil {
				return fmt.Errorf("failed to apply changes: %w", err)
			}
			content = next
		default:
			return fmt.Errorf("unsupported change event %T", change)
		}
	}

	if err := doc.SetContent(content, version); err != nil {
		return fmt.Errorf("failed to set document content: %w", err)
	}
	return nil
}

// Edit replaces the UTF-16 range of content with text. A range starting
// on the line after the last one appends to the document.
func Edit(content string, r protocol.Range, text string) (string, error) {
	start, err := offset(content, r.Start)
	if err != nil {
		return "", fmt.Errorf("start %w", err)
	}
	end, err := offset(content, r.End)
	if err != nil {
		return "", fmt.Errorf("end %w", err)
	}
	if end < start {
		start, end = end, start
	}
	return content[:start] + text + content[end:], nil
}

func offset(content string, p protocol.Position) (int, error) {
	if off, ok := position.Offset(content, p.Line, p.Character); ok {
		return off, nil
	}
	lines := uint32(strings.Count(content, "\n")) + 1
	switch {
	case p.Line == lines && p.Character == 0:
		return len(content), nil
	case p.Line >= lines:
		return 0, fmt.Errorf("line %d out of bounds (total lines: %d)", p.Line, lines)
	}
	return 0, fmt.Errorf("character %d out of bounds on line %d", p.Character, p.Line)
}
