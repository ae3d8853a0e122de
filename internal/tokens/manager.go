// Package tokens loads design token files and exposes their tokens as
// custom properties that doodles read with var(), $() and @use.
package tokens

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	asimonimParser "bennypowers.dev/asimonim/parser"
	"bennypowers.dev/asimonim/schema"
	"bennypowers.dev/asimonim/validator"
	"bennypowers.dev/cssdoodle/internal/config"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/resolver"
)

// Manager holds the tokens of every loaded file, keyed by
// "filePath:tokenName" so that files may define the same names.
type Manager struct {
	tokens map[string]*Token
	mu     sync.RWMutex
}

// NewManager creates a new token manager with an empty token registry.
func NewManager() *Manager {
	return &Manager{
		tokens: make(map[string]*Token),
	}
}

func makeKey(filePath, tokenName string) string {
	if filePath == "" {
		return tokenName
	}
	return filePath + ":" + tokenName
}

// Add adds or updates a token in the manager
func (m *Manager) Add(token *Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[makeKey(token.FilePath, token.Name)] = token
	return nil
}

// Get retrieves a token by name ("color-primary"), path
// ("color.primary") or custom property ("--ds-color-primary").
func (m *Manager) Get(nameOrVar string) *Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if token, ok := m.tokens[nameOrVar]; ok {
		return token
	}
	searchName := strings.TrimPrefix(strings.ReplaceAll(nameOrVar, ".", "-"), "--")
	for _, key := range slices.Sorted(maps.Keys(m.tokens)) {
		token := m.tokens[key]
		if token.Name == searchName || token.CSSVariableName() == nameOrVar {
			return token
		}
	}
	return nil
}

// GetAll returns all tokens sorted by custom property name.
func (m *Manager) GetAll() []*Token {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := slices.Collect(maps.Values(m.tokens))
	slices.SortFunc(all, func(a, b *Token) int {
		return strings.Compare(a.CSSVariableName(), b.CSSVariableName())
	})
	return all
}

// Count returns the number of tokens
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}

// Clear removes all tokens
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = make(map[string]*Token)
}

// RemoveBySourceFile removes all tokens from a specific source file
// Returns the number of tokens removed
func (m *Manager) RemoveBySourceFile(filePath string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, token := range m.tokens {
		if token.FilePath == filePath {
			delete(m.tokens, key)
			removed++
		}
	}
	return removed
}

// LoadFile loads a JSON or YAML token file, replacing the tokens it
// loaded before.
func (m *Manager) LoadFile(path, prefix string) (int, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".yaml", ".yml":
	default:
		return 0, fmt.Errorf("unsupported file type %s: %s", ext, path)
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: token paths come from the user's config
	if err != nil {
		return 0, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	m.RemoveBySourceFile(path)
	return m.LoadData(data, path, prefix)
}

// LoadConfig loads the token files a config names. A file prefix wins
// over the global one. Every file is attempted; the failures are joined.
func (m *Manager) LoadConfig(cfg config.Config) error {
	var errs []error
	for _, tf := range cfg.Tokens {
		prefix := tf.Prefix
		if prefix == "" {
			prefix = cfg.Prefix
		}
		if _, err := m.LoadFile(cfg.Resolve(tf.Path), prefix); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadData parses token data. filePath only labels the tokens.
func (m *Manager) LoadData(data []byte, filePath, prefix string) (int, error) {
	parsed, err := asimonimParser.NewJSONParser().Parse(data, asimonimParser.Options{
		Prefix: prefix,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse tokens from %s: %w", label(filePath), err)
	}

	version := schema.Draft
	for _, t := range parsed {
		if t.SchemaVersion != schema.Unknown {
			version = t.SchemaVersion
			break
		}
	}
	for _, ve := range validator.ValidateConsistency(data, version) {
		log.Warn("Schema validation in %s: %s", label(filePath), ve.Error())
	}

	for _, t := range parsed {
		if err := m.Add(&Token{
			Name:        t.Name,
			Value:       t.Value,
			Type:        t.Type,
			Description: t.Description,
			FilePath:    filePath,
			Prefix:      prefix,
		}); err != nil {
			return 0, err
		}
	}
	log.Info("Loaded %d tokens from %s", len(parsed), label(filePath))
	return len(parsed), nil
}

func label(filePath string) string {
	if filePath == "" {
		return "<data>"
	}
	return filePath
}

// Variables returns the tokens as custom properties with their aliases
// resolved. Unresolvable references are logged and kept as written.
func (m *Manager) Variables() map[string]string {
	all := m.GetAll()
	values := make(map[string]string, len(all))
	for _, t := range all {
		values[t.Name] = t.Value
	}
	resolved, err := resolver.ResolveAliases(values)
	if err != nil {
		log.Warn("Failed to resolve token aliases: %v", err)
		if resolved == nil {
			resolved = values
		}
	}
	vars := make(map[string]string, len(all))
	for _, t := range all {
		vars[t.CSSVariableName()] = resolved[t.Name]
	}
	return vars
}
