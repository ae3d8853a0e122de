package documents

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"bennypowers.dev/cssdoodle/internal/source"
)

// Document is an open text document and the doodles found in it.
type Document struct {
	uri        string
	languageID string
	content    string
	version    int

	mu      sync.Mutex
	doodles []source.Doodle
	parsed  bool
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

// Path is the file system path of a file URI, or the URI itself.
func (d *Document) Path() string {
	return URIToPath(d.uri)
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the document's current content
func (d *Document) Content() string {
	return d.content
}

// SetContent replaces the content, rejecting versions older than the
// current one.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
	d.version = version
	d.doodles, d.parsed = nil, false
	return nil
}

// Doodles extracts the doodle sources of the document, once per version.
func (d *Document) Doodles() []source.Doodle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.parsed {
		d.doodles = source.Extract(d.content, d.languageID)
		d.parsed = true
	}
	return d.doodles
}

// URIToPath converts a file:// URI to a path. Other URIs are returned
// unchanged.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if u.Host != "" {
		p = "//" + u.Host + p
	}
	return filepath.FromSlash(p)
}

// PathToURI converts a path to a file:// URI with escaped segments.
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.ToSlash(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return "file://" + strings.Join(segments, "/")
}
