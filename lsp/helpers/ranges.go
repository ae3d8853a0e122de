// Package helpers maps between doodle sources and the documents that
// hold them.
package helpers

import (
	"strings"

	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/internal/position"
	"bennypowers.dev/cssdoodle/internal/source"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Span is a doodle and the byte range of its source in the document.
type Span struct {
	Doodle     source.Doodle
	Start, End int
}

// Spans locates the doodles of a document.
func Spans(doc *documents.Document) []Span {
	content := doc.Content()
	var spans []Span
	for _, d := range doc.Doodles() {
		start := min(lineStart(content, int(d.Line))+int(d.Col), len(content))
		spans = append(spans, Span{
			Doodle: d,
			Start:  start,
			End:    min(start+len(d.Source), len(content)),
		})
	}
	return spans
}

func lineStart(content string, line int) int {
	start := 0
	for range line {
		i := strings.IndexByte(content[start:], '\n')
		if i < 0 {
			return len(content)
		}
		start += i + 1
	}
	return start
}

// Position converts a byte offset of content to a protocol position.
func Position(content string, offset int) protocol.Position {
	line, col := position.At(content, offset)
	return protocol.Position{Line: line, Character: col}
}

// Range converts a byte range of content to a protocol range.
func Range(content string, start, end int) protocol.Range {
	return protocol.Range{Start: Position(content, start), End: Position(content, end)}
}

// Offset converts a byte offset of the doodle source to a byte offset
// of the document.
func (s Span) Offset(sourceOffset int) int {
	return s.Start + min(max(sourceOffset, 0), len(s.Doodle.Source))
}

// At finds the doodle holding the document offset.
func At(spans []Span, offset int) (Span, bool) {
	for _, s := range spans {
		if offset >= s.Start && offset <= s.End {
			return s, true
		}
	}
	return Span{}, false
}

func isWordByte(b byte) bool {
	return b == '-' || b == '_' || b == '$' ||
		b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

// WordAt returns the bounds of the word around offset, with a leading "@"
// when there is one.
func WordAt(text string, offset int) (start, end int) {
	offset = min(max(offset, 0), len(text))
	if offset < len(text) && text[offset] == '@' {
		offset++
	}
	start, end = offset, offset
	for start > 0 && isWordByte(text[start-1]) {
		start--
	}
	for end < len(text) && isWordByte(text[end]) {
		end++
	}
	if start > 0 && text[start-1] == '@' {
		start--
	}
	return start, end
}
