package helpers_test

import (
	"strings"
	"testing"

	"bennypowers.dev/cssdoodle/internal/documents"
	"bennypowers.dev/cssdoodle/lsp/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const page = "<main>\n  <css-doodle grid=\"5\">\n    background: @p(red);\n  </css-doodle>\n</main>"

func TestSpans(t *testing.T) {
	doc := documents.NewDocument("file:///index.html", "html", 1, page)
	spans := helpers.Spans(doc)
	require.Len(t, spans, 1)
	s := spans[0]
	assert.Equal(t, s.Doodle.Source, page[s.Start:s.End])

	t.Run("offset", func(t *testing.T) {
		off := s.Offset(strings.Index(s.Doodle.Source, "@p"))
		assert.Equal(t, "@p", page[off:off+2])
		assert.Equal(t, s.End, s.Offset(1000))
	})

	t.Run("at", func(t *testing.T) {
		_, ok := helpers.At(spans, s.Start+3)
		assert.True(t, ok)
		_, ok = helpers.At(spans, 2)
		assert.False(t, ok)
	})
}

func TestPosition(t *testing.T) {
	content := "a\n🎨b"
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, helpers.Position(content, 6))
	r := helpers.Range(content, 0, 1)
	assert.Equal(t, protocol.Position{Line: 0, Character: 1}, r.End)
}

func TestWordAt(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		offset int
		want   string
	}{
		{"function", "color: @pick(red);", 10, "@pick"},
		{"start of name", "color: @pick(red);", 8, "@pick"},
		{"property", "@grid: 5;", 3, "@grid"},
		{"plain word", "color: red;", 2, "color"},
		{"dashed", "@svg-filter(x)", 6, "@svg-filter"},
		{"on the at sign", "  @keyframes {", 2, "@keyframes"},
		{"nothing", "a ; b", 2, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := helpers.WordAt(tt.text, tt.offset)
			assert.Equal(t, tt.want, tt.text[start:end])
		})
	}
}
