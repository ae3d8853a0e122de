package tokenizer_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	kind  tokenizer.Kind
	value string
}

func simplify(tokens []tokenizer.Token) []tok {
	out := make([]tok, len(tokens))
	for i, t := range tokens {
		out[i] = tok{t.Kind, t.Value}
	}
	return out
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  []tok
	}{
		{"1", []tok{{tokenizer.Number, "1"}}},
		{".5", []tok{{tokenizer.Number, ".5"}}},
		{"1.5", []tok{{tokenizer.Number, "1.5"}}},
		{"1e3", []tok{{tokenizer.Number, "1e3"}}},
		{"1e-3", []tok{{tokenizer.Number, "1e-3"}}},
		{"0x1f", []tok{{tokenizer.Number, "0x1f"}}},
		{"-2", []tok{{tokenizer.Number, "-2"}}},
		{"-.5", []tok{{tokenizer.Number, "-.5"}}},
		{"1-2", []tok{{tokenizer.Number, "1"}, {tokenizer.Symbol, "-"}, {tokenizer.Number, "2"}}},
		{"1..5", []tok{{tokenizer.Number, "1"}, {tokenizer.Word, ".."}, {tokenizer.Number, "5"}}},
		{"10px", []tok{{tokenizer.Number, "10"}, {tokenizer.Word, "px"}}},
		{"50%", []tok{{tokenizer.Number, "50"}, {tokenizer.Symbol, "%"}}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, simplify(tokenizer.Scan(tt.input)))
		})
	}
}

func TestScanSpaces(t *testing.T) {
	t.Run("spaces next to punctuation are dropped", func(t *testing.T) {
		tokens := tokenizer.Scan("a : b ;  c ,  d")
		assert.Equal(t, "a:b;c,d", tokenizer.Join(tokens))
	})

	t.Run("runs collapse to one space", func(t *testing.T) {
		tokens := tokenizer.Scan("red   \n\t blue")
		assert.Equal(t, []tok{
			{tokenizer.Word, "red"},
			{tokenizer.Space, " "},
			{tokenizer.Word, "blue"},
		}, simplify(tokens))
	})

	t.Run("space after close paren and before open paren survive", func(t *testing.T) {
		assert.Equal(t, "f(a) g", tokenizer.Join(tokenizer.Scan("f(a)  g")))
		assert.Equal(t, "a (b)", tokenizer.Join(tokenizer.Scan("a  (b)")))
	})

	t.Run("line breaks can be preserved", func(t *testing.T) {
		tokens := tokenizer.Scan("a\n  b", tokenizer.Options{PreserveLineBreak: true})
		require.Len(t, tokens, 3)
		assert.Equal(t, "\n", tokens[1].Value)
	})

	t.Run("spaces inside quotes are kept", func(t *testing.T) {
		assert.Equal(t, `"a   b"`, tokenizer.Join(tokenizer.Scan(`"a   b"`)))
	})

	t.Run("no leading or trailing space", func(t *testing.T) {
		tokens := tokenizer.Scan("   a   ")
		require.Len(t, tokens, 1)
		assert.Equal(t, "a", tokens[0].Value)
	})
}

func TestScanQuotes(t *testing.T) {
	tokens := tokenizer.Scan(`"a'b'c"`)
	require.Len(t, tokens, 7)
	assert.Equal(t, tokenizer.StatusOpen, tokens[0].Status)
	assert.Equal(t, tokenizer.StatusOpen, tokens[2].Status)
	assert.Equal(t, tokenizer.StatusClose, tokens[4].Status)
	assert.Equal(t, tokenizer.StatusClose, tokens[6].Status)

	t.Run("escaped symbol becomes a word", func(t *testing.T) {
		tokens := tokenizer.Scan(`"\:x"`)
		assert.Equal(t, []tok{
			{tokenizer.Symbol, `"`},
			{tokenizer.Word, ":x"},
			{tokenizer.Symbol, `"`},
		}, simplify(tokens))
	})
}

func TestScanComments(t *testing.T) {
	assert.Equal(t, "a b", tokenizer.Join(tokenizer.Scan("a /* note */ b")))
	assert.Equal(t, "a b", tokenizer.Join(tokenizer.Scan("a // note\nb", tokenizer.Options{IgnoreInlineComment: true})))
	assert.Contains(t, tokenizer.Join(tokenizer.Scan("a // note\nb")), "note")
}

func TestScanWords(t *testing.T) {
	t.Run("markup stays whole", func(t *testing.T) {
		tokens := tokenizer.Scan("<h1>hi</h1>")
		require.Len(t, tokens, 1)
		assert.Equal(t, "<h1>hi</h1>", tokens[0].Value)
	})

	t.Run("words stop at digits", func(t *testing.T) {
		assert.Equal(t, []tok{{tokenizer.Symbol, "@"}, {tokenizer.Word, "r"}, {tokenizer.Number, "10"}},
			simplify(tokenizer.Scan("@r10")))
	})

	t.Run("multibyte symbols", func(t *testing.T) {
		assert.Equal(t, []tok{{tokenizer.Symbol, "±"}, {tokenizer.Number, "2"}, {tokenizer.Symbol, "π"}},
			simplify(tokenizer.Scan("±2π")))
	})
}

func TestPositions(t *testing.T) {
	source := "  a {\n  b: 1;\n}"
	tokens := tokenizer.Scan(source)
	require.NotEmpty(t, tokens)

	for i := 1; i < len(tokens); i++ {
		assert.Greater(t, tokens[i].Pos.Offset, tokens[i-1].Pos.Offset)
	}
	for _, tk := range tokens {
		assert.Equal(t, tk.Value[:1], source[tk.Pos.Offset:tk.Pos.Offset+1])
	}

	assert.Equal(t, tokenizer.Position{Offset: 2, Line: 0, Column: 2}, tokens[0].Pos)
	b := tokens[2]
	assert.Equal(t, "b", b.Value)
	assert.Equal(t, 1, b.Pos.Line)
	assert.Equal(t, 2, b.Pos.Column)
}

func TestScanNeverFails(t *testing.T) {
	for _, input := range []string{"", "}", "((", `"unterminated`, "@", "\\", "/*", "0x"} {
		assert.NotPanics(t, func() { tokenizer.Scan(input) }, input)
	}
}
