package parser_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(t *testing.T, f parser.Fragment) string {
	t.Helper()
	tx, ok := f.(*parser.Text)
	require.True(t, ok, "expected text fragment, got %T", f)
	return tx.Value
}

func call(t *testing.T, f parser.Fragment) *parser.Call {
	t.Helper()
	c, ok := f.(*parser.Call)
	require.True(t, ok, "expected call fragment, got %T", f)
	return c
}

func argTexts(t *testing.T, c *parser.Call) []string {
	t.Helper()
	var out []string
	for _, a := range c.Args {
		require.Len(t, a.Fragments, 1)
		out = append(out, text(t, a.Fragments[0]))
	}
	return out
}

func TestParseRules(t *testing.T) {
	res := parser.Parse("@grid: 5; background: @p(red, blue);")
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Nodes, 2)

	grid := res.Nodes[0].(*parser.Rule)
	assert.Equal(t, "@grid", grid.Property)
	assert.Equal(t, "@grid: 5", grid.Raw)
	require.Len(t, grid.Value, 1)
	assert.Equal(t, "5", text(t, grid.Value[0][0]))

	bg := res.Nodes[1].(*parser.Rule)
	assert.Equal(t, "background", bg.Property)
	c := call(t, bg.Value[0][0])
	assert.Equal(t, "p", c.Name)
	assert.Equal(t, []string{"red", "blue"}, argTexts(t, c))
	assert.Equal(t, "@p(red, blue)", c.Source)
	assert.NotZero(t, c.Site)
}

func TestParseValueGroups(t *testing.T) {
	t.Run("commas split groups", func(t *testing.T) {
		res := parser.Parse("transition: color 1s, width 2s")
		r := res.Nodes[0].(*parser.Rule)
		require.Len(t, r.Value, 2)
		assert.Equal(t, "color 1s", text(t, r.Value[0][0]))
		assert.Equal(t, "width 2s", text(t, r.Value[1][0]))
	})

	t.Run("quoted commas stay", func(t *testing.T) {
		res := parser.Parse(`content: "a, b"`)
		r := res.Nodes[0].(*parser.Rule)
		require.Len(t, r.Value, 1)
		assert.Equal(t, `"a, b"`, text(t, r.Value[0][0]))
	})

	t.Run("pi expands", func(t *testing.T) {
		res := parser.Parse("--n: π")
		r := res.Nodes[0].(*parser.Rule)
		assert.Equal(t, "3.141592653589793", text(t, r.Value[0][0]))
		assert.True(t, r.Variable)
	})

	t.Run("text around calls", func(t *testing.T) {
		res := parser.Parse("transform: rotate(@r(360)deg)")
		r := res.Nodes[0].(*parser.Rule)
		g := r.Value[0]
		require.Len(t, g, 3)
		assert.Equal(t, "rotate(", text(t, g[0]))
		assert.Equal(t, "r", call(t, g[1]).Name)
		assert.Equal(t, "deg)", text(t, g[2]))
	})
}

func TestParseCalls(t *testing.T) {
	value := func(t *testing.T, src string) parser.Group {
		t.Helper()
		res := parser.Parse("a: " + src)
		require.Len(t, res.Nodes, 1)
		return res.Nodes[0].(*parser.Rule).Value[0]
	}

	t.Run("trailing digits become the first argument", func(t *testing.T) {
		c := call(t, value(t, "@r10")[0])
		assert.Equal(t, "r", c.Name)
		assert.Equal(t, []string{"10"}, argTexts(t, c))
	})

	t.Run("sequence dimensions", func(t *testing.T) {
		c := call(t, value(t, "@m3x4(@i)")[0])
		assert.Equal(t, "m", c.Name)
		require.Len(t, c.Args, 2)
		assert.Equal(t, "3x4", text(t, c.Args[0].Fragments[0]))
		assert.Equal(t, "i", call(t, c.Args[1].Fragments[0]).Name)
	})

	t.Run("math names keep digits", func(t *testing.T) {
		c := call(t, value(t, "@atan2(1, 2)")[0])
		assert.Equal(t, "atan2", c.Name)
		assert.Equal(t, []string{"1", "2"}, argTexts(t, c))
	})

	t.Run("composition", func(t *testing.T) {
		c := call(t, value(t, "@once.@r(5)")[0])
		assert.Equal(t, "once", c.Name)
		require.Len(t, c.Args, 1)
		inner := call(t, c.Args[0].Fragments[0])
		assert.Equal(t, "r", inner.Name)
		assert.Equal(t, []string{"5"}, argTexts(t, inner))
	})

	t.Run("calc with unit", func(t *testing.T) {
		c := call(t, value(t, "$px(10 * 2)")[0])
		assert.Equal(t, "$px", c.Name)
		assert.Equal(t, []string{"10 * 2"}, argTexts(t, c))
	})

	t.Run("bare calc", func(t *testing.T) {
		c := call(t, value(t, "$x")[0])
		assert.Equal(t, "$", c.Name)
		assert.Equal(t, []string{"x"}, argTexts(t, c))
	})

	t.Run("clustered argument", func(t *testing.T) {
		c := call(t, value(t, `@p("a, b", c)`)[0])
		require.Len(t, c.Args, 2)
		assert.True(t, c.Args[0].Cluster)
		assert.Equal(t, "a, b", text(t, c.Args[0].Fragments[0]))
		assert.False(t, c.Args[1].Cluster)
	})

	t.Run("plus minus", func(t *testing.T) {
		c := call(t, value(t, "@r(±5)")[0])
		assert.Equal(t, []string{"-5", "5"}, argTexts(t, c))
	})

	t.Run("numbers are normalized", func(t *testing.T) {
		c := call(t, value(t, "@r(.50, 1.0)")[0])
		assert.Equal(t, []string{"0.5", "1"}, argTexts(t, c))
	})

	t.Run("doodle source stays whole", func(t *testing.T) {
		c := call(t, value(t, "@doodle(@grid: 5; background: @p(red, blue))")[0])
		assert.Equal(t, "doodle", c.Name)
		assert.Equal(t, []string{"@grid: 5; background: @p(red, blue)"}, argTexts(t, c))
	})

	t.Run("sites are distinct", func(t *testing.T) {
		g := value(t, "@r(1) @r(1)")
		require.Len(t, g, 3)
		assert.NotEqual(t, call(t, g[0]).Site, call(t, g[2]).Site)
	})

	t.Run("dollar sign alone is text", func(t *testing.T) {
		g := value(t, "$ 5")
		require.Len(t, g, 1)
		assert.Equal(t, "$ 5", text(t, g[0]))
	})
}

func TestParseBlocks(t *testing.T) {
	t.Run("conditional", func(t *testing.T) {
		res := parser.Parse("@nth(2n+1) not { color: red; }")
		require.Empty(t, res.Diagnostics)
		c := res.Nodes[0].(*parser.Conditional)
		assert.Equal(t, "nth", c.Name)
		assert.Equal(t, 1, c.Negations)
		require.Len(t, c.Args, 1)
		assert.Equal(t, "2n+1", text(t, c.Args[0].Fragments[0]))
		require.Len(t, c.Children, 1)
		assert.Equal(t, "color", c.Children[0].(*parser.Rule).Property)
	})

	t.Run("pseudo selector", func(t *testing.T) {
		res := parser.Parse(":after { content: @i }")
		b := res.Nodes[0].(*parser.Block)
		assert.Equal(t, ":after", b.Selector)
		r := b.Children[0].(*parser.Rule)
		assert.Equal(t, "i", call(t, r.Value[0][0]).Name)
	})

	t.Run("nested", func(t *testing.T) {
		res := parser.Parse(":doodle { @grid: 2; :hover { color: red } }")
		require.Empty(t, res.Diagnostics)
		b := res.Nodes[0].(*parser.Block)
		require.Len(t, b.Children, 2)
		assert.Equal(t, ":hover", b.Children[1].(*parser.Block).Selector)
	})

	t.Run("style block is opaque", func(t *testing.T) {
		res := parser.Parse("style { .a { color: red } }")
		b := res.Nodes[0].(*parser.Block)
		assert.Equal(t, ".a { color: red }", b.Style)
	})

	t.Run("keyframes", func(t *testing.T) {
		res := parser.Parse("@keyframes move { from { left: 0 } 50%, to { left: 100% } }")
		require.Empty(t, res.Diagnostics)
		k := res.Nodes[0].(*parser.Keyframes)
		assert.Equal(t, "move", k.Name)
		require.Len(t, k.Steps, 2)
		assert.Equal(t, "from", text(t, k.Steps[0].Name[0][0]))
		require.Len(t, k.Steps[1].Name, 2)
		assert.Equal(t, "100%", text(t, k.Steps[1].Rules[0].Value[0][0]))
	})

	t.Run("keyframes without name", func(t *testing.T) {
		res := parser.Parse("@keyframes { from { left: 0 } }")
		require.NotEmpty(t, res.Diagnostics)
		assert.Equal(t, "missing keyframes name", res.Diagnostics[0].Message)
	})
}

func TestParseMultiTarget(t *testing.T) {
	t.Run("broadcast", func(t *testing.T) {
		res := parser.Parse("width, height: 10px")
		require.Len(t, res.Nodes, 2)
		assert.Equal(t, "width", res.Nodes[0].(*parser.Rule).Property)
		assert.Equal(t, "height", res.Nodes[1].(*parser.Rule).Property)
		assert.Equal(t, "10px", text(t, res.Nodes[1].(*parser.Rule).Value[0][0]))
	})

	t.Run("zip", func(t *testing.T) {
		res := parser.Parse("width, height: 1px, 2px")
		require.Len(t, res.Nodes, 2)
		assert.Equal(t, "1px", text(t, res.Nodes[0].(*parser.Rule).Value[0][0]))
		assert.Equal(t, "2px", text(t, res.Nodes[1].(*parser.Rule).Value[0][0]))
	})
}

func TestParseUse(t *testing.T) {
	t.Run("declared variable is spliced", func(t *testing.T) {
		res := parser.Parse("--base: (color: red); @use: var(--base);")
		require.Empty(t, res.Diagnostics)
		require.Len(t, res.Nodes, 2)
		r := res.Nodes[1].(*parser.Rule)
		assert.Equal(t, "color", r.Property)
		assert.Equal(t, "red", text(t, r.Value[0][0]))
	})

	t.Run("supplied variable is spliced", func(t *testing.T) {
		res := parser.Parse("@use: var(--v);", parser.Options{
			Variables: map[string]string{"--v": "{ width: 1px }"},
		})
		require.Len(t, res.Nodes, 1)
		assert.Equal(t, "width", res.Nodes[0].(*parser.Rule).Property)
	})

	t.Run("unknown names stay a reference", func(t *testing.T) {
		res := parser.Parse("@use: var(--nope, --other);")
		require.Len(t, res.Nodes, 1)
		u := res.Nodes[0].(*parser.Use)
		assert.Equal(t, []string{"--nope", "--other"}, u.Names)
	})

	t.Run("self reference terminates", func(t *testing.T) {
		res := parser.Parse("--a: (@use: var(--a)); @use: var(--a);")
		assert.NotEmpty(t, res.Diagnostics)
	})
}

func TestParseVarRefs(t *testing.T) {
	refs := parser.ParseVarRefs("var(--a, var(--b)), var(--c), var(---bad)")
	require.Len(t, refs, 2)
	assert.Equal(t, []string{"--a", "--b"}, refs[0].Names())
	assert.Equal(t, "--c", refs[1].Name)
}

func TestDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unclosed block", "a { color: red", "missing closing brace"},
		{"unclosed call", "a: @r(5", "missing closing parenthesis"},
		{"stray brace", "}", "unexpected }"},
		{"missing colon", "color red;", "missing ':' after colorred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parser.Parse(tt.source)
			require.NotEmpty(t, res.Diagnostics)
			assert.Equal(t, tt.want, res.Diagnostics[0].Message)
		})
	}

	t.Run("positions are one-based in messages", func(t *testing.T) {
		res := parser.Parse("\n  }")
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, "(at line 2, column 3) unexpected }", res.Diagnostics[0].String())
	})

	t.Run("parsing continues after errors", func(t *testing.T) {
		res := parser.Parse("color red; width: 5px")
		require.Len(t, res.Nodes, 1)
		assert.Equal(t, "width", res.Nodes[0].(*parser.Rule).Property)
	})
}

func TestParseRaw(t *testing.T) {
	res := parser.Parse("viewBox: 0 0 10 10 p 1; circle*5 { r: 2 } rect#a { x: 1 }", parser.Options{Raw: true})
	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Nodes, 3)

	vb := res.Nodes[0].(*parser.Statement)
	assert.Equal(t, "viewBox", vb.Name)
	require.NotNil(t, vb.ViewBox)
	assert.Equal(t, []float64{0, 0, 10, 10}, vb.ViewBox.Values)
	assert.Equal(t, 1.0, vb.ViewBox.Padding)

	circle := res.Nodes[1].(*parser.Block)
	assert.Equal(t, "circle", circle.Name)
	assert.Equal(t, "5", circle.Times)

	rect := res.Nodes[2].(*parser.Block)
	assert.Equal(t, "rect", rect.Name)
	require.Len(t, rect.Children, 2)
	id := rect.Children[1].(*parser.Statement)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "a", id.Value)

	t.Run("inline block chain", func(t *testing.T) {
		res := parser.Parse("fill: defs pattern { width: 1 }", parser.Options{Raw: true})
		st := res.Nodes[0].(*parser.Statement)
		require.NotNil(t, st.Inline)
		assert.True(t, st.Inline.Inline)
		assert.Equal(t, "defs", st.Inline.Name)
		assert.Equal(t, "pattern", st.Inline.Children[0].(*parser.Block).Name)
	})

	t.Run("namespaced attribute", func(t *testing.T) {
		res := parser.Parse("use { xlink:href: #a }", parser.Options{Raw: true})
		b := res.Nodes[0].(*parser.Block)
		st := b.Children[0].(*parser.Statement)
		assert.Equal(t, "xlink:href", st.Name)
		assert.Equal(t, "#a", st.Value)
	})

	t.Run("multi-target zips", func(t *testing.T) {
		res := parser.Parse("x, y: 1, 2", parser.Options{Raw: true})
		require.Len(t, res.Nodes, 2)
		assert.Equal(t, "2", res.Nodes[1].(*parser.Statement).Value)
		assert.Equal(t, []string{"x", "y"}, res.Nodes[1].(*parser.Statement).Targets)
	})
}

func TestGenerate(t *testing.T) {
	res := parser.Parse("g*3 { circle { r: 1 } }", parser.Options{Raw: true})
	root := parser.VectorRoot(res.Nodes)
	assert.Equal(t, "svg{@M3(g{circle{r:1;}})}", parser.Generate(root))

	t.Run("explicit svg root inherits variables", func(t *testing.T) {
		res := parser.Parse("--c: red; svg { circle { fill: var(--c) } }", parser.Options{Raw: true})
		root := parser.VectorRoot(res.Nodes)
		assert.Equal(t, "svg", root.Name)
		require.Len(t, root.Children, 2)
		assert.True(t, root.Children[0].(*parser.Statement).Variable)
	})
}

func TestVectorCall(t *testing.T) {
	res := parser.Parse("background: @svg(--s: 5; circle*2 { r: @r(5) })")
	c := res.Nodes[0].(*parser.Rule).Value[0][0].(*parser.Call)
	assert.Equal(t, "svg", c.Name)
	require.Len(t, c.Variables, 1)
	assert.Equal(t, "--s", c.Variables[0].Name)

	require.Len(t, c.Args, 1)
	frags := c.Args[0].Fragments
	var names []string
	for _, f := range frags {
		if inner, ok := f.(*parser.Call); ok {
			names = append(names, inner.Name)
		}
	}
	assert.Equal(t, []string{"M"}, names)
}
