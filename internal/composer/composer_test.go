package composer_test

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"
	"testing"

	"bennypowers.dev/cssdoodle/internal/composer"
	"bennypowers.dev/cssdoodle/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string, opts composer.Options) *composer.Result {
	t.Helper()
	res, err := composer.Compile(context.Background(), source, opts)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

var cellBackground = regexp.MustCompile(`#c-\d-\d-1 \{background: (red|blue);\}`)

func TestCompile_Deterministic(t *testing.T) {
	source := ":host{ grid:3x3 } cell{ background: @r(red,blue) }"
	first := compile(t, source, composer.Options{Seed: "42"})
	second := compile(t, source, composer.Options{Seed: "42"})

	assert.Equal(t, 3, first.Grid.X)
	assert.Equal(t, 3, first.Grid.Y)
	assert.Equal(t, 9, first.Grid.Count)
	assert.True(t, first.GridSet)
	assert.Equal(t, "42", first.Seed)
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.Styles.All, second.Styles.All)
	assert.Len(t, cellBackground.FindAllString(first.Styles.Cells, -1), 9)
}

func TestCompile_Seed(t *testing.T) {
	source := "@grid: 10; color: red; opacity: @r(100);"
	a := compile(t, source, composer.Options{Seed: "a"})
	b := compile(t, source, composer.Options{Seed: "b"})
	assert.NotEqual(t, a.Styles.Cells, b.Styles.Cells)
	assert.Contains(t, a.Styles.Cells, "color: red;")
	assert.Contains(t, b.Styles.Cells, "color: red;")

	t.Run("source seed wins", func(t *testing.T) {
		c := compile(t, "@seed: fixed;"+source, composer.Options{Seed: "a"})
		d := compile(t, "@seed: fixed;"+source, composer.Options{Seed: "b"})
		assert.Equal(t, "fixed", c.Seed)
		assert.Equal(t, c.Styles.All, d.Styles.All)
	})

	t.Run("clock", func(t *testing.T) {
		res := compile(t, "color: red;", composer.Options{})
		assert.NotEmpty(t, res.Seed)
	})

	t.Run("carried generator", func(t *testing.T) {
		first := compile(t, source, composer.Options{Seed: "carry"})
		next := compile(t, source, composer.Options{Random: first.Random})
		assert.Equal(t, "carry", next.Seed)
		assert.Same(t, first.Random, next.Random)
	})
}

func TestCompile_Grid(t *testing.T) {
	t.Run("directive", func(t *testing.T) {
		res := compile(t, "@grid: 4x2;", composer.Options{Seed: "s"})
		assert.Equal(t, 4, res.Grid.X)
		assert.Equal(t, 2, res.Grid.Y)
		assert.True(t, res.GridSet)
	})
	t.Run("option", func(t *testing.T) {
		res := compile(t, "color: red;", composer.Options{Grid: "5", Seed: "s"})
		assert.Equal(t, 25, res.Grid.Count)
		assert.False(t, res.GridSet)
		assert.Equal(t, 25, strings.Count(res.Styles.Cells, "color: red;"))
	})
	t.Run("clamped", func(t *testing.T) {
		res := compile(t, "@grid: 100x2;", composer.Options{Seed: "s"})
		assert.Equal(t, grid.MaxDefault, res.Grid.X)
		res = compile(t, "@grid: 100x2;", composer.Options{Seed: "s", Experimental: true})
		assert.Equal(t, 100, res.Grid.X)
	})
	t.Run("single row grows past the axis limit", func(t *testing.T) {
		res := compile(t, "@grid: 100x1;", composer.Options{Seed: "s"})
		assert.Equal(t, 100, res.Grid.X)
		assert.Equal(t, 1, res.Grid.Y)
	})
	t.Run("size", func(t *testing.T) {
		res := compile(t, "@grid: 2; @size: 10px;", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Cells, "#c-1-1-1 {width:10px;height:10px;")
	})
	t.Run("host size", func(t *testing.T) {
		res := compile(t, "@grid: 2 / 8em;", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Main, ":host,.host {width:8em;height:8em;")
	})
	t.Run("container", func(t *testing.T) {
		res := compile(t, "@grid: 2; @gap: 1px;", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Main, "grid {gap:1px;}")
	})
}

func TestCompile_OneRulePerSelector(t *testing.T) {
	t.Run("cells", func(t *testing.T) {
		res := compile(t, "@grid: 2; color: red;", composer.Options{Seed: "s"})
		assert.Equal(t, 1, strings.Count(res.Styles.Cells, "#c-1-1-1 {"))
		assert.Equal(t, 1, strings.Count(res.Styles.Cells, "#c-2-2-1 {"))
		assert.Equal(t, 4, strings.Count(res.Styles.Cells, "color: red;"))
	})
	t.Run("several empty declarations", func(t *testing.T) {
		res := compile(t, "@grid: 1; @seed: 7; b: @r(100); color: red;", composer.Options{})
		assert.Equal(t, 1, strings.Count(res.Styles.Cells, "#c-1-1-1 {"))
	})
	t.Run("host", func(t *testing.T) {
		res := compile(t, ":host { grid: 2 } :doodle { --a: 1; }", composer.Options{Seed: "s"})
		assert.Equal(t, 1, strings.Count(res.Styles.Main, ":host,.host {"))
		assert.Equal(t, 1, strings.Count(res.Styles.Main, "--a: 1;"))
	})
}

func TestCompile_Conditionals(t *testing.T) {
	t.Run("nth", func(t *testing.T) {
		res := compile(t, "@grid: 3x1; @nth(2) { color: red; }", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Cells, "#c-2-1-1 {color: red;}")
		assert.NotContains(t, res.Styles.Cells, "#c-1-1-1 {color: red;}")
		assert.NotContains(t, res.Styles.Cells, "#c-3-1-1 {color: red;}")
	})
	t.Run("negated", func(t *testing.T) {
		res := compile(t, "@grid: 3x1; @nth(2) not { color: red; }", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Cells, "#c-1-1-1 {color: red;}")
		assert.NotContains(t, res.Styles.Cells, "#c-2-1-1 {color: red;}")
	})
	t.Run("hover", func(t *testing.T) {
		res := compile(t, "@grid: 2x1; @hover { color: red; }", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Cells, "#c-1-1-1:hover {color: red;}")
	})
	t.Run("pseudo block", func(t *testing.T) {
		res := compile(t, "@grid: 1; ::after { content: 'x'; }", composer.Options{Seed: "s"})
		assert.Contains(t, res.Styles.Cells, "#c-1-1-1::after {content: 'x';}")
	})
}

func TestCompile_Animation(t *testing.T) {
	source := "@grid: 2x1; animation: spin 1s; @keyframes spin { from { opacity: 0; } to { opacity: 1; } }"
	res := compile(t, source, composer.Options{Seed: "s"})
	assert.True(t, res.Props.HasAnimation)
	assert.Contains(t, res.Styles.Cells, "#c-1-1-1 {animation: spin 1s;}")
	assert.Contains(t, res.Styles.Cells, "#c-2-1-1 {animation: spin-2 1s;}")
	assert.Contains(t, res.Styles.Main, "@keyframes spin {")
	assert.Contains(t, res.Styles.Main, "@keyframes spin-2 {")
	assert.Equal(t, 1, strings.Count(res.Styles.Main, "@keyframes spin {"))
}

func TestCompile_TimeUniform(t *testing.T) {
	res := compile(t, "@grid: 1; opacity: @ut;", composer.Options{Seed: "s"})
	assert.True(t, res.Uniforms.Time)
	assert.False(t, res.Uniforms.MouseX)
	assert.Contains(t, res.Styles.Main, "@keyframes cssd-utime-animation")
	assert.Contains(t, res.Styles.Main, "31536000000ms linear 0s infinite cssd-utime-animation")
	assert.Contains(t, res.Styles.Cells, "--cssd-utime")
}

func TestCompile_Content(t *testing.T) {
	res := compile(t, "@grid: 1; @content: hello;", composer.Options{Seed: "s"})
	assert.Equal(t, "hello", res.Content["#c-1-1-1"])
}

func TestCompile_Variables(t *testing.T) {
	res := compile(t, ":doodle { --size: 10px; } @grid: 1; width: var(--size);", composer.Options{Seed: "s"})
	assert.Equal(t, "10px", res.Variables["host"]["--size"])
	assert.Contains(t, res.Styles.Main, "--size: 10px;")
}

func TestCompile_Embedded(t *testing.T) {
	t.Run("doodle", func(t *testing.T) {
		res := compile(t, "@grid: 1; background: @doodle(@grid: 2; background: red;);", composer.Options{Seed: "s"})
		require.Len(t, res.Doodles, 1)
		d, ok := res.Doodles["doodle-1"]
		require.True(t, ok)
		assert.Contains(t, d.Source, "background: red;")
		assert.Contains(t, res.Styles.Cells, "${doodle-1}")
		assert.NotContains(t, res.Styles.Cells, "background-size")

		css, err := composer.New().Resolve(context.Background(), res, composer.Options{Seed: "s"})
		require.NoError(t, err)
		assert.NotContains(t, css, "${doodle-1}")
		i := strings.Index(css, "url(data:image/svg+xml;base64,")
		require.GreaterOrEqual(t, i, 0)
		rest := css[i+len("url(data:image/svg+xml;base64,"):]
		encoded := rest[:strings.Index(rest, ")")]
		doc, err := base64.StdEncoding.DecodeString(encoded)
		require.NoError(t, err)
		assert.Contains(t, string(doc), "<foreignObject")
		assert.Contains(t, string(doc), `<cell id="c-2-2-1">`)
	})
	t.Run("sized doodle", func(t *testing.T) {
		res := compile(t, "@grid: 1; background: @doodle(20x10, color: red;);", composer.Options{Seed: "s"})
		d := res.Doodles["doodle-1"]
		assert.Equal(t, "20x10", d.Arg)
	})
	t.Run("shader", func(t *testing.T) {
		res := compile(t, "@grid: 1; background: @shaders(void main() { FragColor = vec4(1.0); });", composer.Options{Seed: "s"})
		require.Len(t, res.Shaders, 1)
		a := res.Shaders["shader-1"]
		assert.Equal(t, "--shader-1", a.Var)
		assert.Equal(t, "c-1-1-1", a.Cell)
		assert.Contains(t, a.Program, "void main()")

		css, err := composer.New().Resolve(context.Background(), res, composer.Options{Seed: "s"})
		require.NoError(t, err)
		assert.Contains(t, css, "var(--shader-1)")
	})
	t.Run("pattern", func(t *testing.T) {
		res := compile(t, "@grid: 1; background: @pattern(grid: 5; fill: red;);", composer.Options{Seed: "s"})
		require.Len(t, res.Pattern, 1)
		assert.Equal(t, "--pattern-1", res.Pattern["pattern-1"].Var)
	})
}

func TestCompile_Use(t *testing.T) {
	res := compile(t, "@grid: 1; @use: var(--rules);", composer.Options{
		Seed:      "s",
		Variables: map[string]string{"--rules": "color: red;"},
	})
	assert.Contains(t, res.Styles.Cells, "#c-1-1-1 {color: red;}")
}

func TestCompile_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := composer.Compile(ctx, "@grid: 2; color: red;", composer.Options{Seed: "s"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestGridMarkup(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		out := composer.GridMarkup(grid.Parse("2x1", 0), map[string]string{"#c-2-1-1": "hi"})
		assert.Equal(t, `<grid><cell id="c-1-1-1"></cell><cell id="c-2-1-1">hi</cell></grid>`, out)
	})
	t.Run("nested", func(t *testing.T) {
		out := composer.GridMarkup(grid.Parse("1x1x2", 0), nil)
		assert.Equal(t, `<grid><cell id="c-1-1-1"><cell id="c-1-1-2"></cell></cell></grid>`, out)
	})
}

func TestBasicStyles(t *testing.T) {
	out := composer.BasicStyles(grid.Parse("3x2", 0))
	assert.Contains(t, out, "grid-template-rows: repeat(2,1fr)")
	assert.Contains(t, out, "grid-template-columns: repeat(3,1fr)")
	assert.Contains(t, out, "grid-template-areas:inherit;")
}

func TestResult_HTML(t *testing.T) {
	res := compile(t, "@grid: 2x1; color: red;", composer.Options{Seed: "s"})
	out := res.HTML()
	assert.True(t, strings.HasPrefix(out, "<style>"))
	assert.Contains(t, out, "#c-2-1-1 {color: red;}")
	assert.True(t, strings.HasSuffix(out, "</grid>"))

	page, err := composer.New().Page(context.Background(), res, composer.Options{Seed: "s"})
	require.NoError(t, err)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, `<div class="host"><grid>`)
}
