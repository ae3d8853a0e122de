package functions

import (
	"strconv"
	"strings"
	"testing"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/random"
	"bennypowers.dev/cssdoodle/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T, size string, x, y int) *cell.Context {
	t.Helper()
	g := grid.Parse(size, grid.MaxDefault)
	count := (y-1)*g.X + x
	return cell.New(x, y, 1, count, g, random.New("test"), cell.NewState())
}

func call(t *testing.T, c *cell.Context, name string, args ...string) string {
	t.Helper()
	b, ok := Lookup(name)
	require.True(t, ok, "builtin %s", name)
	require.False(t, b.IsLazy(), "builtin %s is lazy", name)
	return b.Eager(c, args)
}

func thunks(c *cell.Context, values ...string) []Thunk {
	out := make([]Thunk, len(values))
	for i, v := range values {
		out[i] = func(extra *cell.Extra) string {
			if extra != nil {
				c.PushExtra(extra)
				defer c.PopExtra()
			}
			if v == "@n" {
				b, _ := Lookup("n")
				return b.Eager(c, nil)
			}
			return v
		}
	}
	return out
}

func callLazy(t *testing.T, c *cell.Context, name string, args ...string) string {
	t.Helper()
	b, ok := Lookup(name)
	require.True(t, ok, "builtin %s", name)
	require.True(t, b.IsLazy(), "builtin %s is eager", name)
	return b.Lazy(c, thunks(c, args...))
}

func TestLookup(t *testing.T) {
	t.Run("alias", func(t *testing.T) {
		b, ok := Lookup("index")
		require.True(t, ok)
		assert.Equal(t, "i", b.Name)
	})
	t.Run("calc call", func(t *testing.T) {
		b, ok := Lookup("$px")
		require.True(t, ok)
		assert.Equal(t, "calc", b.Name)
	})
	t.Run("math", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "0", call(t, c, "sin", "0"))
		assert.Equal(t, "3.141592653589793", call(t, c, "PI"))
		assert.Equal(t, "3", call(t, c, "max", "1", "3", "2"))
	})
	t.Run("unknown", func(t *testing.T) {
		_, ok := Lookup("nope")
		assert.False(t, ok)
	})
	t.Run("names include aliases", func(t *testing.T) {
		names := Names()
		assert.Contains(t, names, "pick")
		assert.Contains(t, names, "svg-filter")
	})
}

func TestPosition(t *testing.T) {
	c := newContext(t, "4x3", 2, 3)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"i", nil, "10"},
		{"x", nil, "2"},
		{"y", nil, "3"},
		{"z", nil, "1"},
		{"I", nil, "12"},
		{"X", nil, "4"},
		{"Y", nil, "3"},
		{"i", []string{"5"}, "15"},
		{"i", []string{"*2"}, "20"},
		{"i", []string{"-1"}, "9"},
		{"i", []string{"12-"}, "2"},
		{"x", []string{"10px"}, "12px"},
		{"i", []string{""}, "10"},
		{"id", nil, "c-2-3-1"},
		{"dx", nil, "-0.5"},
		{"dy", []string{"1"}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"("+strings.Join(tt.args, ",")+")", func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, c, tt.name, tt.args...))
		})
	}
}

func TestUniforms(t *testing.T) {
	c := newContext(t, "1", 1, 1)
	assert.Equal(t, "var(--cssd-utime)", call(t, c, "t"))
	assert.Equal(t, "calc((var(--cssd-uwidth) / 2) * 1px)", call(t, c, "uw", "/2px"))
	assert.True(t, c.State.UsesUniform("time"))
	assert.True(t, c.State.UsesUniform("width"))
	assert.False(t, c.State.UsesUniform("mousex"))
	assert.Equal(t, []string{"time", "width"}, c.State.Uniforms())
}

func TestSequence(t *testing.T) {
	t.Run("outside a sequence", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "@n", call(t, c, "n"))
	})
	t.Run("separators", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "1,2,3", callLazy(t, c, "m", "3", "@n"))
		assert.Equal(t, "1 2 3", callLazy(t, c, "M", "3", "@n"))
		assert.Equal(t, "123", callLazy(t, c, "µ", "3", "@n"))
		assert.Equal(t, "a,a", callLazy(t, c, "multi", "2", "a"))
	})
	t.Run("several actions", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "1,x,2,x", callLazy(t, c, "m", "2", "@n", "x"))
	})
	t.Run("count expression", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "1,2,3,4", callLazy(t, c, "m", "2*2", "@n"))
	})
	t.Run("range", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Equal(t, "3,2,1", callLazy(t, c, "m", "3-1", "@n"))
	})
	t.Run("needs a body", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Empty(t, callLazy(t, c, "m", "3"))
	})
	t.Run("matrix steps", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		var seen []string
		b, _ := Lookup("m")
		b.Lazy(c, []Thunk{
			func(*cell.Extra) string { return "2x2" },
			func(e *cell.Extra) string {
				seen = append(seen, strconv.Itoa(e.NX)+"/"+strconv.Itoa(e.NY))
				return ""
			},
		})
		assert.Equal(t, []string{"1/1", "2/1", "1/2", "2/2"}, seen)
	})
	t.Run("once", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.Site = 7
		assert.Equal(t, "a,b", callLazy(t, c, "once", "a", "b"))
		assert.Equal(t, "a,b", callLazy(t, c, "once", "c"))
	})
}

func TestPick(t *testing.T) {
	t.Run("ranges", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "c"}, expandRanges([]string{"[a-c]"}))
		assert.Equal(t, []string{"c", "b", "a"}, expandRanges([]string{"[c-a]"}))
		assert.Equal(t, []string{"a", "b", "0", "1", "x"}, expandRanges([]string{"[a-b0-1]", "x"}))
		assert.Equal(t, []string{"x", "y"}, expandRanges([]string{"[xy]"}))
	})
	t.Run("p is deterministic", func(t *testing.T) {
		a := newContext(t, "1", 1, 1)
		b := newContext(t, "1", 1, 1)
		for range 5 {
			assert.Equal(t, call(t, a, "p", "a", "b", "c"), call(t, b, "pick", "a", "b", "c"))
		}
	})
	t.Run("p reuses the last arguments", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		call(t, c, "p", "x")
		assert.Equal(t, "x", call(t, c, "p"))
	})
	t.Run("P avoids repeats", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		prev := call(t, c, "P", "a", "b")
		for range 10 {
			next := call(t, c, "P", "a", "b")
			assert.NotEqual(t, prev, next)
			prev = next
		}
	})
	t.Run("P remembers the previous pick per sequence", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.PushExtra(&cell.Extra{Index: 1, Signature: 1})
		first := call(t, c, "P", "a", "b")
		c.PopExtra()

		previous := func(signature int) string {
			key := cell.Key{Name: "P", Site: c.Site, Signature: signature}
			return *cell.Load(c.State, key, func() *string { return new(string) })
		}
		assert.Equal(t, first, previous(1))
		assert.Empty(t, previous(2))

		c.PushExtra(&cell.Extra{Index: 1, Signature: 2})
		second := call(t, c, "P", "a", "b")
		c.PopExtra()
		assert.Equal(t, second, previous(2))
		assert.Equal(t, first, previous(1))
	})
	t.Run("pl turns", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		var got []string
		for range 4 {
			got = append(got, call(t, c, "pl", "a", "b", "c"))
		}
		assert.Equal(t, []string{"a", "b", "c", "a"}, got)
	})
	t.Run("pr turns backwards", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		var got []string
		for range 4 {
			got = append(got, call(t, c, "pnr", "a", "b", "c"))
		}
		assert.Equal(t, []string{"c", "b", "a", "c"}, got)
	})
	t.Run("pd visits each value once per round", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		var got []string
		for range 3 {
			got = append(got, call(t, c, "pd", "a", "b", "c"))
		}
		assert.ElementsMatch(t, []string{"a", "b", "c"}, got)
	})
	t.Run("pl follows the sequence step", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.PushExtra(&cell.Extra{N: 2, Index: 2, Max: 3, Signature: 1})
		defer c.PopExtra()
		assert.Equal(t, "b", call(t, c, "pl", "a", "b", "c"))
	})
	t.Run("last pick", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		call(t, c, "pl", "a", "b")
		call(t, c, "pl", "a", "b")
		assert.Equal(t, "b", call(t, c, "lp"))
		assert.Equal(t, "a", call(t, c, "last-pick", "2"))
	})
}

func TestRandom(t *testing.T) {
	t.Run("range", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		for range 20 {
			v, err := strconv.ParseFloat(call(t, c, "r", "10"), 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 10.0)
		}
	})
	t.Run("unit", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.True(t, strings.HasSuffix(call(t, c, "r", "1px", "5"), "px"))
	})
	t.Run("letters", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		v := call(t, c, "r", "a", "c")
		assert.Contains(t, []string{"a", "b"}, v)
	})
	t.Run("words are picked", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		assert.Contains(t, []string{"red", "blue"}, call(t, c, "r", "red", "blue"))
	})
	t.Run("deterministic", func(t *testing.T) {
		a := newContext(t, "1", 1, 1)
		b := newContext(t, "1", 1, 1)
		assert.Equal(t, call(t, a, "r", "100"), call(t, b, "rand", "100"))
	})
	t.Run("last rand", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		v := call(t, c, "r", "5")
		assert.Equal(t, v, call(t, c, "lr"))
	})
	t.Run("noise", func(t *testing.T) {
		a := newContext(t, "4x4", 2, 3)
		b := newContext(t, "4x4", 2, 3)
		v := call(t, a, "rn", "0", "10")
		assert.NotEmpty(t, v)
		assert.Equal(t, v, call(t, b, "rn", "from=0", "to=10"))
		assert.Equal(t, v, call(t, a, "last-rand"))
	})
}

func TestPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invert", []string{"M0 0 h10 v5"}, "M0 0 v10 h5"},
		{"flipH", []string{"M0 0 H10 V5"}, "M0 0 H-10 V5"},
		{"flipV", []string{"M0 0 H10 V5"}, "M0 0 H10 V-5"},
		{"flip", []string{"M0 0 h10 v5"}, "M0 0 h-10 v-5"},
		{"reverse", []string{"M0 0 L1 1 Z"}, "Z L1 1 M0 0"},
		{"reverse", []string{"a", "b", "c"}, "c,b,a"},
		{"invert", []string{"not a path"}, "not a path"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newContext(t, "1", 1, 1)
			assert.Equal(t, tt.want, call(t, c, tt.name, tt.args...))
		})
	}
}

func TestTransform(t *testing.T) {
	c := newContext(t, "1", 1, 1)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"cycle", []string{"a b c"}, "a b c,b c a,c a b"},
		{"cycle", []string{"a", "b"}, "a,b,b,a"},
		{"mirror", []string{"a", "b"}, "a,b,b,a"},
		{"Mirror", []string{"a", "b", "c"}, "a,b,c,b,a"},
		{"code", []string{"65", "66"}, "A,B"},
		{"unicode", []string{"0x263a"}, "☺"},
		{"hex", []string{"255"}, "ff"},
		{"hex", []string{"red"}, "NaN"},
		{"var", []string{"--a"}, "var(--a)"},
		{"stripe", []string{"red", "blue"}, "red 0 50%,blue 0 100%"},
		{"stripes", []string{"red 20%", "blue"}, "red 0 calc(20%),blue 0 calc(20% + (100% - 20%) / 1)"},
		{"calc", []string{"1 + 2"}, "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, c, tt.name, tt.args...))
		})
	}
}

func TestCalcVariables(t *testing.T) {
	c := newContext(t, "1", 1, 1)
	c.Variables = map[string]string{"--size": "4"}
	assert.Equal(t, "8px", Calc(c, []string{"size * 2"}, "px"))
}

func TestAssets(t *testing.T) {
	t.Run("svg", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		u := callLazy(t, c, "svg", "circle { r: 1 }")
		doc, ok := svg.Decode(u)
		require.True(t, ok)
		assert.Contains(t, doc, `<circle r="1"/>`)
		assert.Equal(t, doc, call(t, c, "raw", u))
	})
	t.Run("svg markup", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		doc, ok := svg.Decode(callLazy(t, c, "svg", "<circle/>"))
		require.True(t, ok)
		assert.Contains(t, doc, "xmlns")
	})
	t.Run("filter shorthand", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.Seed = "7"
		u := callLazy(t, c, "filter", "frequency=.05", "scale=2", "blur=1")
		assert.True(t, strings.HasSuffix(u, `#filter-1")`))
		doc, ok := svg.Decode(u)
		require.True(t, ok)
		assert.Contains(t, doc, `<filter id="filter-1"`)
		assert.Contains(t, doc, `<feGaussianBlur stdDeviation="1"/>`)
		assert.Contains(t, doc, `type="fractalNoise"`)
		assert.Contains(t, doc, `seed="7"`)
		assert.Contains(t, doc, `<feDisplacementMap in="SourceGraphic" scale="2"/>`)
	})
	t.Run("filter ids", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		callLazy(t, c, "svg-filter", "blur=1")
		assert.True(t, strings.HasSuffix(callLazy(t, c, "svg-filter", "blur=1"), `#filter-2")`))
	})
	t.Run("pattern", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		doc, ok := svg.Decode(callLazy(t, c, "svg-pattern", "circle {}"))
		require.True(t, ok)
		assert.Contains(t, doc, `<pattern id="pattern-1"><circle/></pattern>`)
		assert.Contains(t, doc, `fill="url(#pattern-1)"`)
	})
	t.Run("polygon", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		doc, ok := svg.Decode(callLazy(t, c, "svg-polygon", "split: 4"))
		require.True(t, ok)
		assert.Contains(t, doc, `viewBox="-1.005 -1.005 2.01 2.01"`)
		assert.Contains(t, doc, `stroke-width=".01"`)
		assert.Contains(t, doc, `<polygon`)
	})
	t.Run("shape", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		v := call(t, c, "shape", "split: 4")
		assert.True(t, strings.HasPrefix(v, "polygon("))
		assert.Equal(t, 4, strings.Count(v, ",")+1)
	})
	t.Run("plot", func(t *testing.T) {
		c := newContext(t, "2x2", 2, 1)
		v := call(t, c, "plot", "r: .5")
		assert.Len(t, strings.Fields(v), 2)
		_, ok := c.TakeAngle()
		assert.True(t, ok)
	})
	t.Run("plot in a sequence", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.PushExtra(&cell.Extra{N: 5, Max: 4})
		defer c.PopExtra()
		assert.Empty(t, call(t, c, "Plot", "r: .5"))
	})
	t.Run("doodle placeholder", func(t *testing.T) {
		c := newContext(t, "1", 1, 1)
		c.Placeholder = func(id string) (string, bool) {
			return "@grid: 2;", id == "doodle-1"
		}
		assert.Equal(t, "<css-doodle>@grid: 2;</css-doodle>", call(t, c, "raw", "${doodle-1}"))
		assert.Equal(t, "plain", call(t, c, "raw", "plain"))
	})
}
