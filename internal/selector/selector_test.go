package selector_test

import (
	"testing"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/random"
	"bennypowers.dev/cssdoodle/internal/selector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cellAt(size string, x, y int) *cell.Context {
	g := grid.Parse(size, grid.MaxDefault)
	return cell.New(x, y, 1, (y-1)*g.X+x, g, random.New("selector"), cell.NewState())
}

func eval(t *testing.T, c *cell.Context, name string, args ...string) selector.Result {
	t.Helper()
	p, ok := selector.Lookup(name)
	require.True(t, ok, "condition %s", name)
	return p(c, args)
}

func TestParseLinear(t *testing.T) {
	tests := []struct {
		in   string
		a, b float64
		ok   bool
	}{
		{"2n+1", 2, 1, true},
		{"2n + 1", 2, 1, true},
		{"2n-1", 2, -1, true},
		{"-n+3", -1, 3, true},
		{"n", 1, 0, true},
		{"4", 0, 4, true},
		{"3n", 3, 0, true},
		{"n+n+1", 2, 1, true},
		{"2n*1", 0, 0, false},
		{"x", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, b, ok := selector.ParseLinear(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.a, a)
				assert.Equal(t, tt.b, b)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	for v := 1; v <= 9; v++ {
		assert.Equal(t, v%2 == 1, selector.Compare("odd", v), "odd %d", v)
		assert.Equal(t, v%2 == 0, selector.Compare("even", v), "even %d", v)
		assert.Equal(t, selector.Compare("odd", v), selector.Compare("2n+1", v), "2n+1 %d", v)
		assert.Equal(t, selector.Compare("odd", v), selector.Compare("2n-1", v), "2n-1 %d", v)
		assert.True(t, selector.Compare("n", v))
	}
	assert.True(t, selector.Compare("3", 3))
	assert.False(t, selector.Compare("3", 4))
	assert.True(t, selector.Compare("-n+3", 2))
	assert.False(t, selector.Compare("-n+3", 4))
	assert.False(t, selector.Compare("garbage", 1))
}

func TestPredicates(t *testing.T) {
	t.Run("at", func(t *testing.T) {
		assert.True(t, eval(t, cellAt("5x5", 2, 3), "at", "2", "3").Match)
		assert.False(t, eval(t, cellAt("5x5", 3, 2), "at", "2", "3").Match)
		assert.False(t, eval(t, cellAt("5x5", 2, 3), "at", "2").Match)
	})
	t.Run("nth", func(t *testing.T) {
		assert.True(t, eval(t, cellAt("3x3", 2, 2), "nth", "5").Match)
		assert.True(t, eval(t, cellAt("3x3", 2, 2), "nth", "1", "odd").Match)
		assert.False(t, eval(t, cellAt("3x3", 2, 2), "nth", "even").Match)
	})
	t.Run("row and col", func(t *testing.T) {
		c := cellAt("4x4", 1, 3)
		assert.True(t, eval(t, c, "row", "3").Match)
		assert.True(t, eval(t, c, "col", "odd").Match)
		assert.False(t, eval(t, c, "col", "2n").Match)
	})
	t.Run("parity", func(t *testing.T) {
		assert.True(t, eval(t, cellAt("4x4", 1, 2), "even").Match)
		assert.False(t, eval(t, cellAt("4x4", 1, 1), "even").Match)
		assert.True(t, eval(t, cellAt("4x4", 1, 1), "odd").Match)
	})
	t.Run("match", func(t *testing.T) {
		assert.True(t, eval(t, cellAt("4x4", 2, 2), "match", "x == y").Match)
		assert.False(t, eval(t, cellAt("4x4", 2, 3), "match", "x == y").Match)
		assert.True(t, eval(t, cellAt("4x4", 4, 1), "match", "x == X").Match)
	})
	t.Run("random", func(t *testing.T) {
		assert.False(t, eval(t, cellAt("4x4", 1, 1), "random", "0").Match)
		assert.True(t, eval(t, cellAt("4x4", 1, 1), "random", "1").Match)
		assert.False(t, eval(t, cellAt("4x4", 1, 1), "random", "x - 1").Match)
		a := eval(t, cellAt("4x4", 1, 1), "random").Match
		b := eval(t, cellAt("4x4", 1, 1), "random", ".5").Match
		assert.Equal(t, a, b)
	})
	t.Run("unknown", func(t *testing.T) {
		_, ok := selector.Lookup("nope")
		assert.False(t, ok)
	})
}

func TestHover(t *testing.T) {
	c := cellAt("3x3", 2, 2)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"self", nil, "$:hover"},
		{"next", []string{"1"}, "$:hover +*"},
		{"after next", []string{"2"}, "$:hover +*+*"},
		{"previous", []string{"-1"}, ":has(+  $:hover)"},
		{"two before", []string{"-2"}, ":has(+ *+ $:hover)"},
		{"below", []string{"0 1"}, "$:hover +*+*+*"},
		{"several", []string{"1", "-1"}, "$:hover +*,:has(+  $:hover)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := eval(t, c, "hover", tt.args...)
			assert.True(t, r.Match)
			assert.Equal(t, tt.want, r.Selector)
		})
	}
	t.Run("outside the grid", func(t *testing.T) {
		r := eval(t, cellAt("3x3", 3, 3), "hover", "1 1")
		assert.False(t, r.Match)
	})
}
