package grid_test

import (
	"fmt"
	"testing"

	"bennypowers.dev/cssdoodle/internal/grid"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  grid.Grid
	}{
		{"3x4", grid.MaxDefault, grid.Grid{X: 3, Y: 4, Z: 1, Count: 12, Ratio: 0.75}},
		{"5", grid.MaxDefault, grid.Grid{X: 5, Y: 5, Z: 1, Count: 25, Ratio: 1}},
		{"5, 2", grid.MaxDefault, grid.Grid{X: 5, Y: 2, Z: 1, Count: 10, Ratio: 2.5}},
		{"1x1x4", grid.MaxDefault, grid.Grid{X: 1, Y: 1, Z: 4, Count: 4, Ratio: 1}},
		{"2x2x4", grid.MaxDefault, grid.Grid{X: 2, Y: 2, Z: 1, Count: 4, Ratio: 1}},
		{"100x100", grid.MaxDefault, grid.Grid{X: 64, Y: 64, Z: 1, Count: 4096, Ratio: 1}},
		{"1x5000", grid.MaxDefault, grid.Grid{X: 1, Y: 4096, Z: 1, Count: 4096, Ratio: 1.0 / 4096}},
		{"100x100", grid.MaxExperimental, grid.Grid{X: 100, Y: 100, Z: 1, Count: 10000, Ratio: 1}},
		{"", grid.MaxDefault, grid.Grid{X: 1, Y: 1, Z: 1, Count: 1, Ratio: 1}},
		{"abc", grid.MaxDefault, grid.Grid{X: 1, Y: 1, Z: 1, Count: 1, Ratio: 1}},
		{"2-5", grid.MaxDefault, grid.Grid{X: 4, Y: 1, Z: 1, Count: 4, Ratio: 4}},
		{"9-3", grid.MaxDefault, grid.Grid{X: 7, Y: 1, Z: 1, Count: 7, Ratio: 7}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.input, tt.max), func(t *testing.T) {
			assert.Equal(t, tt.want, grid.Parse(tt.input, tt.max))
		})
	}
}

func TestGridString(t *testing.T) {
	assert.Equal(t, "3x4", grid.Parse("3x4", grid.MaxDefault).String())
	assert.Equal(t, "1x1x8", grid.Parse("1x1x8", grid.MaxDefault).String())
}

func TestSequence(t *testing.T) {
	values := func(count string) []int {
		return grid.Sequence(count, func(s grid.Step) int { return s.N })
	}

	t.Run("count", func(t *testing.T) {
		assert.Equal(t, []int{1, 2, 3}, values("3"))
	})

	t.Run("ascending range", func(t *testing.T) {
		assert.Equal(t, []int{2, 3, 4, 5}, values("2-5"))
	})

	t.Run("descending range", func(t *testing.T) {
		assert.Equal(t, []int{5, 4, 3}, values("5-3"))
	})

	t.Run("rows and columns", func(t *testing.T) {
		steps := grid.Sequence("2x3", func(s grid.Step) grid.Step { return s })
		assert.Len(t, steps, 6)
		assert.Equal(t, grid.Step{N: 3, NX: 1, NY: 2, Max: 6, Width: 2, Height: 3, Index: 3}, steps[2])
	})

	t.Run("fractional counts round up", func(t *testing.T) {
		assert.Len(t, values("2.2"), 3)
	})

	t.Run("huge counts are bounded", func(t *testing.T) {
		assert.Len(t, values("1000x1000"), grid.MaxSequence)
	})

	t.Run("garbage is one step", func(t *testing.T) {
		assert.Equal(t, []int{1}, values("abc"))
	})
}
