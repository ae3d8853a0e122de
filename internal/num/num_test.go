package num_test

import (
	"math"
	"testing"

	"bennypowers.dev/cssdoodle/internal/num"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tenth, fifth := 0.1, 0.2
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{3, "3"},
		{-2.5, "-2.5"},
		{tenth + fifth, "0.30000000000000004"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, num.Format(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -1.5 ", -1.5, true},
		{"+3", 3, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"0x1f", 31, true},
		{"-0xA", -10, true},
		{"0xz", 0, false},
		{"10px", 0, false},
		{"px", 0, false},
		{"", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := num.Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.ok, num.IsNumeric(tt.in))
		})
	}
}

func TestParseUnit(t *testing.T) {
	t.Run("length", func(t *testing.T) {
		v := num.ParseUnit("10px")
		assert.True(t, v.Valid)
		assert.Equal(t, 10.0, v.Number)
		assert.Equal(t, "px", v.Unit)
		assert.True(t, v.HasUnit)
	})
	t.Run("percent", func(t *testing.T) {
		v := num.ParseUnit("50%")
		assert.Equal(t, 50.0, v.Number)
		assert.Equal(t, "%", v.Unit)
	})
	t.Run("plain number", func(t *testing.T) {
		v := num.ParseUnit("7")
		assert.True(t, v.Valid)
		assert.False(t, v.HasUnit)
	})
	t.Run("not a value", func(t *testing.T) {
		assert.False(t, num.ParseUnit("red").Valid)
		assert.False(t, num.ParseUnit("10 px").HasUnit)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5.0, num.Clamp(9, 0, 5))
	assert.Equal(t, 0.0, num.Clamp(-1, 0, 5))
	assert.Equal(t, 1.0, num.Clamp(math.NaN(), 1, 5))
	assert.Equal(t, 3, num.ClampInt(3, 1, 5))
	assert.Equal(t, 1, num.ClampInt(-3, 1, 5))
	assert.Equal(t, 7.5, num.Lerp(0.5, 5, 10))
}

func TestToInt32(t *testing.T) {
	assert.Equal(t, int32(5), num.ToInt32(5.9))
	assert.Equal(t, int32(-1), num.ToInt32(4294967295))
	assert.Equal(t, int32(-3), num.ToInt32(-3))
	assert.Equal(t, int32(0), num.ToInt32(math.NaN()))
	assert.Equal(t, int32(0), num.ToInt32(math.Inf(1)))
}

func TestTruthy(t *testing.T) {
	assert.True(t, num.Truthy(-1))
	assert.False(t, num.Truthy(0))
	assert.False(t, num.Truthy(math.NaN()))
}
