// Package color parses CSS colors for the pattern renderer and editor
// color decorations.
package color

import (
	"fmt"
	"math"
	"strings"

	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/cssdoodle/internal/num"
)

// RGBA is a color with 8-bit channels and a 0-1 alpha.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// Parse reads any CSS color: hex, rgb(), hsl(), hwb(), lab(), named colors.
func Parse(value string) (RGBA, error) {
	value = strings.TrimSpace(value)
	parsed, err := csscolorparser.Parse(value)
	if err != nil {
		return RGBA{}, fmt.Errorf("unsupported color format %q: %w", value, err)
	}
	return RGBA{
		R: channel(parsed.R),
		G: channel(parsed.G),
		B: channel(parsed.B),
		A: num.Clamp(parsed.A, 0, 1),
	}, nil
}

func channel(f float64) uint8 {
	return uint8(math.Round(num.Clamp(f, 0, 1) * 255))
}

// Floats returns the channels scaled to 0-1.
func (c RGBA) Floats() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, c.A
}

// Vec4 renders the color as a GLSL vec4 literal.
func (c RGBA) Vec4() string {
	r, g, b, a := c.Floats()
	return "vec4(" + glslFloat(r) + ", " + glslFloat(g) + ", " + glslFloat(b) + ", " + glslFloat(a) + ")"
}

// Hex renders the color as #rrggbb, or #rrggbbaa when translucent.
func (c RGBA) Hex() string {
	if c.A < 1 {
		return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, uint8(math.Round(c.A*255)))
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// glslFloat formats n as a float literal; GLSL rejects "1" where a float
// is expected.
func glslFloat(n float64) string {
	s := num.Format(n)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
