// Package num formats and parses the numbers that flow through doodle
// values: CSS lengths with units, calc results and sequence indices.
package num

import (
	"math"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Format renders f the way it appears in generated CSS: integers without
// a fraction, shortest round-trip digits otherwise, exponent notation only
// outside [1e-6, 1e21).
func Format(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[0]
		exp = strings.TrimLeft(exp[1:], "0")
		if exp == "" {
			exp = "0"
		}
		return mantissa + "e" + string(sign) + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Parse converts a numeric literal, including hex (0x1f) and exponent
// forms. ok is false for anything else.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	body := s
	if body[0] == '-' || body[0] == '+' {
		neg = body[0] == '-'
		body = body[1:]
	}
	if len(body) > 2 && (body[:2] == "0x" || body[:2] == "0X") {
		n, err := strconv.ParseUint(body[2:], 16, 64)
		if err != nil {
			return 0, false
		}
		f := float64(n)
		if neg {
			f = -f
		}
		return f, true
	}
	if body == "" || !(isDigit(body[0]) || body[0] == '.') {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNumeric reports whether s is a plain number literal.
func IsNumeric(s string) bool {
	_, ok := Parse(s)
	return ok
}

// Value is a number with an optional trailing unit.
type Value struct {
	Number  float64
	Unit    string
	HasUnit bool
	Valid   bool
}

// ParseUnit splits "10px" into 10 and "px". The unit must be the final
// token and follow the number directly; anything else leaves Unit empty.
func ParseUnit(input string) Value {
	var v Value
	tokens := tokenizer.Scan(input)
	for i, t := range tokens {
		isLast := i == len(tokens)-1
		switch {
		case t.IsNumber():
			n, _ := Parse(t.Value)
			v.Number = n
			v.Valid = true
		case v.Valid && (t.IsWord() || t.IsSymbol()) && i > 0 && tokens[i-1].IsNumber() && isLast:
			v.Unit = t.Value
			v.HasUnit = true
		default:
			return v
		}
	}
	return v
}

// Clamp bounds n to [lo, hi]. NaN counts as 0.
func Clamp(n, lo, hi float64) float64 {
	if math.IsNaN(n) {
		n = 0
	}
	return math.Max(lo, math.Min(hi, n))
}

func ClampInt(n, lo, hi int) int {
	return max(lo, min(hi, n))
}

func Lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// ToInt32 applies the 32-bit wrap used by bitwise operators.
func ToInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(f), 4294967296))))
}

// Truthy follows the number truthiness used by the logical operators.
func Truthy(f float64) bool {
	return f != 0 && !math.IsNaN(f)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
