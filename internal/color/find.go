package color

import (
	"math"
	"regexp"
	"slices"
	"strconv"

	"bennypowers.dev/cssdoodle/internal/num"
)

// Match is a color literal found in text.
type Match struct {
	Start, End int
	Color      RGBA
}

var (
	colorFunc = regexp.MustCompile(`\b(?:rgba?|hsla?|hwb|lab|lch|oklab|oklch)\([^()]*\)`)
	hexColor  = regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)
	word      = regexp.MustCompile(`[a-zA-Z]+`)
)

// Find lists the color literals of text in order: color functions, hex
// colors and named colors. Words that are part of a longer identifier, a
// call name or an @-name are not colors.
func Find(text string) []Match {
	var out []Match
	taken := make([]bool, len(text))
	add := func(start, end int) {
		for i := start; i < end; i++ {
			if taken[i] {
				return
			}
		}
		c, err := Parse(text[start:end])
		if err != nil {
			return
		}
		for i := start; i < end; i++ {
			taken[i] = true
		}
		out = append(out, Match{Start: start, End: end, Color: c})
	}
	for _, loc := range colorFunc.FindAllStringIndex(text, -1) {
		add(loc[0], loc[1])
	}
	for _, loc := range hexColor.FindAllStringIndex(text, -1) {
		if n := loc[1] - loc[0] - 1; n == 3 || n == 4 || n == 6 || n == 8 {
			add(loc[0], loc[1])
		}
	}
	for _, loc := range word.FindAllStringIndex(text, -1) {
		if isNamePart(text, loc[0]-1) || isNamePart(text, loc[1]) ||
			loc[1] < len(text) && text[loc[1]] == '(' {
			continue
		}
		add(loc[0], loc[1])
	}
	slices.SortFunc(out, func(a, b Match) int { return a.Start - b.Start })
	return out
}

func isNamePart(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	b := text[i]
	return b == '-' || b == '_' || b == '@' || b == '$' || b == '#' || b == '.' ||
		b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// FromFloats builds a color from 0-1 channels.
func FromFloats(r, g, b, a float64) RGBA {
	return RGBA{R: channel(r), G: channel(g), B: channel(b), A: num.Clamp(a, 0, 1)}
}

// RGB renders the color as rgb(), with the alpha when translucent.
func (c RGBA) RGB() string {
	s := "rgb(" + strconv.Itoa(int(c.R)) + " " + strconv.Itoa(int(c.G)) + " " + strconv.Itoa(int(c.B))
	if c.A < 1 {
		s += " / " + num.Format(math.Round(c.A*100)/100)
	}
	return s + ")"
}
