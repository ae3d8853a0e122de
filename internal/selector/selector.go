// Package selector implements the conditions of @nth, @row, @hover and
// the other selector functions that gate blocks per cell.
package selector

import (
	"maps"
	"math"
	"regexp"
	"slices"
	"strings"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/num"
)

// Result is the outcome of a condition. A non-empty Selector replaces the
// cell selector of the guarded block, with "$" standing for the cell.
type Result struct {
	Match    bool
	Selector string
}

// Predicate evaluates a condition for one cell.
type Predicate func(c *cell.Context, args []string) Result

var predicates = map[string]Predicate{
	"at":     at,
	"nth":    progression(func(c *cell.Context) int { return c.Count }),
	"row":    progression(func(c *cell.Context) int { return c.Y }),
	"col":    progression(func(c *cell.Context) int { return c.X }),
	"even":   func(c *cell.Context, _ []string) Result { return is(odd(c.X + c.Y)) },
	"odd":    func(c *cell.Context, _ []string) Result { return is(!odd(c.X + c.Y)) },
	"random": chance,
	"match":  match,
	"hover":  hover,
}

var aliases = map[string]string{"x": "col", "y": "row"}

// Lookup finds the predicate for a condition name.
func Lookup(name string) (Predicate, bool) {
	if target, ok := aliases[name]; ok {
		name = target
	}
	p, ok := predicates[name]
	return p, ok
}

// Names lists the condition names.
func Names() []string {
	names := slices.Collect(maps.Keys(predicates))
	slices.Sort(names)
	return names
}

func is(b bool) Result {
	return Result{Match: b}
}

func odd(n int) bool {
	return n%2 != 0
}

func at(c *cell.Context, args []string) Result {
	if len(args) < 2 {
		return is(false)
	}
	x, okx := num.Parse(args[0])
	y, oky := num.Parse(args[1])
	return is(okx && oky && float64(c.X) == x && float64(c.Y) == y)
}

func progression(value func(c *cell.Context) int) Predicate {
	return func(c *cell.Context, args []string) Result {
		v := value(c)
		for _, expr := range args {
			if Compare(expr, v) {
				return is(true)
			}
		}
		return is(false)
	}
}

// Compare reports whether value belongs to the progression rule: even,
// odd, n or an+b.
func Compare(rule string, value int) bool {
	switch strings.TrimSpace(rule) {
	case "even":
		return !odd(value)
	case "odd":
		return odd(value)
	case "n":
		return true
	}
	a, b, ok := ParseLinear(rule)
	if !ok {
		return false
	}
	if a == 0 {
		return float64(value) == b
	}
	n := (float64(value) - b) / a
	return n >= 0 && n == math.Trunc(n)
}

func variables(c *cell.Context) calc.Context {
	return calc.Context{
		"x": c.X, "X": c.Grid.X,
		"y": c.Y, "Y": c.Grid.Y,
		"i": c.Count, "I": c.Grid.Count,
		"random": func(...float64) float64 { return c.Random.Float() },
	}
}

var nonDigit = regexp.MustCompile(`\D`)

// chance matches a share of cells, half by default. The ratio may be an
// expression of the cell position.
func chance(c *cell.Context, args []string) Result {
	r := c.Random.Float()
	ratio := ".5"
	if len(args) > 0 && args[0] != "" {
		ratio = args[0]
	}
	if nonDigit.MatchString(ratio) {
		return is(r < c.Calc.Eval("("+ratio+")", variables(c)))
	}
	n, _ := num.Parse(ratio)
	return is(r < n)
}

func match(c *cell.Context, args []string) Result {
	if len(args) == 0 {
		return is(false)
	}
	return is(num.Truthy(c.Calc.Eval("("+strings.Join(args, ",")+")", variables(c))))
}

// hoverSelector targets the cell offset cells after the hovered one, or
// before it for a negative offset.
func hoverSelector(offset int) string {
	switch {
	case offset == 0:
		return "$:hover"
	case offset > 0:
		return "$:hover " + strings.Repeat("+*", offset)
	}
	return ":has(+ " + strings.Repeat("*+", -(offset+1)) + " $:hover)"
}

// hover styles a cell while it, or a neighbor given as an offset or a
// "dx dy" pair, is hovered.
func hover(c *cell.Context, args []string) Result {
	var selectors []string
	if len(args) == 0 {
		selectors = append(selectors, hoverSelector(0))
	}
	for _, arg := range args {
		fields := strings.Fields(arg)
		if len(fields) == 0 {
			continue
		}
		dx, okx := num.Parse(fields[0])
		if !okx {
			continue
		}
		if len(fields) == 1 {
			selectors = append(selectors, hoverSelector(int(dx)))
			continue
		}
		dy, oky := num.Parse(fields[1])
		if !oky {
			continue
		}
		rx, ry := int(dx)+c.X, int(dy)+c.Y
		if rx >= 1 && rx <= c.Grid.X && ry >= 1 && ry <= c.Grid.Y {
			selectors = append(selectors, hoverSelector(int(dy)*c.Grid.X+int(dx)))
		}
	}
	if len(selectors) == 0 {
		return is(false)
	}
	return Result{Match: true, Selector: strings.Join(selectors, ",")}
}
