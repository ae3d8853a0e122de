package functions

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/num"
)

var opValue = regexp.MustCompile(`^[+*/%-][-.\d\s]`)
var trailingOp = regexp.MustCompile(`[+*/%-]$`)

// calcWith offsets base by the first argument:
//
//	@i      base
//	@i(5)   base + 5
//	@i(*2)  base * 2
//	@i(10-) 10 - base
//
// A base that is a var() reference is offset inside calc().
func calcWith(base string) func(args []string) string {
	return func(args []string) string {
		if len(args) == 0 || base == "" {
			return base
		}
		v := strings.TrimSpace(args[0])
		if v == "" {
			return base
		}
		isVar := strings.HasPrefix(base, "var(")
		switch {
		case opValue.MatchString(v):
			op := v[:1]
			p := num.ParseUnit(strings.TrimSpace(v[1:]))
			if isVar {
				return "calc((" + base + " " + op + " " + num.Format(p.Number) + ") * 1" + p.Unit + ")"
			}
			b, _ := num.Parse(base)
			return num.Format(compute(op, b, p.Number)) + p.Unit
		case trailingOp.MatchString(v):
			op := v[len(v)-1:]
			p := num.ParseUnit(strings.TrimSpace(v[:len(v)-1]))
			if isVar {
				return "calc((" + num.Format(p.Number) + " " + op + " " + base + ") * 1" + p.Unit + ")"
			}
			b, _ := num.Parse(base)
			return num.Format(compute(op, p.Number, b)) + p.Unit
		}
		p := num.ParseUnit(v)
		if isVar {
			return "calc((" + base + " + " + num.Format(p.Number) + ") * 1" + p.Unit + ")"
		}
		b, _ := num.Parse(base)
		return num.Format(b+p.Number) + p.Unit
	}
}

func compute(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "%":
		return math.Mod(a, b)
	}
	return 0
}

func coordinate(get func(c *cell.Context) int) EagerFunc {
	return func(c *cell.Context, args []string) string {
		return calcWith(strconv.Itoa(get(c)))(args)
	}
}

// sequenceValue reads the innermost sequence step, or leaves the literal
// name in place outside sequences.
func sequenceValue(name string, get func(e *cell.Extra) int) EagerFunc {
	return func(c *cell.Context, args []string) string {
		e := c.Extra()
		if e == nil {
			return "@" + name
		}
		return calcWith(strconv.Itoa(get(e)))(args)
	}
}

func uniform(name string) EagerFunc {
	return func(c *cell.Context, args []string) string {
		c.State.UseUniform(name)
		return calcWith("var(--cssd-u" + name + ")")(args)
	}
}

func init() {
	eager("i", "Index of the cell.", coordinate(func(c *cell.Context) int { return c.Count }))
	eager("x", "Column of the cell.", coordinate(func(c *cell.Context) int { return c.X }))
	eager("y", "Row of the cell.", coordinate(func(c *cell.Context) int { return c.Y }))
	eager("z", "Depth of the cell.", coordinate(func(c *cell.Context) int { return c.Z }))
	eager("I", "Number of cells.", coordinate(func(c *cell.Context) int { return c.Grid.Count }))
	eager("X", "Number of columns.", coordinate(func(c *cell.Context) int { return c.Grid.X }))
	eager("Y", "Number of rows.", coordinate(func(c *cell.Context) int { return c.Grid.Y }))
	eager("Z", "Grid depth.", coordinate(func(c *cell.Context) int { return c.Grid.Z }))

	eager("id", "Element id of the cell.", func(c *cell.Context, _ []string) string {
		return c.ID()
	})

	eager("dx", "Column offset from the grid center.", func(c *cell.Context, args []string) string {
		return centered(float64(c.X), float64(c.Grid.X), args)
	})
	eager("dy", "Row offset from the grid center.", func(c *cell.Context, args []string) string {
		return centered(float64(c.Y), float64(c.Grid.Y), args)
	})

	eager("n", "Current step of a sequence.", sequenceValue("n", func(e *cell.Extra) int { return e.N }))
	eager("nx", "Current column of a sequence.", sequenceValue("nx", func(e *cell.Extra) int { return e.NX }))
	eager("ny", "Current row of a sequence.", sequenceValue("ny", func(e *cell.Extra) int { return e.NY }))
	eager("N", "Length of a sequence.", sequenceValue("N", func(e *cell.Extra) int { return e.Max }))

	eager("ut", "Elapsed time uniform.", uniform("time"))
	eager("uw", "Width uniform.", uniform("width"))
	eager("uh", "Height uniform.", uniform("height"))
	eager("ux", "Mouse x uniform.", uniform("mousex"))
	eager("uy", "Mouse y uniform.", uniform("mousey"))
}

// centered offsets the 1-based position n from the middle of size cells,
// shifted by the first argument.
func centered(n, size float64, args []string) string {
	var offset float64
	if len(args) > 0 {
		offset, _ = num.Parse(args[0])
	}
	return num.Format(n - .5 - offset - size/2)
}
