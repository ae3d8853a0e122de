// Package cell holds the evaluation context of one grid cell and the
// compile-scoped state that stateful builtins share between cells.
package cell

import (
	"strconv"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/random"
)

// Extra describes the sequence step an argument is evaluated in, as
// produced by @m, @M and @µ.
type Extra struct {
	N, NX, NY     int
	Max           int
	Width, Height int
	Index         int
	// Signature identifies one sequence invocation.
	Signature int
}

// Context is the coordinate context of one cell. The composer creates one
// per cell; Random, Calc and State are shared by every cell of a compile.
type Context struct {
	X, Y, Z int
	// Count is the 1-based row-major index of the cell.
	Count   int
	Grid    grid.Grid
	MaxGrid int
	Seed    string

	Random *random.Generator
	Calc   *calc.Evaluator
	State  *State

	// Site is the call site currently being evaluated.
	Site int
	// Variables are the custom properties visible to the current value.
	Variables map[string]string
	// Placeholder resolves an embedded doodle id to its source.
	Placeholder func(id string) (string, bool)

	extras []*Extra
	angle  *float64
}

// New returns a context for the cell at x, y, z.
func New(x, y, z, count int, g grid.Grid, gen *random.Generator, state *State) *Context {
	ev := calc.NewEvaluator()
	ev.Random = gen.Float
	return &Context{
		X: x, Y: y, Z: z,
		Count:  count,
		Grid:   g,
		Random: gen,
		Calc:   ev,
		State:  state,
	}
}

// ID is the element id of the cell, "c-x-y-z".
func (c *Context) ID() string {
	return ID(c.X, c.Y, c.Z)
}

// ID formats a cell id.
func ID(x, y, z int) string {
	return "c-" + strconv.Itoa(x) + "-" + strconv.Itoa(y) + "-" + strconv.Itoa(z)
}

// PushExtra enters a sequence step.
func (c *Context) PushExtra(e *Extra) {
	c.extras = append(c.extras, e)
}

// PopExtra leaves the innermost sequence step.
func (c *Context) PopExtra() {
	if len(c.extras) > 0 {
		c.extras = c.extras[:len(c.extras)-1]
	}
}

// Extra returns the innermost sequence step, or nil outside sequences.
func (c *Context) Extra() *Extra {
	if len(c.extras) == 0 {
		return nil
	}
	return c.extras[len(c.extras)-1]
}

// Signature is the innermost sequence signature, 0 outside sequences.
func (c *Context) Signature() int {
	if e := c.Extra(); e != nil {
		return e.Signature
	}
	return 0
}

// SetAngle records the direction of the last plotted point for @place.
func (c *Context) SetAngle(deg float64) {
	c.angle = &deg
}

// TakeAngle returns and clears the recorded angle.
func (c *Context) TakeAngle() (float64, bool) {
	if c.angle == nil {
		return 0, false
	}
	a := *c.angle
	c.angle = nil
	return a, true
}

// Rand returns a value in [start, end).
func (c *Context) Rand(start, end float64) float64 {
	return c.Random.Between(start, end)
}
