package functions

import (
	"regexp"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/num"
)

var (
	nonDigit      = regexp.MustCompile(`\D`)
	rangeOrMatrix = regexp.MustCompile(`\d+[x-]\d+`)
)

// sequence repeats its remaining arguments count times. Every step is
// evaluated with its own extra; steps are joined by sep.
func sequence(sep string) LazyFunc {
	return func(c *cell.Context, args []Thunk) string {
		if len(args) < 2 {
			return ""
		}
		count := strings.TrimSpace(args[0](nil))
		if nonDigit.MatchString(count) && !rangeOrMatrix.MatchString(count) {
			if v := c.Calc.Eval(count, nil); v != 0 {
				count = num.Format(v)
			}
		}
		signature := c.State.NextSignature()
		actions := args[1:]
		steps := grid.Sequence(count, func(s grid.Step) string {
			extra := &cell.Extra{
				N: s.N, NX: s.NX, NY: s.NY,
				Max:   s.Max,
				Width: s.Width, Height: s.Height,
				Index:     s.Index,
				Signature: signature,
			}
			values := make([]string, len(actions))
			for i, action := range actions {
				values[i] = action(extra)
			}
			return strings.Join(values, ",")
		})
		return strings.Join(steps, sep)
	}
}

func init() {
	lazy("m", "Repeat values, comma separated.", sequence(","))
	lazy("M", "Repeat values, space separated.", sequence(" "))
	lazy("µ", "Repeat values without a separator.", sequence(""))

	lazy("once", "Evaluate once and reuse the result in every cell.", func(c *cell.Context, args []Thunk) string {
		key := cell.Key{Name: "once", Site: c.Site}
		return cell.Load(c.State, key, func() string {
			values := make([]string, len(args))
			for i, a := range args {
				values[i] = a(nil)
			}
			return strings.Join(values, ",")
		})
	})
}
