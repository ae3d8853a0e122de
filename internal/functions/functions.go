// Package functions is the builtin library behind @name(...) calls.
//
// Each builtin is registered with an explicit signature: eager builtins
// receive their arguments already evaluated, lazy builtins receive thunks
// they may evaluate any number of times (once per sequence step for @m).
package functions

import (
	"math"
	"slices"
	"strings"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/num"
)

// Thunk evaluates one argument. A non-nil extra evaluates it as a step of
// a sequence.
type Thunk func(extra *cell.Extra) string

// EagerFunc receives evaluated arguments.
type EagerFunc func(c *cell.Context, args []string) string

// LazyFunc receives unevaluated arguments.
type LazyFunc func(c *cell.Context, args []Thunk) string

// Builtin is one registered function. Exactly one of Eager and Lazy is set.
type Builtin struct {
	Name  string
	Eager EagerFunc
	Lazy  LazyFunc
	// Doc is a one-line description shown by editors.
	Doc string
}

// IsLazy reports whether the builtin takes thunks.
func (b Builtin) IsLazy() bool {
	return b.Lazy != nil
}

var registry = map[string]Builtin{}

func eager(name, doc string, fn EagerFunc) {
	registry[name] = Builtin{Name: name, Eager: fn, Doc: doc}
}

func lazy(name, doc string, fn LazyFunc) {
	registry[name] = Builtin{Name: name, Lazy: fn, Doc: doc}
}

var aliases = map[string]string{
	"index": "i", "col": "x", "row": "y", "depth": "z",
	"rand": "r", "pick": "p", "pn": "pl", "pnr": "pr",

	"stripes": "stripe", "strip": "stripe", "patern": "pattern",
	"flipv": "flipV", "fliph": "flipH",

	"t": "ut", "filter": "svg-filter", "last-rand": "lr", "last-pick": "lp",
	"multiple": "m", "multi": "m", "rep": "µ", "repeat": "µ", "ms": "M",
	"s": "I", "size": "I",
	"sx": "X", "size-x": "X", "size-col": "X", "max-col": "X",
	"sy": "Y", "size-y": "Y", "size-row": "Y", "max-row": "Y",
	"sz": "Z", "size-z": "Z", "size-depth": "Z",
	"Svg": "svg", "pick-by-turn": "pl", "pick-n": "pl", "pick-d": "pd",
	"offset": "plot", "Offset": "Plot", "point": "plot", "Point": "Plot",
	"unicode": "code",
}

// Resolve maps an alias to its builtin name.
func Resolve(name string) string {
	if target, ok := aliases[name]; ok {
		return target
	}
	return name
}

// Lookup finds the builtin for a call name. Names starting with "$" are
// calc calls; Math functions and constants are available by name.
func Lookup(name string) (Builtin, bool) {
	if strings.HasPrefix(name, "$") {
		return registry["calc"], true
	}
	if b, ok := registry[Resolve(name)]; ok {
		return b, true
	}
	if calc.IsMathName(name) {
		return mathBuiltin(name), true
	}
	return Builtin{}, false
}

// Names lists every builtin and alias, sorted.
func Names() []string {
	names := make([]string, 0, len(registry)+len(aliases))
	for n := range registry {
		names = append(names, n)
	}
	for n := range aliases {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func mathBuiltin(name string) Builtin {
	return Builtin{
		Name: name,
		Doc:  "Math." + name,
		Eager: func(c *cell.Context, args []string) string {
			if v, ok := calc.Constants[name]; ok {
				return num.Format(v)
			}
			if name == "random" {
				return num.Format(c.Random.Float())
			}
			values := make([]float64, len(args))
			for i, a := range args {
				values[i] = c.Calc.Eval(a, nil)
			}
			fn := calc.Functions[name]
			result := fn(values...)
			if math.IsNaN(result) {
				return "NaN"
			}
			return num.Format(result)
		},
	}
}

// Calc evaluates the joined arguments of a $ call with custom properties
// as variables ("--size" is "size") and appends unit.
func Calc(c *cell.Context, args []string, unit string) string {
	ctx := calc.Context{}
	for name, value := range c.Variables {
		ctx[strings.TrimPrefix(name, "--")] = value
	}
	return num.Format(c.Calc.Eval(strings.Join(args, ","), ctx)) + unit
}
