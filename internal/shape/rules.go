// Package shape turns shape commands such as "split: 5; rotate: 54" into
// polygon points. It backs @shape, @plot and @svg-polygon.
package shape

import (
	"math"
	"slices"
	"strings"

	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Rules is an ordered set of shape commands.
type Rules struct {
	names  []string
	values map[string]string
}

func NewRules() *Rules {
	return &Rules{values: map[string]string{}}
}

// Get returns the command value, "" when absent.
func (r *Rules) Get(name string) string {
	return r.values[name]
}

func (r *Rules) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Set adds or replaces a command, keeping its first position.
func (r *Rules) Set(name, value string) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Default sets a command only when it is missing.
func (r *Rules) Default(name, value string) {
	if !r.Has(name) {
		r.Set(name, value)
	}
}

func (r *Rules) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
}

// Names lists commands in declaration order.
func (r *Rules) Names() []string {
	return slices.Clone(r.names)
}

// ParseRules reads "name: value; ..." commands. A leading "-" on a name
// negates its value, as in "-x: cos(t)".
func ParseRules(input string) *Rules {
	rules := NewRules()
	tokens := tokenizer.Scan(input)
	var (
		name     string
		named    bool
		current  []tokenizer.Token
		negative bool
	)
	commit := func() {
		rules.Set(name, negate(name, tokenizer.Join(current), negative))
		current = nil
		name, named, negative = "", false, false
	}
	for i, t := range tokens {
		switch {
		case t.IsSymbol(":") && !named:
			name = tokenizer.Join(current)
			named = true
			current = nil
		case t.IsSymbol(";") && named:
			commit()
		case t.IsSymbol(";"):
		default:
			minus := t.IsSymbol("-")
			prevMinus := i > 0 && tokens[i-1].IsSymbol("-")
			nextMinus := i+1 < len(tokens) && tokens[i+1].IsSymbol("-")
			if !named && len(current) == 0 && minus && !prevMinus && !nextMinus {
				if i+1 < len(tokens) && tokens[i+1].IsSymbol(":") {
					current = append(current, t)
				} else {
					negative = true
				}
				continue
			}
			current = append(current, t)
		}
	}
	if len(current) > 0 && named {
		commit()
	}
	return rules
}

func negate(name, value string, negative bool) string {
	if name == "fill" || name == "fill-rule" || !negative {
		return value
	}
	return "-1 * (" + value + ")"
}

// Direction is the point direction option: "auto", "reverse" or a fixed
// angle.
type Direction struct {
	Keyword string
	Angle   float64
}

// ParseDirection reads "auto", "reverse" and angles with deg, rad, grad or
// turn units. Anything else is "auto".
func ParseDirection(input string) Direction {
	var (
		d        Direction
		matched  bool
		hasAngle bool
		unit     string
	)
	tokens := tokenizer.Scan(input)
	for i, t := range tokens {
		switch {
		case t.IsWord() && (t.Value == "auto" || t.Value == "reverse"):
			d.Keyword = t.Value
			matched = true
		case t.IsNumber():
			d.Angle, _ = num.Parse(t.Value)
			hasAngle = true
			matched = true
		case t.IsWord() && i > 0 && tokens[i-1].IsNumber() && isAngleUnit(t.Value):
			unit = t.Value
		case t.IsSpace() && d.Keyword != "" && hasAngle:
			return d.normalize(unit)
		}
	}
	if !matched {
		d.Keyword = "auto"
	}
	return d.normalize(unit)
}

func isAngleUnit(s string) bool {
	switch s {
	case "deg", "rad", "grad", "turn":
		return true
	}
	return false
}

func (d Direction) normalize(unit string) Direction {
	switch unit {
	case "rad":
		d.Angle /= math.Pi / 180
	case "grad":
		d.Angle *= .9
	case "turn":
		d.Angle *= 360
	}
	return d
}

// numbers reads space or comma separated numbers; unparsable parts are NaN.
func numbers(input string) []float64 {
	var out []float64
	for _, f := range strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' }) {
		n, ok := num.Parse(f)
		if !ok {
			n = math.NaN()
		}
		out = append(out, n)
	}
	return out
}
