package functions

import (
	"fmt"
	"regexp"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/shape"
	"bennypowers.dev/cssdoodle/internal/svg"
)

func evaluate(args []Thunk) []string {
	values := make([]string, len(args))
	for i, a := range args {
		values[i] = a(nil)
	}
	return values
}

var (
	numberLike   = regexp.MustCompile(`^[\-\d.]`)
	wordLike     = regexp.MustCompile(`^\w+`)
	markupSyntax = regexp.MustCompile(`[{}<>]`)
	filterOpen   = regexp.MustCompile(`<filter([\s>])`)
	vectorProp   = regexp.MustCompile(`^(stroke|fill|clip|marker|mask|animate|draw)`)
)

// isFilterShorthand reports whether every value is a plain argument like
// "blur=2" or ".05" rather than filter markup.
func isFilterShorthand(values []string) bool {
	for _, v := range values {
		if !numberLike.MatchString(v) && !(wordLike.MatchString(v) && !markupSyntax.MatchString(v)) {
			return false
		}
	}
	return true
}

func filterShorthand(c *cell.Context, values []string) string {
	named := list.NamedArguments(values, []string{
		"frequency", "scale", "octave", "seed", "blur", "erode", "dilate",
	})
	seed, ok := named["seed"]
	if !ok {
		seed = c.Seed
	}
	var b strings.Builder
	b.WriteString("x: -20%; y: -20%; width: 140%; height: 140%;")
	if v, ok := named["dilate"]; ok {
		fmt.Fprintf(&b, " feMorphology { operator: dilate; radius: %s; }", v)
	}
	if v, ok := named["erode"]; ok {
		fmt.Fprintf(&b, " feMorphology { operator: erode; radius: %s; }", v)
	}
	if v, ok := named["blur"]; ok {
		fmt.Fprintf(&b, " feGaussianBlur { stdDeviation: %s; }", v)
	}
	if frequency, ok := named["frequency"]; ok {
		parts := list.Split(frequency)
		bx, by := parts[0], parts[0]
		if len(parts) > 1 {
			by = parts[1]
		}
		var octave string
		if v := named["octave"]; v != "" {
			octave = "numOctaves: " + v + ";"
		}
		fmt.Fprintf(&b, " feTurbulence { type: fractalNoise; baseFrequency: %s %s; seed: %s; %s }", bx, by, seed, octave)
		if v := named["scale"]; v != "" && v != "0" {
			fmt.Fprintf(&b, " feDisplacementMap { in: SourceGraphic; scale: %s; }", v)
		}
	}
	return b.String()
}

// plotted returns the point of the current cell, or of the current step
// inside a sequence, on a shape spread over every cell.
func plotted(c *cell.Context, name string, args []string, unitless bool) string {
	idx, count := c.Count, c.Grid.Count
	if e := c.Extra(); e != nil {
		idx, count = e.N, e.Max
	}
	key := cell.Key{Name: name, Site: c.Site}
	points := cell.Load(c.State, key, func() []shape.Point {
		return shape.Generate(strings.Join(args, ","), 1, shape.MaxPlotPoints, c.Calc, func(r *shape.Rules) {
			r.Delete("fill")
			r.Delete("fill-rule")
			r.Delete("frame")
			r.Set("points", fmt.Sprint(count))
			if unitless {
				r.Default("unit", "none")
			}
		}).Points
	})
	if idx < 1 || idx > len(points) {
		return ""
	}
	p := points[idx-1]
	c.SetAngle(p.Angle)
	return p.String()
}

func init() {
	lazy("svg", "Inline SVG image from markup.", func(c *cell.Context, args []Thunk) string {
		value := strings.Join(evaluate(args), ",")
		if !strings.HasPrefix(value, "<") {
			value = svg.Generate(value)
		}
		return svg.URL(svg.Normalize(value), "")
	})

	lazy("svg-filter", "Inline SVG filter.", func(c *cell.Context, args []Thunk) string {
		values := evaluate(args)
		value := strings.Join(values, ",")
		id := c.State.NextID("filter")
		if isFilterShorthand(values) {
			value = filterShorthand(c, values)
		}
		if !strings.HasPrefix(value, "<") {
			value = svg.Generate(value, "filter")
		}
		doc := filterOpen.ReplaceAllString(svg.Normalize(value), `<filter id="`+id+`"$1`)
		return svg.URL(doc, id)
	})

	lazy("svg-pattern", "Inline SVG pattern filling the cell.", func(c *cell.Context, args []Thunk) string {
		value := strings.Join(evaluate(args), ",")
		doc := svg.Generate(`
			viewBox: 0 0 1 1;
			preserveAspectRatio: xMidYMid slice;
			rect {
				width, height: 100%;
				fill: defs pattern { ` + value + ` }
			}
		`)
		return svg.URL(doc, "")
	})

	lazy("svg-polygon", "Inline SVG polygon from shape commands.", func(c *cell.Context, args []Thunk) string {
		commands := strings.Join(evaluate(args), ",")
		s := shape.Generate(commands, shape.MinPoints, shape.MaxPlotPoints, c.Calc, func(r *shape.Rules) {
			r.Delete("frame")
			r.Set("unit", "none")
			r.Default("stroke-width", ".01")
			r.Default("stroke", "currentColor")
			r.Default("fill", "none")
		})
		var props strings.Builder
		for _, name := range s.Rules.Names() {
			if vectorProp.MatchString(name) {
				props.WriteString(name + ": " + s.Rules.Get(name) + ";")
			}
		}
		strokeWidth, _ := num.Parse(s.Rules.Get("stroke-width"))
		doc := svg.Generate(`
			viewBox: -1 -1 2 2 p ` + num.Format(strokeWidth/2) + `;
			polygon { ` + props.String() + ` points: ` + shape.Join(s.Points) + `; }
		`)
		return svg.URL(doc, "")
	})

	eager("shape", "CSS polygon() from shape commands.", func(c *cell.Context, args []string) string {
		commands := strings.Join(args, ",")
		key := cell.Key{Name: "shape:" + commands}
		return cell.Load(c.State, key, func() string {
			s := shape.Generate(commands, shape.MinPoints, shape.MaxPoints, c.Calc, nil)
			return "polygon(" + shape.Join(s.Points) + ")"
		})
	})

	eager("plot", "Position of the cell on a shape.", func(c *cell.Context, args []string) string {
		return plotted(c, "plot", args, false)
	})
	eager("Plot", "Position of the cell on a shape, unitless.", func(c *cell.Context, args []string) string {
		return plotted(c, "Plot", args, true)
	})

	for _, name := range []string{"doodle", "shaders", "pattern"} {
		eager(name, "Embedded "+name+".", func(_ *cell.Context, args []string) string {
			return strings.Join(args, ",")
		})
	}
}
