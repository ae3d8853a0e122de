package shape

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/num"
)

const (
	// MinPoints and MaxPoints bound the vertex count of a shape.
	MinPoints = 3
	MaxPoints = 3600
	// MaxPlotPoints bounds the points of plots and svg polygons.
	MaxPlotPoints = 65536
)

var presets = map[string]string{
	"circle":   "split: 180; scale: .99",
	"triangle": "rotate: 30; scale: 1.1; move: 0 .2",
	"pentagon": "split: 5; rotate: 54",
	"hexagon":  "split: 6; rotate: 30; scale: .98",
	"octagon":  "split: 8; rotate: 22.5; scale: .99",
	"star":     "split: 10; r: cos(5t); rotate: -18; scale: .99",
	"infinity": "split: 180; scale: .99; x: cos(t)*.99 / (sin(t)^2 + 1); y: x * sin(t)",
	"heart": "split: 180; rotate: 180; a: cos(t)*13/18 - cos(2t)*5/18; b: cos(3t)/18 + cos(4t)/18; " +
		"x: (.75 * sin(t)^3) * 1.2; y: (a - b + .2) * -1.1",
	"bean":     "split: 180; r: sin(t)^3 + cos(t)^3; move: -.35 .35",
	"bicorn":   "split: 180; x: cos(t); y: sin(t)^2 / (2 + sin(t)) - .5",
	"drop":     "split: 180; rotate: 90; scale: .95; x: sin(t); y: (1 + sin(t)) * cos(t) / 1.6",
	"fish":     "split: 240; x: cos(t) - sin(t)^2 / sqrt(2) - .04; y: sin(2t)/2",
	"whale":    "split: 240; rotate: 180; R: 3.4 * (sin(t)^2 - .5) * cos(t); x: cos(t) * R + .75; y: sin(t) * R * 1.2",
	"windmill": "split: 18; R: seq(.618, 1, 0); T: seq(t-.55, t, t); x: R * cos(T); y: R * sin(T)",
	"vase":     "split: 240; scale: .3; x: sin(4t) + sin(t) * 1.4; y: cos(t) + cos(t) * 4.8 + .3",
}

var parametric = map[string]func(k float64) string{
	"clover": func(k float64) string {
		k = num.Clamp(k, 3, 5)
		if k == 4 {
			k = 2
		}
		return "split: 240; r: cos(" + num.Format(k) + "t); scale: .98"
	},
	"hypocycloid": func(k float64) string {
		k = math.Floor(num.Clamp(k, 3, 5))
		scale := []string{".34", ".25", ".19"}[int(k)-3]
		return "split: 240; scale: " + scale + "; k: " + num.Format(k) +
			"; x: (k-1)*cos(t) + cos((k-1)*t); y: (k-1)*sin(t) - sin((k-1)*t)"
	},
	"bud": func(k float64) string {
		k = num.Clamp(k, 3, 10)
		return "split: 240; scale: .8; r: 1 + .2 * cos(" + num.Format(k) + "t)"
	},
}

// IsPreset reports whether name is a preset shape.
func IsPreset(name string) bool {
	_, ok := presets[name]
	_, fn := parametric[name]
	return ok || fn
}

// Presets lists preset shape names.
func Presets() []string {
	names := slices.Collect(maps.Keys(presets))
	names = append(names, slices.Collect(maps.Keys(parametric))...)
	slices.Sort(names)
	return names
}

// Point is one polygon vertex. Angle is the direction of the curve at the
// point in degrees.
type Point struct {
	X, Y  string
	Angle float64
	// FillRule marks the leading evenodd/nonzero entry of a polygon.
	FillRule bool
}

func (p Point) String() string {
	if p.FillRule {
		return p.X
	}
	return p.X + " " + p.Y
}

// Shape is the result of Generate.
type Shape struct {
	Rules  *Rules
	Points []Point
	Preset bool
}

// Join renders points separated by commas.
func Join(points []Point) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

// Generate builds the points of a preset name (optionally with an argument,
// "clover 5") or of raw commands. modify may adjust the rules first. The
// vertex count is clamped to [lo, hi].
func Generate(input string, lo, hi int, ev *calc.Evaluator, modify func(*Rules)) Shape {
	if ev == nil {
		ev = calc.NewEvaluator()
	}
	var s Shape
	commands := input
	parts := list.Split(input)
	if len(parts) > 0 {
		if c, ok := presets[parts[0]]; ok {
			commands, s.Preset = c, true
		} else if fn, ok := parametric[parts[0]]; ok {
			k := 3.0
			if len(parts) > 1 {
				if n, ok := num.Parse(parts[1]); ok {
					k = n
				}
			}
			commands, s.Preset = fn(k), true
		}
	}
	s.Rules = ParseRules(commands)
	if modify != nil {
		modify(s.Rules)
	}
	s.Points = shapePoints(s.Rules, lo, hi, ev)
	return s
}

func shapePoints(rules *Rules, lo, hi int, ev *calc.Evaluator) []Point {
	count := firstNonEmpty(rules.Get("vertices"), rules.Get("points"), rules.Get("split"))
	split := num.ClampInt(leadingInt(count), lo, hi)

	px := or(rules.Get("x"), "cos(t)")
	py := or(rules.Get("y"), "sin(t)")
	pr := rules.Get("r")
	pt := rules.Get("t")

	if v := num.ParseUnit(pr); v.HasUnit && !rules.Has(v.Unit) && v.Unit != "t" {
		if rules.Get("unit") == "" {
			rules.Set("unit", v.Unit)
		}
		pr = num.Format(v.Number)
		rules.Set("r", pr)
	}
	if d := rules.Get("degree"); d != "" {
		rules.Set("rotate", d)
	}
	if o := rules.Get("origin"); o != "" {
		rules.Set("move", o)
	}
	rules.Set("split", strconv.Itoa(split))

	base := calc.Context{}
	for _, n := range rules.Names() {
		base[n] = rules.Get(n)
	}

	return polygonPoints(rules, func(t float64, i int) vertex {
		ctx := make(calc.Context, len(base)+5)
		for k, v := range base {
			ctx[k] = v
		}
		if pt != "" {
			ctx["t"], ctx["θ"] = pt, pt
		} else {
			ctx["t"], ctx["θ"] = t, t
		}
		ctx["i"] = i + 1
		ctx["seq"] = calc.Func(func(items ...float64) float64 {
			if len(items) == 0 {
				return 0
			}
			return items[i%len(items)]
		})
		ctx["range"] = calc.Func(func(args ...float64) float64 {
			a, b := argOr(args, 0), argOr(args, 1)
			if a > b {
				a, b = b, a
			}
			step := math.Abs(b-a) / float64(split-1)
			return a + step*float64(i)
		})

		v := vertex{x: ev.Eval(px, ctx), y: ev.Eval(py, ctx)}
		if pr != "" {
			r := ev.Eval(pr, ctx)
			if r == 0 {
				r = .00001
			}
			if pt != "" {
				t = ev.Eval(pt, ctx)
			}
			v.x, v.y = r*math.Cos(t), r*math.Sin(t)
		}
		if deg := rules.Get("rotate"); deg != "" {
			d, ok := num.Parse(deg)
			if !ok {
				d = 0
			}
			v.x, v.y = rotate(v.x, v.y, d)
		}
		if m := rules.Get("move"); m != "" {
			v = translate(v, m)
		}
		return v
	})
}

type vertex struct {
	x, y, dx, dy float64
}

func polygonPoints(rules *Rules, fn func(t float64, i int) vertex) []Point {
	split := leadingInt(rules.Get("split"))
	if split == 0 {
		split = 180
	}
	turn := 1.0
	if n, ok := num.Parse(rules.Get("turn")); ok && n != 0 {
		turn = n
	}
	fill := or(rules.Get("fill"), rules.Get("fill-rule"))
	direction := ParseDirection(or(rules.Get("direction"), rules.Get("dir")))
	unit, hasUnit := rules.values["unit"]
	factor := or(rules.Get("scale"), "1")

	rad := math.Pi * 2 * turn / float64(split)
	var points []Point

	add := func(v vertex) {
		x, y := scale(v.x, -v.y, factor)
		dx, dy := scale(v.dx, -v.dy, factor)
		angle := pointAngle(x, y, dx, dy, direction)
		p := Point{Angle: angle}
		switch {
		case hasUnit && unit == "none":
			p.X, p.Y = num.Format(x), num.Format(y)
		case hasUnit && unit != "%":
			p.X, p.Y = num.Format(x)+unit, num.Format(y)+unit
		default:
			p.X, p.Y = num.Format((x+1)*50)+"%", num.Format((y+1)*50)+"%"
		}
		points = append(points, p)
	}

	if fill == "nonzero" || fill == "evenodd" {
		points = append(points, Point{X: fill, FillRule: true})
	}

	var first vertex
	for i := range split {
		v := fn(rad*float64(i), i)
		if i == 0 {
			first = v
		}
		add(v)
	}

	if frame := rules.Get("frame"); rules.Has("frame") {
		add(first)
		f, _ := num.Parse(frame)
		w := f / 100
		if turn > 1 {
			w *= 2
		}
		if w == 0 {
			w = .002
		}
		var inner vertex
		for i := range split {
			v := fn(-rad*float64(i), i)
			theta := math.Atan2(v.y+v.dy, v.x-v.dx)
			p := vertex{x: v.x - w*math.Cos(theta), y: v.y - w*math.Sin(theta)}
			if i == 0 {
				inner = p
			}
			add(p)
		}
		add(inner)
		add(first)
	}
	return points
}

func pointAngle(x, y, dx, dy float64, d Direction) float64 {
	base := math.Atan2(y+dy, x-dx) * 180 / math.Pi
	if d.Keyword == "reverse" {
		base -= 180
	}
	if d.Keyword == "" {
		base = 90
	}
	return base + d.Angle
}

func rotate(x, y, deg float64) (float64, float64) {
	rad := -math.Pi / 180 * deg
	return x*math.Cos(rad) - y*math.Sin(rad), y*math.Cos(rad) + x*math.Sin(rad)
}

func translate(v vertex, offset string) vertex {
	ns := numbers(offset)
	if len(ns) == 0 {
		return v
	}
	dx, dy := ns[0], ns[0]
	if len(ns) > 1 {
		dy = ns[1]
	}
	dx, dy = zeroNaN(dx), zeroNaN(dy)
	return vertex{x: v.x + dx, y: v.y - dy, dx: dx, dy: dy}
}

func scale(x, y float64, factor string) (float64, float64) {
	ns := numbers(factor)
	if len(ns) == 0 {
		return x, y
	}
	fx, fy := ns[0], ns[0]
	if len(ns) > 1 {
		fy = ns[1]
	}
	return x * fx, y * fy
}

func zeroNaN(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func argOr(args []float64, i int) float64 {
	if i < len(args) && !math.IsNaN(args[i]) {
		return args[i]
	}
	return 0
}

// leadingInt reads the integer prefix of s, 0 when there is none.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
