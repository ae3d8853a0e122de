// Package property expands the @-properties of a doodle (@size, @place,
// @grid, @shape and friends) into plain CSS.
package property

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/shape"
)

var aliases = map[string]string{
	"place-cell": "place",
	"offset":     "place",
	"position":   "place",
}

var known = map[string]bool{
	"size": true, "place": true, "grid": true, "gap": true,
	"seed": true, "shape": true, "use": true, "content": true,
}

// Resolve maps a legacy property name to its current name.
func Resolve(name string) string {
	if target, ok := aliases[name]; ok {
		return target
	}
	return name
}

// Is reports whether name, without its "@", is a known @-property.
func Is(name string) bool {
	return known[Resolve(name)]
}

// Names lists the @-properties, sorted.
func Names() []string {
	return slices.Sorted(maps.Keys(known))
}

var parenthesized = regexp.MustCompile(`^\(.+\)$`)

// Size expands "@size: w h ratio". Paper presets ("a4", "letter p") are
// in millimeters, landscape unless followed by p or portrait. Special
// selectors (the host and the container) take the grid ratio when a side
// is auto and do not publish the cell size.
func Size(value string, special bool, g grid.Grid) string {
	parts := list.Split(value)
	if len(parts) == 0 {
		return ""
	}
	w, h, ratio := parts[0], parts[0], ""
	if len(parts) > 1 {
		h = parts[1]
	}
	if len(parts) > 2 {
		ratio = parts[2]
	}
	if pw, ph, ok := Paper(w, h); ok {
		w, h = pw, ph
	}
	var b strings.Builder
	b.WriteString("width:" + w + ";height:" + h + ";")
	if w == "auto" || h == "auto" {
		if ratio != "" {
			switch {
			case parenthesized.MatchString(ratio):
				ratio = ratio[1 : len(ratio)-1]
			case !strings.HasPrefix(ratio, "calc"):
				ratio = "calc(" + ratio + ")"
			}
			if !special {
				b.WriteString("aspect-ratio:" + ratio + ";")
			}
		}
		if special {
			if ratio == "" {
				ratio = num.Format(g.Ratio)
			}
			b.WriteString("aspect-ratio:" + ratio + ";")
		}
	}
	if !special {
		b.WriteString("--internal-cell-width:" + w + ";--internal-cell-height:" + h + ";")
	}
	return b.String()
}

var horizontal = map[string]string{
	"center": "50%",
	"left":   "0%", "right": "100%",
	"top": "50%", "bottom": "50%",
}

var vertical = map[string]string{
	"center": "50%",
	"top":    "0%", "bottom": "100%",
	"left": "50%", "right": "50%",
}

const (
	cellWidth  = "var(--internal-cell-width, 25%)"
	cellHeight = "var(--internal-cell-height, 25%)"
)

// Place positions a cell absolutely around a point of the grid, rotated
// by angle degrees.
func Place(value string, angle float64) string {
	parts := list.Split(value)
	left, top := "50%", "50%"
	if len(parts) > 0 {
		left = parts[0]
	}
	if len(parts) > 1 {
		top = parts[1]
	}
	if v, ok := horizontal[left]; ok {
		left = v
	}
	if v, ok := vertical[top]; ok {
		top = v
	}
	a := num.Format(angle)
	return "position:absolute;" +
		"left:" + left + ";" +
		"top:" + top + ";" +
		"width:" + cellWidth + ";" +
		"height:" + cellHeight + ";" +
		"margin-left:calc(" + cellWidth + " / -2);" +
		"margin-top:calc(" + cellHeight + " / -2);" +
		"grid-area:unset;" +
		"--plot-angle:" + a + ";" +
		"rotate:" + a + "deg;"
}

// Layout is a parsed @grid value:
//
//	5x5 | / 10em #000 + 1.5 * 45deg ~ 10px
//
// The first part is the grid; "|" or "-" before it lays cells out as a
// flex column or row. "/" gives the size, then a fill color. "+" scales,
// "*" rotates and "~" translates the container. "no-clip" lets cells
// overflow the host.
type Layout struct {
	Grid      *grid.Grid
	Size      string
	Fill      string
	Scale     string
	Rotate    string
	Translate string
	Clip      bool

	FlexRow, FlexColumn bool
}

var noClip = regexp.MustCompile(`(?i)no-*clip`)

// Grid parses an @grid value. max bounds each grid axis.
func Grid(value string, max int) Layout {
	l := Layout{Clip: true}
	if noClip.MatchString(value) {
		l.Clip = false
		value = noClip.ReplaceAllString(value, "")
	}
	groups := list.SplitVerbose(value, list.Options{
		Symbols: []string{"/", "+", "*", "|", "-", "~"},
		NoSpace: true,
	})
	sized := false
	for _, g := range groups {
		switch g.Separator {
		case "+":
			l.Scale = g.Value
		case "*":
			l.Rotate = g.Value
		case "~":
			l.Translate = g.Value
		case "/":
			if !sized {
				l.Size, sized = g.Value, true
			} else {
				l.Fill = g.Value
			}
		case "|", "-", "":
			if l.Grid != nil {
				continue
			}
			parsed := grid.Parse(g.Value, max)
			l.Grid = &parsed
			l.FlexColumn = g.Separator == "|"
			l.FlexRow = g.Separator == "-"
		}
	}
	return l
}

var shapeCache sync.Map

// Shape clips the element to a preset shape. Other commands give "".
func Shape(value string) string {
	if v, ok := shapeCache.Load(value); ok {
		return v.(string)
	}
	s := shape.Generate(value, shape.MinPoints, shape.MaxPoints, nil, nil)
	var out string
	if s.Preset {
		out = Prefix("clip-path", "clip-path:polygon("+shape.Join(s.Points)+");")
	}
	shapeCache.Store(value, out)
	return out
}
