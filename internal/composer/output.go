package composer

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/parser"
)

// output renders the buckets after the last cell.
func (r *run) output(size grid.Grid) *Result {
	var keyframes, host, container, cells strings.Builder
	for _, sel := range r.rules.order {
		body := strings.Join(r.rules.rules[sel], "")
		switch {
		case isParent(sel):
			container.WriteString("grid {" + body + "}")
		case strings.TrimSpace(body) == "":
		case isHost(sel):
			host.WriteString(sel + ",.host {" + body + "}")
		default:
			cells.WriteString(sel + " {" + body + "}")
		}
	}

	if r.state.UsesUniform("time") {
		container.WriteString(":host,.host {animation: " + utimeAnimation + ";}")
		keyframes.WriteString("@keyframes " + utimeName + " {from {--cssd-utime:0} to {--cssd-utime:3153600000}}")
	}

	for i, c := range r.cells {
		for _, k := range r.keyframes {
			if i == 0 {
				keyframes.WriteString("@keyframes " + k.Name + " {" + r.keyframe(c, k) + "}")
			}
			if r.suffixed.Has(c.Count) {
				keyframes.WriteString("@keyframes " + k.Name + "-" + strconv.Itoa(c.Count) + " {" + r.keyframe(c, k) + "}")
			}
		}
	}

	main := keyframes.String() + host.String() + container.String()
	res := &Result{
		Styles: Styles{
			Main:  main,
			Cells: cells.String(),
			All:   main + cells.String(),
		},
		Grid:        size,
		GridSet:     r.grid != nil || r.gridSet,
		Seed:        r.seed,
		Doodles:     r.doodles,
		Shaders:     r.shaders,
		Pattern:     r.pattern,
		Content:     r.content,
		Variables:   r.vars,
		Props:       r.props,
		Diagnostics: r.diags,
		Random:      r.gen,
	}
	for _, u := range r.state.Uniforms() {
		switch u {
		case "time":
			res.Uniforms.Time = true
		case "mousex":
			res.Uniforms.MouseX = true
		case "mousey":
			res.Uniforms.MouseY = true
		case "width":
			res.Uniforms.Width = true
		case "height":
			res.Uniforms.Height = true
		}
	}
	return res
}

func (r *run) keyframe(c *cell.Context, k *parser.Keyframes) string {
	var b strings.Builder
	for _, step := range k.Steps {
		b.WriteString(r.groups(c, step.Name, nil) + " {")
		for _, rule := range step.Rules {
			b.WriteString(r.rule(c, rule, ""))
		}
		b.WriteString("}")
	}
	return b.String()
}

// gridProperties are inherited by the grid element from the host.
var gridProperties = []string{
	"grid", "grid-area", "grid-auto-columns", "grid-auto-flow",
	"grid-auto-rows", "grid-column", "grid-column-end", "grid-column-gap",
	"grid-column-start", "grid-gap", "grid-row", "grid-row-end",
	"grid-row-gap", "grid-row-start", "grid-template", "grid-template-areas",
	"grid-template-columns", "grid-template-rows",
}

// BasicStyles are the element styles every doodle starts from.
func BasicStyles(g grid.Grid) string {
	var inherit strings.Builder
	for _, p := range gridProperties {
		inherit.WriteString(p + ":inherit;")
	}
	return "*,*::after,*::before {box-sizing: border-box;}" +
		":host,.host {display: block;visibility: visible;width: auto;height: auto;" +
		"contain: content;box-sizing: border-box;--cssd-utime: 0}" +
		":host([hidden]),[hidden] {display: none}" +
		"grid {position: relative;width: 100%;height: 100%;display: grid;" + inherit.String() + "}" +
		"cell {position: relative;display: grid;place-items: center}" +
		"svg {position: absolute;width: 100%;height: 100%}" +
		":host([cssd-paused]),:host([cssd-paused]) * {animation-play-state: paused !important}" +
		":host, .host {grid-template-rows: repeat(" + strconv.Itoa(g.Y) + ",1fr);" +
		"grid-template-columns: repeat(" + strconv.Itoa(g.X) + ",1fr)}"
}

// GridMarkup renders the grid element with one cell per coordinate. A
// grid with depth nests its cells.
func GridMarkup(g grid.Grid, content map[string]string) string {
	var b strings.Builder
	b.WriteString("<grid>")
	if g.Z <= 1 {
		for y := 1; y <= g.Y; y++ {
			for x := 1; x <= g.X; x++ {
				b.WriteString(cellMarkup(x, y, 1, content, ""))
			}
		}
	} else {
		child := ""
		for z := g.Z; z >= 1; z-- {
			child = cellMarkup(1, 1, z, content, child)
		}
		b.WriteString(child)
	}
	b.WriteString("</grid>")
	return b.String()
}

func cellMarkup(x, y, z int, content map[string]string, child string) string {
	id := cell.ID(x, y, z)
	return `<cell id="` + id + `">` + content["#"+id] + child + "</cell>"
}

// HTML renders the styles and the grid markup as the content of a host
// element. Placeholders are left as they are; see Compiler.Resolve.
func (r *Result) HTML() string {
	return "<style>" + BasicStyles(r.Grid) + r.Styles.All + "</style>" + GridMarkup(r.Grid, r.Content)
}

// placeholders lists the ids of every embedded asset, sorted.
func (r *Result) placeholders() []string {
	ids := slices.Collect(maps.Keys(r.Doodles))
	ids = append(ids, slices.Collect(maps.Keys(r.Shaders))...)
	ids = append(ids, slices.Collect(maps.Keys(r.Pattern))...)
	slices.Sort(ids)
	return ids
}
