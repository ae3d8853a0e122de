// Package pattern compiles the @pattern language, a grid of colored
// cells described by fill statements and match blocks, to a GLSL
// fragment shader.
package pattern

import (
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/color"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/sublang"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Rule is a statement, or a block when Block is set.
type Rule struct {
	Name     string
	Value    string
	Args     []string
	Children []Rule
	Block    bool
}

// Parse reads pattern source into rules.
func Parse(source string) []Rule {
	w := &walker{tokens: tokenizer.Scan(source)}
	return w.walk(false)
}

type walker struct {
	tokens []tokenizer.Token
	i      int
}

func (w *walker) next() (tokenizer.Token, bool) {
	if w.i+1 < len(w.tokens) {
		return w.tokens[w.i+1], true
	}
	return tokenizer.Token{}, false
}

func (w *walker) walk(inBlock bool) []Rule {
	var (
		rules    []Rule
		fragment []tokenizer.Token
		depth    int
	)
	for ; w.i < len(w.tokens); w.i++ {
		curr := w.tokens[w.i]
		_, hasNext := w.next()
		if inBlock && (!hasNext || curr.IsSymbol("}")) {
			if !hasNext && len(rules) > 0 && !curr.IsSymbol("}") {
				rules[len(rules)-1].Value += ";" + curr.Value
			}
			return rules
		}
		switch {
		case curr.IsSymbol("{") && len(fragment) > 0 && depth == 0:
			selectors := parseSelector(fragment)
			fragment = nil
			if len(selectors) == 0 {
				continue
			}
			w.i++
			children := w.walk(true)
			for _, s := range selectors {
				s.Children = children
				rules = append(rules, s)
			}
		case curr.IsSymbol(":") && len(fragment) > 0 && depth == 0:
			rules = append(rules, Rule{Name: join(fragment), Value: w.statement()})
			fragment = nil
		case curr.IsSymbol(";"):
			if len(rules) > 0 && len(fragment) > 0 {
				rules[len(rules)-1].Value += ";" + join(fragment)
				fragment = nil
			}
		default:
			if curr.IsSymbol("(") {
				depth++
			}
			if curr.IsSymbol(")") {
				depth = max(0, depth-1)
			}
			fragment = append(fragment, curr)
		}
	}
	return rules
}

// statement reads a value up to ";" or a closing brace; the cursor is
// on the ":".
func (w *walker) statement() string {
	var value []tokenizer.Token
	for w.i+1 < len(w.tokens) {
		w.i++
		curr := w.tokens[w.i]
		next, hasNext := w.next()
		value = append(value, curr)
		if !hasNext || curr.IsSymbol(";") || next.IsSymbol("}") {
			break
		}
	}
	return join(value)
}

func join(tokens []tokenizer.Token) string {
	if n := len(tokens); n > 0 && tokens[n-1].IsSymbol(";") {
		tokens = tokens[:n-1]
	}
	return strings.TrimSpace(tokenizer.Join(tokens))
}

// parseSelector reads "name(args), other" into distinct block rules.
func parseSelector(tokens []tokenizer.Token) []Rule {
	var (
		groups    []Rule
		name      string
		args      []string
		fragments []string
		depth     int
	)
	flush := func() {
		if len(fragments) > 0 {
			args = append(args, strings.Join(fragments, ""))
			fragments = nil
		}
	}
	for _, t := range tokens {
		switch {
		case name == "" && t.IsWord():
			name = t.Value
		case t.IsSymbol("("):
			if depth > 0 {
				fragments = append(fragments, t.Value)
			}
			depth++
		case t.IsSymbol(")"):
			depth = max(0, depth-1)
			if depth > 0 {
				fragments = append(fragments, t.Value)
			} else {
				flush()
			}
		case t.IsSymbol(","):
			if depth > 0 {
				args = append(args, strings.Join(fragments, ""))
				fragments = nil
				continue
			}
			flush()
			if name != "" {
				groups = append(groups, Rule{Name: name, Args: args, Block: true})
				name, args = "", nil
			}
		default:
			fragments = append(fragments, t.Value)
		}
	}
	if name != "" {
		groups = append(groups, Rule{Name: name, Args: args, Block: true})
	}
	var distinct []Rule
	for _, g := range groups {
		seen := slices.ContainsFunc(distinct, func(d Rule) bool {
			return d.Name == g.Name && strings.Join(d.Args, "") == strings.Join(g.Args, "")
		})
		if !seen {
			distinct = append(distinct, g)
		}
	}
	return distinct
}

// Render builds the fragment shader for rules.
func Render(rules []Rule) string {
	var body strings.Builder
	g := grid.Grid{X: 1, Y: 1}
	for _, r := range rules {
		if !r.Block {
			if r.Name == "grid" {
				g = grid.Parse(r.Value, 0)
				continue
			}
			body.WriteString(statement(r))
			continue
		}
		if r.Name != "match" || len(r.Args) == 0 {
			continue
		}
		body.WriteString("\n  if (" + r.Args[0] + ") {")
		for _, c := range r.Children {
			if !c.Block && c.Name != "grid" {
				body.WriteString(statement(c))
			}
		}
		body.WriteString("  }\n")
	}
	return program(body.String(), g)
}

func statement(r Rule) string {
	if r.Name != "fill" {
		return ""
	}
	c, err := color.Parse(r.Value)
	if err != nil {
		log.Debug("pattern fill: %v", err)
		c = color.RGBA{A: 1}
	}
	return "\n  color = " + c.Vec4() + ";\n"
}

func program(body string, g grid.Grid) string {
	return `
vec3 mapping(vec2 uv, vec2 grid) {
  vec2 _grid = 1.0/grid;
  float x = ceil(uv.x/_grid.x);
  float y = ceil(grid.y - uv.y/_grid.y);
  float i = x + (y - 1.0) * grid.x;
  return vec3(x, y, i);
}
vec4 getColor(float x, float y, float i, float I, float X, float Y, float t) {
  vec4 color = vec4(0, 0, 0, 0);` + body + `
  return color;
}
void main() {
  vec2 uv = gl_FragCoord.xy/u_resolution.xy;
  vec2 v = vec2(` + strconv.Itoa(g.X) + `, ` + strconv.Itoa(g.Y) + `);
  vec3 p = mapping(uv, v);
  FragColor = getColor(p.x, p.y, p.z, v.x * v.y, v.x, v.y, u_time);
}
`
}

// Language renders pattern source to a fragment shader.
type Language struct{}

var _ sublang.Language = Language{}

func (Language) Name() string { return "pattern" }

func (Language) Compile(source string) (any, error) {
	return Parse(source), nil
}

func (Language) Render(tree any) (string, error) {
	rules, ok := tree.([]Rule)
	if !ok {
		return "", &sublang.TypeError{Language: "pattern", Tree: tree}
	}
	return Render(rules), nil
}
