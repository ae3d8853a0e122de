package composer

import (
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/functions"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/parser"
	"bennypowers.dev/cssdoodle/internal/property"
	"bennypowers.dev/cssdoodle/internal/random"
	"bennypowers.dev/cssdoodle/internal/selector"
)

var (
	hostSelector   = regexp.MustCompile(`^:(host|doodle)`)
	parentSelector = regexp.MustCompile(`^:(container|parent)`)
	pseudoSelector = regexp.MustCompile(`:before|:after`)
	doodlePrefix   = regexp.MustCompile(`^:+doodle`)
)

func isHost(s string) bool    { return hostSelector.MatchString(s) }
func isParent(s string) bool  { return parentSelector.MatchString(s) }
func isSpecial(s string) bool { return isHost(s) || isParent(s) }

// Time uniform animation: a year long, counting --cssd-utime up in
// tenths of milliseconds.
const (
	utimeName      = "cssd-utime-animation"
	utimeAnimation = "31536000000ms linear 0s infinite " + utimeName
)

// rawValue is the declaration text after the property, as written.
func rawValue(r *parser.Rule) string {
	_, v, _ := strings.Cut(r.Raw, ":")
	v = strings.TrimSpace(v)
	v = strings.TrimRight(v, ";}<")
	return strings.TrimSpace(v)
}

// preCompose finds the seed and the grid before any cell is composed.
func (r *run) preCompose() string {
	var seed string
	for _, n := range r.nodes {
		switch n := n.(type) {
		case *parser.Rule:
			if n.Property == "@seed" {
				seed = rawValue(n)
			}
		case *parser.Block:
			if !isHost(n.Selector) {
				continue
			}
			for _, child := range n.Children {
				if rule, ok := child.(*parser.Rule); ok && rule.Property == "@seed" {
					seed = rawValue(rule)
				}
			}
		}
	}

	s := seed
	if s == "" {
		s = r.opts.Seed
	}
	gen := random.New(s)
	r.begin(s, gen)
	c := cell.New(1, 1, 1, 1, grid.Parse("1", 0), gen, r.state)
	c.Calc = r.calc
	c.MaxGrid = r.opts.MaxGrid()
	r.preComposeNodes(c, r.nodes, true)
	return seed
}

func (r *run) preComposeNodes(c *cell.Context, nodes []parser.Node, top bool) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Rule:
			r.preComposeRule(c, n.Property, n)
		case *parser.Use:
			r.preComposeNodes(c, r.use(c, n), top)
		case *parser.Block:
			if !top || !isHost(n.Selector) {
				continue
			}
			for _, child := range n.Children {
				if rule, ok := child.(*parser.Rule); ok {
					prop := rule.Property
					if prop == "grid" {
						prop = "@grid"
					}
					r.preComposeRule(c, prop, rule)
				}
			}
		}
	}
}

func (r *run) preComposeRule(c *cell.Context, prop string, rule *parser.Rule) {
	if prop != "@grid" {
		return
	}
	layout := property.Grid(r.groups(c, rule.Value, nil), r.opts.MaxGrid())
	if layout.Grid != nil {
		r.grid = layout.Grid
	}
}

// compose walks nodes for one cell.
func (r *run) compose(c *cell.Context, nodes []parser.Node) {
	self := "#" + c.ID()
	for _, n := range nodes {
		switch n := n.(type) {
		case *parser.Rule:
			r.rules.add(self, r.rule(c, n, ""))
		case *parser.Use:
			r.compose(c, r.use(c, n))
		case *parser.Block:
			r.block(c, n)
		case *parser.Conditional:
			r.conditional(c, n)
		case *parser.Keyframes:
			if !r.hasKeyframes(n.Name) {
				r.keyframes = append(r.keyframes, n)
			}
		}
	}
}

func (r *run) hasKeyframes(name string) bool {
	for _, k := range r.keyframes {
		if k.Name == name {
			return true
		}
	}
	return false
}

// declarations composes the rules of a block for selector.
func (r *run) declarations(c *cell.Context, children []parser.Node, sel string) []string {
	var out []string
	for _, child := range children {
		switch child := child.(type) {
		case *parser.Rule:
			out = append(out, r.rule(c, child, sel))
		case *parser.Use:
			out = append(out, r.declarations(c, r.use(c, child), sel)...)
		}
	}
	return out
}

func (r *run) block(c *cell.Context, b *parser.Block) {
	if b.Name == "style" {
		return
	}
	sel := doodlePrefix.ReplaceAllString(b.Selector, ":host")
	special := isSpecial(sel)
	if special {
		if r.composed[b] {
			return
		}
		r.composed[b] = true
	}
	for _, s := range strings.Split(sel, ",") {
		s = strings.TrimSpace(s)
		decls := r.declarations(c, b.Children, s)
		switch {
		case special:
			r.rules.add(s, decls...)
		case s == "cell":
			r.rules.add("#"+c.ID(), decls...)
		default:
			r.rules.add("#"+c.ID()+s, decls...)
		}
	}
}

func (r *run) conditional(c *cell.Context, cond *parser.Conditional) {
	pred, ok := selector.Lookup(cond.Name)
	if !ok {
		return
	}
	res := pred(c, r.arguments(c, cond.Args, cond.Name, nil))
	match := res.Match
	if cond.Negations > 0 {
		// a negated condition keeps no selector override
		res.Selector = ""
		if cond.Negations%2 == 1 {
			match = !match
		}
	}
	if !match {
		return
	}
	if res.Selector == "" {
		r.compose(c, cond.Children)
		return
	}
	self := "#" + c.ID()
	for _, child := range cond.Children {
		switch child := child.(type) {
		case *parser.Rule:
			r.rules.add(strings.ReplaceAll(res.Selector, "$", self), r.rule(c, child, ""))
		case *parser.Block:
			for _, s := range strings.Split(child.Selector, ",") {
				s = strings.TrimSpace(s)
				decls := r.declarations(c, child.Children, s)
				r.rules.add(strings.ReplaceAll(res.Selector+s, "$", self), decls...)
			}
		}
	}
}

var (
	literalContent = regexp.MustCompile(`["']|^none\s?$|^(var|counter|counters|attr|url)\(`)
	embeddedImage  = regexp.MustCompile(`\$\{(shader|pattern)`)
)

// rule composes one declaration for selector sel, "" for the cell itself.
func (r *run) rule(c *cell.Context, rule *parser.Rule, sel string) string {
	prop := rule.Property
	if prop == "grid" && isHost(sel) {
		prop = "@grid"
	}
	if prop == "@seed" {
		return ""
	}
	c.TakeAngle()
	parts := r.parts(c, rule.Value, nil)
	value := strings.Join(parts, ",")
	angle, _ := c.TakeAngle()

	if prop == "animation" || prop == "animation-name" {
		r.props.HasAnimation = true
		if isHost(sel) && value != "" {
			prefix := utimeName
			if prop == "animation" {
				prefix = utimeAnimation
			}
			value = prefix + "," + value
		}
		if c.Count > 1 {
			value = suffixAnimation(prop, parts, c.Count)
			r.suffixed.Add(c.Count)
		}
	}
	if prop == "content" && !literalContent.MatchString(value) {
		value = "'" + value + "'"
	}
	if prop == "transition" {
		r.props.HasTransition = true
	}

	decl := property.Prefix(prop, prop+": "+value+";")
	if (prop == "width" || prop == "height") && !isSpecial(sel) {
		decl += "--internal-cell-" + prop + ": " + value + ";"
	}
	if (prop == "background" || prop == "background-image") && embeddedImage.MatchString(value) {
		decl += "background-size: 100% 100%;"
	}
	if strings.HasPrefix(prop, "--") {
		key := strconv.Itoa(c.Count)
		switch {
		case isParent(sel):
			key = "container"
		case isHost(sel):
			key = "host"
		}
		r.declare(key, prop, value)
	}
	if name, ok := strings.CutPrefix(prop, "@"); ok && property.Is(name) {
		decl = r.property(c, property.Resolve(name), value, sel, angle)
	}
	return decl
}

func suffixAnimation(prop string, parts []string, count int) string {
	suffix := "-" + strconv.Itoa(count)
	out := make([]string, len(parts))
	for i, p := range parts {
		if prop == "animation-name" {
			out[i] = p + suffix
			continue
		}
		words := strings.Fields(p)
		if len(words) == 0 {
			continue
		}
		words[0] += suffix
		out[i] = strings.Join(words, " ")
	}
	return strings.Join(out, ",")
}

// property expands an @-property.
func (r *run) property(c *cell.Context, name, value, sel string, angle float64) string {
	switch name {
	case "size":
		return property.Size(value, isSpecial(sel), c.Grid)
	case "grid":
		layout := property.Grid(value, c.MaxGrid)
		decl := ""
		if isHost(sel) {
			if layout.Size != "" {
				decl = property.Size(layout.Size, true, c.Grid)
			}
			r.layout(layout)
		} else if !r.gridSet {
			if layout.Size != "" {
				r.rules.add(":host", property.Size(layout.Size, true, c.Grid))
			}
			r.layout(layout)
		}
		r.gridSet = true
		return decl
	case "gap":
		if !r.gapSet {
			r.rules.add(":container", "gap:"+value+";")
			r.gapSet = true
		}
		return ""
	case "content":
		key := "#" + c.ID()
		if !pseudoSelector.MatchString(sel) && !isParent(sel) {
			r.content[key] = removeQuotes(value)
		}
		raw, _ := functions.Lookup("raw")
		r.content[key] = raw.Eager(c, []string{r.content[key]})
		return ""
	case "place":
		if isHost(sel) {
			return ""
		}
		return property.Place(value, angle)
	case "shape":
		return property.Shape(value)
	}
	return ""
}

// layout applies the extras of an @grid value.
func (r *run) layout(l property.Layout) {
	if l.Fill != "" {
		r.rules.add(":host", "background-color:"+l.Fill+";")
	}
	if !l.Clip {
		r.rules.add(":host", "contain:none;")
	}
	if l.Rotate != "" {
		r.rules.add(":container", "rotate:"+l.Rotate+";")
	}
	if l.Scale != "" {
		r.rules.add(":container", "scale:"+l.Scale+";")
	}
	if l.Translate != "" {
		r.rules.add(":container", "translate:"+l.Translate+";")
	}
	if l.FlexRow {
		r.rules.add(":container", "display:flex;")
		r.rules.add("cell", "flex: 1;")
	}
	if l.FlexColumn {
		r.rules.add(":container", "display:flex;flex-direction:column;")
		r.rules.add("cell", "flex:1;")
	}
}

func removeQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
