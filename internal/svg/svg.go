// Package svg renders the vector markup sub-language to SVG documents.
//
// Markup is CSS-like: blocks are elements, declarations are attributes.
//
//	viewBox: 0 0 10 10 p 1;
//	circle*5 { cx: @r(10); fill: defs radialGradient { ... } }
//
// Inline block values are moved to the document root (or its defs) and
// referenced by generated ids.
package svg

import (
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/parser"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

const (
	NS      = "http://www.w3.org/2000/svg"
	NSXLink = "http://www.w3.org/1999/xlink"
)

// Parse reads markup into an element tree. The root is an svg element
// unless name names another wrapper, as "filter" does for @svg-filter.
func Parse(source string, name ...string) *parser.Block {
	nodes := parser.Parse(source, parser.Options{Raw: true}).Nodes
	if len(name) > 0 && name[0] != "svg" {
		nodes = []parser.Node{&parser.Block{Selector: name[0], Name: name[0], Children: nodes}}
	}
	return parser.VectorRoot(nodes)
}

// Generate renders markup source to an SVG document.
func Generate(source string, name ...string) string {
	return Render(Parse(source, name...))
}

// Render renders an element tree.
func Render(root *parser.Block) string {
	r := &renderer{ids: map[string]int{}}
	wrapper := NewTag("root")
	r.block(root, wrapper, nil)
	if r.root == nil {
		return ""
	}
	return r.root.String()
}

type renderer struct {
	root *Tag
	ids  map[string]int
}

func (r *renderer) nextID(name string) string {
	r.ids[name]++
	return name + "-" + strconv.Itoa(r.ids[name])
}

// block renders b into element and returns the id of an inline element.
// parent is the block containing b, nil for the root or an inline value.
func (r *renderer) block(b *parser.Block, element *Tag, parent *parser.Block) string {
	if b.Name == "style" {
		style := NewTag("style")
		style.Append(newText(minify(b.Style), true))
		element.Append(style)
		return ""
	}

	el := NewTag(b.Name)
	if r.root == nil {
		r.root = el
		el.SetAttr("xmlns", NS)
	}
	if b.Name == "defs" {
		if spare := r.root.spareDefs(); spare != nil {
			el = spare
		}
	}

	var inlineID string
	for _, child := range b.Children {
		var id string
		switch c := child.(type) {
		case *parser.Block:
			id = r.block(c, el, b)
		case *parser.Statement:
			r.statement(c, el, b)
		}
		if id != "" {
			inlineID = id
		}
	}

	inlineElement := b.Inline && b.Name != "defs"
	inlineDefs := parent != nil && parent.Inline && parent.Name == "defs"
	singleDef := inlineDefs && len(parent.Children) == 1
	if inlineElement || inlineDefs {
		if id, ok := statementValue(b, "id"); ok {
			inlineID = id
		} else if singleDef || inlineElement {
			inlineID = r.nextID(b.Name)
			el.SetAttr("id", inlineID)
		}
	}

	switch existing := element.find(el); {
	case existing != nil:
		existing.merge(el)
	case b.Name == "defs":
		spare := r.root.spareDefs()
		_, hasID := el.Attr("id")
		if spare != nil && !hasID {
			if spare != el {
				spare.Append(el.body...)
			}
		} else {
			r.root.Append(el)
		}
	default:
		element.Append(el)
	}
	return inlineID
}

func statementValue(b *parser.Block, name string) (string, bool) {
	for _, c := range b.Children {
		if st, ok := c.(*parser.Statement); ok && st.Name == name {
			return st.Value, true
		}
	}
	return "", false
}

func (r *renderer) statement(st *parser.Statement, element *Tag, parent *parser.Block) {
	if st.Variable {
		return
	}
	switch {
	case st.Name == "content":
		element.Append(newText(st.Value, false))
		return
	case strings.HasPrefix(st.Name, "style "):
		name := strings.TrimSpace(strings.TrimPrefix(st.Name, "style "))
		if name != "" {
			style, _ := element.Attr("style")
			element.SetAttr("style", style+name+":"+st.Value+";")
		}
		return
	}

	value := st.Value
	if st.Inline != nil {
		id := r.block(st.Inline, r.root, nil)
		switch {
		case id == "":
			value = ""
		case st.Name == "xlink:href" || st.Name == "href":
			value = "#" + id
		default:
			value = "url(#" + id + ")"
		}
	}

	switch {
	case st.ViewBox != nil:
		if v := viewBox(st.ViewBox); v != "" {
			element.SetAttr(st.Name, v)
		}
	case (st.Name == "draw" || st.Name == "animate") && parent != nil && isGraphic(parent.Name):
		draw(element, value)
	default:
		element.SetAttr(st.Name, value)
	}
	if strings.Contains(st.Name, "xlink:") {
		r.root.SetAttr("xmlns:xlink", NSXLink)
	}
}

func viewBox(vb *parser.ViewBox) string {
	if len(vb.Values) == 0 {
		return ""
	}
	v := make([]float64, 4)
	copy(v, vb.Values)
	if p := vb.Padding; p != 0 {
		v = []float64{v[0] - p, v[1] - p, v[2] + p*2, v[3] + p*2}
	}
	parts := make([]string, 4)
	for i, n := range v {
		parts[i] = num.Format(n)
	}
	return strings.Join(parts, " ")
}

func isGraphic(name string) bool {
	switch name {
	case "path", "line", "circle", "ellipse", "rect", "polygon", "polyline":
		return true
	}
	return false
}

var endsWithDigit = regexp.MustCompile(`\d$`)

// draw animates the stroke of a graphic element: "draw: 2s infinite".
func draw(element *Tag, value string) {
	fields := strings.Fields(value)
	var dur, repeat string
	if len(fields) > 0 {
		dur = fields[0]
	}
	if len(fields) > 1 {
		repeat = fields[1]
	}
	if dur == "indefinite" || dur == "infinite" || endsWithDigit.MatchString(dur) {
		dur, repeat = repeat, dur
	}
	if repeat == "infinite" {
		repeat = "indefinite"
	}
	element.SetAttr("stroke-dasharray", "10")
	element.SetAttr("pathLength", "10")
	animate := NewTag("animate")
	animate.SetAttr("attributeName", "stroke-dashoffset")
	animate.SetAttr("from", "10")
	animate.SetAttr("to", "0")
	animate.SetAttr("dur", dur)
	if repeat != "" {
		animate.SetAttr("repeatCount", repeat)
	}
	element.Append(animate)
}

// minify collapses whitespace around punctuation in style sheet text.
func minify(css string) string {
	return tokenizer.Join(tokenizer.Scan(css))
}
