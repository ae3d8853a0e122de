package parser

import (
	"regexp"
	"strings"

	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

var specialProperties = map[string]bool{
	"xlink:actuate": true, "xlink:arcrole": true, "xlink:href": true,
	"xlink:role": true, "xlink:show": true, "xlink:title": true,
	"xlink:type": true, "xml:base": true, "xml:lang": true, "xml:space": true,
}

var viewBoxName = regexp.MustCompile(`(?i)viewBox`)

// rawBody reads vector markup statements and element blocks until the
// brace closing parent, or to the end of input at the top level.
func (p *parser) rawBody(parent *Block) []Node {
	var (
		nodes    []Node
		fragment []tokenizer.Token
		parens   int
	)
	for !p.done() {
		t := p.cur()
		switch {
		case t.IsSymbol("("):
			parens++
		case t.IsSymbol(")"):
			parens = max(0, parens-1)
		}
		switch {
		case t.IsSymbol("}"):
			p.i++
			if parent != nil {
				p.appendTrailing(nodes, fragment)
				return nodes
			}
			p.report(t.Pos, "unexpected }")
			fragment = nil
			continue

		case t.IsSymbol("{"):
			p.i++
			selectors := selectorsOf(fragment)
			fragment = nil
			if len(selectors) == 0 {
				p.report(t.Pos, "missing selector")
				p.rawBody(&Block{})
				continue
			}
			nodes = append(nodes, p.rawBlock(selectors, t))
			continue

		case t.IsSymbol(":") && parens == 0 && len(fragment) > 0 && !p.specialAt(p.i):
			p.i++
			nodes = append(nodes, p.rawStatement(fragment)...)
			fragment = nil
			continue

		case t.IsSymbol(";"):
			p.appendTrailing(nodes, fragment)
			fragment = nil

		default:
			fragment = append(fragment, t)
		}
		p.i++
	}
	if parent != nil {
		p.report(parent.Pos, "missing closing brace")
	}
	p.appendTrailing(nodes, fragment)
	return nodes
}

// appendTrailing keeps text after a statement's ";" that did not form a
// statement of its own as part of the previous value.
func (p *parser) appendTrailing(nodes []Node, fragment []tokenizer.Token) {
	text := joinTokens(fragment)
	if len(nodes) == 0 || strings.TrimSpace(text) == "" {
		return
	}
	if st, ok := nodes[len(nodes)-1].(*Statement); ok && st.Inline == nil {
		st.Value += ";" + text
	}
}

// specialAt reports whether the colon at i belongs to a namespaced
// attribute such as xlink:href.
func (p *parser) specialAt(i int) bool {
	if i == 0 || i+1 >= len(p.tokens) {
		return false
	}
	return specialProperties[p.tokens[i-1].Value+":"+p.tokens[i+1].Value]
}

// rawBlock reads the block for the last selector and nests it in blocks
// for the selectors before it. The cursor is past "{".
func (p *parser) rawBlock(selectors []string, open tokenizer.Token) *Block {
	name := selectors[len(selectors)-1]
	outer := selectors[:len(selectors)-1]
	skip := name == "style"
	for _, s := range outer {
		skip = skip || s == "style"
	}

	b := &Block{Selector: name, Pos: open.Pos}
	b.Name, b.Times = splitTimes(name)
	if b.Name == "style" {
		b.Style = p.opaque(open)
		return b
	}
	b.Children = p.rawBody(b)
	resolveID(b, skip)
	for i := len(outer) - 1; i >= 0; i-- {
		wrap := &Block{Selector: outer[i], Children: []Node{b}, Pos: open.Pos}
		wrap.Name, wrap.Times = splitTimes(wrap.Selector)
		resolveID(wrap, skip)
		b = wrap
	}
	return b
}

// resolveID turns "circle#c" into a circle element with an id attribute.
func resolveID(b *Block, skip bool) {
	parts := strings.Split(b.Name, "#")
	if len(parts) < 2 || skip {
		return
	}
	id := parts[len(parts)-1]
	if parts[0] == "" || id == "" {
		return
	}
	b.Name = parts[0]
	b.Children = append(b.Children, &Statement{Name: "id", Value: id, Pos: b.Pos})
}

// rawStatement reads the value after a colon and returns one statement
// per property in props.
func (p *parser) rawStatement(props []tokenizer.Token) []Node {
	names := groupsOf(props)
	st := &Statement{Pos: props[0].Pos}
	var (
		fragment []tokenizer.Token
		parens   int
		quotes   int
	)
	for !p.done() {
		t := p.cur()
		if quotes == 0 {
			if t.IsSymbol("(") {
				parens++
			} else if t.IsSymbol(")") {
				parens = max(0, parens-1)
			}
		}
		switch t.Status {
		case tokenizer.StatusOpen:
			quotes++
		case tokenizer.StatusClose:
			quotes--
		}
		top := parens == 0 && quotes == 0
		if top && t.IsSymbol("{") {
			p.i++
			selectors := selectorsOf(fragment)
			if len(selectors) == 0 {
				continue
			}
			st.Inline = p.rawBlock(selectors, t)
			st.Inline.Inline = true
			fragment = nil
			break
		}
		if top && t.IsSymbol(";") {
			p.i++
			break
		}
		if top && t.IsSymbol("}") {
			break
		}
		fragment = append(fragment, t)
		p.i++
	}
	st.Value = strings.TrimSpace(joinTokens(fragment))

	var values []string
	if len(names) > 1 {
		st.Targets = names
		st.Source = st.Value
		values = list.Split(st.Value, list.Options{NoSpace: true})
	}
	expand := len(names) > 1 && len(values) == len(names)

	nodes := make([]Node, 0, len(names))
	for i, name := range names {
		item := *st
		item.Name = name
		item.Variable = isVariableName(name)
		if expand {
			item.Value = values[i]
		}
		if viewBoxName.MatchString(name) {
			item.ViewBox = parseViewBox(item.Value)
		}
		nodes = append(nodes, &item)
	}
	return nodes
}

// parseViewBox reads four numbers and optional "name number" pairs such
// as "p 5" or "padding 5".
func parseViewBox(value string) *ViewBox {
	vb := &ViewBox{}
	var pending string
	for _, t := range tokenizer.Scan(value) {
		if t.IsSpace() || t.IsSymbol(",", ";") {
			continue
		}
		switch {
		case len(vb.Values) < 4 && t.IsNumber():
			n, _ := num.Parse(t.Value)
			vb.Values = append(vb.Values, n)
		case t.IsNumber() && pending != "":
			if pending == "p" || pending == "padding" || pending == "expand" {
				vb.Padding, _ = num.Parse(t.Value)
			}
			pending = ""
		case t.IsWord():
			pending = t.Value
		}
	}
	return vb
}

// selectorsOf splits the text before "{" into element selectors. Words
// separated by spaces start new selectors; symbols join their neighbours,
// as in "circle*10" or "g * 2x3".
func selectorsOf(tokens []tokenizer.Token) []string {
	var result []string
	hasSymbol := false
	for i, t := range tokens {
		times := t.Value == "x" && i > 0 && i+1 < len(tokens) &&
			tokens[i-1].IsNumber() && tokens[i+1].IsNumber()
		if (t.IsWord() && !hasSymbol && !times) || len(result) == 0 {
			if !t.IsSpace() {
				result = append(result, strings.TrimSpace(t.Value))
			}
		} else {
			result[len(result)-1] = strings.TrimSpace(result[len(result)-1] + t.Value)
		}
		if t.IsSymbol() {
			hasSymbol = true
		} else if !t.IsSpace() {
			hasSymbol = false
		}
	}
	return result
}

// groupsOf splits property tokens at commas.
func groupsOf(tokens []tokenizer.Token) []string {
	var (
		groups []string
		temp   []tokenizer.Token
	)
	for _, t := range tokens {
		if t.IsSymbol(",") {
			groups = append(groups, strings.TrimSpace(joinTokens(temp)))
			temp = nil
			continue
		}
		temp = append(temp, t)
	}
	if len(temp) > 0 {
		groups = append(groups, strings.TrimSpace(joinTokens(temp)))
	}
	return groups
}

// joinTokens joins token values, dropping a final ";" or "}".
func joinTokens(tokens []tokenizer.Token) string {
	if n := len(tokens); n > 0 && tokens[n-1].IsSymbol(";", "}") {
		tokens = tokens[:n-1]
	}
	return tokenizer.Join(tokens)
}

// VectorRoot returns the svg element of parsed vector markup. An explicit
// top-level svg block is used as the root and receives the top-level
// custom properties it does not redeclare; otherwise the nodes are
// wrapped in an implicit svg element.
func VectorRoot(nodes []Node) *Block {
	var (
		head      *Block
		variables []Node
	)
	for _, n := range nodes {
		switch n := n.(type) {
		case *Block:
			if n.Name == "svg" {
				head = n
			}
		case *Statement:
			if n.Variable {
				variables = append(variables, n)
			}
		}
	}
	if head == nil {
		return &Block{Selector: "svg", Name: "svg", Children: nodes}
	}
	var missing []Node
	for _, v := range variables {
		name := v.(*Statement).Name
		found := false
		for _, c := range head.Children {
			if st, ok := c.(*Statement); ok && st.Name == name {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, v)
		}
	}
	head.Children = append(missing, head.Children...)
	return head
}
