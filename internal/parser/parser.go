// Package parser builds the doodle syntax tree from the token stream.
//
// Doodle mode reads declarations, selector blocks, @-conditionals and
// @keyframes, with values made of literal text and builtin calls. Raw mode
// reads the vector sub-language, where values stay unparsed text and
// selector chains nest. Parsing never fails: syntax problems become
// Diagnostics and the parser resumes at the next statement.
package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Options select the grammar and supply custom properties for @use.
type Options struct {
	// Raw parses the vector sub-language.
	Raw bool
	// Variables are custom properties defined outside the source, by name
	// including the leading "--".
	Variables map[string]string
	// FirstSite offsets call-site ids, so that source parsed later in a
	// compile does not share ids with the main source.
	FirstSite int
}

// maxUseDepth bounds @use splicing, which may refer back to itself.
const maxUseDepth = 8

// shared is the state common to a parser and the child parsers it starts
// for spliced variables and generated markup.
type shared struct {
	site     int
	diags    []Diagnostic
	declared map[string]string
	external map[string]string
	depth    int
}

type parser struct {
	src    string
	end    int
	tokens []tokenizer.Token
	i      int
	raw    bool
	state  *shared
	// anchor replaces diagnostic positions of child parsers, whose
	// offsets do not point into the user's source.
	anchor *tokenizer.Position
	quiet  bool
}

// Parse parses source. It never fails; see Result.Diagnostics.
func Parse(source string, opts ...Options) *Result {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	p := newParser(source, &shared{
		site:     o.FirstSite,
		declared: map[string]string{},
		external: o.Variables,
	})
	p.raw = o.Raw
	var nodes []Node
	if p.raw {
		nodes = p.rawBody(nil)
	} else {
		nodes = p.body(nil)
	}
	return &Result{Nodes: nodes, Diagnostics: p.state.diags, LastSite: p.state.site}
}

func newParser(source string, state *shared) *parser {
	return &parser{
		src:    source,
		end:    len(strings.TrimRightFunc(source, unicode.IsSpace)),
		tokens: tokenizer.Scan(source),
		state:  state,
	}
}

// child parses generated or spliced text with the same call-site counter
// and declarations.
func (p *parser) child(source string, at tokenizer.Position) *parser {
	c := newParser(source, p.state)
	c.anchor = &at
	return c
}

func (p *parser) report(pos tokenizer.Position, msg string) {
	if p.quiet {
		return
	}
	if p.anchor != nil {
		pos = *p.anchor
	}
	p.state.diags = append(p.state.diags, Diagnostic{Message: msg, Pos: pos})
}

func (p *parser) nextSite() int {
	p.state.site++
	return p.state.site
}

func (p *parser) done() bool {
	return p.i >= len(p.tokens)
}

func (p *parser) cur() tokenizer.Token {
	if p.done() {
		return tokenizer.Token{Kind: tokenizer.Space}
	}
	return p.tokens[p.i]
}

func (p *parser) peek(n int) (tokenizer.Token, bool) {
	j := p.i + n
	if j < 0 || j >= len(p.tokens) {
		return tokenizer.Token{}, false
	}
	return p.tokens[j], true
}

// offset is the source offset where token i starts, or the end of the
// trimmed source past the last token.
func (p *parser) offset(i int) int {
	if i < len(p.tokens) {
		return p.tokens[i].Pos.Offset
	}
	return p.end
}

// slice returns the trimmed source text of tokens [from, to).
func (p *parser) slice(from, to int) string {
	a, b := p.offset(from), p.offset(to)
	if a > b || b > len(p.src) {
		return ""
	}
	return strings.TrimSpace(p.src[a:b])
}

// glued reports whether token i+1 starts right where token i ends.
func (p *parser) glued(i int) bool {
	if i+1 >= len(p.tokens) {
		return false
	}
	t := p.tokens[i]
	if t.IsSpace() {
		return false
	}
	return p.tokens[i+1].Pos.Offset == t.Pos.Offset+len(t.Value)
}

// split cuts token i at byte k into two tokens.
func (p *parser) split(i, k int) {
	t := p.tokens[i]
	if k <= 0 || k >= len(t.Value) || t.IsSymbol() || t.IsSpace() {
		return
	}
	left, right := t, t
	left.Value = t.Value[:k]
	left.Kind = kindOf(left.Value)
	right.Value = t.Value[k:]
	right.Kind = kindOf(right.Value)
	right.Status = tokenizer.StatusNone
	right.Pos.Offset += k
	right.Pos.Column += utf8.RuneCountInString(left.Value)

	p.tokens = append(p.tokens, tokenizer.Token{})
	copy(p.tokens[i+2:], p.tokens[i+1:])
	p.tokens[i] = left
	p.tokens[i+1] = right
}

func kindOf(value string) tokenizer.Kind {
	if num.IsNumeric(value) {
		return tokenizer.Number
	}
	return tokenizer.Word
}

func (p *parser) skipSpace() {
	for !p.done() && p.cur().IsSpace() {
		p.i++
	}
}

// lookahead scans from the cursor to the first "{", ";" or "}" outside
// parentheses and quotes. brace reports a "{" came first; colon reports a
// ":" before it.
func (p *parser) lookahead() (brace, colon bool) {
	depth, quotes := 0, 0
	for j := p.i; j < len(p.tokens); j++ {
		t := p.tokens[j]
		switch t.Status {
		case tokenizer.StatusOpen:
			quotes++
			continue
		case tokenizer.StatusClose:
			quotes--
			continue
		}
		if quotes > 0 {
			continue
		}
		switch {
		case t.IsSymbol("("):
			depth++
		case t.IsSymbol(")"):
			depth = max(0, depth-1)
		case depth > 0:
		case t.IsSymbol("{"):
			return true, colon
		case t.IsSymbol(";", "}"):
			return false, colon
		case t.IsSymbol(":"):
			colon = true
		}
	}
	return false, colon
}

// skipStatement moves past the current statement: through a ";" or up to
// a "}" at depth 0.
func (p *parser) skipStatement() {
	depth := 0
	for !p.done() {
		t := p.cur()
		switch {
		case t.IsSymbol("(", "{"):
			depth++
		case t.IsSymbol(")"):
			depth = max(0, depth-1)
		case t.IsSymbol("}"):
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.i++
				return
			}
		case t.IsSymbol(";") && depth == 0:
			p.i++
			return
		}
		p.i++
	}
}

// opaque returns the source up to the brace closing the block the cursor
// is in, leaving the cursor past it.
func (p *parser) opaque(open tokenizer.Token) string {
	from := p.i
	depth := 0
	for !p.done() {
		t := p.cur()
		if t.IsSymbol("{") {
			depth++
		} else if t.IsSymbol("}") {
			if depth == 0 {
				body := p.slice(from, p.i)
				p.i++
				return body
			}
			depth--
		}
		p.i++
	}
	p.report(open.Pos, "missing closing brace")
	return p.slice(from, p.i)
}

func isTag(t tokenizer.Token) bool {
	return t.IsWord() && strings.HasPrefix(t.Value, "<")
}

func (p *parser) skipTag() {
	for !p.done() {
		t := p.cur()
		p.i++
		if strings.HasSuffix(t.Value, ">") {
			return
		}
	}
}

func isVariableName(name string) bool {
	return strings.HasPrefix(name, "--")
}

// atVariable reports whether the statement at the cursor declares a
// custom property.
func (p *parser) atVariable() bool {
	a, ok1 := p.peek(0)
	b, ok2 := p.peek(1)
	return ok1 && ok2 && a.IsSymbol("-") && b.IsSymbol("-")
}

// body reads doodle statements until the brace closing open, or to the
// end of input when open is nil.
func (p *parser) body(open *tokenizer.Token) []Node {
	var nodes []Node
	for {
		if p.done() {
			if open != nil {
				p.report(open.Pos, "missing closing brace")
			}
			return nodes
		}
		t := p.cur()
		switch {
		case t.IsSpace(), t.IsSymbol(";"):
			p.i++
		case t.IsSymbol("}"):
			p.i++
			if open != nil {
				return nodes
			}
			p.report(t.Pos, "unexpected }")
		case isTag(t):
			p.skipTag()
		case t.IsSymbol("@") && p.keyword(1) == "keyframes":
			if k := p.keyframes(); k != nil {
				nodes = append(nodes, k)
			}
		default:
			brace, colon := p.lookahead()
			switch {
			case brace && t.IsSymbol("@") && !colon:
				if c := p.conditional(); c != nil {
					nodes = append(nodes, c)
				}
			case brace && !p.atVariable():
				nodes = append(nodes, p.block())
			case t.IsSymbol(":"):
				p.report(t.Pos, "missing block after selector")
				p.skipStatement()
			case t.IsSymbol("@") && !colon:
				p.report(t.Pos, "expected ':' or '{'")
				p.skipStatement()
			default:
				nodes = append(nodes, p.rule()...)
			}
		}
	}
}

// keyword returns the word n tokens ahead, if it is glued to its predecessor.
func (p *parser) keyword(n int) string {
	t, ok := p.peek(n)
	if !ok || !t.IsWord() || !p.glued(p.i+n-1) {
		return ""
	}
	return t.Value
}

func (p *parser) block() Node {
	start := p.cur()
	var selector strings.Builder
	for !p.done() && !p.cur().IsSymbol("{") {
		selector.WriteString(p.cur().Value)
		p.i++
	}
	open := p.cur()
	p.i++
	b := &Block{Selector: strings.TrimSpace(selector.String()), Pos: start.Pos}
	b.Name, b.Times = splitTimes(b.Selector)
	if b.Selector == "" {
		p.report(start.Pos, "missing selector")
	}
	if b.Name == "style" {
		b.Style = p.opaque(open)
		return b
	}
	b.Children = p.body(&open)
	return b
}

func (p *parser) conditional() Node {
	at := p.cur()
	p.i++
	c := &Conditional{Pos: at.Pos}
	c.Name = p.word()
	if c.Name == "" {
		p.report(at.Pos, "missing selector name")
	}
	p.skipSpace()
	if p.cur().IsSymbol("(") {
		p.i++
		c.Args = p.arguments(false, at.Pos)
	}
	for !p.done() && !p.cur().IsSymbol("{") {
		if t := p.cur(); t.IsWord() && t.Value == "not" {
			c.Negations++
		}
		p.i++
	}
	open := p.cur()
	p.i++
	c.Children = p.body(&open)
	if c.Name == "" {
		return nil
	}
	return c
}

// word joins glued name tokens at the cursor.
func (p *parser) word() string {
	var b strings.Builder
	for !p.done() {
		t := p.cur()
		if !(t.IsWord() || t.IsNumber() || t.IsSymbol("-")) {
			break
		}
		b.WriteString(t.Value)
		glued := p.glued(p.i)
		p.i++
		if !glued {
			break
		}
	}
	return b.String()
}

func (p *parser) keyframes() Node {
	at := p.cur()
	p.i += 2
	p.skipSpace()
	var name strings.Builder
	for !p.done() {
		t := p.cur()
		if t.IsSpace() || t.IsSymbol("{", ";", "}") {
			break
		}
		name.WriteString(t.Value)
		p.i++
	}
	k := &Keyframes{Name: name.String(), Pos: at.Pos}
	if k.Name == "" {
		p.report(at.Pos, "missing keyframes name")
		p.skipStatement()
		return nil
	}
	p.skipSpace()
	if !p.cur().IsSymbol("{") {
		p.report(at.Pos, "missing keyframes block")
		p.skipStatement()
		return k
	}
	open := p.cur()
	p.i++
	for {
		p.skipSpace()
		if p.done() {
			p.report(open.Pos, "missing closing brace")
			return k
		}
		if p.cur().IsSymbol("}") {
			p.i++
			return k
		}
		stepAt := p.cur()
		var step Step
		step.Name = p.value(func(t tokenizer.Token) bool { return t.IsSymbol("{") })
		if !p.cur().IsSymbol("{") {
			p.report(stepAt.Pos, "missing keyframe block")
			p.skipStatement()
			continue
		}
		stepOpen := p.cur()
		p.i++
		for {
			p.skipSpace()
			if p.done() {
				p.report(stepOpen.Pos, "missing closing brace")
				k.Steps = append(k.Steps, step)
				return k
			}
			t := p.cur()
			if t.IsSymbol("}") {
				p.i++
				break
			}
			if t.IsSymbol(";") {
				p.i++
				continue
			}
			for _, n := range p.rule() {
				if r, ok := n.(*Rule); ok {
					step.Rules = append(step.Rules, r)
				}
			}
		}
		k.Steps = append(k.Steps, step)
	}
}

// rule reads one declaration. Multi-target declarations expand into one
// rule per property, and @use splices the nodes it refers to.
func (p *parser) rule() []Node {
	start := p.cur()
	from := p.i
	var prop strings.Builder
	depth := 0
	for {
		if p.done() {
			p.report(start.Pos, "missing ':' after "+prop.String())
			return nil
		}
		t := p.cur()
		if depth == 0 && t.IsSymbol(":") {
			break
		}
		if depth == 0 && t.IsSymbol(";", "}") {
			p.report(start.Pos, "missing ':' after "+prop.String())
			if t.IsSymbol(";") {
				p.i++
			}
			return nil
		}
		switch {
		case t.IsSymbol("("):
			depth++
		case t.IsSymbol(")"):
			depth = max(0, depth-1)
		}
		if !t.IsSpace() {
			prop.WriteString(t.Value)
		}
		p.i++
	}
	p.i++
	property := prop.String()
	if property == "" {
		p.report(start.Pos, "missing property name")
	}
	if property == "@use" {
		return p.use(start)
	}

	valueFrom := p.i
	var value []Group
	if isVariableName(property) && p.cur().IsSymbol("{") {
		open := p.cur()
		p.i++
		body := p.opaque(open)
		value = []Group{{&Text{Value: "{" + body + "}"}}}
	} else {
		value = p.value(nil)
	}
	valueTo := p.i
	if p.cur().IsSymbol(";") {
		p.i++
	}
	raw := p.slice(from, valueTo)

	targets := strings.Split(property, ",")
	var nodes []Node
	for i, target := range targets {
		if target == "" {
			continue
		}
		r := &Rule{
			Property: target,
			Value:    value,
			Raw:      raw,
			Variable: isVariableName(target),
			Pos:      start.Pos,
		}
		if len(targets) > 1 && len(targets) == len(value) {
			r.Value = value[i : i+1]
		}
		if r.Variable {
			declared := p.slice(valueFrom, valueTo)
			if len(targets) > 1 && len(targets) == len(value) {
				declared = p.groupSource(value[i])
			}
			p.state.declared[target] = declared
		}
		nodes = append(nodes, r)
	}
	return nodes
}

// groupSource renders a value group back to text for later splicing.
func (p *parser) groupSource(g Group) string {
	var b strings.Builder
	for _, f := range g {
		switch f := f.(type) {
		case *Text:
			b.WriteString(f.Value)
		case *Call:
			b.WriteString(f.Source)
		}
	}
	return b.String()
}

// use resolves "@use: var(--a), var(--b, --fallback)". Declared or
// supplied variables are parsed and spliced in; the rest stay Use nodes.
func (p *parser) use(start tokenizer.Token) []Node {
	from := p.i
	p.skipStatement()
	to := p.i
	if to > from && p.tokens[to-1].IsSymbol(";") {
		to--
	}
	text := p.slice(from, to)

	var nodes []Node
	for _, ref := range ParseVarRefs(text) {
		names := ref.Names()
		source, ok := p.lookupVariable(names)
		if !ok {
			nodes = append(nodes, &Use{Names: names, Pos: start.Pos})
			continue
		}
		if p.state.depth >= maxUseDepth {
			p.report(start.Pos, "@use nests too deeply")
			continue
		}
		p.state.depth++
		c := p.child(StripBlock(source), start.Pos)
		nodes = append(nodes, c.body(nil)...)
		p.state.depth--
	}
	return nodes
}

func (p *parser) lookupVariable(names []string) (string, bool) {
	for _, name := range names {
		if v, ok := p.state.declared[name]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		if v, ok := p.state.external[name]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// StripBlock removes one pair of surrounding parentheses or braces and
// trailing semicolons from a variable value.
func StripBlock(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '(' && last == ')') || (first == '{' && last == '}') {
			value = value[1 : len(value)-1]
		}
	}
	return strings.TrimRight(strings.TrimSpace(value), ";")
}

// splitTimes separates a "name*count" repetition suffix.
func splitTimes(selector string) (name, times string) {
	before, after, found := strings.Cut(selector, "*")
	if !found {
		return selector, ""
	}
	after = strings.TrimSpace(after)
	if after == "" || !isDigit(after[0]) {
		return selector, ""
	}
	return strings.TrimSpace(before), after
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
