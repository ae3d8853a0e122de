package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

const pi = "3.141592653589793"

// composible calls take their argument as unparsed doodle source.
var composible = map[string]bool{
	"doodle":  true,
	"shaders": true,
	"shader":  true,
	"pattern": true,
}

// value reads comma groups of text and calls up to a ";" at depth 0, a
// "}" or a markup tag. stop, when set, ends the value early.
func (p *parser) value(stop func(tokenizer.Token) bool) []Group {
	groups := []Group{nil}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			last := len(groups) - 1
			groups[last] = append(groups[last], &Text{Value: text.String()})
			text.Reset()
		}
	}
	depth, quotes := 0, 0
	for !p.done() {
		t := p.cur()
		if stop != nil && depth == 0 && quotes == 0 && stop(t) {
			break
		}
		switch t.Status {
		case tokenizer.StatusOpen:
			quotes++
		case tokenizer.StatusClose:
			quotes--
		}
		if quotes == 0 {
			if t.IsSymbol("(") {
				depth++
			} else if t.IsSymbol(")") {
				depth = max(0, depth-1)
			}
			if depth == 0 && t.IsSymbol(";") {
				break
			}
			if isTag(t) {
				break
			}
		}
		if quotes == 0 && t.IsSymbol("}") {
			break
		}
		if quotes == 0 && depth == 0 && t.IsSymbol(",") {
			flush()
			groups = append(groups, nil)
			p.i++
			continue
		}
		if p.isCallStart(p.i) {
			flush()
			last := len(groups) - 1
			groups[last] = append(groups[last], p.call())
			continue
		}
		if t.IsSymbol("π") {
			text.WriteString(p.piValue())
		} else {
			text.WriteString(t.Value)
		}
		p.i++
	}
	flush()
	for i, g := range groups {
		groups[i] = trimGroup(g)
	}
	if len(groups) == 1 && len(groups[0]) == 0 {
		return nil
	}
	return groups
}

// piValue expands π unless it is a unit of the number before it.
func (p *parser) piValue() string {
	if p.i > 0 && p.tokens[p.i-1].IsNumber() && p.glued(p.i-1) {
		return "π"
	}
	return pi
}

// trimGroup trims the whitespace around a group's text.
func trimGroup(g Group) Group {
	if len(g) == 0 {
		return g
	}
	if t, ok := g[0].(*Text); ok {
		t.Value = strings.TrimLeftFunc(t.Value, unicode.IsSpace)
	}
	if t, ok := g[len(g)-1].(*Text); ok {
		t.Value = strings.TrimRightFunc(t.Value, unicode.IsSpace)
	}
	out := g[:0]
	for _, f := range g {
		if t, ok := f.(*Text); ok && t.Value == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isNameStart(r rune) bool {
	return r == '_' || r == '-' || r == '(' || r == '%' || r == '$' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isNameRune(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '%' ||
		unicode.IsLetter(r) || unicode.IsDigit(r)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// isCallStart reports whether token i begins "@name" or "$expr".
func (p *parser) isCallStart(i int) bool {
	t := p.tokens[i]
	switch {
	case t.IsSymbol("@"):
		return p.glued(i) && isNameStart(firstRune(p.tokens[i+1].Value))
	case t.IsWord() && strings.HasPrefix(t.Value, "$"):
		if len(t.Value) > 1 {
			r := firstRune(t.Value[1:])
			return isNameStart(r) && r != '$'
		}
		return p.glued(i) && (p.tokens[i+1].IsSymbol("(") || isNameStart(firstRune(p.tokens[i+1].Value)))
	}
	return false
}

var multiDimension = regexp.MustCompile(`\d+[x-]\d+$`)

// call reads a builtin call at the cursor: "@name(...)" or "$expr".
func (p *parser) call() *Call {
	start := p.cur()
	from := p.i
	if start.IsSymbol("@") {
		p.i++
		return p.callBody(start, from, false)
	}
	if start.Value == "$" {
		p.i++
	} else {
		p.split(p.i, 1)
		p.i++
	}
	return p.callBody(start, from, true)
}

func (p *parser) callBody(start tokenizer.Token, from int, calcCall bool) *Call {
	c := &Call{Pos: start.Pos}
	name, composed := p.name()
	switch {
	case composed:
		p.skipDot()
		var inner *Call
		if p.isCallStart(p.i) {
			inner = p.call()
		} else {
			inner = p.callBody(p.cur(), p.i, false)
		}
		c.Args = []Argument{{Fragments: []Fragment{inner}}}
	case p.cur().IsSymbol("("):
		p.i++
		c.Args = p.arguments(composible[name], start.Pos)
	}
	hadArgs := len(c.Args) > 0

	fname, extra := splitName(name)
	if extra != "" {
		c.Args = append([]Argument{{Fragments: []Fragment{&Text{Value: extra}}}}, c.Args...)
	}
	c.Name = fname
	if calcCall {
		switch {
		case !hadArgs && extra == "":
			c.Name = "$"
			c.Args = []Argument{{Fragments: []Fragment{&Text{Value: name}}}}
		case extra != "":
			c.Name = "$"
			c.Args[0] = Argument{Fragments: []Fragment{&Text{Value: name}}}
		default:
			c.Name = "$" + fname
		}
	}
	c.Site = p.nextSite()
	c.Source = p.slice(from, p.i)
	if strings.EqualFold(c.Name, "svg") {
		p.vectorArguments(c)
	}
	return c
}

// name reads a builtin name across glued tokens. composed reports a
// following ".name" composition with the cursor left on the dot.
func (p *parser) name() (string, bool) {
	var b strings.Builder
	for !p.done() {
		t := p.cur()
		if t.IsSymbol() {
			if !t.IsSymbol("-", "%") {
				break
			}
			b.WriteString(t.Value)
			glued := p.glued(p.i)
			p.i++
			if !glued {
				break
			}
			continue
		}
		if t.IsSpace() {
			break
		}
		for k, r := range t.Value {
			if r == '.' && b.Len() > 0 && p.composes(p.i, k+1) {
				p.split(p.i, k)
				if k > 0 {
					p.i++
				}
				return b.String(), true
			}
			if !isNameRune(r) {
				p.split(p.i, k)
				if k > 0 {
					p.i++
				}
				return b.String(), false
			}
			b.WriteRune(r)
		}
		glued := p.glued(p.i)
		p.i++
		if !glued {
			break
		}
	}
	return b.String(), false
}

// composes reports whether the character at byte k of token i, or of the
// token glued after it, begins another call name.
func (p *parser) composes(i, k int) bool {
	t := p.tokens[i]
	var next string
	switch {
	case k < len(t.Value):
		next = t.Value[k:]
	case p.glued(i):
		next = p.tokens[i+1].Value
	default:
		return false
	}
	r := firstRune(next)
	return r == '@' || r == '$' || (r < utf8.RuneSelf && unicode.IsLetter(r))
}

// skipDot consumes the "." of a composition.
func (p *parser) skipDot() {
	if p.cur().Value == "." {
		p.i++
		return
	}
	p.split(p.i, 1)
	p.i++
}

// splitName separates trailing digits from a name: "r2" is r(2) and
// "m3x4" is m(3x4). Math names keep their digits.
func splitName(name string) (string, string) {
	if calc.IsMathName(name) || name == "" {
		return name, ""
	}
	last := name[len(name)-1]
	if !isDigit(last) && !multiDimension.MatchString(name) {
		return name, ""
	}
	i := len(name) - 1
	for i >= 0 {
		c := name[i]
		switch {
		case isDigit(c) || c == '.':
		case (c == 'x' || c == '-') && i > 0 && isDigit(name[i-1]):
		default:
			return name[:i+1], name[i+1:]
		}
		i--
	}
	return "", name
}

// arguments reads a parenthesized argument list; the cursor is past "(".
func (p *parser) arguments(whole bool, at tokenizer.Position) []Argument {
	if whole {
		return p.sourceArgument(at)
	}
	var (
		args  []Argument
		group []Fragment
		text  strings.Builder
		stack []string
	)
	pushText := func(first bool) {
		value := text.String()
		text.Reset()
		if first {
			group = append(group, &Text{Value: textValue(value)})
			return
		}
		if strings.TrimSpace(value) != "" {
			group = append(group, &Text{Value: value})
		}
	}
	finish := func() {
		pushText(len(group) == 0)
		if len(group) == 1 {
			if t, ok := group[0].(*Text); ok && strings.HasPrefix(t.Value, "±") {
				value := strings.TrimPrefix(t.Value, "±")
				args = append(args, normalize([]Fragment{&Text{Value: textValue("-" + value)}}))
				t.Value = textValue(value)
			}
		}
		args = append(args, normalize(group))
		group = nil
	}

	for !p.done() {
		t := p.cur()
		if len(stack) == 0 && t.IsSymbol(",", ")") {
			finish()
			p.i++
			if t.IsSymbol(")") {
				return skipLastEmpty(args)
			}
			continue
		}
		if t.IsSymbol("(", ")", "'", "\"", "`") {
			if len(stack) > 0 && stack[len(stack)-1] == closer(t.Value) {
				stack = stack[:len(stack)-1]
			} else if t.IsSymbol("(", "'", "\"", "`") {
				stack = append(stack, closer(t.Value))
			}
		}
		if p.isCallStart(p.i) {
			if len(group) == 0 {
				trimmed := strings.TrimLeftFunc(text.String(), unicode.IsSpace)
				text.Reset()
				text.WriteString(trimmed)
			}
			if text.Len() > 0 {
				group = append(group, &Text{Value: text.String()})
				text.Reset()
			}
			group = append(group, p.call())
			continue
		}
		value := t.Value
		if t.IsSymbol("π") {
			value = p.piValue()
		}
		text.WriteString(value)
		p.i++
	}
	p.report(at, "missing closing parenthesis")
	if text.Len() > 0 || len(group) > 0 {
		finish()
	}
	return skipLastEmpty(args)
}

func closer(open string) string {
	if open == "(" {
		return ")"
	}
	return open
}

// sourceArgument captures everything up to the matching ")" as one text
// argument, for calls that compile nested doodle source.
func (p *parser) sourceArgument(at tokenizer.Position) []Argument {
	from := p.i
	depth, quotes := 0, 0
	for !p.done() {
		t := p.cur()
		switch t.Status {
		case tokenizer.StatusOpen:
			quotes++
		case tokenizer.StatusClose:
			quotes--
		}
		if quotes == 0 && t.Status == tokenizer.StatusNone {
			if t.IsSymbol("(") {
				depth++
			} else if t.IsSymbol(")") {
				if depth == 0 {
					text := p.slice(from, p.i)
					p.i++
					if text == "" {
						return nil
					}
					return []Argument{normalize([]Fragment{&Text{Value: text}})}
				}
				depth--
			}
		}
		p.i++
	}
	p.report(at, "missing closing parenthesis")
	if text := p.slice(from, p.i); text != "" {
		return []Argument{normalize([]Fragment{&Text{Value: text}})}
	}
	return nil
}

// textValue trims argument text and normalizes numbers.
func textValue(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	if n, ok := num.Parse(trimmed); ok {
		return num.Format(n)
	}
	return trimmed
}

// normalize turns backticks into double quotes and strips one pair of
// quotes or parentheses wrapping the whole argument, marking it clustered.
func normalize(group []Fragment) Argument {
	arg := Argument{Fragments: group}
	for _, f := range group {
		if t, ok := f.(*Text); ok {
			t.Value = strings.ReplaceAll(t.Value, "`", `"`)
		}
	}
	if len(group) == 0 {
		return arg
	}
	first, ok1 := group[0].(*Text)
	last, ok2 := group[len(group)-1].(*Text)
	if !ok1 || !ok2 || first.Value == "" || last.Value == "" {
		return arg
	}
	open := first.Value[0]
	end := last.Value[len(last.Value)-1]
	if (open == '"' && end == '"') || (open == '\'' && end == '\'') || (open == '(' && end == ')') {
		first.Value = first.Value[1:]
		if last.Value != "" {
			last.Value = last.Value[:len(last.Value)-1]
		}
		arg.Cluster = true
	}
	return arg
}

// skipLastEmpty drops a blank trailing fragment of a sole argument.
func skipLastEmpty(args []Argument) []Argument {
	if len(args) == 0 {
		return args
	}
	frags := args[0].Fragments
	if len(frags) == 0 {
		return args
	}
	if t, ok := frags[len(frags)-1].(*Text); ok && strings.TrimSpace(t.Value) == "" {
		args[0].Fragments = frags[:len(frags)-1]
	}
	return args
}

// vectorArguments prepares @svg arguments: custom properties declared in
// the markup are collected, and repeated elements are expanded into
// doodle calls so each copy evaluates its own functions.
func (p *parser) vectorArguments(c *Call) {
	open := strings.Index(c.Source, "(")
	if open < 0 || !strings.HasSuffix(c.Source, ")") {
		return
	}
	raw := c.Source[open+1 : len(c.Source)-1]
	sub := newParser(raw, &shared{declared: map[string]string{}})
	sub.quiet = true
	nodes := sub.rawBody(nil)
	root := VectorRoot(nodes)

	for _, n := range root.Children {
		st, ok := n.(*Statement)
		if !ok || !st.Variable {
			continue
		}
		vp := p.child(st.Name+":"+st.Value, c.Pos)
		vp.quiet = true
		for _, r := range vp.rule() {
			if rule, ok := r.(*Rule); ok {
				c.Variables = append(c.Variables, Variable{Name: rule.Property, Value: rule.Value})
			}
		}
	}

	if !timesSyntax.MatchString(raw) || !hasTimes(root) {
		return
	}
	extended := Generate(root) + ")"
	ep := p.child(extended, c.Pos)
	ep.quiet = true
	c.Args = ep.arguments(false, c.Pos)
}

var timesSyntax = regexp.MustCompile(`\d\s*\{`)

func hasTimes(b *Block) bool {
	if b.Times != "" {
		return true
	}
	for _, n := range b.Children {
		switch n := n.(type) {
		case *Block:
			if hasTimes(n) {
				return true
			}
		case *Statement:
			if n.Inline != nil && hasTimes(n.Inline) {
				return true
			}
		}
	}
	return false
}
