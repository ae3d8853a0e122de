// Package tokenizer turns doodle source into Symbol, Number, Word and Space
// tokens. Every grammar in the compiler (rules, values, expressions, lists,
// the vector sub-language) reads the same token stream.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a token
type Kind int

const (
	Symbol Kind = iota
	Number
	Word
	Space
)

func (k Kind) String() string {
	switch k {
	case Symbol:
		return "Symbol"
	case Number:
		return "Number"
	case Word:
		return "Word"
	case Space:
		return "Space"
	}
	return "Unknown"
}

// Status marks quote symbols as opening or closing a quoted span
type Status int

const (
	StatusNone Status = iota
	StatusOpen
	StatusClose
)

// Position locates a token in the original source. Line and Column are
// 0-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

type Token struct {
	Kind   Kind
	Value  string
	Pos    Position
	Status Status
}

// IsSymbol reports whether t is a symbol, optionally one of values.
func (t Token) IsSymbol(values ...string) bool {
	if t.Kind != Symbol {
		return false
	}
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if t.Value == v {
			return true
		}
	}
	return false
}

func (t Token) IsSpace() bool  { return t.Kind == Space }
func (t Token) IsNumber() bool { return t.Kind == Number }
func (t Token) IsWord() bool   { return t.Kind == Word }

// Options tune whitespace and comment handling
type Options struct {
	// PreserveLineBreak keeps a collapsed whitespace run as "\n" when it
	// contained a line break.
	PreserveLineBreak bool
	// IgnoreInlineComment skips "//" comments to the end of the line.
	IgnoreInlineComment bool
}

var symbols = map[rune]bool{
	':': true, ';': true, ',': true, '(': true, ')': true, '[': true, ']': true,
	'{': true, '}': true, 'π': true, '±': true, '+': true, '-': true, '*': true,
	'/': true, '%': true, '"': true, '\'': true, '`': true, '@': true, '=': true,
	'^': true,
}

// IsSymbolRune reports whether r is one of the symbol characters.
func IsSymbolRune(r rune) bool {
	return symbols[r]
}

func isSpace(r rune) bool  { return r != 0 && unicode.IsSpace(r) }
func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func isQuote(r rune) bool  { return r == '"' || r == '\'' || r == '`' }
func isSign(r rune) bool   { return r == '+' || r == '-' }
func isE(r rune) bool      { return r == 'e' || r == 'E' }
func isHexNum(r rune) bool { return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F') }

func ignoreSpacing(r rune) bool {
	switch r {
	case ':', ';', ',', '{', '}', '(', ')', '[', ']':
		return true
	}
	return false
}

type scanner struct {
	src    []rune
	pos    []Position
	i      int
	opts   Options
	tokens []Token
	quotes []rune
}

// at peeks n runes ahead of the cursor; 0 past either end.
func (s *scanner) at(n int) rune {
	j := s.i + n
	if j < 0 || j >= len(s.src) {
		return 0
	}
	return s.src[j]
}

func (s *scanner) last() *Token {
	if len(s.tokens) == 0 {
		return nil
	}
	return &s.tokens[len(s.tokens)-1]
}

func (s *scanner) push(kind Kind, value string, at int) {
	s.tokens = append(s.tokens, Token{Kind: kind, Value: value, Pos: s.pos[at]})
}

// Scan tokenizes source. Scanning never fails: unrecognized input becomes
// Word tokens. Leading and trailing whitespace produce no tokens.
func Scan(source string, opts ...Options) []Token {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	s := newScanner(source, o)
	s.run()
	return s.tokens
}

func newScanner(source string, o Options) *scanner {
	trimmed := strings.TrimSpace(source)
	lead := len(source) - len(strings.TrimLeftFunc(source, unicode.IsSpace))

	line, col := 0, 0
	for _, r := range source[:lead] {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}

	s := &scanner{opts: o}
	s.src = make([]rune, 0, utf8.RuneCountInString(trimmed))
	s.pos = make([]Position, 0, cap(s.src)+1)
	offset := lead
	for _, r := range trimmed {
		s.src = append(s.src, r)
		s.pos = append(s.pos, Position{Offset: offset, Line: line, Column: col})
		offset += utf8.RuneLen(r)
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	s.pos = append(s.pos, Position{Offset: offset, Line: line, Column: col})
	return s
}

func (s *scanner) run() {
	for s.i < len(s.src) {
		start := s.i
		c, n, n2 := s.at(0), s.at(1), s.at(2)
		switch {
		case c == '/' && n == '*':
			s.skipComment()
		case s.opts.IgnoreInlineComment && c == '/' && n == '/':
			s.skipLine()
		case c == '0' && (n == 'x' || n == 'X') && isHexNum(n2):
			s.push(Number, s.readHex(), start)
		case isDigit(c) || (c == '.' && isDigit(n) && s.at(-1) != '.'):
			s.push(Number, s.readNumber(), start)
		case symbols[c] && !(c == '/' && n == '>'):
			s.symbol(start)
		case isSpace(c):
			s.space(start)
		default:
			if word := s.readWord(); word != "" {
				s.push(Word, word, start)
			}
		}
	}
	if t := s.last(); t != nil && t.IsSpace() {
		s.tokens = s.tokens[:len(s.tokens)-1]
	}
}

func (s *scanner) symbol(start int) {
	c, n, n2 := s.at(0), s.at(1), s.at(2)
	last := s.last()

	nextIsDigit := isDigit(n) || (n == '.' && isDigit(n2))
	if c == '-' && nextIsDigit && (last == nil || !last.IsNumber()) {
		s.push(Number, s.readNumber(), start)
		return
	}

	// Escaped symbol inside a quoted span
	if len(s.quotes) > 0 && last != nil && last.Value == `\` {
		s.tokens = s.tokens[:len(s.tokens)-1]
		if word := s.readWord(); word != "" {
			s.push(Word, word, start)
		}
		return
	}

	t := Token{Kind: Symbol, Value: string(c), Pos: s.pos[start]}
	if isQuote(c) {
		if len(s.quotes) > 0 && s.quotes[len(s.quotes)-1] == c {
			s.quotes = s.quotes[:len(s.quotes)-1]
			t.Status = StatusClose
		} else {
			s.quotes = append(s.quotes, c)
			t.Status = StatusOpen
		}
	}
	s.tokens = append(s.tokens, t)
	s.i++
}

func (s *scanner) space(start int) {
	var run strings.Builder
	for isSpace(s.at(0)) {
		run.WriteRune(s.at(0))
		s.i++
	}
	spaces := run.String()
	next := s.at(0)
	last := s.last()

	if len(s.quotes) == 0 && last != nil {
		if last.IsSpace() {
			return
		}
		prev, _ := utf8.DecodeRuneInString(last.Value)
		single := utf8.RuneCountInString(last.Value) == 1
		ignoreLeft := single && ignoreSpacing(prev) && prev != ')'
		ignoreRight := ignoreSpacing(next) && next != '('
		if ignoreLeft || ignoreRight {
			return
		}
		spaces = " "
		if s.opts.PreserveLineBreak && strings.ContainsRune(run.String(), '\n') {
			spaces = "\n"
		}
	}
	if len(s.tokens) > 0 && next != 0 {
		s.push(Space, spaces, start)
	}
}

func (s *scanner) skipComment() {
	s.i += 2
	for s.i < len(s.src) {
		if s.at(0) == '*' && s.at(1) == '/' {
			s.i += 2
			return
		}
		s.i++
	}
}

func (s *scanner) skipLine() {
	for s.i < len(s.src) {
		r := s.at(0)
		s.i++
		if r == '\n' {
			return
		}
	}
}

func (s *scanner) readHex() string {
	var b strings.Builder
	b.WriteString("0x")
	s.i += 2
	for isHexNum(s.at(0)) {
		b.WriteRune(s.at(0))
		s.i++
	}
	return b.String()
}

func (s *scanner) readNumber() string {
	var b strings.Builder
	hasDot := false
	for s.i < len(s.src) {
		c := s.at(0)
		b.WriteRune(c)
		s.i++
		n, n2, n3 := s.at(0), s.at(1), s.at(2)
		if hasDot && n == '.' {
			break
		}
		if c == '.' {
			hasDot = true
		}
		if n == '.' && n2 == '.' {
			break
		}
		if isE(n) && isSign(n2) && isDigit(n3) {
			b.WriteRune(n)
			b.WriteRune(n2)
			s.i += 2
			continue
		}
		if isE(n) && isDigit(n2) {
			b.WriteRune(n)
			s.i++
			continue
		}
		if !isDigit(n) && n != '.' {
			break
		}
	}
	return b.String()
}

// readWord stops before whitespace, digits and symbols. Markup keeps
// together: a closing tag "</" never splits, and inside an unclosed "<"
// span digits, "/", "-" and "=" are part of the word.
func (s *scanner) readWord() string {
	var b strings.Builder
	tag := 0
	for s.i < len(s.src) {
		c := s.at(0)
		b.WriteRune(c)
		s.i++
		switch c {
		case '<':
			tag++
		case '>':
			if tag > 0 {
				tag--
			}
		}
		n := s.at(0)
		if n == 0 {
			break
		}
		brk := symbols[n] || isSpace(n) || isDigit(n)
		if !brk {
			continue
		}
		if c == '<' && n == '/' {
			continue
		}
		if tag > 0 && (isDigit(n) || n == '/' || n == '-' || n == '=') {
			continue
		}
		break
	}
	return strings.TrimSpace(b.String())
}

// Join concatenates token values.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Value)
	}
	return b.String()
}
