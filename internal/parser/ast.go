package parser

import (
	"strconv"

	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Node is one statement of a parsed source: a *Rule, *Block,
// *Conditional, *Keyframes or *Use in doodle mode, a *Block or *Statement
// in raw mode.
type Node interface {
	Position() tokenizer.Position
}

// Fragment is one piece of a value: literal *Text or a *Call.
type Fragment interface {
	fragment()
}

// Text is literal value text.
type Text struct {
	Value string
}

// Call is a builtin invocation such as @r(1, 10) or $px(10 * 2).
type Call struct {
	// Name omits the leading "@". Calc calls keep their "$" and unit: "$", "$px".
	Name string
	Args []Argument
	// Site identifies the call in the source; state that persists between
	// cells (pick counters, noise offsets) is keyed by it.
	Site int
	// Source is the literal text of the call, used when the name is unknown.
	Source string
	// Variables are custom properties declared inside vector markup arguments.
	Variables []Variable
	Pos       tokenizer.Position
}

// Argument is one comma-delimited argument. A clustered argument had its
// surrounding quotes or parentheses stripped and is passed through whole.
type Argument struct {
	Fragments []Fragment
	Cluster   bool
}

// Group is one comma group of a declaration value.
type Group []Fragment

// Variable is a custom property declaration captured with its parsed value.
type Variable struct {
	Name  string
	Value []Group
}

func (*Text) fragment() {}
func (*Call) fragment() {}

// Rule is a "property: value" declaration.
type Rule struct {
	Property string
	Value    []Group
	// Raw is the declaration text as written.
	Raw string
	// Variable marks custom properties (--name).
	Variable bool
	Pos      tokenizer.Position
}

// Block is a selector with nested statements. In doodle mode the selector
// is a pseudo selector or element selector scoped to the cell; in raw mode
// it names a vector element.
type Block struct {
	Selector string
	// Name is the selector without a repetition suffix.
	Name string
	// Times is the repetition count of a "name*count" selector.
	Times    string
	Children []Node
	// Style holds the opaque body of a block named "style".
	Style string
	// Inline marks blocks written as a declaration value.
	Inline bool
	Pos    tokenizer.Position
}

// Conditional applies its children to cells matching a selector function,
// e.g. @nth(2n+1) { ... } or @random(.3) not { ... }.
type Conditional struct {
	Name      string
	Args      []Argument
	Negations int
	Children  []Node
	Pos       tokenizer.Position
}

// Keyframes is an @keyframes block.
type Keyframes struct {
	Name  string
	Steps []Step
	Pos   tokenizer.Position
}

// Step is one keyframe selector with its declarations.
type Step struct {
	Name  []Group
	Rules []*Rule
}

// Use is an @use declaration referring to custom properties that were not
// declared in the source. Names are tried in order.
type Use struct {
	Names []string
	Pos   tokenizer.Position
}

// Statement is a raw-mode declaration. Values stay unparsed text.
type Statement struct {
	Name  string
	Value string
	// Inline is set when the value is a block, as in "fill: defs pattern { ... }".
	Inline   *Block
	Variable bool
	ViewBox  *ViewBox
	// Targets lists every property of a multi-target declaration and Source
	// its unsplit value.
	Targets []string
	Source  string
	Pos     tokenizer.Position
}

// ViewBox is the numeric detail of a viewBox declaration.
type ViewBox struct {
	Values []float64
	// Padding comes from a trailing "p", "padding" or "expand" value.
	Padding float64
}

func (r *Rule) Position() tokenizer.Position        { return r.Pos }
func (b *Block) Position() tokenizer.Position       { return b.Pos }
func (c *Conditional) Position() tokenizer.Position { return c.Pos }
func (k *Keyframes) Position() tokenizer.Position   { return k.Pos }
func (u *Use) Position() tokenizer.Position         { return u.Pos }
func (s *Statement) Position() tokenizer.Position   { return s.Pos }

// Diagnostic is a recoverable syntax problem.
type Diagnostic struct {
	Message string
	Pos     tokenizer.Position
}

func (d Diagnostic) String() string {
	return "(at line " + strconv.Itoa(d.Pos.Line+1) + ", column " + strconv.Itoa(d.Pos.Column+1) + ") " + d.Message
}

// Result is the output of Parse.
type Result struct {
	Nodes       []Node
	Diagnostics []Diagnostic
	// LastSite is the highest call-site id assigned.
	LastSite int
}
