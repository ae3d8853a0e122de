// Package calc evaluates infix arithmetic with variables and functions.
//
// Expressions are converted to postfix with the shunting-yard algorithm.
// Variables resolve against a Context, then the Math namespace, then by
// re-expansion ("2t" is 2 times t). String values are evaluated as
// expressions themselves; self-referencing chains terminate at 0.
package calc

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"bennypowers.dev/cssdoodle/internal/num"
)

// Context supplies variables and functions. Values may be numbers,
// expression strings, Func or func(...float64) float64.
type Context map[string]any

var precedence = map[string]int{
	"^": 7,
	"*": 6, "/": 6, "÷": 6, "%": 6,
	"&": 5, "|": 5,
	"+": 4, "-": 4,
	"<": 3, "<<": 3,
	">": 3, ">>": 3,
	"=": 3, "==": 3,
	"≤": 3, "<=": 3,
	"≥": 3, ">=": 3,
	"≠": 3, "!=": 3,
	"∧": 2, "&&": 2,
	"∨": 2, "||": 2,
	"(": 1, ")": 1,
}

// maxCycle bounds how many string expansions one evaluation may follow.
const maxCycle = 50

// maxCache bounds the number of memoized programs per evaluator.
const maxCache = 4096

type kind int

const (
	kindNumber kind = iota
	kindVariable
	kindFunction
	kindOperator
	kindComma
)

type token struct {
	kind  kind
	value string
}

type item struct {
	kind  kind
	value string
	args  []program
}

type program []item

// Evaluator memoizes compiled expressions. One evaluator serves one
// compile run; it is not safe for concurrent use.
type Evaluator struct {
	cache map[string]program
	// Random backs the Math "random" function. Without it random yields 0.
	Random func() float64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{cache: map[string]program{}}
}

// Eval evaluates expr with a throwaway evaluator.
func Eval(expr string, ctx Context) float64 {
	return NewEvaluator().Eval(expr, ctx)
}

// Eval evaluates expr. Malformed input yields 0.
func (e *Evaluator) Eval(expr string, ctx Context) float64 {
	repeat := []string{}
	return e.run(e.compile(expr), ctx, &repeat)
}

func (e *Evaluator) compile(expr string) program {
	if p, ok := e.cache[expr]; ok {
		return p
	}
	p := e.toPostfix(tokenize(expr))
	if len(e.cache) >= maxCache {
		clear(e.cache)
	}
	e.cache[expr] = p
	return p
}

func tokenize(expr string) []token {
	var (
		tokens []token
		cur    strings.Builder
		prev   rune
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{kindNumber, cur.String()})
			cur.Reset()
		}
	}
	last := func() *token {
		if len(tokens) == 0 {
			return nil
		}
		return &tokens[len(tokens)-1]
	}

	for _, c := range expr {
		s := string(c)
		if _, isOp := precedence[s]; isOp {
			lt := last()
			switch {
			case c == '=' && cur.Len() == 0 && lt != nil && lt.kind == kindOperator && len(lt.value) == 1 && strings.Contains("!<>=", lt.value):
				lt.value += s
			case strings.ContainsRune("|&<>", c) && lt != nil && lt.kind == kindOperator && lt.value == s && cur.Len() == 0:
				lt.value += s
			case c == '-' && (prev == 'e' || prev == 'E') && mantissa.MatchString(cur.String()):
				cur.WriteRune(c)
			case (c == '+' || c == '-') && cur.Len() == 0 && (lt == nil || lt.kind == kindComma || (lt.kind == kindOperator && lt.value != ")")):
				// sign of the next operand
				cur.WriteRune(c)
			default:
				flush()
				tokens = append(tokens, token{kindOperator, s})
			}
		} else if !unicode.IsSpace(c) {
			switch c {
			case ',':
				flush()
				tokens = append(tokens, token{kindComma, s})
			case '!':
				flush()
				tokens = append(tokens, token{kindOperator, s})
			default:
				cur.WriteRune(c)
			}
		}
		prev = c
	}
	flush()
	return tokens
}

var (
	nonNumeric = regexp.MustCompile(`[^\d.\-]`)
	mantissa   = regexp.MustCompile(`^[+-]?[\d.]+[eE]$`)
)

func (e *Evaluator) toPostfix(tokens []token) program {
	var (
		ops []string
		out program
	)
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.kind {
		case kindNumber:
			named := nonNumeric.MatchString(t.value) && !num.IsNumeric(t.value)
			if named && i+1 < len(tokens) && tokens[i+1].kind == kindOperator && tokens[i+1].value == "(" {
				var args []program
				args, i = e.functionArgs(tokens, i+2)
				out = append(out, item{kind: kindFunction, value: t.value, args: args})
			} else if named {
				out = append(out, item{kind: kindVariable, value: t.value})
			} else {
				out = append(out, item{kind: kindNumber, value: t.value})
			}

		case kindOperator:
			switch t.value {
			case "(":
				ops = append(ops, t.value)
			case ")":
				for len(ops) > 0 && ops[len(ops)-1] != "(" {
					out = append(out, item{kind: kindOperator, value: ops[len(ops)-1]})
					ops = ops[:len(ops)-1]
				}
				if len(ops) > 0 {
					ops = ops[:len(ops)-1]
				}
			default:
				p, known := precedence[t.value]
				for known && len(ops) > 0 && precedence[ops[len(ops)-1]] >= p {
					op := ops[len(ops)-1]
					ops = ops[:len(ops)-1]
					if op != "(" && op != ")" {
						out = append(out, item{kind: kindOperator, value: op})
					}
				}
				ops = append(ops, t.value)
			}
		}
	}
	for len(ops) > 0 {
		out = append(out, item{kind: kindOperator, value: ops[len(ops)-1]})
		ops = ops[:len(ops)-1]
	}
	return out
}

// functionArgs reads a parenthesized argument list starting at tokens[start]
// (just past the opening paren). Each top-level comma-separated argument is
// compiled on its own. Returns the index of the closing paren.
func (e *Evaluator) functionArgs(tokens []token, start int) ([]program, int) {
	var (
		args  []program
		body  strings.Builder
		depth int
		i     = start
	)
	for ; i < len(tokens); i++ {
		t := tokens[i]
		if t.kind == kindOperator && t.value == ")" {
			if depth == 0 {
				break
			}
			depth--
			body.WriteString(t.value)
			continue
		}
		if t.kind == kindOperator && t.value == "(" {
			depth++
		}
		if t.kind == kindComma && depth == 0 {
			if arg := e.compile(body.String()); len(arg) > 0 {
				args = append(args, arg)
			}
			body.Reset()
			continue
		}
		if t.kind == kindComma {
			body.WriteString(",")
			continue
		}
		body.WriteString(t.value)
	}
	if body.Len() > 0 {
		args = append(args, e.compile(body.String()))
	}
	return args, i
}

func (e *Evaluator) run(p program, ctx Context, repeat *[]string) float64 {
	var stack []float64
	pop := func() float64 {
		if len(stack) == 0 {
			return math.NaN()
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, it := range p {
		switch it.kind {
		case kindVariable:
			stack = append(stack, e.variable(it.value, ctx, repeat))

		case kindFunction:
			stack = append(stack, e.call(it, ctx, repeat))

		case kindNumber:
			if !strings.ContainsAny(it.value, "0123456789") {
				// a bare sign or dot acts as an unknown operator
				pop()
				pop()
				stack = append(stack, math.NaN())
				continue
			}
			n, ok := num.Parse(it.value)
			if !ok {
				n = math.NaN()
			}
			stack = append(stack, n)

		case kindOperator:
			right := pop()
			left := pop()
			stack = append(stack, compute(it.value, left, right))
		}
	}
	if len(stack) == 0 {
		return 0
	}
	return nanToZero(stack[0])
}

func (e *Evaluator) call(it item, ctx Context, repeat *[]string) float64 {
	name := it.value
	negative := strings.HasPrefix(name, "-")
	if negative {
		name = name[1:]
	}

	output := make([]float64, len(it.args))
	for i, a := range it.args {
		output[i] = nanToZero(e.run(a, ctx, repeat))
	}

	applied := false
	var result float64
	names := strings.Split(name, ".")
	for i := len(names) - 1; i >= 0; i-- {
		if names[i] == "" {
			continue
		}
		if fn, ok := e.function(names[i], ctx); ok {
			result = fn(output...)
		} else {
			result = 0
		}
		output = []float64{result}
		applied = true
	}
	if !applied {
		switch len(output) {
		case 0:
			result = 0
		case 1:
			result = output[0]
		default:
			result = math.NaN()
		}
	}
	if negative {
		result = -result
	}
	return result
}

func (e *Evaluator) function(name string, ctx Context) (Func, bool) {
	if fn, ok := asFunc(ctx[name]); ok {
		return fn, true
	}
	if name == "gcd" {
		return gcd, true
	}
	if name == "random" {
		if e.Random == nil {
			return nil, false
		}
		return func(...float64) float64 { return e.Random() }, true
	}
	fn, ok := Functions[name]
	return fn, ok
}

func asFunc(v any) (Func, bool) {
	switch fn := v.(type) {
	case Func:
		return fn, fn != nil
	case func(...float64) float64:
		return fn, fn != nil
	}
	return nil, false
}

func nanToZero(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

// lookup returns a context value that is a number or an expression string.
func lookup(ctx Context, name string) (any, bool) {
	switch v := ctx[name].(type) {
	case float64:
		return v, !math.IsNaN(v)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), !math.IsNaN(float64(v))
	case string:
		return v, true
	}
	if name == "π" {
		return math.Pi, true
	}
	return nil, false
}

func (e *Evaluator) variable(name string, ctx Context, repeat *[]string) float64 {
	value, ok := lookup(ctx, name)
	if !ok {
		if c, isConst := Constants[name]; isConst {
			value, ok = c, true
		}
	}
	if !ok {
		value, ok = e.expand(name, ctx, repeat)
	}
	if !ok || isNaNValue(value) {
		if isNegatedName(name) {
			if v, found := e.expand("-1"+name[1:], ctx, repeat); found {
				value, ok = v, true
			}
		}
	}
	if !ok {
		return 0
	}

	switch v := value.(type) {
	case float64:
		return v
	case string:
		*repeat = append(*repeat, v)
		if isCycle(*repeat) {
			return 0
		}
		return e.run(e.compile(v), ctx, repeat)
	}
	return 0
}

func isNaNValue(v any) bool {
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}

// isNegatedName matches "-" followed by a non-digit.
func isNegatedName(name string) bool {
	if !strings.HasPrefix(name, "-") || len(name) < 2 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[1:])
	return !(r >= '0' && r <= '9')
}

var coefficient = regexp.MustCompile(`([\d.\-]+)(.*)`)

// expand reads "<number><name>" as number times the value of name.
func (e *Evaluator) expand(value string, ctx Context, repeat *[]string) (any, bool) {
	m := coefficient.FindStringSubmatch(value)
	if m == nil {
		return nil, false
	}
	factor, ok := num.Parse(m[1])
	if !ok {
		factor = math.NaN()
	}
	v, found := lookup(ctx, m[2])
	if !found {
		return nil, false
	}
	switch v := v.(type) {
	case float64:
		return factor * v, true
	case string:
		*repeat = append(*repeat, v)
		if isCycle(*repeat) {
			return 0.0, true
		}
		return factor * e.run(e.compile(v), ctx, repeat), true
	}
	return nil, false
}

func isCycle(repeat []string) bool {
	if len(repeat) > maxCycle {
		return true
	}
	if len(repeat) < 4 {
		return false
	}
	tail := repeat[len(repeat)-1]
	for i := 2; i <= 4; i++ {
		if repeat[len(repeat)-i] != tail {
			return false
		}
	}
	return true
}

func boolean(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func compute(op string, a, b float64) float64 {
	switch op {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*":
		return a * b
	case "/", "÷":
		return a / b
	case "%":
		return math.Mod(a, b)
	case "^":
		return math.Pow(a, b)
	case "|":
		return float64(num.ToInt32(a) | num.ToInt32(b))
	case "&":
		return float64(num.ToInt32(a) & num.ToInt32(b))
	case "<<":
		return float64(num.ToInt32(a) << (uint32(num.ToInt32(b)) & 31))
	case ">>":
		return float64(num.ToInt32(a) >> (uint32(num.ToInt32(b)) & 31))
	case "<":
		return boolean(a < b)
	case ">":
		return boolean(a > b)
	case "=", "==":
		return boolean(a == b)
	case "≤", "<=":
		return boolean(a <= b)
	case "≥", ">=":
		return boolean(a >= b)
	case "≠", "!=":
		return boolean(a != b)
	case "∧", "&&":
		if !num.Truthy(a) {
			return a
		}
		return b
	case "∨", "||":
		if num.Truthy(a) {
			return a
		}
		return b
	}
	return math.NaN()
}
