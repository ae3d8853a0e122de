package selector

import (
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// ParseLinear reads an an+b expression such as "2n+1", "-n+3" or "4".
// Terms may repeat ("n+n+1" is 2n+1). ok is false on any other input.
func ParseLinear(input string) (a, b float64, ok bool) {
	var op string
	terms := 0
	tokens := tokenizer.Scan(input)
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t.IsSpace():
		case t.IsSymbol("+", "-"):
			if op != "" {
				return 0, 0, false
			}
			op = t.Value
		case t.IsNumber():
			v, _ := num.Parse(t.Value)
			signed := t.Value[0] == '-' || t.Value[0] == '+'
			if terms > 0 && op == "" && !signed {
				return 0, 0, false
			}
			if op == "-" {
				v = -v
			}
			op = ""
			terms++
			if i+1 < len(tokens) && tokens[i+1].IsWord() && tokens[i+1].Value == "n" {
				a += v
				i++
				continue
			}
			b += v
		case t.IsWord() && t.Value == "n":
			if terms > 0 && op == "" {
				return 0, 0, false
			}
			if op == "-" {
				a--
			} else {
				a++
			}
			op = ""
			terms++
		default:
			return 0, 0, false
		}
	}
	return a, b, terms > 0
}
