package parser

import (
	"strings"

	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// VarRef is a custom property reference, var(--name, fallback...).
type VarRef struct {
	Name     string
	Fallback []VarRef
}

// Names lists the reference and its fallbacks in lookup order.
func (r VarRef) Names() []string {
	names := []string{r.Name}
	for _, f := range r.Fallback {
		names = append(names, f.Names()...)
	}
	return names
}

// ParseVarRefs reads the var() references in input. A fallback may be
// another var() or a bare custom property name.
func ParseVarRefs(input string) []VarRef {
	tokens := tokenizer.Scan(input)
	i := 0
	return readVarRefs(tokens, &i, false)
}

func readVarRefs(tokens []tokenizer.Token, i *int, nested bool) []VarRef {
	var refs []VarRef
	for *i < len(tokens) {
		t := tokens[*i]
		switch {
		case nested && t.IsSymbol(")"):
			return refs
		case t.IsWord() && t.Value == "var" && *i+1 < len(tokens) && tokens[*i+1].IsSymbol("("):
			*i += 2
			if ref, ok := readVarRef(tokens, i); ok {
				refs = append(refs, ref)
			}
			continue
		case nested && t.IsSymbol("-"):
			name := readVarName(tokens, i, func(t tokenizer.Token) bool {
				return t.IsSymbol(",", ")")
			})
			if validVarName(name) {
				refs = append(refs, VarRef{Name: name})
			}
			continue
		}
		*i++
	}
	return refs
}

// readVarRef reads "--name[, fallback])" with the cursor past "var(".
func readVarRef(tokens []tokenizer.Token, i *int) (VarRef, bool) {
	name := readVarName(tokens, i, func(t tokenizer.Token) bool {
		return t.IsSymbol(",", ")", ";")
	})
	ref := VarRef{Name: name}
	if *i < len(tokens) && tokens[*i].IsSymbol(",") {
		*i++
		ref.Fallback = readVarRefs(tokens, i, true)
	}
	if *i < len(tokens) && tokens[*i].IsSymbol(")") {
		*i++
	}
	return ref, validVarName(name)
}

func readVarName(tokens []tokenizer.Token, i *int, stop func(tokenizer.Token) bool) string {
	var b strings.Builder
	for *i < len(tokens) && !stop(tokens[*i]) {
		if !tokens[*i].IsSpace() {
			b.WriteString(tokens[*i].Value)
		}
		*i++
	}
	return b.String()
}

func validVarName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "--") && name[2] != '-'
}
