// Package list splits doodle values into comma or space separated parts
// without breaking inside parentheses or quotes.
package list

import (
	"slices"
	"strings"

	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

type Options struct {
	// Symbols are the separator symbols; "," when empty.
	Symbols []string
	// NoSpace stops spaces from separating and drops spaces around separators.
	NoSpace bool
}

// Group is one part of a verbose split with the separator that preceded it.
type Group struct {
	Separator string
	Value     string
}

// Split breaks input at top-level separators.
func Split(input string, opts ...Options) []string {
	groups := split(input, false, opts...)
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Value
	}
	return out
}

// SplitVerbose is Split that also reports each part's leading separator.
// Empty parts are kept only when a separator introduced them.
func SplitVerbose(input string, opts ...Options) []Group {
	return split(input, true, opts...)
}

func split(input string, verbose bool, opts ...Options) []Group {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	symbols := o.Symbols
	if len(symbols) == 0 {
		symbols = []string{","}
	}
	if strings.TrimSpace(input) == "" {
		return nil
	}

	isSeparator := func(t tokenizer.Token) bool {
		if t.IsSymbol(symbols...) {
			return true
		}
		// "|" and "~" scan as words of their own
		if t.IsWord() && slices.Contains(symbols, t.Value) {
			return true
		}
		return !o.NoSpace && t.IsSpace()
	}

	var (
		groups  []Group
		current []tokenizer.Token
		parens  int
		quotes  int
		lastSep string
	)
	add := func() {
		value := tokenizer.Join(current)
		if verbose && lastSep == "" && value == "" {
			return
		}
		groups = append(groups, Group{Separator: lastSep, Value: value})
	}

	tokens := tokenizer.Scan(input)
	for i, t := range tokens {
		switch {
		case t.IsSymbol("("):
			parens++
		case t.IsSymbol(")"):
			parens = max(0, parens-1)
		}
		switch t.Status {
		case tokenizer.StatusOpen:
			quotes++
		case tokenizer.StatusClose:
			quotes--
		}
		top := parens == 0 && quotes == 0
		if top && o.NoSpace && t.IsSpace() {
			prevSep := i > 0 && isSeparator(tokens[i-1])
			nextSep := i+1 < len(tokens) && isSeparator(tokens[i+1])
			if prevSep || nextSep {
				continue
			}
		}
		if top && isSeparator(t) {
			add()
			lastSep = t.Value
			current = current[:0]
			continue
		}
		current = append(current, t)
	}
	if len(current) > 0 {
		add()
	}
	return groups
}

// NamedArguments maps positional and "name=value" arguments onto names.
// Once a named argument appears, later unnamed arguments are ignored.
func NamedArguments(args []string, names []string) map[string]string {
	result := map[string]string{}
	ordered := true
	for i, arg := range args {
		var position string
		if i < len(names) {
			position = names[i]
		}
		if strings.Contains(arg, "=") {
			parts := Split(arg, Options{Symbols: []string{"="}, NoSpace: true})
			if len(parts) > 1 {
				if slices.Contains(names, parts[0]) {
					result[parts[0]] = parts[1]
				}
				ordered = false
				continue
			}
			if position != "" {
				result[position] = arg
			}
			continue
		}
		if ordered && position != "" {
			result[position] = arg
		}
	}
	return result
}
