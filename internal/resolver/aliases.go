// Package resolver resolves aliases between design tokens before they
// become custom properties.
package resolver

import (
	"fmt"
	"strings"
)

// CircularReferenceError reports tokens that refer to each other.
type CircularReferenceError struct {
	Cycle []string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference: %s", strings.Join(e.Cycle, " -> "))
}

// UnresolvedError reports a reference to a token that does not exist.
type UnresolvedError struct {
	Token     string
	Reference string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("token %s refers to non-existent token %s", e.Token, e.Reference)
}

// ResolveAliases replaces the references in values, keyed by hyphenated
// token name, with the values they refer to. A whole-value reference
// takes the referenced value; embedded references are substituted in
// place. Unresolvable references are left as written and reported.
func ResolveAliases(values map[string]string) (map[string]string, error) {
	graph := BuildDependencyGraph(values)
	order, err := graph.TopologicalSort()
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]string, len(values))
	var errs []error
	for _, name := range order {
		value, ok := values[name]
		if !ok {
			continue
		}
		if path, ok := strings.CutPrefix(value, "#/"); ok {
			ref := strings.ReplaceAll(path, "/", "-")
			if v, ok := resolved[ref]; ok {
				resolved[name] = v
			} else {
				resolved[name] = value
				errs = append(errs, &UnresolvedError{Token: name, Reference: value})
			}
			continue
		}
		resolved[name] = curlyBrace.ReplaceAllStringFunc(value, func(match string) string {
			ref := strings.ReplaceAll(strings.TrimSpace(match[1:len(match)-1]), ".", "-")
			if v, ok := resolved[ref]; ok {
				return v
			}
			errs = append(errs, &UnresolvedError{Token: name, Reference: match})
			return match
		})
	}
	if len(errs) > 0 {
		return resolved, joinErrors(errs)
	}
	return resolved, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%d unresolved references: %s", len(errs), strings.Join(msgs, "; "))
}
