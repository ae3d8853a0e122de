package css

// Position is a zero-based line and byte column.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a span of the inspected stylesheet.
type Range struct {
	Start Position
	End   Position
}

// Declaration is one property declaration and the selector of its rule.
type Declaration struct {
	Selector string
	Property string
	Value    string
	Range    Range
}

// IsCustom reports whether the declaration defines a custom property.
func (d *Declaration) IsCustom() bool {
	return len(d.Property) > 2 && d.Property[:2] == "--"
}

// VarCall is a var() reference.
type VarCall struct {
	Name     string
	Fallback *string
	Range    Range
}

// Problem is a syntax error tree-sitter recovered from.
type Problem struct {
	Message string
	Range   Range
}

// Report is what a stylesheet declares and references.
type Report struct {
	Declarations []*Declaration
	VarCalls     []*VarCall
	Problems     []Problem
}

// Custom lists the custom property declarations.
func (r *Report) Custom() []*Declaration {
	var out []*Declaration
	for _, d := range r.Declarations {
		if d.IsCustom() {
			out = append(out, d)
		}
	}
	return out
}

// Undefined lists var() references to custom properties the stylesheet
// does not declare, skipping those with a fallback and those known
// reports true for.
func (r *Report) Undefined(known func(name string) bool) []*VarCall {
	declared := map[string]bool{}
	for _, d := range r.Custom() {
		declared[d.Property] = true
	}
	var out []*VarCall
	for _, vc := range r.VarCalls {
		if declared[vc.Name] || vc.Fallback != nil || (known != nil && known(vc.Name)) {
			continue
		}
		out = append(out, vc)
	}
	return out
}
