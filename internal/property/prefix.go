package property

// properties that browsers still expect with a vendor prefix.
var (
	webkit = map[string]bool{
		"clip-path":            true,
		"mask":                 true,
		"mask-image":           true,
		"mask-size":            true,
		"mask-position":        true,
		"mask-repeat":          true,
		"mask-composite":       true,
		"box-reflect":          true,
		"text-stroke":          true,
		"text-fill-color":      true,
		"background-clip":      true,
		"backdrop-filter":      true,
		"user-select":          true,
		"appearance":           true,
		"box-decoration-break": true,
	}
	moz = map[string]bool{
		"font-smoothing": true,
	}
)

// Prefix duplicates a declaration with its vendor-prefixed form when the
// property needs one: "clip-path: x;" becomes
// "-webkit-clip-path: x; clip-path: x;".
func Prefix(prop, rule string) string {
	switch {
	case webkit[prop]:
		return "-webkit-" + rule + " " + rule
	case moz[prop]:
		return "-moz-" + rule + " " + rule
	}
	return rule
}
