package html

import "strconv"

// Element is a <css-doodle> element found in an HTML document.
type Element struct {
	// Content is the doodle source between the tags.
	Content string
	// Attributes of the start tag. Boolean attributes map to "".
	Attributes map[string]string
	// StartLine and StartCol locate Content, zero-based.
	StartLine uint
	StartCol  uint
}

// Attr returns an attribute value.
func (e Element) Attr(name string) (string, bool) {
	v, ok := e.Attributes[name]
	return v, ok
}

// Grid is the grid attribute.
func (e Element) Grid() string {
	return e.Attributes["grid"]
}

// Seed is the seed attribute.
func (e Element) Seed() string {
	return e.Attributes["seed"]
}

// Experimental reports a present experimental attribute that is not
// "false".
func (e Element) Experimental() bool {
	v, ok := e.Attributes["experimental"]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return v == "" || err != nil || b
}
