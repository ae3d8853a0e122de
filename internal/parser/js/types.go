package js

// Segment represents a literal text segment from a template string,
// between ${...} expression boundaries
type Segment struct {
	// Content is the literal text of this segment
	Content string
	// StartLine is the 0-indexed line in the JS/TS source where this segment begins
	StartLine uint
	// StartCol is the 0-indexed column in the JS/TS source where this segment begins
	StartCol uint
}

// Template is a doodle found in JS/TS source: a tagged template
// literal, or a <css-doodle> element inside an html template.
type Template struct {
	// Tag is the template tag function name
	Tag string
	// Segments contains the literal text parts of the template, split at ${...} boundaries
	Segments []Segment
	// Attributes of a <css-doodle> element found in an html template
	Attributes map[string]string
}

// Content joins the literal segments. Substitutions cannot be evaluated
// statically and are left out.
func (t Template) Content() string {
	var n int
	for _, s := range t.Segments {
		n += len(s.Content)
	}
	b := make([]byte, 0, n)
	for _, s := range t.Segments {
		b = append(b, s.Content...)
	}
	return string(b)
}
