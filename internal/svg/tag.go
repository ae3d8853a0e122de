package svg

import (
	"regexp"
	"strings"
)

// Tag is an SVG element under construction.
type Tag struct {
	Name  string
	attrs []attr
	body  []*Tag
	text  string
	raw   bool
}

type attr struct {
	name, value string
}

const textNode = "text-node"

func NewTag(name string) *Tag {
	return &Tag{Name: name}
}

func newText(text string, raw bool) *Tag {
	return &Tag{Name: textNode, text: text, raw: raw}
}

func (t *Tag) isText() bool {
	return t.Name == textNode
}

// Attr returns the attribute value.
func (t *Tag) Attr(name string) (string, bool) {
	for _, a := range t.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, keeping the position of an existing one.
func (t *Tag) SetAttr(name, value string) {
	if t.isText() {
		return
	}
	for i, a := range t.attrs {
		if a.name == name {
			t.attrs[i].value = value
			return
		}
	}
	t.attrs = append(t.attrs, attr{name, value})
}

func (t *Tag) Append(children ...*Tag) {
	if t.isText() {
		return
	}
	t.body = append(t.body, children...)
}

// find returns the child with the same name and id as target.
func (t *Tag) find(target *Tag) *Tag {
	id, ok := target.Attr("id")
	if !ok {
		return nil
	}
	for _, c := range t.body {
		if cid, ok := c.Attr("id"); ok && cid == id && c.Name == target.Name {
			return c
		}
	}
	return nil
}

// spareDefs returns the first defs child without an id.
func (t *Tag) spareDefs() *Tag {
	for _, c := range t.body {
		if c.Name == "defs" {
			if _, ok := c.Attr("id"); !ok {
				return c
			}
		}
	}
	return nil
}

func (t *Tag) merge(other *Tag) {
	for _, a := range other.attrs {
		t.SetAttr(a.name, a.value)
	}
	t.body = append(t.body, other.body...)
}

var svgName = regexp.MustCompile(`(?i)svg`)

func (t *Tag) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tag) write(b *strings.Builder) {
	if t.isText() {
		if t.raw {
			b.WriteString(t.text)
		} else {
			b.WriteString(removeQuotes(t.text))
		}
		return
	}
	b.WriteString("<" + t.Name)
	for _, a := range t.attrs {
		b.WriteString(" " + a.name + `="` + removeQuotes(a.value) + `"`)
	}
	var body strings.Builder
	for _, c := range t.body {
		c.write(&body)
	}
	if body.Len() > 0 || svgName.MatchString(t.Name) {
		b.WriteString(">" + body.String() + "</" + t.Name + ">")
		return
	}
	b.WriteString("/>")
}

func removeQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
