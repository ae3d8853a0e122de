package parser

import "strings"

// Generate renders vector markup back to doodle source, turning each
// repeated element "name*count { ... }" into "@M<count>(name{ ... })" so
// that the functions inside are evaluated once per copy.
func Generate(root *Block) string {
	return strings.TrimSpace(generate(root, ""))
}

func generate(node Node, lastGroup string) string {
	var b strings.Builder
	switch n := node.(type) {
	case *Block:
		if n.Times != "" {
			b.WriteString("@M" + n.Times + "(" + n.Name + "{")
		} else {
			b.WriteString(n.Name + "{")
		}
		if n.Name == "style" {
			b.WriteString(n.Style)
		} else {
			group := ""
			for _, c := range n.Children {
				b.WriteString(generate(c, group))
				if st, ok := c.(*Statement); ok && len(st.Targets) > 0 {
					group = strings.Join(st.Targets, ",")
				}
			}
		}
		if n.Times != "" {
			b.WriteString("})")
		} else {
			b.WriteString("}")
		}
	case *Statement:
		name, value := n.Name, n.Value
		if len(n.Targets) > 0 {
			name = strings.Join(n.Targets, ",")
			if name == lastGroup {
				return ""
			}
			value = n.Source
		}
		if n.Inline != nil {
			b.WriteString(name + ":" + generate(n.Inline, ""))
		} else {
			b.WriteString(name + ":" + value + ";")
		}
	}
	return b.String()
}
