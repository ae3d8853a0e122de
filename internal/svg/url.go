package svg

import (
	"net/url"
	"regexp"
	"strings"
)

var svgOpen = regexp.MustCompile(`<svg([\s>])`)

// Normalize wraps bare markup in an svg element and adds the namespaces
// when they are missing.
func Normalize(input string) string {
	ns := `xmlns="` + NS + `" xmlns:xlink="` + NSXLink + `"`
	if !strings.Contains(input, "<svg") {
		input = "<svg " + ns + ">" + input + "</svg>"
	}
	if !strings.Contains(input, "xmlns") {
		input = svgOpen.ReplaceAllString(input, "<svg "+ns+"$1")
	}
	return input
}

// URL embeds an SVG document in a CSS url() data URL. A non-empty id is
// appended as the fragment.
func URL(svg, id string) string {
	encoded := EncodeURIComponent(svg)
	if id != "" {
		encoded += "#" + id
	}
	return `url("data:image/svg+xml;utf8,` + encoded + `")`
}

// Decode extracts the SVG document from a URL produced by URL.
func Decode(value string) (string, bool) {
	const prefix = `url("data:image/svg+xml;utf8,`
	if !strings.HasPrefix(value, prefix) {
		return "", false
	}
	body := value[strings.Index(value, ",")+1:]
	body = strings.TrimSuffix(body, `")`)
	if i := strings.LastIndex(body, "#"); i >= 0 {
		body = body[:i]
	}
	s, err := url.PathUnescape(body)
	if err != nil {
		return "", false
	}
	return s, true
}

// EncodeURIComponent escapes everything except letters, digits and
// - _ . ! ~ * ' ( ).
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
