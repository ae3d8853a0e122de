// Package source finds doodle sources in documents: whole doodle files,
// <css-doodle> elements in HTML and doodle templates in JS/TS.
package source

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/cssdoodle/internal/parser/html"
	"bennypowers.dev/cssdoodle/internal/parser/js"
)

// languages maps language IDs to the extractor they use.
// "doodle" → the whole document, "html" → HTML parser, "js" → JS parser.
var languages = map[string]string{
	"cssdoodle":       "doodle",
	"css-doodle":      "doodle",
	"doodle":          "doodle",
	"html":            "html",
	"javascript":      "js",
	"javascriptreact": "js",
	"typescript":      "js",
	"typescriptreact": "js",
}

var extensions = map[string]string{
	".doodle":     "cssdoodle",
	".css-doodle": "cssdoodle",
	".cssd":       "cssdoodle",
	".html":       "html",
	".htm":        "html",
	".js":         "javascript",
	".mjs":        "javascript",
	".jsx":        "javascriptreact",
	".ts":         "typescript",
	".mts":        "typescript",
	".tsx":        "typescriptreact",
}

// Doodle is one doodle source found in a document.
type Doodle struct {
	Source string
	// Attributes of the <css-doodle> element, if any.
	Attributes map[string]string
	// Line and Col locate Source in the document, zero-based.
	Line uint
	Col  uint
}

// Grid is the grid attribute.
func (d Doodle) Grid() string { return d.Attributes["grid"] }

// Seed is the seed attribute.
func (d Doodle) Seed() string { return d.Attributes["seed"] }

// Experimental reports the experimental attribute.
func (d Doodle) Experimental() bool {
	return html.Element{Attributes: d.Attributes}.Experimental()
}

// Position maps a zero-based position in Source to the document.
func (d Doodle) Position(line, col uint) (uint, uint) {
	if line == 0 {
		col += d.Col
	}
	return line + d.Line, col
}

// IsSupportedLanguage returns true if doodles can be found in documents
// of the language.
func IsSupportedLanguage(languageID string) bool {
	_, ok := languages[languageID]
	return ok
}

// LanguageForPath guesses the language ID of a file from its extension.
func LanguageForPath(path string) string {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Extract finds the doodles of a document.
func Extract(content, languageID string) []Doodle {
	switch languages[languageID] {
	case "doodle":
		return []Doodle{{Source: content}}

	case "html":
		var out []Doodle
		for _, el := range html.Doodles(content) {
			out = append(out, Doodle{
				Source:     el.Content,
				Attributes: el.Attributes,
				Line:       el.StartLine,
				Col:        el.StartCol,
			})
		}
		return out

	case "js":
		var out []Doodle
		for _, tmpl := range js.Doodles(content) {
			d := Doodle{Source: tmpl.Content(), Attributes: tmpl.Attributes}
			if len(tmpl.Segments) > 0 {
				d.Line, d.Col = tmpl.Segments[0].StartLine, tmpl.Segments[0].StartCol
			}
			out = append(out, d)
		}
		return out

	default:
		return nil
	}
}
