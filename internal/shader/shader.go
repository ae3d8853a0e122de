// Package shader reads @shaders source into fragment, vertex and texture
// sections and links the fragment program with its uniforms.
package shader

import (
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/sublang"
	"bennypowers.dev/cssdoodle/internal/tokenizer"
)

// Texture is a named sampler whose value is doodle source rendered to an
// image by the host.
type Texture struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Program is the sectioned shader source.
type Program struct {
	Fragment string    `json:"fragment"`
	Vertex   string    `json:"vertex,omitempty"`
	Textures []Texture `json:"textures,omitempty"`
}

var identifier = regexp.MustCompile(`^texture\w*$|^(fragment|vertex)$`)

// Parse splits source into sections. Text outside any section is the
// fragment shader when no fragment section is given.
func Parse(source string) Program {
	tokens := trimParens(tokenizer.Scan(source, tokenizer.Options{
		PreserveLineBreak:   true,
		IgnoreInlineComment: true,
	}))
	var (
		prog    Program
		pending []tokenizer.Token
		section string
		depth   int
		line    = -1
	)
	for i, t := range tokens {
		switch {
		case t.IsSymbol("{"):
			if depth == 0 {
				if name := join(pending); identifier.MatchString(name) {
					section = name
					pending = nil
				} else {
					pending = append(pending, t)
				}
			} else {
				pending = append(pending, t)
			}
			depth++
		case t.IsSymbol("}"):
			depth = max(0, depth-1)
			if depth != 0 || section == "" {
				pending = append(pending, t)
				continue
			}
			if value := join(pending); value != "" {
				if strings.HasPrefix(section, "texture") {
					prog.Textures = append(prog.Textures, Texture{Name: section, Value: value})
				} else if section == "fragment" {
					prog.Fragment = value
				} else {
					prog.Vertex = value
				}
				pending = nil
			}
			section = ""
		default:
			// preprocessor directives end at the line break
			if line >= 0 && line != t.Pos.Line {
				pending = append(pending, newline)
				line = -1
			}
			if !strings.HasPrefix(section, "texture") && t.IsWord() && strings.HasPrefix(t.Value, "#") {
				pending = append(pending, newline)
				if i+1 < len(tokens) {
					line = tokens[i+1].Pos.Line
				}
			}
			pending = append(pending, t)
		}
	}
	if prog.Fragment == "" {
		prog.Fragment = join(pending)
	}
	return prog
}

var newline = tokenizer.Token{Kind: tokenizer.Space, Value: "\n"}

func trimParens(tokens []tokenizer.Token) []tokenizer.Token {
	for len(tokens) >= 2 && tokens[0].IsSymbol("(") && tokens[len(tokens)-1].IsSymbol(")") {
		tokens = tokens[1 : len(tokens)-1]
	}
	return tokens
}

func join(tokens []tokenizer.Token) string {
	return tokenizer.Join(trimParens(tokens))
}

const fragmentHead = `#version 300 es
precision highp float;
out vec4 FragColor;
`

// DefaultVertex draws a full-viewport quad.
const DefaultVertex = `#version 300 es
in vec4 position;
void main() {
  gl_Position = position;
}
`

var shaderToy = regexp.MustCompile(`(^|[^\w_])void\s+mainImage\(\s*out\s+vec4\s+fragColor,\s*in\s+vec2\s+fragCoord\s*\)`)

func addUniform(fragment, uniform string) string {
	if strings.Contains(fragment, uniform) {
		return fragment
	}
	return uniform + "\n" + fragment
}

// Link returns the complete fragment shader: the uniforms the host feeds
// each frame are declared, and ShaderToy style mainImage programs are
// wrapped.
func (p Program) Link() string {
	fragment := p.Fragment
	for _, u := range []string{
		"uniform vec2 u_resolution;",
		"uniform float u_time;",
		"uniform float u_timeDelta;",
		"uniform int u_frameIndex;",
		"uniform vec2 u_seed;",
	} {
		fragment = addUniform(fragment, u)
	}
	for _, t := range p.Textures {
		fragment = addUniform(fragment, "uniform sampler2D "+t.Name+";")
	}
	if shaderToy.MatchString(fragment) {
		var b strings.Builder
		b.WriteString("\n#define iResolution vec3(u_resolution, 0)\n")
		b.WriteString("#define iTime u_time\n#define iTimeDelta u_timeDelta\n#define iFrame u_frameIndex\n")
		for i, t := range p.Textures {
			b.WriteString("#define iChannel" + strconv.Itoa(i) + " " + t.Name + "\n")
		}
		b.WriteString("\n" + fragment + "\n\nvoid main() {\n  mainImage(FragColor, gl_FragCoord.xy);\n}")
		fragment = b.String()
	}
	return fragmentHead + fragment
}

// VertexSource is the vertex section or the default quad.
func (p Program) VertexSource() string {
	if strings.TrimSpace(p.Vertex) == "" {
		return DefaultVertex
	}
	return p.Vertex
}

// Language renders shader source to the linked fragment shader.
type Language struct{}

var _ sublang.Language = Language{}

func (Language) Name() string { return "shaders" }

func (Language) Compile(source string) (any, error) {
	return Parse(source), nil
}

func (Language) Render(tree any) (string, error) {
	p, ok := tree.(Program)
	if !ok {
		return "", &sublang.TypeError{Language: "shaders", Tree: tree}
	}
	return p.Link(), nil
}
