package functions

import (
	"encoding/base64"
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/svg"
)

// stripe builds hard color stops: equal bands, or the remaining space
// shared by the colors without an explicit size.
func stripe(_ *cell.Context, colors []string) string {
	if len(colors) == 0 {
		return ""
	}
	var sizes []string
	unsized := 0
	for _, step := range colors {
		if parts := list.Split(step); len(parts) > 1 {
			sizes = append(sizes, parts[1])
		} else {
			unsized++
		}
	}
	out := make([]string, len(colors))
	if len(sizes) == 0 {
		for i, color := range colors {
			out[i] = color + " 0 " + num.Format(100/float64(len(colors))*float64(i+1)) + "%"
		}
		return strings.Join(out, ",")
	}
	fallback := "(100% - " + strings.Join(sizes, " - ") + ") / " + strconv.Itoa(unsized)
	var prev string
	for i, step := range colors {
		parts := list.Split(step)
		size := fallback
		if len(parts) > 1 {
			size = parts[1]
		}
		if prev != "" {
			prev += " + "
		}
		prev += size
		out[i] = parts[0] + " 0 calc(" + prev + ")"
	}
	return strings.Join(out, ",")
}

// cycle lists every rotation of a list, from one space separated
// argument or from several arguments.
func cycle(_ *cell.Context, args []string) string {
	items, sep := args, ","
	if len(args) == 1 {
		items, sep = strings.Fields(args[0]), " "
	}
	if len(items) == 0 {
		return ""
	}
	items = slices.Clone(items)
	result := []string{strings.Join(items, sep)}
	for range len(items) - 1 {
		items = append(items[1:], items[0])
		result = append(result, strings.Join(items, sep))
	}
	return strings.Join(result, ",")
}

func mirror(_ *cell.Context, args []string) string {
	out := slices.Clone(args)
	for i := len(args) - 1; i >= 0; i-- {
		out = append(out, args[i])
	}
	return strings.Join(out, ",")
}

func mirrorOdd(_ *cell.Context, args []string) string {
	out := slices.Clone(args)
	for i := len(args) - 2; i >= 0; i-- {
		out = append(out, args[i])
	}
	return strings.Join(out, ",")
}

func reverse(_ *cell.Context, args []string) string {
	commands, ok := parsePath(strings.Join(args, ","))
	if ok && len(commands) > 0 {
		slices.Reverse(commands)
		return joinPath(commands)
	}
	out := slices.Clone(args)
	slices.Reverse(out)
	return strings.Join(out, ",")
}

func code(_ *cell.Context, args []string) string {
	out := make([]string, len(args))
	for i, a := range args {
		n, _ := num.Parse(a)
		out[i] = string(rune(uint16(int64(n))))
	}
	return strings.Join(out, ",")
}

func hex(_ *cell.Context, args []string) string {
	if len(args) == 0 {
		return "NaN"
	}
	s := strings.TrimSpace(args[0])
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && (s[0] == '-' || s[0] == '+'))) {
		end++
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return "NaN"
	}
	return strconv.FormatInt(n, 16)
}

// raw turns embedded assets back into markup: a doodle placeholder into
// a css-doodle element, an SVG data URL into the SVG document.
func raw(c *cell.Context, args []string) string {
	value := strings.Join(args, ",")
	if strings.HasPrefix(value, "${doodle") && strings.HasSuffix(value, "}") && c.Placeholder != nil {
		if source, ok := c.Placeholder(value[2 : len(value)-1]); ok {
			return "<css-doodle>" + source + "</css-doodle>"
		}
	}
	if doc, ok := svg.Decode(value); ok {
		return doc
	}
	if strings.HasPrefix(value, `url("data:image/svg+xml;base64`) {
		body := value[strings.Index(value, ",")+1:]
		body = strings.TrimSuffix(body, `")`)
		if doc, err := base64.StdEncoding.DecodeString(body); err == nil {
			return string(doc)
		}
	}
	if strings.HasPrefix(value, `url("data:image/png;base64`) {
		return `<img src="` + value + `" alt="" />`
	}
	return value
}

func init() {
	eager("stripe", "Hard color stops for gradients.", stripe)
	eager("cycle", "Every rotation of a list.", cycle)
	eager("mirror", "A list followed by its reverse.", mirror)
	eager("Mirror", "A list followed by its reverse without repeating the middle.", mirrorOdd)
	eager("reverse", "Reverse path commands or a list.", reverse)
	eager("code", "Characters from character codes.", code)
	eager("hex", "Integer in hexadecimal.", hex)
	eager("raw", "Markup of an embedded asset.", raw)

	eager("invert", "Swap horizontal and vertical path commands.", func(_ *cell.Context, args []string) string {
		return invertPath(strings.Join(args, ","))
	})
	eager("flipH", "Negate horizontal path lines.", func(_ *cell.Context, args []string) string {
		return flipPath(strings.Join(args, ","), "hH")
	})
	eager("flipV", "Negate vertical path lines.", func(_ *cell.Context, args []string) string {
		return flipPath(strings.Join(args, ","), "vV")
	})
	eager("flip", "Negate horizontal and vertical path lines.", func(_ *cell.Context, args []string) string {
		return flipPath(flipPath(strings.Join(args, ","), "hH"), "vV")
	})

	eager("calc", "Evaluate an expression.", func(c *cell.Context, args []string) string {
		return Calc(c, args, "")
	})
	eager("var", "Custom property reference.", func(_ *cell.Context, args []string) string {
		return "var(" + strings.Join(args, ",") + ")"
	})
}
