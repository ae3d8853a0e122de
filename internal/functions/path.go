package functions

import (
	"regexp"
	"strings"

	"bennypowers.dev/cssdoodle/internal/num"
)

const pathCommands = "MmLlHhVvCcSsQqTtAaZz"

type pathCommand struct {
	name   string
	values []float64
}

func (p pathCommand) String() string {
	values := make([]string, len(p.values))
	for i, v := range p.values {
		values[i] = num.Format(v)
	}
	return p.name + strings.Join(values, " ")
}

var pathToken = regexp.MustCompile(`[a-zA-Z]+|[-+]?(?:\d*\.\d+|\d+\.?)(?:[eE][-+]?\d+)?`)

// parsePath reads SVG path data. ok is false for unknown commands or
// numbers before the first command.
func parsePath(input string) ([]pathCommand, bool) {
	var commands []pathCommand
	ok := true
	for _, tok := range pathToken.FindAllString(input, -1) {
		if c := tok[0]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			if len(tok) != 1 || !strings.Contains(pathCommands, tok) {
				ok = false
			}
			commands = append(commands, pathCommand{name: tok})
			continue
		}
		if len(commands) == 0 {
			ok = false
			continue
		}
		v, _ := num.Parse(tok)
		last := &commands[len(commands)-1]
		last.values = append(last.values, v)
	}
	return commands, ok
}

func joinPath(commands []pathCommand) string {
	parts := make([]string, len(commands))
	for i, c := range commands {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// mapPath rewrites every command of valid path data with fn, or returns
// the input unchanged.
func mapPath(input string, fn func(pathCommand) pathCommand) string {
	commands, ok := parsePath(input)
	if !ok {
		return input
	}
	for i, c := range commands {
		commands[i] = fn(c)
	}
	return joinPath(commands)
}

var swapAxis = map[string]string{"v": "h", "V": "H", "h": "v", "H": "V"}

func invertPath(input string) string {
	return mapPath(input, func(c pathCommand) pathCommand {
		if name, ok := swapAxis[c.name]; ok {
			c.name = name
		}
		return c
	})
}

func flipPath(input string, names string) string {
	return mapPath(input, func(c pathCommand) pathCommand {
		if strings.Contains(names, c.name) {
			for i, v := range c.values {
				c.values[i] = -v
			}
		}
		return c
	})
}
