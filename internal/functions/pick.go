package functions

import (
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/random"
)

// expandRanges replaces "[a-z]" style arguments with the characters they
// span. "[z-a]" runs backwards.
func expandRanges(args []string) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a, "[") {
			out = append(out, charRange(a)...)
			continue
		}
		out = append(out, a)
	}
	return out
}

func charRange(input string) []string {
	if !strings.HasPrefix(input, "[") || !strings.HasSuffix(input, "]") || len(input) < 2 {
		return nil
	}
	chars := []rune(input[1 : len(input)-1])
	var out []string
	var stack []rune
	for i, c := range chars {
		if c == '-' && i > 0 && chars[i-1] == '-' {
			continue
		}
		if c == '-' {
			stack = append(stack, c)
			continue
		}
		if len(stack) > 0 && stack[len(stack)-1] == '-' {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				out = append(out, string(c))
				continue
			}
			from := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			out = append(out, runeRange(from, c)...)
			continue
		}
		if len(stack) > 0 {
			out = append(out, string(stack[len(stack)-1]))
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, c)
	}
	if len(stack) > 0 {
		out = append(out, string(stack[len(stack)-1]))
	}
	return out
}

func runeRange(from, to rune) []string {
	reverse := from > to
	if reverse {
		from, to = to, from
	}
	var out []string
	for r := from; r <= to; r++ {
		out = append(out, string(r))
	}
	if reverse {
		slices.Reverse(out)
	}
	return out
}

// cycleIndex is the 0-based position of the current turn: the sequence
// step inside @m, or a counter shared by every cell otherwise.
func cycleIndex(c *cell.Context, name string, n int) int {
	key := cell.Key{Name: name, Site: c.Site, Signature: c.Signature()}
	counter := cell.Load(c.State, key, func() *int { return new(int) })
	*counter++
	idx := *counter
	if e := c.Extra(); e != nil {
		idx = e.Index
	}
	return (idx - 1) % n
}

func lastN(args []string) int {
	if len(args) == 0 {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 1
	}
	return n
}

func init() {
	eager("p", "Pick a random value.", func(c *cell.Context, args []string) string {
		args = expandRanges(args)
		if len(args) == 0 {
			args = c.State.LastPickArgs
		}
		c.State.LastPickArgs = args
		return c.State.LastPick.Push(random.Pick(c.Random, args))
	})

	eager("P", "Pick a random value different from the previous pick.", func(c *cell.Context, args []string) string {
		args = expandRanges(args)
		normal := len(args) > 0
		if !normal {
			args = c.State.LastPickArgs
		}
		key := cell.Key{Name: "P", Site: c.Site, Signature: c.Signature()}
		last := c.State.LastPick.Last(1)
		previous := cell.Load(c.State, key, func() *string { return new(string) })
		if normal {
			last = *previous
		}
		if len(args) > 1 {
			if i := slices.Index(args, last); i >= 0 {
				args = slices.Delete(slices.Clone(args), i, i+1)
			}
		}
		picked := random.Pick(c.Random, args)
		c.State.LastPickArgs = args
		if normal {
			*previous = picked
		}
		return c.State.LastPick.Push(picked)
	})

	eager("pl", "Pick values in turn.", func(c *cell.Context, args []string) string {
		args = expandRanges(args)
		if len(args) == 0 {
			return ""
		}
		return c.State.LastPick.Push(args[cycleIndex(c, "pl", len(args))])
	})

	eager("pr", "Pick values in turn, starting from the end.", func(c *cell.Context, args []string) string {
		args = expandRanges(args)
		if len(args) == 0 {
			return ""
		}
		pos := cycleIndex(c, "pr", len(args))
		return c.State.LastPick.Push(args[len(args)-pos-1])
	})

	eager("pd", "Pick values in turn from a shuffled list.", func(c *cell.Context, args []string) string {
		args = expandRanges(args)
		if len(args) == 0 {
			return ""
		}
		key := cell.Key{Name: "pd-values", Site: c.Site, Signature: c.Signature()}
		values := cell.Load(c.State, key, func() []string {
			return random.Shuffle(c.Random, args)
		})
		pos := cycleIndex(c, "pd", len(args))
		if pos >= len(values) {
			return ""
		}
		return c.State.LastPick.Push(values[pos])
	})

	eager("lp", "A previous pick; 1 is the latest.", func(c *cell.Context, args []string) string {
		return c.State.LastPick.Last(lastN(args))
	})
}
