// Package grid parses grid-size directives and enumerates sequence counts.
package grid

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/num"
)

const (
	// MaxDefault bounds each axis of a regular grid.
	MaxDefault = 64
	// MaxExperimental bounds each axis when experimental mode is on.
	MaxExperimental = 256
	// MaxSequence bounds a sequence count and the total number of steps.
	MaxSequence = 65536
)

// Grid is a parsed grid size
type Grid struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Z     int     `json:"z"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

var (
	separators = regexp.MustCompile(`[,，xX]+`)
	rangeForm  = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// Parse reads "X", "XxY", "XxYxZ" (commas also separate) or a range
// "A-B" that lays |A-B|+1 cells in a single row. max bounds each axis;
// a one-dimensional grid may grow to max*max cells, and depth is only
// allowed for a 1x1 grid. max <= 0 means unbounded.
func Parse(size string, max int) Grid {
	compact := strings.Join(strings.Fields(size), "")

	limit := math.Inf(1)
	if max > 0 {
		limit = float64(max)
	}
	total := limit * limit

	if m := rangeForm.FindStringSubmatch(compact); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		x := int(num.Clamp(math.Abs(float64(a-b))+1, 1, total))
		return build(x, 1, 1)
	}

	parts := strings.Split(separators.ReplaceAllString(compact, "x"), "x")
	get := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		return parseInt(parts[i])
	}
	x, y, z := get(0), get(1), get(2)

	maxXY := limit
	if x == 1 || y == 1 {
		maxXY = total
	}
	maxZ := 1.0
	if x == 1 && y == 1 {
		maxZ = total
	}

	if y == 0 {
		y = x
	}
	return build(
		int(num.Clamp(float64(or(x, 1)), 1, maxXY)),
		int(num.Clamp(float64(or(y, 1)), 1, maxXY)),
		int(num.Clamp(float64(or(z, 1)), 1, maxZ)),
	)
}

func build(x, y, z int) Grid {
	return Grid{X: x, Y: y, Z: z, Count: x * y * z, Ratio: float64(x) / float64(y)}
}

func or(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

// parseInt reads a leading integer, ignoring anything after it. Returns
// 0 when there is none.
func parseInt(s string) int {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// String renders the grid the way it is written in source.
func (g Grid) String() string {
	if g.Z > 1 {
		return strconv.Itoa(g.X) + "x" + strconv.Itoa(g.Y) + "x" + strconv.Itoa(g.Z)
	}
	return strconv.Itoa(g.X) + "x" + strconv.Itoa(g.Y)
}

// Step is one position in a sequence.
type Step struct {
	// N is the sequence value: the running index, or the current number of a range.
	N int
	// NX and NY are the column and row within an AxB sequence.
	NX, NY int
	// Max is the number of steps.
	Max int
	// Width and Height are the sequence dimensions.
	Width, Height int
	// Index counts steps from 1.
	Index int
}

// Sequence calls fn once per step of count: "N" (1..N), "AxB" (rows of
// A columns) or "A-B" (ascending or descending range).
func Sequence[T any](count string, fn func(Step) T) []T {
	count = strings.TrimSpace(count)
	a, b, _ := strings.Cut(count, "x")
	if !strings.Contains(count, "x") {
		a, b, _ = strings.Cut(count, "-")
	}
	x, y := seqBound(a), seqBound(b)

	var out []T
	index := 1
	emit := func(s Step) bool {
		s.Index = index
		out = append(out, fn(s))
		index++
		return index <= MaxSequence
	}

	switch {
	case strings.Contains(count, "x"):
		max := x * y
		for i := 1; i <= y; i++ {
			for j := 1; j <= x; j++ {
				if !emit(Step{N: index, NX: j, NY: i, Max: max, Width: x, Height: y}) {
					return out
				}
			}
		}
	case strings.Contains(count, "-"):
		max := int(math.Abs(float64(x-y))) + 1
		if x <= y {
			for i := x; i <= y; i++ {
				if !emit(Step{N: i, NX: i, NY: 1, Max: max, Width: max, Height: 1}) {
					return out
				}
			}
		} else {
			for i := x; i >= y; i-- {
				if !emit(Step{N: i, NX: i, NY: 1, Max: max, Width: max, Height: 1}) {
					return out
				}
			}
		}
	default:
		for i := 1; i <= x; i++ {
			if !emit(Step{N: i, NX: i, NY: 1, Max: x, Width: x, Height: 1}) {
				return out
			}
		}
	}
	return out
}

func seqBound(s string) int {
	f, ok := num.Parse(s)
	if !ok {
		return 1
	}
	return int(num.Clamp(math.Ceil(f), 0, MaxSequence))
}
