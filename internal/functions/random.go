package functions

import (
	"math"
	"regexp"

	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/noise"
	"bennypowers.dev/cssdoodle/internal/num"
	"bennypowers.dev/cssdoodle/internal/random"
)

var letter = regexp.MustCompile(`^[a-zA-Z]$`)

func allLetters(args []string) bool {
	for _, a := range args {
		if !letter.MatchString(a) {
			return false
		}
	}
	return true
}

// byUnit applies fn to the numbers of args and suffixes the first unit.
// ok is false when no argument is numeric.
func byUnit(args []string, fn func(values []float64) float64) (string, bool) {
	var values []float64
	var unit string
	var hasUnit bool
	for _, a := range args {
		v := num.ParseUnit(a)
		if !v.Valid {
			continue
		}
		values = append(values, v.Number)
		if v.HasUnit && !hasUnit {
			unit, hasUnit = v.Unit, true
		}
	}
	if len(values) == 0 {
		return "", false
	}
	return num.Format(fn(values)) + unit, true
}

// byCharCode applies fn to the character codes of single letters.
func byCharCode(args []string, fn func(values []float64) float64) string {
	codes := make([]float64, len(args))
	for i, a := range args {
		codes[i] = float64([]rune(a)[0])
	}
	return string(rune(int(fn(codes))))
}

// between maps a random number onto [0, a) for one value and [a, b) for two.
func between(c *cell.Context) func(values []float64) float64 {
	return func(values []float64) float64 {
		start, end := 0.0, values[0]
		if len(values) > 1 {
			start, end = values[0], values[1]
		}
		return c.Rand(start, end)
	}
}

type noiseField struct {
	perlin           *noise.Perlin
	offsetX, offsetY float64
}

func init() {
	eager("r", "Random number in a range.", func(c *cell.Context, args []string) string {
		if len(args) == 0 {
			return ""
		}
		var value string
		if allLetters(args) {
			value = byCharCode(args, between(c))
		} else if v, ok := byUnit(args, between(c)); ok {
			value = v
		} else {
			value = random.Pick(c.Random, args)
		}
		return c.State.LastRand.Push(value)
	})

	eager("rn", "Perlin noise across the grid.", func(c *cell.Context, args []string) string {
		named := list.NamedArguments(args, []string{"from", "to", "frequency", "scale", "octave"})
		from, ok := named["from"]
		if !ok {
			from = "0"
		}
		to, ok := named["to"]
		if !ok {
			to = from
		}
		if len(args) == 1 {
			from, to = "0", from
		}
		frequency := namedNumber(named, "frequency", 1, 0, math.Inf(1))
		scale := namedNumber(named, "scale", 1, 0, math.Inf(1))
		octave := int(namedNumber(named, "octave", 1, 1, 100))

		field := cell.Load(c.State, cell.Key{Name: "rn", Site: c.Site}, func() *noiseField {
			return &noiseField{
				perlin:  noise.NewPerlin(),
				offsetX: c.Random.Float(),
				offsetY: c.Random.Float(),
			}
		})

		e := c.Extra()
		inSequence := e != nil && e.N != 0 && e.Max != 0
		var x, y float64
		if inSequence {
			x = float64(e.NX-1)/float64(e.Width) + field.offsetX
			y = float64(e.NY-1)/float64(e.Height) + field.offsetY
		} else {
			x = float64(c.X-1)/float64(c.Grid.X) + field.offsetX
			y = float64(c.Y-1)/float64(c.Grid.Y) + field.offsetY
		}
		if (inSequence && e.Width <= 1) || c.Grid.X <= 1 {
			x = 0
		}
		if (inSequence && e.Height <= 1) || c.Grid.Y <= 1 {
			y = 0
		}
		if x == 0 && y == 0 {
			x, y = field.offsetX, field.offsetY
		}

		t := field.perlin.Noise(x*frequency, y*frequency, 0) * scale
		for i := 1; i < octave; i++ {
			i2 := float64(i * 2)
			t += field.perlin.Noise(x*frequency*i2, y*frequency*i2, 0) * (scale / i2)
		}
		mapped := func(values []float64) float64 {
			lo, hi := values[0], values[0]
			if len(values) > 1 {
				hi = values[1]
			}
			return noise.Map2D(t, lo, hi, scale)
		}

		var value string
		if letter.MatchString(from) && letter.MatchString(to) {
			value = byCharCode([]string{from, to}, mapped)
		} else {
			value, _ = byUnit([]string{from, to}, mapped)
		}
		return c.State.LastRand.Push(value)
	})

	eager("lr", "A previous random value; 1 is the latest.", func(c *cell.Context, args []string) string {
		return c.State.LastRand.Last(lastN(args))
	})
}

func namedNumber(named map[string]string, name string, fallback, lo, hi float64) float64 {
	s, ok := named[name]
	if !ok {
		return fallback
	}
	v, _ := num.Parse(s)
	return num.Clamp(v, lo, hi)
}
