package calc

import (
	"math"
	"math/bits"

	"bennypowers.dev/cssdoodle/internal/num"
)

// Func is a numeric function callable from expressions. Missing arguments
// arrive as NaN through arg.
type Func func(args ...float64) float64

func arg(args []float64, i int) float64 {
	if i < len(args) {
		return args[i]
	}
	return math.NaN()
}

func unary(fn func(float64) float64) Func {
	return func(args ...float64) float64 { return fn(arg(args, 0)) }
}

func binary(fn func(a, b float64) float64) Func {
	return func(args ...float64) float64 { return fn(arg(args, 0), arg(args, 1)) }
}

// Constants are the named numbers of the Math namespace.
var Constants = map[string]float64{
	"E":       math.E,
	"LN10":    math.Ln10,
	"LN2":     math.Ln2,
	"LOG10E":  math.Log10E,
	"LOG2E":   math.Log2E,
	"PI":      math.Pi,
	"SQRT1_2": math.Sqrt2 / 2,
	"SQRT2":   math.Sqrt2,
}

// Functions are the Math namespace functions, minus random, which is
// bound per evaluator so results follow the compile seed.
var Functions = map[string]Func{
	"abs":   unary(math.Abs),
	"acos":  unary(math.Acos),
	"acosh": unary(math.Acosh),
	"asin":  unary(math.Asin),
	"asinh": unary(math.Asinh),
	"atan":  unary(math.Atan),
	"atan2": binary(math.Atan2),
	"atanh": unary(math.Atanh),
	"cbrt":  unary(math.Cbrt),
	"ceil":  unary(math.Ceil),
	"clz32": unary(func(x float64) float64 {
		return float64(bits.LeadingZeros32(uint32(num.ToInt32(x))))
	}),
	"cos":    unary(math.Cos),
	"cosh":   unary(math.Cosh),
	"exp":    unary(math.Exp),
	"expm1":  unary(math.Expm1),
	"floor":  unary(math.Floor),
	"fround": unary(func(x float64) float64 { return float64(float32(x)) }),
	"hypot": func(args ...float64) float64 {
		sum := 0.0
		for _, a := range args {
			sum += a * a
		}
		return math.Sqrt(sum)
	},
	"imul": binary(func(a, b float64) float64 {
		return float64(num.ToInt32(a) * num.ToInt32(b))
	}),
	"log":   unary(math.Log),
	"log10": unary(math.Log10),
	"log1p": unary(math.Log1p),
	"log2":  unary(math.Log2),
	"max": func(args ...float64) float64 {
		r := math.Inf(-1)
		for _, a := range args {
			if math.IsNaN(a) {
				return a
			}
			r = math.Max(r, a)
		}
		return r
	},
	"min": func(args ...float64) float64 {
		r := math.Inf(1)
		for _, a := range args {
			if math.IsNaN(a) {
				return a
			}
			r = math.Min(r, a)
		}
		return r
	},
	"pow":   binary(math.Pow),
	"round": unary(Round),
	"sign": unary(func(x float64) float64 {
		switch {
		case math.IsNaN(x), x == 0:
			return x
		case x > 0:
			return 1
		}
		return -1
	}),
	"sin":   unary(math.Sin),
	"sinh":  unary(math.Sinh),
	"sqrt":  unary(math.Sqrt),
	"tan":   unary(math.Tan),
	"tanh":  unary(math.Tanh),
	"trunc": unary(math.Trunc),
}

// Round rounds half up, toward positive infinity.
func Round(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	return math.Floor(x + 0.5)
}

// IsMathName reports whether name is a Math constant or function.
func IsMathName(name string) bool {
	if _, ok := Constants[name]; ok {
		return true
	}
	_, ok := Functions[name]
	return ok || name == "random"
}

func gcd(args ...float64) float64 {
	a, b := arg(args, 0), arg(args, 1)
	for b != 0 && !math.IsNaN(b) {
		a, b = b, math.Mod(a, b)
	}
	return a
}
