// Package composer compiles doodle source into per-cell stylesheets.
//
// A compile parses the source once, resolves the seed and the grid in a
// pre-pass, then walks the tree once per cell. Declarations collect in
// selector buckets that are rendered after the last cell.
package composer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/parser"
	"bennypowers.dev/cssdoodle/internal/pattern"
	"bennypowers.dev/cssdoodle/internal/random"
	"bennypowers.dev/cssdoodle/internal/shader"
	"bennypowers.dev/cssdoodle/internal/sublang"
)

// Options configure one compile.
type Options struct {
	// Grid is the size directive used when the source declares none.
	Grid string
	// Seed makes random values reproducible. Without a seed in the
	// options or the source, the clock seeds the compile unless Random
	// carries a generator forward.
	Seed string
	// Experimental raises the per-axis grid limit.
	Experimental bool
	// Variables are custom properties defined outside the source, keyed
	// with their leading "--". They are visible to var references, $()
	// expressions and @use.
	Variables map[string]string
	// Random continues the generator of an earlier compile.
	Random *random.Generator
}

// MaxGrid is the per-axis grid limit for the options.
func (o Options) MaxGrid() int {
	if o.Experimental {
		return grid.MaxExperimental
	}
	return grid.MaxDefault
}

// Styles is the generated stylesheet, split by scope.
type Styles struct {
	// Main holds keyframes, host and container rules.
	Main  string `json:"main"`
	Cells string `json:"cells"`
	All   string `json:"all"`
}

// Uniforms report which host-driven values the styles read.
type Uniforms struct {
	Time   bool `json:"time,omitempty"`
	MouseX bool `json:"mousex,omitempty"`
	MouseY bool `json:"mousey,omitempty"`
	Width  bool `json:"width,omitempty"`
	Height bool `json:"height,omitempty"`
}

// Props report style features the host reacts to when it rebuilds.
type Props struct {
	HasAnimation  bool `json:"has_animation,omitempty"`
	HasTransition bool `json:"has_transition,omitempty"`
}

// Doodle is a nested doodle referenced by a ${doodle-N} placeholder.
type Doodle struct {
	Source string `json:"doodle"`
	// Arg is an optional size for the rendered image, "WxH".
	Arg string `json:"arg,omitempty"`
}

// Asset is an embedded shader or pattern. The host draws Program and
// publishes the image in the Var custom property of Cell.
type Asset struct {
	Var     string `json:"id"`
	Cell    string `json:"cell"`
	Source  string `json:"code"`
	Program string `json:"program,omitempty"`
}

// Result is the output of a compile.
type Result struct {
	Styles   Styles    `json:"styles"`
	Grid     grid.Grid `json:"grid"`
	// GridSet reports that the source declared its own grid.
	GridSet  bool              `json:"gridSet,omitempty"`
	Seed     string            `json:"seed"`
	Doodles  map[string]Doodle `json:"doodles,omitempty"`
	Shaders  map[string]Asset  `json:"shaders,omitempty"`
	Pattern  map[string]Asset  `json:"pattern,omitempty"`
	Uniforms Uniforms          `json:"uniforms"`
	// Content maps cell selectors to @content text.
	Content map[string]string `json:"content,omitempty"`
	// Variables are the custom properties declared per scope: "host",
	// "container" or a cell count.
	Variables   map[string]map[string]string `json:"variables,omitempty"`
	Props       Props                        `json:"props"`
	Diagnostics []parser.Diagnostic          `json:"diagnostics,omitempty"`
	// Random is the generator after the compile, for Options.Random.
	Random *random.Generator `json:"-"`
}

// Compiler compiles doodles. The zero value is not usable; see New.
type Compiler struct {
	Shaders sublang.Language
	Pattern sublang.Language
}

// New returns a compiler with the default shader and pattern languages.
func New() *Compiler {
	return &Compiler{
		Shaders: shader.Language{},
		Pattern: pattern.Language{},
	}
}

// Compile compiles source. It fails only when ctx is done; problems in
// the source are reported in Result.Diagnostics.
func (cp *Compiler) Compile(ctx context.Context, source string, opts Options) (*Result, error) {
	parsed := parser.Parse(source, parser.Options{Variables: opts.Variables})
	r := newRun(cp, parsed, opts)

	size := grid.Parse(opts.Grid, opts.MaxGrid())
	seed := r.preCompose()
	if r.grid != nil {
		size = *r.grid
	}

	var gen *random.Generator
	switch {
	case seed != "":
		gen = random.New(seed)
	case opts.Random != nil:
		gen = opts.Random
		seed = opts.Seed
		if seed == "" {
			seed = gen.Seed()
		}
	case opts.Seed != "":
		seed = opts.Seed
		gen = random.New(seed)
	default:
		seed = strconv.FormatInt(time.Now().UnixMilli(), 10)
		gen = random.New(seed)
	}
	r.begin(seed, gen)
	log.Debug("compile %dx%dx%d grid, seed %s", size.X, size.Y, size.Z, seed)

	count := 0
	visit := func(x, y, z int) error {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("compile: %w", err)
		}
		count++
		r.compose(r.cell(x, y, z, count, size), parsed.Nodes)
		return nil
	}
	if size.Z == 1 {
		for y := 1; y <= size.Y; y++ {
			for x := 1; x <= size.X; x++ {
				if err := visit(x, y, 1); err != nil {
					return nil, err
				}
			}
		}
	} else {
		for z := 1; z <= size.Z; z++ {
			if err := visit(1, 1, z); err != nil {
				return nil, err
			}
		}
	}
	return r.output(size), nil
}

// Compile compiles source with the default compiler.
func Compile(ctx context.Context, source string, opts Options) (*Result, error) {
	return New().Compile(ctx, source, opts)
}

func newEvaluator(gen *random.Generator) *calc.Evaluator {
	ev := calc.NewEvaluator()
	ev.Random = gen.Float
	return ev
}

func (r *run) cell(x, y, z, count int, g grid.Grid) *cell.Context {
	c := cell.New(x, y, z, count, g, r.gen, r.state)
	c.Calc = r.calc
	c.MaxGrid = r.opts.MaxGrid()
	c.Seed = r.seed
	c.Placeholder = r.placeholder
	r.cells = append(r.cells, c)
	return c
}
