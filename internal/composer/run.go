package composer

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"bennypowers.dev/cssdoodle/internal/calc"
	"bennypowers.dev/cssdoodle/internal/cell"
	"bennypowers.dev/cssdoodle/internal/collections"
	"bennypowers.dev/cssdoodle/internal/functions"
	"bennypowers.dev/cssdoodle/internal/grid"
	"bennypowers.dev/cssdoodle/internal/list"
	"bennypowers.dev/cssdoodle/internal/log"
	"bennypowers.dev/cssdoodle/internal/parser"
	"bennypowers.dev/cssdoodle/internal/random"
	"bennypowers.dev/cssdoodle/internal/sublang"
)

// buckets are declaration lists keyed by selector, in first-use order.
type buckets struct {
	order []string
	rules map[string][]string
}

func (b *buckets) add(selector string, decls ...string) {
	if b.rules == nil {
		b.rules = map[string][]string{}
	}
	if _, ok := b.rules[selector]; !ok {
		b.order = append(b.order, selector)
		b.rules[selector] = []string{}
	}
	for _, d := range decls {
		if d != "" {
			b.rules[selector] = append(b.rules[selector], d)
		}
	}
}

// run is the state of one compile.
type run struct {
	cp     *Compiler
	opts   Options
	nodes  []parser.Node
	diags  []parser.Diagnostic
	lastID int

	seed  string
	gen   *random.Generator
	calc  *calc.Evaluator
	state *cell.State
	cells []*cell.Context

	grid    *grid.Grid
	gridSet bool
	gapSet  bool

	rules     buckets
	keyframes []*parser.Keyframes
	// composed marks host and container blocks, which compose once.
	composed map[*parser.Block]bool
	// suffixed are the cell counts whose animation names were suffixed.
	suffixed collections.Set[int]
	vars     map[string]map[string]string
	spliced  map[string][]parser.Node

	doodles map[string]Doodle
	shaders map[string]Asset
	pattern map[string]Asset
	content map[string]string
	props   Props
}

func newRun(cp *Compiler, parsed *parser.Result, opts Options) *run {
	return &run{
		cp:       cp,
		opts:     opts,
		nodes:    parsed.Nodes,
		diags:    parsed.Diagnostics,
		lastID:   parsed.LastSite,
		composed: map[*parser.Block]bool{},
		suffixed: collections.NewSet[int](),
		vars:     map[string]map[string]string{},
		spliced:  map[string][]parser.Node{},
		doodles:  map[string]Doodle{},
		shaders:  map[string]Asset{},
		pattern:  map[string]Asset{},
		content:  map[string]string{},
	}
}

// begin resets the per-cell state once the seed is known.
func (r *run) begin(seed string, gen *random.Generator) {
	r.seed = seed
	r.gen = gen
	r.calc = newEvaluator(gen)
	r.state = cell.NewState()
	clear(r.doodles)
	clear(r.shaders)
	clear(r.pattern)
}

func (r *run) placeholder(id string) (string, bool) {
	d, ok := r.doodles[id]
	return d.Source, ok
}

// variables merges the custom properties visible to a cell: external
// values, then host, container and cell declarations, then the
// variables of the value being composed.
func (r *run) variables(count int, scope map[string]string) map[string]string {
	merged := maps.Clone(r.opts.Variables)
	if merged == nil {
		merged = map[string]string{}
	}
	for _, key := range []string{"host", "container", strconv.Itoa(count)} {
		maps.Copy(merged, r.vars[key])
	}
	maps.Copy(merged, scope)
	return merged
}

func (r *run) declare(key, name, value string) {
	if r.vars[key] == nil {
		r.vars[key] = map[string]string{}
	}
	r.vars[key][name] = value
}

// readVar replaces a custom property name with its value, without one
// pair of wrapping parentheses and trailing semicolons.
func (r *run) readVar(c *cell.Context, name string, scope map[string]string) string {
	value, ok := r.variables(c.Count, scope)[name]
	if !ok {
		return name
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && value[0] == '(' && value[len(value)-1] == ')' {
		value = value[1 : len(value)-1]
	}
	return strings.TrimRight(value, ";")
}

var varName = regexp.MustCompile(`^--\w`)

// argument composes one call argument. A clustered argument is passed
// to the builtin whole; others are split on commas.
func (r *run) argument(c *cell.Context, arg parser.Argument, parent string, scope map[string]string) (string, bool) {
	var b strings.Builder
	for _, f := range arg.Fragments {
		switch f := f.(type) {
		case *parser.Text:
			if varName.MatchString(f.Value) && parent != "var" {
				b.WriteString(r.readVar(c, f.Value, scope))
			} else {
				b.WriteString(f.Value)
			}
		case *parser.Call:
			b.WriteString(r.call(c, f, scope))
		}
	}
	return b.String(), arg.Cluster
}

// arguments evaluates args for an eager builtin or a selector.
func (r *run) arguments(c *cell.Context, args []parser.Argument, parent string, scope map[string]string) []string {
	var input []string
	for _, a := range args {
		value, cluster := r.argument(c, a, parent, scope)
		if cluster {
			input = append(input, value)
			continue
		}
		input = append(input, list.Split(value, list.Options{NoSpace: true})...)
	}
	return slices.DeleteFunc(input, func(s string) bool {
		return strings.TrimSpace(s) == ""
	})
}

var composable = map[string]string{
	"doodle":  "doodle",
	"shaders": "shaders",
	"shader":  "shaders",
	"pattern": "pattern",
}

// call evaluates a builtin call. Unknown names stay as written.
func (r *run) call(c *cell.Context, call *parser.Call, scope map[string]string) string {
	if kind, ok := composable[call.Name]; ok {
		return r.embed(c, kind, call)
	}
	b, ok := functions.Lookup(call.Name)
	if !ok {
		return call.Source
	}
	if scope == nil {
		scope = map[string]string{}
	}
	for _, v := range call.Variables {
		scope[v.Name] = r.groups(c, v.Value, scope)
	}

	if b.IsLazy() {
		thunks := make([]functions.Thunk, len(call.Args))
		for i, arg := range call.Args {
			thunks[i] = func(extra *cell.Extra) string {
				site := c.Site
				defer func() { c.Site = site }()
				if extra != nil {
					c.PushExtra(extra)
					defer c.PopExtra()
				}
				value, _ := r.argument(c, arg, call.Name, scope)
				return value
			}
		}
		c.Site = call.Site
		return b.Lazy(c, thunks)
	}

	input := r.arguments(c, call.Args, call.Name, scope)
	c.Site = call.Site
	if unit, ok := strings.CutPrefix(call.Name, "$"); ok {
		saved := c.Variables
		c.Variables = r.variables(c.Count, scope)
		defer func() { c.Variables = saved }()
		return functions.Calc(c, input, unit)
	}
	return b.Eager(c, input)
}

// embed records a nested doodle, shader or pattern and returns its
// placeholder.
func (r *run) embed(c *cell.Context, kind string, call *parser.Call) string {
	var source strings.Builder
	if len(call.Args) > 0 {
		for _, f := range call.Args[0].Fragments {
			if t, ok := f.(*parser.Text); ok {
				source.WriteString(t.Value)
			}
		}
	}
	value := strings.TrimSpace(source.String())
	cellID := c.ID()

	switch kind {
	case "doodle":
		var arg string
		if value != "" && value[0] >= '0' && value[0] <= '9' {
			if size, rest, ok := strings.Cut(value, ","); ok {
				arg, value = strings.TrimSpace(size), strings.TrimSpace(rest)
			}
		}
		id := r.state.NextID("doodle")
		r.doodles[id] = Doodle{Source: r.injectVariables(value, c.Count), Arg: arg}
		return "${" + id + "}"
	case "shaders":
		id := r.state.NextID("shader")
		r.shaders[id] = Asset{Var: "--" + id, Cell: cellID, Source: value, Program: r.render(r.cp.Shaders, value)}
		return "${" + id + "}"
	default:
		id := r.state.NextID("pattern")
		r.pattern[id] = Asset{Var: "--" + id, Cell: cellID, Source: value, Program: r.render(r.cp.Pattern, value)}
		return "${" + id + "}"
	}
}

func (r *run) render(l sublang.Language, source string) string {
	if l == nil {
		return ""
	}
	out, err := sublang.Run(l, source)
	if err != nil {
		log.Debug("%v", err)
		return ""
	}
	return out
}

// injectVariables passes the custom properties of a cell on to a nested
// doodle.
func (r *run) injectVariables(source string, count int) string {
	merged := map[string]string{}
	for _, key := range []string{"host", "container", strconv.Itoa(count)} {
		maps.Copy(merged, r.vars[key])
	}
	if len(merged) == 0 {
		return source
	}
	var b strings.Builder
	b.WriteString(":doodle {")
	for _, name := range slices.Sorted(maps.Keys(merged)) {
		b.WriteString(name + ": " + merged[name] + ";")
	}
	b.WriteString("}")
	return b.String() + source
}

// value composes one comma group of a declaration.
func (r *run) value(c *cell.Context, g parser.Group, scope map[string]string) string {
	var b strings.Builder
	for _, f := range g {
		switch f := f.(type) {
		case *parser.Text:
			b.WriteString(f.Value)
		case *parser.Call:
			b.WriteString(r.call(c, f, scope))
		}
	}
	return b.String()
}

// parts composes every group of a value, dropping empty results.
func (r *run) parts(c *cell.Context, groups []parser.Group, scope map[string]string) []string {
	var out []string
	for _, g := range groups {
		s := scope
		if s == nil {
			s = map[string]string{}
		}
		if v := r.value(c, g, s); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (r *run) groups(c *cell.Context, groups []parser.Group, scope map[string]string) string {
	return strings.Join(r.parts(c, groups, scope), ",")
}

// splice parses the value of a custom property named by @use. Parses are
// kept for the compile so that call sites stay stable between cells.
func (r *run) splice(source string) []parser.Node {
	if nodes, ok := r.spliced[source]; ok {
		return nodes
	}
	res := parser.Parse(source, parser.Options{Variables: r.opts.Variables, FirstSite: r.lastID})
	r.lastID = res.LastSite
	r.diags = append(r.diags, res.Diagnostics...)
	r.spliced[source] = res.Nodes
	return res.Nodes
}

// use resolves an @use left for the composer: its variables were not
// declared in the source, so they may come from composed declarations.
func (r *run) use(c *cell.Context, u *parser.Use) []parser.Node {
	vars := r.variables(c.Count, nil)
	for _, name := range u.Names {
		if v := vars[name]; strings.TrimSpace(v) != "" {
			return r.splice(parser.StripBlock(v))
		}
	}
	return nil
}
