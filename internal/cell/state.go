package cell

import (
	"strconv"

	"bennypowers.dev/cssdoodle/internal/collections"
)

// Key addresses per-call-site state.
type Key struct {
	Name      string
	Site      int
	Signature int
}

// State is the arena of values that persist between cells during one
// compile: pick counters, shuffled lists, noise offsets, plotted points.
type State struct {
	values map[Key]any

	LastPick *Stack
	LastRand *Stack
	// LastPickArgs are the arguments of the most recent pick, reused by an
	// argument-less @p.
	LastPickArgs []string

	signature int
	ids       map[string]int
	uniforms  *collections.OrderedSet[string]
}

func NewState() *State {
	return &State{
		values:   map[Key]any{},
		LastPick: NewStack(stackLimit),
		LastRand: NewStack(stackLimit),
		ids:      map[string]int{},
		uniforms: collections.NewOrderedSet[string](),
	}
}

// UseUniform records that a value read the named uniform
// (time, width, height, mousex or mousey).
func (s *State) UseUniform(name string) {
	s.uniforms.Add(name)
}

// Uniforms lists the uniforms read so far, in first-use order.
func (s *State) Uniforms() []string {
	return s.uniforms.Members()
}

// UsesUniform reports whether the named uniform was read.
func (s *State) UsesUniform(name string) bool {
	return s.uniforms.Has(name)
}

// Load returns the value stored under k, creating it with init first.
func Load[T any](s *State, k Key, init func() T) T {
	if v, ok := s.values[k].(T); ok {
		return v
	}
	v := init()
	s.values[k] = v
	return v
}

// Store replaces the value under k.
func Store[T any](s *State, k Key, v T) {
	s.values[k] = v
}

// NextSignature returns a new sequence signature.
func (s *State) NextSignature() int {
	s.signature++
	return s.signature
}

// NextID returns prefix-1, prefix-2, ... in call order.
func (s *State) NextID(prefix string) string {
	s.ids[prefix]++
	return prefix + "-" + strconv.Itoa(s.ids[prefix])
}

const stackLimit = 1024

// Stack keeps the most recent values up to a limit.
type Stack struct {
	limit int
	items []string
}

func NewStack(limit int) *Stack {
	return &Stack{limit: limit}
}

// Push appends v, dropping the oldest value beyond the limit.
func (s *Stack) Push(v string) string {
	if len(s.items) >= s.limit {
		s.items = s.items[1:]
	}
	s.items = append(s.items, v)
	return v
}

// Last returns the n-th most recent value; n past the oldest value returns
// the oldest. An empty stack gives "".
func (s *Stack) Last(n int) string {
	if len(s.items) == 0 {
		return ""
	}
	n = max(n, 1)
	i := len(s.items) - n
	if i < 0 {
		i = 0
	}
	return s.items[i]
}

func (s *Stack) Len() int {
	return len(s.items)
}
