package collections

import (
	"cmp"
	"fmt"
	"slices"
)

// Set is a generic set backed by a map with zero-size values
type Set[T comparable] map[T]struct{}

// NewSet creates a Set holding vs
func NewSet[T comparable](vs ...T) Set[T] {
	s := Set[T]{}
	s.Add(vs...)
	return s
}

func (s Set[T]) Add(vs ...T) {
	for _, v := range vs {
		s[v] = struct{}{}
	}
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Members returns the values in unspecified order
func (s Set[T]) Members() []T {
	r := make([]T, 0, len(s))
	for v := range s {
		r = append(r, v)
	}
	return r
}

func (s Set[T]) String() string {
	return fmt.Sprintf("%v", s.Members())
}

// Sorted returns the members of an ordered set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	r := s.Members()
	slices.Sort(r)
	return r
}

// OrderedSet remembers insertion order. Keyframe registration and
// animation-name suffixes rely on first-seen order for stable output.
type OrderedSet[T comparable] struct {
	seen  Set[T]
	order []T
}

func NewOrderedSet[T comparable](vs ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{seen: Set[T]{}}
	s.Add(vs...)
	return s
}

// Add appends values not already present and reports whether any were new.
func (s *OrderedSet[T]) Add(vs ...T) bool {
	added := false
	for _, v := range vs {
		if s.seen.Has(v) {
			continue
		}
		s.seen.Add(v)
		s.order = append(s.order, v)
		added = true
	}
	return added
}

func (s *OrderedSet[T]) Has(v T) bool {
	return s.seen.Has(v)
}

func (s *OrderedSet[T]) Len() int {
	return len(s.order)
}

// Members returns the values in insertion order
func (s *OrderedSet[T]) Members() []T {
	return slices.Clone(s.order)
}
