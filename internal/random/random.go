// Package random provides the seeded generator shared by one compile run.
// Identical seeds produce identical sequences on every platform.
package random

import (
	"math/rand/v2"
	"strconv"

	"bennypowers.dev/cssdoodle/internal/num"
)

// Hash is the 53-bit cyrb53 string hash.
func Hash(s string, seed uint32) uint64 {
	h1 := uint32(0xdeadbeef) ^ seed
	h2 := uint32(0x41c6ce57) ^ seed
	for _, ch := range utf16Units(s) {
		h1 = (h1 ^ uint32(ch)) * 2654435761
		h2 = (h2 ^ uint32(ch)) * 1597334677
	}
	h1 = ((h1 ^ (h1 >> 16)) * 2246822507) ^ ((h2 ^ (h2 >> 13)) * 3266489909)
	h2 = ((h2 ^ (h2 >> 16)) * 2246822507) ^ ((h1 ^ (h1 >> 13)) * 3266489909)
	return 4294967296*uint64(2097151&h2) + uint64(h1)
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			units = append(units, uint16(0xd800+(r>>10)), uint16(0xdc00+(r&0x3ff)))
			continue
		}
		units = append(units, uint16(r))
	}
	return units
}

// Generator is a seeded source of floats in [0, 1).
type Generator struct {
	seed string
	rng  *rand.Rand
}

// New creates a generator for seed. The seed string is hashed, so any
// text works as a seed.
func New(seed string) *Generator {
	h := Hash(seed, 0)
	return &Generator{
		seed: seed,
		rng:  rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15)),
	}
}

// NewFromNumber seeds with the decimal form of n.
func NewFromNumber(n int64) *Generator {
	return New(strconv.FormatInt(n, 10))
}

func (g *Generator) Seed() string {
	return g.seed
}

func (g *Generator) Float() float64 {
	return g.rng.Float64()
}

// Between returns a value in [start, end).
func (g *Generator) Between(start, end float64) float64 {
	return num.Lerp(g.Float(), start, end)
}

// Index returns an index in [0, n). n <= 0 returns 0.
func (g *Generator) Index(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.Float() * float64(n))
}

// Pick returns a random element, or the zero value of an empty slice.
func Pick[T any](g *Generator, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[g.Index(len(items))]
}

// Shuffle returns a shuffled copy of items.
func Shuffle[T any](g *Generator, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for m := len(out); m > 0; {
		i := g.Index(m)
		m--
		out[m], out[i] = out[i], out[m]
	}
	return out
}
