package dice

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

// ErrSequenceExhausted indicates a SequenceGenerator ran out of values.
var ErrSequenceExhausted = errors.New("sequence generator exhausted")

// Generator produces raw die results.
//
// Generate must return exactly quantity values, each in [1, sides].
// Implementations used from several goroutines must be safe for
// concurrent use; the evaluators never share one across calls themselves.
type Generator interface {
	Generate(quantity, sides int) ([]int, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(quantity, sides int) ([]int, error)

// Generate calls f(quantity, sides).
func (f GeneratorFunc) Generate(quantity, sides int) ([]int, error) {
	return f(quantity, sides)
}

// RandomGenerator rolls dice with a seeded math/rand source.
//
// The same seed yields the same sequence of results. A RandomGenerator is
// safe for concurrent use.
type RandomGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomGenerator returns a generator seeded with seed.
func NewRandomGenerator(seed int64) *RandomGenerator {
	return &RandomGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate rolls quantity dice with the given number of sides.
func (g *RandomGenerator) Generate(quantity, sides int) ([]int, error) {
	if quantity < 0 || sides < 1 {
		return nil, fmt.Errorf("%w: %dd%d", ErrInvalidDice, quantity, sides)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	results := make([]int, quantity)
	for i := range results {
		results[i] = g.rng.Intn(sides) + 1
	}
	return results, nil
}

// SequenceGenerator replays a fixed list of values in order, regardless of
// the number of sides requested. It is meant for tests and replays.
type SequenceGenerator struct {
	mu     sync.Mutex
	values []int
	next   int
	cycle  bool
}

// NewSequenceGenerator returns a generator that fails once values run out.
func NewSequenceGenerator(values ...int) *SequenceGenerator {
	return &SequenceGenerator{values: append([]int(nil), values...)}
}

// NewCyclingGenerator returns a generator that starts over from the first
// value once values run out.
func NewCyclingGenerator(values ...int) *SequenceGenerator {
	g := NewSequenceGenerator(values...)
	g.cycle = len(values) > 0
	return g
}

// Generate returns the next quantity values of the sequence.
func (g *SequenceGenerator) Generate(quantity, sides int) ([]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	results := make([]int, 0, quantity)
	for len(results) < quantity {
		if g.next >= len(g.values) {
			if !g.cycle {
				return nil, fmt.Errorf("%w after %d values", ErrSequenceExhausted, len(g.values))
			}
			g.next = 0
		}
		results = append(results, g.values[g.next])
		g.next++
	}
	return results, nil
}

// Remaining returns how many values are left before the sequence is
// exhausted. Cycling generators always report the full length.
func (g *SequenceGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cycle {
		return len(g.values)
	}
	return len(g.values) - g.next
}
