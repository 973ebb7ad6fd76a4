package dicebag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
	"github.com/chosenoffset/dicebag/pkg/dicebag/metrics"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

// BenchmarkEngineCreation benchmarks the time it takes to create a new engine
func BenchmarkEngineCreation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		engine := NewEngine()
		_ = engine
	}
}

// BenchmarkParse benchmarks parsing a typical character-sheet notation
func BenchmarkParse(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := parser.Parse("4d6kh3 + 1d20 - 2"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEvaluate benchmarks arithmetic evaluation of a parsed tree
func BenchmarkEvaluate(b *testing.B) {
	expr, err := parser.Parse("4d6kh3 + 1d20 - 2")
	if err != nil {
		b.Fatal(err)
	}
	evaluator := NewEvaluator(dice.NewRandomGenerator(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := evaluator.Eval(expr); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRoll benchmarks a full simulated roll with history
func BenchmarkRoll(b *testing.B) {
	expr, err := parser.Parse("4d6kh3 + 1d20 - 2")
	if err != nil {
		b.Fatal(err)
	}
	roller := NewRoller(dice.NewRandomGenerator(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := roller.Roll(expr); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEngineRoll benchmarks the engine path: limits, roll, collector
// and action dispatch
func BenchmarkEngineRoll(b *testing.B) {
	engine := NewEngine(
		WithGenerator(dice.NewRandomGenerator(1)),
		WithCollector(metrics.NewRollCollector(100)),
	)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Roll("4d6kh3 + 1d20 - 2"); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConcurrentRolls benchmarks one engine shared by many goroutines
func BenchmarkConcurrentRolls(b *testing.B) {
	engine := NewEngine(WithGenerator(dice.NewRandomGenerator(1)))

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := engine.Roll("3d6 + 2"); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// BenchmarkQuantity benchmarks resolution cost as the dice count grows
func BenchmarkQuantity(b *testing.B) {
	for _, quantity := range []int{1, 10, 100, 1000} {
		d := dice.KeepHighest(quantity, 6, quantity/2+1)
		gen := dice.NewRandomGenerator(1)
		b.Run(fmt.Sprintf("%dd6", quantity), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := dice.Resolve(d, gen); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkExpressionLength benchmarks parse-and-roll as terms are added
func BenchmarkExpressionLength(b *testing.B) {
	for _, terms := range []int{1, 8, 32} {
		notation := strings.TrimSuffix(strings.Repeat("1d6+", terms), "+")
		engine := NewEngine(WithGenerator(dice.NewRandomGenerator(1)))
		b.Run(fmt.Sprintf("terms_%d", terms), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := engine.Roll(notation); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
