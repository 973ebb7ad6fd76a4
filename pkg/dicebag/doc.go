// Package dicebag parses and rolls tabletop dice notation.
//
// # Overview
//
// A notation is a sum of terms, where each term is an integer constant or
// a dice group such as 3d6, 4d6kh3 (keep highest 3) or 5d10dl1 (drop
// lowest 1). Notations are parsed into an expression tree that can be
// evaluated for a single total or rolled in full, keeping every die face.
//
// # Quick Start
//
//	package main
//
//	import (
//		"fmt"
//
//		"github.com/chosenoffset/dicebag/pkg/dicebag"
//	)
//
//	func main() {
//		engine := dicebag.NewEngine()
//
//		record, err := engine.Roll("4d6kh3 + 2")
//		if err != nil {
//			panic(err)
//		}
//		fmt.Printf("%s: %s = %d\n", record.Notation, record.Text, record.Total)
//	}
//
// # Lower-level API
//
// The engine is a thin layer over three pieces that can be used directly:
//
//	expr, err := parser.Parse("2d20kh1 - 1d4")
//	gen := dice.NewRandomGenerator(42)
//	total, err := dicebag.NewEvaluator(gen).Eval(expr)
//	history, err := dicebag.NewRoller(gen).Roll(expr)
//
// The evaluator only produces a total. The roller also returns one
// dice.RollResult per dice group and an aggregated text such as
// "[4, 2] + 3".
//
// # Notation Reference
//
//	expression := term (('+' | '-') term)*
//	term       := integer | diceGroup
//	diceGroup  := integer 'd' integer [ ('k' | 'd') ('h' | 'l') integer ]
//
// Letters are case-insensitive and whitespace is ignored. A leading minus
// is allowed before the first dice group only. Keeping or dropping more
// dice than the group holds is clamped to the group size.
//
// # Deterministic Rolls
//
// Every roll draws from a dice.Generator. Tests and replays use
// dice.NewSequenceGenerator to feed fixed faces:
//
//	engine := dicebag.NewEngine(dicebag.WithGenerator(dice.NewSequenceGenerator(3, 5, 1)))
//
// # Production Considerations
//
// Engine applies DefaultLimits to every notation so that untrusted input
// cannot request millions of dice. Rolls are recorded in a bounded
// metrics.RollCollector and dispatched to registered action handlers, which
// is how the dashboard package streams rolls to websocket clients.
package dicebag
