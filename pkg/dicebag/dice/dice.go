// Package dice holds the dice value type, the number generator capability
// and the keep/drop resolution shared by every evaluator.
package dice

import (
	"errors"
	"fmt"
)

// ErrInvalidDice indicates a dice value has a negative quantity or fewer
// than one side.
var ErrInvalidDice = errors.New("dice must have a non-negative quantity and at least one side")

// Dice describes a group of identical dice and which of them are kept.
//
// # Keep
//
// Keep is signed: a positive value keeps that many of the highest results,
// a negative value keeps |Keep| of the lowest results. Zero, or a magnitude
// equal to or larger than Quantity, keeps every die.
//
// # Drop
//
// Drop records that the modifier was written in drop form ("dl1" rather
// than "kh3"). It never changes which dice are kept; it only selects how
// String renders the modifier.
type Dice struct {
	Quantity int
	Sides    int
	Keep     int
	Drop     bool
}

// New returns a dice group that keeps every die.
func New(quantity, sides int) Dice {
	return Dice{Quantity: quantity, Sides: sides, Keep: quantity}
}

// KeepHighest returns a dice group keeping the n highest results.
func KeepHighest(quantity, sides, n int) Dice {
	return Dice{Quantity: quantity, Sides: sides, Keep: n}
}

// KeepLowest returns a dice group keeping the n lowest results.
func KeepLowest(quantity, sides, n int) Dice {
	return Dice{Quantity: quantity, Sides: sides, Keep: -n}
}

// DropHighest returns a dice group discarding the n highest results.
// Dropping more dice than the group holds drops all of them, which by the
// keep-all convention for Keep == 0 keeps every die.
func DropHighest(quantity, sides, n int) Dice {
	return Dice{Quantity: quantity, Sides: sides, Keep: -(quantity - clampDrop(quantity, n)), Drop: true}
}

// DropLowest returns a dice group discarding the n lowest results.
func DropLowest(quantity, sides, n int) Dice {
	return Dice{Quantity: quantity, Sides: sides, Keep: quantity - clampDrop(quantity, n), Drop: true}
}

func clampDrop(quantity, n int) int {
	if n > quantity {
		return quantity
	}
	if n < 0 {
		return 0
	}
	return n
}

// Validate reports whether the dice can be rolled.
func (d Dice) Validate() error {
	if d.Quantity < 0 || d.Sides < 1 {
		return fmt.Errorf("%w: %dd%d", ErrInvalidDice, d.Quantity, d.Sides)
	}
	return nil
}

// KeepsAll reports whether every rolled die contributes to the total.
func (d Dice) KeepsAll() bool {
	return d.Keep == 0 || abs(d.Keep) >= d.Quantity
}

// KeptCount returns how many dice contribute to the total.
func (d Dice) KeptCount() int {
	if d.KeepsAll() {
		return d.Quantity
	}
	return abs(d.Keep)
}

// String renders the canonical notation for the dice group.
//
// A group keeping every die renders as "NdS". Keep form renders as
// "NdSkhM" or "NdSklM"; drop form renders the number of discarded dice,
// "NdSdlM" or "NdSdhM". Parsing the result yields an equal Dice.
func (d Dice) String() string {
	if d.KeepsAll() {
		return fmt.Sprintf("%dd%d", d.Quantity, d.Sides)
	}

	if d.Drop {
		// Keeping the highest means the lowest were dropped.
		direction := "l"
		if d.Keep < 0 {
			direction = "h"
		}
		return fmt.Sprintf("%dd%dd%s%d", d.Quantity, d.Sides, direction, d.Quantity-abs(d.Keep))
	}

	direction := "h"
	if d.Keep < 0 {
		direction = "l"
	}
	return fmt.Sprintf("%dd%dk%s%d", d.Quantity, d.Sides, direction, abs(d.Keep))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
