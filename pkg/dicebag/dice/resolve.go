package dice

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrGeneratorContract indicates a generator returned the wrong number of
// values or a value outside [1, sides].
var ErrGeneratorContract = errors.New("generator broke its contract")

// GeneratorError wraps a failure raised while generating values for Dice.
type GeneratorError struct {
	Dice Dice
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Dice, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// RollResult is the outcome of rolling one dice group.
type RollResult struct {
	// Dice is the group that was rolled.
	Dice Dice `json:"dice"`
	// Rolls holds every generated value in generation order.
	Rolls []int `json:"rolls"`
	// Kept holds the values that count toward Total, highest first when
	// keeping the highest and lowest first otherwise.
	Kept []int `json:"kept"`
	// Total is the sum of Kept.
	Total int `json:"total"`
}

// String renders the raw rolls: a single value as "5", several as
// "[5, 7, 2]".
func (r RollResult) String() string {
	if len(r.Rolls) == 1 {
		return strconv.Itoa(r.Rolls[0])
	}

	parts := make([]string, len(r.Rolls))
	for i, roll := range r.Rolls {
		parts[i] = strconv.Itoa(roll)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Dropped returns the generated values that were not kept, in the same
// ordering used for Kept.
func (r RollResult) Dropped() []int {
	ordered := sortedForKeep(r.Rolls, r.Dice.Keep)
	return ordered[len(r.Kept):]
}

// Resolve rolls d with gen and applies its keep selection.
//
// A group with no dice returns an empty result without consulting the
// generator. Generator failures are returned as *GeneratorError.
func Resolve(d Dice, gen Generator) (RollResult, error) {
	if err := d.Validate(); err != nil {
		return RollResult{}, err
	}
	if d.Quantity == 0 {
		return RollResult{Dice: d, Rolls: []int{}, Kept: []int{}}, nil
	}

	rolls, err := gen.Generate(d.Quantity, d.Sides)
	if err != nil {
		return RollResult{}, &GeneratorError{Dice: d, Err: err}
	}
	if err := checkRolls(d, rolls); err != nil {
		return RollResult{}, &GeneratorError{Dice: d, Err: err}
	}

	ordered := sortedForKeep(rolls, d.Keep)
	kept := make([]int, d.KeptCount())
	copy(kept, ordered)

	total := 0
	for _, value := range kept {
		total += value
	}

	return RollResult{
		Dice:  d,
		Rolls: append([]int(nil), rolls...),
		Kept:  kept,
		Total: total,
	}, nil
}

func checkRolls(d Dice, rolls []int) error {
	if len(rolls) != d.Quantity {
		return fmt.Errorf("%w: got %d values, want %d", ErrGeneratorContract, len(rolls), d.Quantity)
	}
	for i, value := range rolls {
		if value < 1 || value > d.Sides {
			return fmt.Errorf("%w: value %d at index %d outside [1, %d]", ErrGeneratorContract, value, i, d.Sides)
		}
	}
	return nil
}

// sortedForKeep returns a sorted copy of rolls: descending when keep is
// positive, ascending otherwise.
func sortedForKeep(rolls []int, keep int) []int {
	sorted := append([]int(nil), rolls...)
	if keep > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	} else {
		sort.Ints(sorted)
	}
	return sorted
}
