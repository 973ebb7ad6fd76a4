package dicebag

import (
	"errors"
	"fmt"

	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

// Limits bounds the notations an Engine accepts. A zero field disables
// that check; a nil *Limits disables all of them.
type Limits struct {
	MaxNotationLength int // Maximum notation length in bytes
	MaxNodes          int // Maximum AST nodes per notation
	MaxQuantity       int // Maximum dice in a single group
	MaxSides          int // Maximum sides of a single die
}

// DefaultLimits returns reasonable default limits
func DefaultLimits() *Limits {
	return &Limits{
		MaxNotationLength: 256,
		MaxNodes:          128,
		MaxQuantity:       1000,
		MaxSides:          1_000_000,
	}
}

// LimitError represents a limit violation
type LimitError struct {
	Resource string
	Current  int
	Limit    int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s (%d) exceeds limit (%d)", e.Resource, e.Current, e.Limit)
}

// IsLimitError checks if an error is, or wraps, a limit violation
func IsLimitError(err error) bool {
	var limitErr *LimitError
	return errors.As(err, &limitErr)
}

// CheckNotation rejects notations longer than MaxNotationLength before they
// are parsed.
func (l *Limits) CheckNotation(notation string) error {
	if l == nil {
		return nil
	}
	if l.MaxNotationLength > 0 && len(notation) > l.MaxNotationLength {
		return &LimitError{Resource: "notation length", Current: len(notation), Limit: l.MaxNotationLength}
	}
	return nil
}

// CheckExpression rejects parsed expressions that are too large to roll.
func (l *Limits) CheckExpression(expr parser.Expression) error {
	if l == nil {
		return nil
	}
	if nodes := expr.CountNodes(); l.MaxNodes > 0 && nodes > l.MaxNodes {
		return &LimitError{Resource: "expression nodes", Current: nodes, Limit: l.MaxNodes}
	}

	for _, d := range parser.DiceGroups(expr) {
		if l.MaxQuantity > 0 && d.Quantity > l.MaxQuantity {
			return &LimitError{Resource: "dice quantity", Current: d.Quantity, Limit: l.MaxQuantity}
		}
		if l.MaxSides > 0 && d.Sides > l.MaxSides {
			return &LimitError{Resource: "dice sides", Current: d.Sides, Limit: l.MaxSides}
		}
	}
	return nil
}
