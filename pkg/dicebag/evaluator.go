package dicebag

import (
	"fmt"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

// DiceResolver reduces a dice group to the value it contributes to a total.
type DiceResolver func(d dice.Dice) (int, error)

// SimulatedResolver rolls each dice group with gen and returns its kept
// total.
func SimulatedResolver(gen dice.Generator) DiceResolver {
	return func(d dice.Dice) (int, error) {
		result, err := dice.Resolve(d, gen)
		if err != nil {
			return 0, err
		}
		return result.Total, nil
	}
}

// MinimumResolver returns the smallest total a dice group can produce.
func MinimumResolver(d dice.Dice) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d.KeptCount(), nil
}

// MaximumResolver returns the largest total a dice group can produce.
func MaximumResolver(d dice.Dice) (int, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d.KeptCount() * d.Sides, nil
}

// Evaluator reduces an expression tree to a single integer.
type Evaluator struct {
	resolve DiceResolver
}

// NewEvaluator returns an evaluator that rolls dice groups with gen.
func NewEvaluator(gen dice.Generator) *Evaluator {
	return &Evaluator{resolve: SimulatedResolver(gen)}
}

// NewEvaluatorWithResolver returns an evaluator that substitutes every dice
// group with the value returned by resolve.
func NewEvaluatorWithResolver(resolve DiceResolver) *Evaluator {
	return &Evaluator{resolve: resolve}
}

// Eval walks node in postorder and returns its total. Integer overflow is
// not detected.
func (e *Evaluator) Eval(node parser.Node) (int, error) {
	switch node := node.(type) {
	case *parser.IntegerLiteral:
		return node.Value, nil

	case *parser.DiceOperand:
		return e.resolve(node.Dice)

	case *parser.InfixExpression:
		left, err := e.Eval(node.Left)
		if err != nil {
			return 0, err
		}
		right, err := e.Eval(node.Right)
		if err != nil {
			return 0, err
		}
		return applyOperator(node.Operator, left, right)

	default:
		return 0, fmt.Errorf("unknown node type: %T", node)
	}
}

func applyOperator(operator string, left, right int) (int, error) {
	switch operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", operator)
	}
}
