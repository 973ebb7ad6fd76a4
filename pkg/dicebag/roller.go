package dicebag

import (
	"fmt"
	"strconv"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
	"github.com/chosenoffset/dicebag/pkg/dicebag/parser"
)

// RollTransformer rewrites the result of a dice group before it is added to
// the history. index is the zero-based position of the group in the
// expression, counted left to right.
type RollTransformer func(result dice.RollResult, index int) dice.RollResult

// RollHistory is the record of one simulated evaluation.
type RollHistory struct {
	// Results holds one entry per dice group, in left-to-right order.
	Results []dice.RollResult `json:"results"`
	// Total is the value of the whole expression.
	Total int `json:"total"`
	// Text is the expression with every dice group replaced by its rolls,
	// for example "[4, 2] + 3".
	Text string `json:"text"`
}

func (h RollHistory) String() string { return h.Text }

// RollerOption configures a Roller.
type RollerOption func(*Roller)

// WithRollTransformer applies fn to every dice group result.
func WithRollTransformer(fn RollTransformer) RollerOption {
	return func(r *Roller) {
		r.transform = fn
	}
}

// Roller evaluates expression trees by simulating every dice group and
// keeping the individual results.
type Roller struct {
	generator dice.Generator
	transform RollTransformer
}

// NewRoller returns a roller drawing die results from gen.
func NewRoller(gen dice.Generator, opts ...RollerOption) *Roller {
	r := &Roller{generator: gen}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roll walks node in postorder, rolling each dice group once.
func (r *Roller) Roll(node parser.Node) (RollHistory, error) {
	acc := &rollAccumulator{roller: r, results: []dice.RollResult{}}
	total, text, err := acc.eval(node)
	if err != nil {
		return RollHistory{}, err
	}
	return RollHistory{
		Results: acc.results,
		Total:   total,
		Text:    text,
	}, nil
}

type rollAccumulator struct {
	roller  *Roller
	results []dice.RollResult
}

func (a *rollAccumulator) eval(node parser.Node) (int, string, error) {
	switch node := node.(type) {
	case *parser.IntegerLiteral:
		if node.Implicit {
			return node.Value, "", nil
		}
		return node.Value, strconv.Itoa(node.Value), nil

	case *parser.DiceOperand:
		result, err := dice.Resolve(node.Dice, a.roller.generator)
		if err != nil {
			return 0, "", err
		}
		if a.roller.transform != nil {
			result = a.roller.transform(result, len(a.results))
		}
		a.results = append(a.results, result)
		return result.Total, result.String(), nil

	case *parser.InfixExpression:
		left, leftText, err := a.eval(node.Left)
		if err != nil {
			return 0, "", err
		}
		right, rightText, err := a.eval(node.Right)
		if err != nil {
			return 0, "", err
		}
		total, err := applyOperator(node.Operator, left, right)
		if err != nil {
			return 0, "", err
		}
		if leftText == "" {
			// Leading minus sign.
			return total, node.Operator + rightText, nil
		}
		return total, leftText + " " + node.Operator + " " + rightText, nil

	default:
		return 0, "", fmt.Errorf("unknown node type: %T", node)
	}
}
