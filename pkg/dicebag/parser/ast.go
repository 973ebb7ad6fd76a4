package parser

import (
	"bytes"
	"strconv"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// NodeCounter is implemented by every node to report the size of its subtree.
type NodeCounter interface {
	CountNodes() int
}

// Expression is one of *IntegerLiteral, *DiceOperand or *InfixExpression.
type Expression interface {
	Node
	NodeCounter
	expressionNode()
}

type IntegerLiteral struct {
	Token Token // the token.INT token
	Value int
	// Implicit marks the zero synthesized for a leading minus sign. It
	// renders as nothing so "-1d6" re-serializes unchanged.
	Implicit bool
}

func (il *IntegerLiteral) expressionNode()      {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) CountNodes() int      { return 1 }
func (il *IntegerLiteral) String() string {
	if il.Implicit {
		return ""
	}
	return strconv.Itoa(il.Value)
}

type DiceOperand struct {
	Token Token // the quantity token
	Dice  dice.Dice
}

func (do *DiceOperand) expressionNode()      {}
func (do *DiceOperand) TokenLiteral() string { return do.Token.Literal }
func (do *DiceOperand) CountNodes() int      { return 1 }
func (do *DiceOperand) String() string       { return do.Dice.String() }

type InfixExpression struct {
	Token    Token // the operator token, + or -
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) CountNodes() int {
	count := 1
	if ie.Left != nil {
		count += ie.Left.CountNodes()
	}
	if ie.Right != nil {
		count += ie.Right.CountNodes()
	}
	return count
}

// String renders canonical notation. The grammar has a single precedence
// level and is left-associative, so no parentheses are needed.
func (ie *InfixExpression) String() string {
	var out bytes.Buffer
	if ie.Left != nil {
		out.WriteString(ie.Left.String())
	}
	out.WriteString(ie.Operator)
	if ie.Right != nil {
		out.WriteString(ie.Right.String())
	}
	return out.String()
}

// DiceGroups returns the dice operands of expr in left-to-right order.
func DiceGroups(expr Expression) []dice.Dice {
	var groups []dice.Dice
	var walk func(Expression)
	walk = func(e Expression) {
		switch node := e.(type) {
		case *DiceOperand:
			groups = append(groups, node.Dice)
		case *InfixExpression:
			walk(node.Left)
			walk(node.Right)
		}
	}
	walk(expr)
	return groups
}
