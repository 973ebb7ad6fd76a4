package parser

import (
	"fmt"
	"strconv"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

const (
	_ int = iota
	LOWEST
	SUM // + -
)

var precedences = map[TokenType]int{
	PLUS:  SUM,
	MINUS: SUM,
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type Parser struct {
	l     *Lexer
	input string

	curToken  Token
	peekToken Token

	errors []*ParseError

	// leading is true until the first term has been parsed; only that term
	// may carry a minus sign.
	leading bool

	prefixParseFns map[TokenType]prefixParseFn
	infixParseFns  map[TokenType]infixParseFn
}

// Parse parses a complete dice notation into an expression tree.
// It never returns a partial tree: on failure the expression is nil and the
// error is a *ParseError.
func Parse(text string) (Expression, error) {
	p := New(NewLexer(text))
	expr := p.ParseNotation()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

func New(l *Lexer) *Parser {
	p := &Parser{
		l:       l,
		input:   l.input,
		leading: true,
	}

	p.prefixParseFns = make(map[TokenType]prefixParseFn)
	p.registerPrefix(INT, p.parseTerm)
	p.registerPrefix(MINUS, p.parseNegatedTerm)

	p.infixParseFns = make(map[TokenType]infixParseFn)
	p.registerInfix(PLUS, p.parseInfixExpression)
	p.registerInfix(MINUS, p.parseInfixExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// ParseNotation parses the whole input. It returns nil if any error was
// recorded; see Err and Errors.
func (p *Parser) ParseNotation() Expression {
	if p.curTokenIs(EOF) {
		p.fail(p.curToken.Position, ErrEmptyNotation, "notation is empty")
		return nil
	}

	expr := p.parseExpression(LOWEST)
	if expr == nil || len(p.errors) > 0 {
		return nil
	}

	if !p.peekTokenIs(EOF) {
		p.unexpected(p.peekToken, "expected + or - between terms")
		return nil
	}

	return expr
}

func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.unexpected(p.curToken, "expected a number or dice group")
		return nil
	}
	leftExp := prefix()
	p.leading = false
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// parseTerm parses a constant or a dice group starting at an INT token.
func (p *Parser) parseTerm() Expression {
	quantityTok := p.curToken
	quantity, ok := p.parseInt(quantityTok)
	if !ok {
		return nil
	}

	if !p.peekTokenIs(DICE) {
		return &IntegerLiteral{Token: quantityTok, Value: quantity}
	}
	p.nextToken()

	if !p.expectPeek(INT, "expected number of sides after d") {
		return nil
	}
	sidesTok := p.curToken
	sides, ok := p.parseInt(sidesTok)
	if !ok {
		return nil
	}
	if sides == 0 {
		p.fail(sidesTok.Position, ErrInvalidDice, "dice must have at least one side")
		return nil
	}

	d := dice.New(quantity, sides)
	if p.peekTokenIs(KEEP) || p.peekTokenIs(DICE) {
		p.nextToken()
		d, ok = p.parseModifier(quantity, sides)
		if !ok {
			return nil
		}
	}

	if err := d.Validate(); err != nil {
		p.fail(quantityTok.Position, ErrInvalidDice, err.Error())
		return nil
	}

	return &DiceOperand{Token: quantityTok, Dice: d}
}

// parseModifier parses the direction and magnitude following a k or d
// modifier letter, which is the current token.
func (p *Parser) parseModifier(quantity, sides int) (dice.Dice, bool) {
	mode := p.curToken.Type

	if !p.peekTokenIs(HIGH) && !p.peekTokenIs(LOW) {
		p.unexpected(p.peekToken, fmt.Sprintf("expected h or l after %s", mode))
		return dice.Dice{}, false
	}
	p.nextToken()
	direction := p.curToken.Type

	if !p.expectPeek(INT, "expected modifier count") {
		return dice.Dice{}, false
	}
	n, ok := p.parseInt(p.curToken)
	if !ok {
		return dice.Dice{}, false
	}

	switch {
	case mode == KEEP && direction == HIGH:
		return dice.KeepHighest(quantity, sides, n), true
	case mode == KEEP && direction == LOW:
		return dice.KeepLowest(quantity, sides, n), true
	case mode == DICE && direction == HIGH:
		return dice.DropHighest(quantity, sides, n), true
	default:
		return dice.DropLowest(quantity, sides, n), true
	}
}

// parseNegatedTerm folds a leading minus sign into 0 - term.
func (p *Parser) parseNegatedTerm() Expression {
	minusTok := p.curToken
	if !p.leading {
		p.unexpected(minusTok, "a minus sign may only prefix the first term")
		return nil
	}

	if !p.expectPeek(INT, "expected dice group after -") {
		return nil
	}
	right := p.parseTerm()
	if right == nil {
		return nil
	}
	if _, ok := right.(*IntegerLiteral); ok {
		p.fail(minusTok.Position, ErrInvalidNumber, "negative constants are not allowed")
		return nil
	}

	return &InfixExpression{
		Token: minusTok,
		Left: &IntegerLiteral{
			Token:    Token{Type: INT, Literal: "0", Position: minusTok.Position},
			Implicit: true,
		},
		Operator: minusTok.Literal,
		Right:    right,
	}
}

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expression := &InfixExpression{
		Token:    p.curToken,
		Left:     left,
		Operator: p.curToken.Literal,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInt(tok Token) (int, bool) {
	value, err := strconv.Atoi(tok.Literal)
	if err != nil {
		p.fail(tok.Position, ErrInvalidNumber, fmt.Sprintf("could not parse %q as integer", tok.Literal))
		return 0, false
	}
	return value, true
}

func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t TokenType, msg string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.unexpected(p.peekToken, msg)
	return false
}

// Errors returns the messages of every recorded error.
func (p *Parser) Errors() []string {
	msgs := make([]string, len(p.errors))
	for i, err := range p.errors {
		msgs[i] = err.Error()
	}
	return msgs
}

// Err returns the first recorded error, or nil.
func (p *Parser) Err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

func (p *Parser) unexpected(tok Token, msg string) {
	found := tok.Type.String()
	if tok.Type == ILLEGAL {
		found = fmt.Sprintf("%q", tok.Literal)
	}
	p.fail(tok.Position, ErrUnexpectedToken, fmt.Sprintf("%s, got %s", msg, found))
}

func (p *Parser) fail(position int, err error, msg string) {
	p.errors = append(p.errors, &ParseError{
		Input:    p.input,
		Position: position,
		Message:  msg,
		Err:      err,
	})
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) registerPrefix(tokenType TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
