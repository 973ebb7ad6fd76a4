package parser

import (
	"errors"
	"fmt"

	"github.com/chosenoffset/dicebag/pkg/dicebag/dice"
)

var (
	// ErrEmptyNotation indicates the input held nothing but whitespace.
	ErrEmptyNotation = errors.New("empty notation")
	// ErrUnexpectedToken indicates a token the grammar does not allow at
	// that position.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrInvalidNumber indicates an integer that cannot be used, either
	// because it overflows or because it is a negative constant.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidDice indicates a dice group that cannot be rolled.
	ErrInvalidDice = dice.ErrInvalidDice
)

// ParseError describes why a notation could not be parsed.
type ParseError struct {
	Input    string
	Position int
	Message  string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at position %d: %s", e.Input, e.Position, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
