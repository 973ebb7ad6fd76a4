package parser

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Literals
	INT // non-negative integers

	// Dice letters, case-insensitive
	DICE // d: separator between quantity and sides, or "drop"
	KEEP // k
	HIGH // h
	LOW  // l

	// Operators
	PLUS  // +
	MINUS // -
)

type Token struct {
	Type     TokenType
	Literal  string
	Position int
}

var letters = map[byte]TokenType{
	'd': DICE,
	'k': KEEP,
	'h': HIGH,
	'l': LOW,
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	switch l.ch {
	case '+':
		tok = newToken(PLUS, l.ch, l.position)
	case '-':
		tok = newToken(MINUS, l.ch, l.position)
	case 0:
		if l.position < len(l.input) {
			// A literal NUL byte inside the input.
			tok = newToken(ILLEGAL, l.ch, l.position)
			break
		}
		tok = Token{Type: EOF, Position: l.position}
		return tok
	default:
		if isDigit(l.ch) {
			position := l.position
			return Token{Type: INT, Literal: l.readNumber(), Position: position}
		}
		if t, ok := letters[toLower(l.ch)]; ok {
			tok = newToken(t, l.ch, l.position)
		} else {
			tok = newToken(ILLEGAL, l.ch, l.position)
		}
	}

	l.readChar()
	return tok
}

// Tokens lexes the whole input, including the trailing EOF token.
func (l *Lexer) Tokens() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}

func newToken(tokenType TokenType, ch byte, position int) Token {
	return Token{
		Type:     tokenType,
		Literal:  string(ch),
		Position: position,
	}
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func toLower(ch byte) byte {
	if 'A' <= ch && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func (t TokenType) String() string {
	switch t {
	case ILLEGAL:
		return "ILLEGAL"
	case EOF:
		return "EOF"
	case INT:
		return "INT"
	case DICE:
		return "d"
	case KEEP:
		return "k"
	case HIGH:
		return "h"
	case LOW:
		return "l"
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	default:
		return "UNKNOWN"
	}
}
