package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNextToken(t *testing.T) {
	input := `4D6kh3 + 12 - 2dL1	x`

	want := []Token{
		{Type: INT, Literal: "4", Position: 0},
		{Type: DICE, Literal: "D", Position: 1},
		{Type: INT, Literal: "6", Position: 2},
		{Type: KEEP, Literal: "k", Position: 3},
		{Type: HIGH, Literal: "h", Position: 4},
		{Type: INT, Literal: "3", Position: 5},
		{Type: PLUS, Literal: "+", Position: 7},
		{Type: INT, Literal: "12", Position: 9},
		{Type: MINUS, Literal: "-", Position: 12},
		{Type: INT, Literal: "2", Position: 14},
		{Type: DICE, Literal: "d", Position: 15},
		{Type: LOW, Literal: "L", Position: 16},
		{Type: INT, Literal: "1", Position: 17},
		{Type: ILLEGAL, Literal: "x", Position: 19},
		{Type: EOF, Literal: "", Position: 20},
	}

	got := NewLexer(input).Tokens()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens() mismatch (-want +got):\n%s", diff)
	}
}

func TestNextTokenEmbeddedNUL(t *testing.T) {
	l := NewLexer("1\x002")
	tokens := l.Tokens()
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d: %v", len(tokens), tokens)
	}
	if tokens[1].Type != ILLEGAL {
		t.Errorf("expected ILLEGAL for NUL byte, got %s", tokens[1].Type)
	}
}

func TestEmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\r\n"} {
		tok := NewLexer(input).NextToken()
		if tok.Type != EOF {
			t.Errorf("NewLexer(%q).NextToken() = %s, want EOF", input, tok.Type)
		}
	}
}

func TestTokenTypeString(t *testing.T) {
	tests := map[TokenType]string{
		ILLEGAL:        "ILLEGAL",
		EOF:            "EOF",
		INT:            "INT",
		DICE:           "d",
		KEEP:           "k",
		HIGH:           "h",
		LOW:            "l",
		PLUS:           "+",
		MINUS:          "-",
		TokenType(999): "UNKNOWN",
	}
	for tt, want := range tests {
		if got := tt.String(); got != want {
			t.Errorf("TokenType(%d).String() = %q, want %q", int(tt), got, want)
		}
	}
}
