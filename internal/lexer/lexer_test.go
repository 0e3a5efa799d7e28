package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/funmatch/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `k >= 1.5 and (name == 'bob' or not done) - 2 * x / y != "z"`

	expected := []struct {
		tokenType token.TokenType
		lexeme    string
	}{
		{token.IDENT, "k"},
		{token.GT_EQ, ">="},
		{token.NUMBER, "1.5"},
		{token.AND, "and"},
		{token.LPAREN, "("},
		{token.IDENT, "name"},
		{token.EQ, "=="},
		{token.STRING, "bob"},
		{token.OR, "or"},
		{token.NOT, "not"},
		{token.IDENT, "done"},
		{token.RPAREN, ")"},
		{token.MINUS, "-"},
		{token.NUMBER, "2"},
		{token.ASTERISK, "*"},
		{token.IDENT, "x"},
		{token.SLASH, "/"},
		{token.IDENT, "y"},
		{token.NOT_EQ, "!="},
		{token.STRING, "z"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		assert.Equal(t, exp.tokenType, tok.Type, "token %d", i)
		assert.Equal(t, exp.lexeme, tok.Lexeme, "token %d", i)
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input  string
		lexeme string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e3", "1e3"},
		{"2.5e-2", "2.5e-2"},
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		assert.Equal(t, token.TokenType(token.NUMBER), tok.Type)
		assert.Equal(t, tt.lexeme, tok.Lexeme)
	}
}

func TestEscapedQuoteInString(t *testing.T) {
	l := New(`'it\'s'`)
	tok := l.NextToken()
	assert.Equal(t, token.TokenType(token.STRING), tok.Type)
	assert.Equal(t, "it's", tok.Lexeme)
}

func TestUnterminatedString(t *testing.T) {
	l := New(`'abc`)
	tok := l.NextToken()
	assert.Equal(t, token.TokenType(token.ILLEGAL), tok.Type)
}

func TestIllegalCharacter(t *testing.T) {
	l := New(`a ; b`)
	assert.Equal(t, token.TokenType(token.IDENT), l.NextToken().Type)
	assert.Equal(t, token.TokenType(token.ILLEGAL), l.NextToken().Type)
}
