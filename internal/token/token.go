package token

type TokenType string

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	// Identifiers and literals
	IDENT  = "IDENT"  // bound variable name
	NUMBER = "NUMBER" // 42, 3.14, -7, 1e3
	STRING = "STRING" // 'abc' or "abc"
	TRUE   = "TRUE"
	FALSE  = "FALSE"

	// Operators
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"

	LT     = "<"
	GT     = ">"
	LT_EQ  = "<="
	GT_EQ  = ">="
	EQ     = "=="
	NOT_EQ = "!="

	// Keywords
	AND = "AND"
	OR  = "OR"
	NOT = "NOT"

	LPAREN = "("
	RPAREN = ")"
)

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // decoded value for STRING, lexeme text otherwise
	Line    int
	Column  int
}

var keywords = map[string]TokenType{
	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent distinguishes condition keywords from bound-variable names.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
