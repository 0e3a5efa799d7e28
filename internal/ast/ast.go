package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/funmatch/internal/token"
)

// Expression is the base interface for all guard-condition AST nodes.
type Expression interface {
	expressionNode()
	GetToken() token.Token
	String() string
}

// Identifier resolves to a variable bound by the preceding structural match.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()       {}
func (n *NumberLiteral) GetToken() token.Token { return n.Token }
func (n *NumberLiteral) String() string        { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) expressionNode()       {}
func (s *StringLiteral) GetToken() token.Token { return s.Token }
func (s *StringLiteral) String() string        { return "'" + s.Value + "'" }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()       {}
func (b *BooleanLiteral) GetToken() token.Token { return b.Token }
func (b *BooleanLiteral) String() string        { return strconv.FormatBool(b.Value) }

// PrefixExpression covers `not x` and numeric negation.
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (p *PrefixExpression) expressionNode()       {}
func (p *PrefixExpression) GetToken() token.Token { return p.Token }
func (p *PrefixExpression) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(p.Operator)
	if p.Operator == "not" {
		out.WriteString(" ")
	}
	out.WriteString(p.Right.String())
	out.WriteString(")")
	return out.String()
}

type InfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (i *InfixExpression) expressionNode()       {}
func (i *InfixExpression) GetToken() token.Token { return i.Token }
func (i *InfixExpression) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(i.Left.String())
	out.WriteString(" ")
	out.WriteString(i.Operator)
	out.WriteString(" ")
	out.WriteString(i.Right.String())
	out.WriteString(")")
	return out.String()
}

// Identifiers walks the expression and collects every identifier name, used
// to validate conditions against the names the pattern binds.
func Identifiers(expr Expression) []string {
	seen := map[string]bool{}
	var names []string
	var walk func(e Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *Identifier:
			if !seen[n.Value] {
				seen[n.Value] = true
				names = append(names, n.Value)
			}
		case *PrefixExpression:
			walk(n.Right)
		case *InfixExpression:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(expr)
	return names
}
