package cond

import (
	"github.com/funvibe/funmatch/internal/ast"
	"github.com/funvibe/funmatch/internal/diagnostics"
)

// Eval evaluates a compiled guard condition against the bindings produced by
// the preceding structural match. The condition sub-language is pure: no
// side effects, no function calls, no access to anything but the bindings.
// Faults (type mismatches, unresolvable names) surface as NoMatch so that a
// guard over heterogeneous sources degrades to "condition not met".
func Eval(expr ast.Expression, bindings map[string]interface{}) (interface{}, error) {
	switch node := expr.(type) {
	case *ast.NumberLiteral:
		return node.Value, nil
	case *ast.StringLiteral:
		return node.Value, nil
	case *ast.BooleanLiteral:
		return node.Value, nil

	case *ast.Identifier:
		val, ok := bindings[node.Value]
		if !ok {
			return nil, diagnostics.NoMatchf("condition variable %q is not bound", node.Value)
		}
		return val, nil

	case *ast.PrefixExpression:
		right, err := Eval(node.Right, bindings)
		if err != nil {
			return nil, err
		}
		return evalPrefix(node.Operator, right)

	case *ast.InfixExpression:
		return evalInfix(node, bindings)
	}

	return nil, diagnostics.NoMatchf("unsupported condition expression %s", expr.String())
}

// Holds reports whether the condition evaluates to boolean true; anything
// else, including evaluation faults, is condition failure.
func Holds(expr ast.Expression, bindings map[string]interface{}) bool {
	result, err := Eval(expr, bindings)
	if err != nil {
		return false
	}
	b, ok := result.(bool)
	return ok && b
}

func evalPrefix(operator string, right interface{}) (interface{}, error) {
	switch operator {
	case "not":
		b, ok := right.(bool)
		if !ok {
			return nil, diagnostics.NoMatchf("operator not requires a boolean operand")
		}
		return !b, nil
	case "-":
		n, ok := toFloat(right)
		if !ok {
			return nil, diagnostics.NoMatchf("operator - requires a numeric operand")
		}
		return -n, nil
	}
	return nil, diagnostics.NoMatchf("unknown prefix operator %s", operator)
}

func evalInfix(node *ast.InfixExpression, bindings map[string]interface{}) (interface{}, error) {
	// and/or short-circuit: the right side is only evaluated when the left
	// side has not already decided the outcome.
	if node.Operator == "and" || node.Operator == "or" {
		left, err := Eval(node.Left, bindings)
		if err != nil {
			return nil, err
		}
		lb, ok := left.(bool)
		if !ok {
			return nil, diagnostics.NoMatchf("operator %s requires boolean operands", node.Operator)
		}
		if node.Operator == "and" && !lb {
			return false, nil
		}
		if node.Operator == "or" && lb {
			return true, nil
		}
		right, err := Eval(node.Right, bindings)
		if err != nil {
			return nil, err
		}
		rb, ok := right.(bool)
		if !ok {
			return nil, diagnostics.NoMatchf("operator %s requires boolean operands", node.Operator)
		}
		return rb, nil
	}

	left, err := Eval(node.Left, bindings)
	if err != nil {
		return nil, err
	}
	right, err := Eval(node.Right, bindings)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	}

	// Relational and arithmetic operators: numbers first, then string
	// ordering for the relational set.
	if ln, lok := toFloat(left); lok {
		if rn, rok := toFloat(right); rok {
			return evalNumericInfix(node.Operator, ln, rn)
		}
	}
	if ls, lok := left.(string); lok {
		if rs, rok := right.(string); rok {
			return evalStringInfix(node.Operator, ls, rs)
		}
	}

	return nil, diagnostics.NoMatchf("operator %s not applicable to operands in condition %s",
		node.Operator, node.String())
}

func evalNumericInfix(operator string, left, right float64) (interface{}, error) {
	switch operator {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return nil, diagnostics.NoMatchf("division by zero in condition")
		}
		return left / right, nil
	case "<":
		return left < right, nil
	case "<=":
		return left <= right, nil
	case ">":
		return left > right, nil
	case ">=":
		return left >= right, nil
	}
	return nil, diagnostics.NoMatchf("unknown operator %s", operator)
}

func evalStringInfix(operator string, left, right string) (interface{}, error) {
	switch operator {
	case "<":
		return left < right, nil
	case "<=":
		return left <= right, nil
	case ">":
		return left > right, nil
	case ">=":
		return left >= right, nil
	}
	return nil, diagnostics.NoMatchf("operator %s not applicable to strings", operator)
}

// looseEqual compares scalars; numeric values compare by value across Go
// numeric kinds, everything else requires matching kinds.
func looseEqual(left, right interface{}) bool {
	if ln, ok := toFloat(left); ok {
		rn, rok := toFloat(right)
		return rok && ln == rn
	}
	switch lv := left.(type) {
	case string:
		rv, ok := right.(string)
		return ok && lv == rv
	case bool:
		rv, ok := right.(bool)
		return ok && lv == rv
	case nil:
		return right == nil
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
