package cond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funmatch/internal/parser"
)

func evalText(t *testing.T, input string, bindings map[string]interface{}) (interface{}, error) {
	t.Helper()
	expr, err := parser.Parse(input)
	require.NoError(t, err)
	return Eval(expr, bindings)
}

func TestEvalArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		bindings map[string]interface{}
		want     interface{}
	}{
		{"addition", "a + 2", map[string]interface{}{"a": 1}, float64(3)},
		{"precedence", "2 + 3 * 4", nil, float64(14)},
		{"division", "a / 2", map[string]interface{}{"a": 5.0}, 2.5},
		{"unary_minus", "-a", map[string]interface{}{"a": 3}, float64(-3)},
		{"mixed_numeric_kinds", "a + b", map[string]interface{}{"a": int64(1), "b": 2.5}, 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalText(t, tt.input, tt.bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalComparisons(t *testing.T) {
	bindings := map[string]interface{}{"k": 2, "name": "bob", "done": true}

	tests := []struct {
		input string
		want  bool
	}{
		{"k > 1", true},
		{"k > 2", false},
		{"k >= 2", true},
		{"k < 10 and k > 0", true},
		{"k == 2", true},
		{"k != 2", false},
		{"name == 'bob'", true},
		{"name != 'alice'", true},
		{"name < 'carol'", true},
		{"done == true", true},
		{"not done", false},
		{"k > 10 or name == 'bob'", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := evalText(t, tt.input, bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalShortCircuit(t *testing.T) {
	// The right operand would fault (unbound name); short-circuiting means
	// it is never evaluated.
	bindings := map[string]interface{}{"k": 1}

	got, err := evalText(t, "k == 1 or missing > 0", bindings)
	require.NoError(t, err)
	assert.Equal(t, true, got)

	got, err = evalText(t, "k == 2 and missing > 0", bindings)
	require.NoError(t, err)
	assert.Equal(t, false, got)
}

func TestEvalFaults(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		bindings map[string]interface{}
	}{
		{"unbound_identifier", "missing > 0", nil},
		{"string_plus_number", "a + 1", map[string]interface{}{"a": "x"}},
		{"and_on_number", "a and true", map[string]interface{}{"a": 1}},
		{"not_on_number", "not a", map[string]interface{}{"a": 1}},
		{"division_by_zero", "1 / a", map[string]interface{}{"a": 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evalText(t, tt.input, tt.bindings)
			assert.Error(t, err)
		})
	}
}

func TestHolds(t *testing.T) {
	expr, err := parser.Parse("k > 1")
	require.NoError(t, err)

	assert.True(t, Holds(expr, map[string]interface{}{"k": 2}))
	assert.False(t, Holds(expr, map[string]interface{}{"k": 1}))
	assert.False(t, Holds(expr, nil))

	// A non-boolean result is condition failure, not an error.
	sum, err := parser.Parse("k + 1")
	require.NoError(t, err)
	assert.False(t, Holds(sum, map[string]interface{}{"k": 1}))
}
