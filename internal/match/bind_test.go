package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindMutableOverwrites(t *testing.T) {
	scope := map[string]interface{}{"k": 5}
	require.NoError(t, Bind(scope, "k", 6, Mutable))
	assert.Equal(t, 6, scope["k"])
}

func TestBindImmutableVerifies(t *testing.T) {
	t.Run("absent_key_binds", func(t *testing.T) {
		scope := map[string]interface{}{}
		require.NoError(t, Bind(scope, "k", 5, Immutable))
		assert.Equal(t, 5, scope["k"])
	})

	t.Run("equal_value_passes", func(t *testing.T) {
		scope := map[string]interface{}{"k": 5}
		require.NoError(t, Bind(scope, "k", 5, Immutable))
		assert.Equal(t, 5, scope["k"])
	})

	t.Run("equal_across_numeric_kinds", func(t *testing.T) {
		scope := map[string]interface{}{"k": 5}
		assert.NoError(t, Bind(scope, "k", 5.0, Immutable))
	})

	t.Run("unequal_value_fails", func(t *testing.T) {
		scope := map[string]interface{}{"k": 5}
		err := Bind(scope, "k", 6, Immutable)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "k")
	})

	t.Run("unequal_string_fails", func(t *testing.T) {
		scope := map[string]interface{}{"k": "a"}
		assert.Error(t, Bind(scope, "k", "b", Immutable))
	})

	t.Run("type_mismatch_fails", func(t *testing.T) {
		scope := map[string]interface{}{"k": 5}
		assert.Error(t, Bind(scope, "k", "5", Immutable))
	})
}

func TestBindImmutableArrays(t *testing.T) {
	t.Run("equal_arrays_pass", func(t *testing.T) {
		scope := map[string]interface{}{"k": []interface{}{1, 2}}
		assert.NoError(t, Bind(scope, "k", []interface{}{1, 2}, Immutable))
	})

	t.Run("element_mismatch_names_index", func(t *testing.T) {
		scope := map[string]interface{}{"k": []interface{}{1, 2}}
		err := Bind(scope, "k", []interface{}{1, 3}, Immutable)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "k[1]")
	})

	t.Run("length_mismatch_fails", func(t *testing.T) {
		scope := map[string]interface{}{"k": []interface{}{1, 2}}
		assert.Error(t, Bind(scope, "k", []interface{}{1, 2, 3}, Immutable))
	})

	t.Run("array_vs_scalar_fails", func(t *testing.T) {
		scope := map[string]interface{}{"k": []interface{}{1}}
		assert.Error(t, Bind(scope, "k", 1, Immutable))
	})

	t.Run("nested_mismatch_names_path", func(t *testing.T) {
		scope := map[string]interface{}{"k": []interface{}{[]interface{}{1, 2}}}
		err := Bind(scope, "k", []interface{}{[]interface{}{1, 9}}, Immutable)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "k[0][1]")
	})
}
