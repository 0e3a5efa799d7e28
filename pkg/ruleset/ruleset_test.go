package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funmatch"
)

const sampleRules = `
rules:
  - id: r-member
    name: member
    pattern: "{type='member', name=n}"
    tags: [account]
  - name: adult
    pattern: "{age=a} when a >= 18"
  - id: r-any
    name: fallback
    pattern: "_"
`

func TestLoad(t *testing.T) {
	rs, err := Load([]byte(sampleRules))
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, "r-member", rules[0].ID)
	assert.Equal(t, []string{"account"}, rules[0].Tags)
	assert.NotEmpty(t, rules[1].ID, "missing id is generated")
	assert.NotEqual(t, rules[0].ID, rules[1].ID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty_document", "", "no rules"},
		{"no_rules_key", "other: 1", "no rules"},
		{"missing_pattern", "rules:\n  - name: broken", `rule "broken" has no pattern`},
		{"bad_pattern", "rules:\n  - name: broken\n    pattern: \"[a,\"", `rule "broken"`},
		{"bad_yaml", "rules: [", "ruleset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMatchFirst(t *testing.T) {
	rs, err := Load([]byte(sampleRules))
	require.NoError(t, err)

	result, ok, err := rs.Match(map[string]interface{}{"type": "member", "name": "X"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "member", result.Rule.Name)
	assert.Equal(t, funmatch.Scope{"n": "X"}, result.Bindings)

	result, ok, err = rs.Match(map[string]interface{}{"age": 30})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "adult", result.Rule.Name)
	assert.Equal(t, funmatch.Scope{"a": 30}, result.Bindings)

	// Condition fails, so the wildcard rule catches it.
	result, ok, err = rs.Match(map[string]interface{}{"age": 10})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fallback", result.Rule.Name)
}

func TestMatchNone(t *testing.T) {
	rs, err := Load([]byte(`
rules:
  - name: only
    pattern: "{type='member'}"
`))
	require.NoError(t, err)

	_, ok, err := rs.Match(map[string]interface{}{"type": "guest"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchAll(t *testing.T) {
	rs, err := Load([]byte(sampleRules))
	require.NoError(t, err)

	results, err := rs.MatchAll(map[string]interface{}{
		"type": "member", "name": "X", "age": 30,
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "member", results[0].Rule.Name)
	assert.Equal(t, "adult", results[1].Rule.Name)
	assert.Equal(t, "fallback", results[2].Rule.Name)
}

func TestPrefilterSkipsImpossibleRules(t *testing.T) {
	rs, err := Load([]byte(`
rules:
  - name: member
    pattern: "{type='member'}"
  - name: guest
    pattern: "{type='guest'}"
`))
	require.NoError(t, err)

	// The member literal cannot occur in this source, so only the guest rule
	// is attempted; the outcome has to be identical either way.
	result, ok, err := rs.Match(map[string]interface{}{"type": "guest"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "guest", result.Rule.Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Rules(), 3)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
