package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args []string, stdin string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPatternMatch(t *testing.T) {
	code, stdout, _ := runCLI(t, []string{"[a, b | t]"}, `[1, 2, 3, 4]`)
	require.Equal(t, ExitMatch, code)

	var scope map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &scope))
	assert.Equal(t, map[string]interface{}{
		"a": 1.0, "b": 2.0, "t": []interface{}{3.0, 4.0},
	}, scope)
}

func TestRunPatternNoMatch(t *testing.T) {
	code, stdout, stderr := runCLI(t, []string{"[a, b, c]"}, `[1, 2]`)
	assert.Equal(t, ExitNoMatch, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "no match")
}

func TestRunPatternError(t *testing.T) {
	code, _, stderr := runCLI(t, []string{"[a,"}, `[1]`)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "funmatch:")
}

func TestRunBadStdin(t *testing.T) {
	code, _, stderr := runCLI(t, []string{"_"}, `not json`)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "not valid JSON")
}

func TestRunUsage(t *testing.T) {
	code, _, stderr := runCLI(t, nil, `1`)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "usage:")

	code, _, _ = runCLI(t, []string{"a", "b"}, `1`)
	assert.Equal(t, ExitError, code)
}

func TestRunRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - id: r-member
    name: member
    pattern: "{type='member', name=n}"
    tags: [account]
  - id: r-any
    name: fallback
    pattern: "_"
`), 0o644))

	t.Run("first_match", func(t *testing.T) {
		code, stdout, _ := runCLI(t, []string{"-rules", path}, `{"type":"member","name":"X"}`)
		require.Equal(t, ExitMatch, code)

		var hit struct {
			Rule     string                 `json:"rule"`
			ID       string                 `json:"id"`
			Tags     []string               `json:"tags"`
			Bindings map[string]interface{} `json:"bindings"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &hit))
		assert.Equal(t, "member", hit.Rule)
		assert.Equal(t, "r-member", hit.ID)
		assert.Equal(t, []string{"account"}, hit.Tags)
		assert.Equal(t, map[string]interface{}{"n": "X"}, hit.Bindings)
	})

	t.Run("all_matches", func(t *testing.T) {
		code, stdout, _ := runCLI(t, []string{"-rules", path, "-all"}, `{"type":"member","name":"X"}`)
		require.Equal(t, ExitMatch, code)

		var hits []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(stdout), &hits))
		require.Len(t, hits, 2)
		assert.Equal(t, "member", hits[0]["rule"])
		assert.Equal(t, "fallback", hits[1]["rule"])
	})

	t.Run("missing_file", func(t *testing.T) {
		code, _, stderr := runCLI(t, []string{"-rules", filepath.Join(t.TempDir(), "gone.yaml")}, `1`)
		assert.Equal(t, ExitError, code)
		assert.NotEmpty(t, stderr)
	})
}

func TestRunRulesNoMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - name: only
    pattern: "{type='member'}"
`), 0o644))

	code, stdout, _ := runCLI(t, []string{"-rules", path}, `{"type":"guest"}`)
	assert.Equal(t, ExitNoMatch, code)
	assert.Empty(t, stdout)

	code, _, _ = runCLI(t, []string{"-rules", path, "-all"}, `{"type":"guest"}`)
	assert.Equal(t, ExitNoMatch, code)
}

func TestRunCompactOutput(t *testing.T) {
	// A bytes.Buffer is not a terminal, so output is compact with or without
	// the flag.
	code, stdout, _ := runCLI(t, []string{"-compact", "k"}, `42`)
	require.Equal(t, ExitMatch, code)
	assert.Equal(t, "{\"k\":42}\n", stdout)
}
