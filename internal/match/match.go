package match

import (
	"github.com/funvibe/funmatch/internal/diagnostics"
	"github.com/funvibe/funmatch/internal/pattern"
)

// Policy selects how binding treats a scope key that already exists.
type Policy int

const (
	// Mutable always (over)writes the scope entry.
	Mutable Policy = iota
	// Immutable turns an existing entry into a value to verify against.
	Immutable
)

// Match unifies a compiled pattern tree against a source value, binding
// variables into scope. It is fail-fast depth-first recursion with no
// backtracking: the first sub-match failure aborts the whole match. The
// source is never mutated; on failure the scope state for binds attempted
// before the failure is unspecified.
func Match(tree pattern.Node, source interface{}, scope map[string]interface{}, policy Policy) error {
	switch node := tree.(type) {
	case *pattern.BindVariable:
		if node.Name == pattern.Discard {
			return nil
		}
		return Bind(scope, node.Name, source, policy)

	case *pattern.LiteralString:
		str, ok := source.(string)
		if !ok || str != node.Value {
			return diagnostics.NoMatchf("source value %v does not match literal '%s'", source, node.Value)
		}
		return nil

	case *pattern.LiteralNumber:
		num, ok := numericValue(source)
		if !ok || num != node.Value {
			return diagnostics.NoMatchf("source value %v does not match literal %v", source, node.Value)
		}
		return nil

	case *pattern.RegexLiteral:
		return matchRegex(node, source)

	case *pattern.RegexGroupBinding:
		return matchRegexGroups(node, source, scope, policy)

	case *pattern.Sequence:
		return matchSequence(node, source, scope, policy)

	case *pattern.Mapping:
		return matchMapping(node, source, scope, policy)
	}

	return diagnostics.NoMatchf("unsupported pattern form")
}

// matchSequence walks positions from the last index backward. The ordering
// matters for tail handling: the suffix capture is resolved before ordinary
// positions are checked, mirroring how the pattern was written.
func matchSequence(node *pattern.Sequence, source interface{}, scope map[string]interface{}, policy Policy) error {
	src, ok := asSequence(source)
	if !ok {
		return diagnostics.NoMatchf("cannot match sequence pattern against non-sequence value %v", source)
	}

	for i := len(node.Elements) - 1; i >= 0; i-- {
		elem := node.Elements[i]

		if tail, isTail := elem.(*pattern.BindVariable); isTail && tail.IsTail {
			if i != len(node.Elements)-1 {
				return diagnostics.NoMatchf("tail capture %q is not the last element", tail.Name)
			}
			suffix := []interface{}{}
			if len(src) > i {
				suffix = append(suffix, src[i:]...)
			}
			if tail.Name == pattern.Discard {
				continue
			}
			if err := Bind(scope, tail.Name, suffix, policy); err != nil {
				return err
			}
			continue
		}

		if i >= len(src) {
			return diagnostics.NoMatchf("source sequence has %d elements, pattern needs %d", len(src), len(node.Elements))
		}
		if err := Match(elem, src[i], scope, policy); err != nil {
			return err
		}
	}
	return nil
}

func matchMapping(node *pattern.Mapping, source interface{}, scope map[string]interface{}, policy Policy) error {
	for key, valuePattern := range node.Entries {
		value, ok := lookupKey(source, key)
		if !ok {
			return diagnostics.NoMatchf("source has no key %q", key)
		}
		if err := Match(valuePattern, value, scope, policy); err != nil {
			return err
		}
	}
	return nil
}

func matchRegex(node *pattern.RegexLiteral, source interface{}) error {
	str, ok := source.(string)
	if !ok || !node.Regex.MatchString(str) {
		return diagnostics.NoMatchf("source value %v does not match regex /%s/%s",
			source, node.Source, caseFlag(node.IgnoreCase))
	}
	return nil
}

// matchRegexGroups projects the captured groups, group 0 (the whole match)
// first, into a sequence and matches it against the inner sequence pattern.
// This is how "discard the whole match, bind individual groups" works.
func matchRegexGroups(node *pattern.RegexGroupBinding, source interface{}, scope map[string]interface{}, policy Policy) error {
	str, ok := source.(string)
	if !ok {
		return diagnostics.NoMatchf("source value %v does not match regex /%s/%s",
			source, node.Regex.Source, caseFlag(node.Regex.IgnoreCase))
	}
	groups := node.Regex.Regex.FindStringSubmatch(str)
	if groups == nil {
		return diagnostics.NoMatchf("source value %q does not match regex /%s/%s",
			str, node.Regex.Source, caseFlag(node.Regex.IgnoreCase))
	}
	projected := make([]interface{}, len(groups))
	for i, g := range groups {
		projected[i] = g
	}
	return Match(node.Groups, projected, scope, policy)
}

func caseFlag(ignoreCase bool) string {
	if ignoreCase {
		return "i"
	}
	return ""
}

func asSequence(source interface{}) ([]interface{}, bool) {
	seq, ok := source.([]interface{})
	return seq, ok
}

// lookupKey probes mapping-shaped sources. YAML and JSON decoders produce
// string-keyed maps; the interface-keyed form shows up from hand-built
// sources and is accepted too.
func lookupKey(source interface{}, key string) (interface{}, bool) {
	switch src := source.(type) {
	case map[string]interface{}:
		value, ok := src[key]
		return value, ok
	case map[interface{}]interface{}:
		value, ok := src[key]
		return value, ok
	}
	return nil, false
}

func numericValue(v interface{}) (float64, bool) {
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
