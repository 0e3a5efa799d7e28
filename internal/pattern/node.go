package pattern

import (
	"hash/fnv"
	"regexp"

	"github.com/funvibe/funmatch/internal/ast"
)

// Node is the closed set of compiled pattern forms. Matching dispatches on
// the concrete type, so a new form cannot be added without the matcher
// learning about it.
type Node interface {
	patternNode()
}

// Sequence matches an ordered source sequence element by element.
type Sequence struct {
	Elements []Node
}

// Mapping matches the listed keys of a key/value source; keys missing from
// the pattern are ignored.
type Mapping struct {
	Entries map[string]Node
}

// LiteralString is an exact-equality string leaf.
type LiteralString struct {
	Value string
}

// LiteralNumber is an exact-equality numeric leaf.
type LiteralNumber struct {
	Value float64
}

// RegexLiteral matches a string source against the whole-string anchored
// form of its regex.
type RegexLiteral struct {
	Source     string
	IgnoreCase bool
	Regex      *regexp.Regexp
}

// BindVariable records the source value under Name on match. Name "_"
// discards the value but still consumes a position. IsTail is only legal in
// the final slot of a sequence pattern and captures the remaining suffix.
type BindVariable struct {
	Name   string
	IsTail bool
}

// Discard is the wildcard variable name.
const Discard = "_"

// RegexGroupBinding requires the regex to match the whole source string and
// then matches the captured groups, group 0 (the whole match) first, against
// Groups as if they were an ordinary sequence.
type RegexGroupBinding struct {
	Regex  *RegexLiteral
	Groups *Sequence
}

func (s *Sequence) patternNode()          {}
func (m *Mapping) patternNode()           {}
func (l *LiteralString) patternNode()     {}
func (l *LiteralNumber) patternNode()     {}
func (r *RegexLiteral) patternNode()      {}
func (b *BindVariable) patternNode()      {}
func (r *RegexGroupBinding) patternNode() {}

// CompiledPattern is the cached result of compiling one pattern-condition
// string. Immutable once constructed.
type CompiledPattern struct {
	Tree          Node
	Condition     ast.Expression // nil when the pattern has no when clause
	ConditionText string
	fingerprint   uint64
}

// Fingerprint identifies the source pattern-condition text; byte-identical
// inputs always carry the same fingerprint.
func (c *CompiledPattern) Fingerprint() uint64 {
	return c.fingerprint
}

func fingerprint(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

// BoundNames returns every variable name the tree can bind, wildcards
// excluded. Conditions are validated against this set at compile time.
func BoundNames(node Node) map[string]bool {
	names := make(map[string]bool)
	collectBoundNames(node, names)
	return names
}

func collectBoundNames(node Node, names map[string]bool) {
	switch n := node.(type) {
	case *BindVariable:
		if n.Name != Discard {
			names[n.Name] = true
		}
	case *Sequence:
		for _, elem := range n.Elements {
			collectBoundNames(elem, names)
		}
	case *Mapping:
		for _, value := range n.Entries {
			collectBoundNames(value, names)
		}
	case *RegexGroupBinding:
		collectBoundNames(n.Groups, names)
	}
}

// StringLiterals returns every exact string literal the tree asserts, in
// traversal order. A source value that matches the pattern necessarily
// contains each of them, which is what the ruleset prefilter relies on.
func StringLiterals(node Node) []string {
	var out []string
	collectStringLiterals(node, &out)
	return out
}

func collectStringLiterals(node Node, out *[]string) {
	switch n := node.(type) {
	case *LiteralString:
		*out = append(*out, n.Value)
	case *Sequence:
		for _, elem := range n.Elements {
			collectStringLiterals(elem, out)
		}
	case *Mapping:
		for _, value := range n.Entries {
			collectStringLiterals(value, out)
		}
	}
}
