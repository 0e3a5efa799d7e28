// Package funmatch implements Erlang-style structural pattern matching as an
// embeddable library: destructuring assignment, structural assertions,
// guarded conditionals and multi-clause dispatch over dynamic, tree-shaped
// values (scalars, sequences, string-keyed mappings).
//
// Pattern grammar:
//
//	[p1, p2, ..., | tail]      sequence, optional tail capture
//	{key = pattern, ...}       mapping
//	'x'  "x"  42               literal assertions
//	name                       bind variable
//	_                          wildcard (consumes a position, binds nothing)
//	/re/  /re/i                anchored regex assertion
//	/re/ [p1, p2, ...]         regex with captured-group bindings
//	... when <condition>       guard condition over the bound variables
//
// Matching either binds variables into a caller-supplied Scope or verifies
// them against it, depending on the mutable-scope policy.
package funmatch

import (
	"github.com/funvibe/funmatch/internal/cond"
	"github.com/funvibe/funmatch/internal/diagnostics"
	"github.com/funvibe/funmatch/internal/match"
	"github.com/funvibe/funmatch/internal/pattern"
)

// Scope is the mutable string-keyed mapping that receives variable bindings.
// Insertion order is irrelevant. The engine only ever mutates keys it binds.
type Scope map[string]interface{}

// Clause pairs a pattern with the action to invoke when it matches. A nil
// Action makes the clause a bare sentinel: Guard reports the match without
// producing a result.
type Clause struct {
	Pattern string
	Action  func(Scope) interface{}
}

// Matcher is a pattern-matching engine instance. Each instance owns its own
// compiled-pattern cache, so isolated instances never share state. A Matcher
// is safe for concurrent Match and Guard calls as long as the supplied
// scopes are not shared across calls.
type Matcher struct {
	cache        *pattern.Cache
	mutableScope bool
}

// New returns a Matcher with the mutable scope policy: binding always
// overwrites existing scope entries.
func New() *Matcher {
	return &Matcher{cache: pattern.NewCache(), mutableScope: true}
}

// NewImmutable returns a Matcher with the immutable scope policy: an
// existing scope entry becomes a value to verify against, not overwrite.
func NewImmutable() *Matcher {
	return &Matcher{cache: pattern.NewCache(), mutableScope: false}
}

// SetMutableScope switches the scope policy. Not safe to call concurrently
// with Match or Guard; configure the instance before sharing it.
func (m *Matcher) SetMutableScope(mutable bool) {
	m.mutableScope = mutable
}

// MutableScope reports the current scope policy.
func (m *Matcher) MutableScope() bool {
	return m.mutableScope
}

func (m *Matcher) policy() match.Policy {
	if m.mutableScope {
		return match.Mutable
	}
	return match.Immutable
}

// Match compiles patternText (memoized per Matcher), unifies it against
// source and returns the scope holding the resulting bindings. When the
// caller passes a scope it is bound into and returned; otherwise a fresh
// one is allocated. Failure is *NoMatchError for structural or guard
// mismatches and *InvalidPatternError for malformed pattern text.
//
// When the pattern carries a `when` condition, matching runs against a
// temporary scope first and the caller's scope is only touched if the
// condition holds.
func (m *Matcher) Match(patternText string, source interface{}, scope ...Scope) (Scope, error) {
	compiled, err := m.cache.Load(patternText)
	if err != nil {
		return nil, err
	}

	target := Scope{}
	if len(scope) > 0 && scope[0] != nil {
		target = scope[0]
	}
	policy := m.policy()

	if compiled.Condition == nil {
		if err := match.Match(compiled.Tree, source, target, policy); err != nil {
			return nil, err
		}
		return target, nil
	}

	// Guarded match: bind into a temporary scope so a failed condition
	// leaves the caller's scope untouched. Under the immutable policy the
	// temporary starts as a copy, so verification against pre-existing
	// entries still applies.
	temp := make(map[string]interface{}, len(target))
	if policy == match.Immutable {
		for k, v := range target {
			temp[k] = v
		}
	}
	if err := match.Match(compiled.Tree, source, temp, policy); err != nil {
		return nil, err
	}
	if !cond.Holds(compiled.Condition, temp) {
		return nil, diagnostics.NoMatchf("condition not met: %s", compiled.ConditionText)
	}
	for k, v := range temp {
		target[k] = v
	}
	return target, nil
}

// Guard dispatches source over the ordered clauses: the first clause whose
// pattern (and condition, if any) matches has its action invoked with the
// bound variables, and its result is returned with ok=true. Clauses that
// fail with a non-match are skipped; any other error, such as a malformed
// pattern, propagates immediately. When no clause matches, Guard returns
// ok=false and no error.
func (m *Matcher) Guard(source interface{}, clauses []Clause) (interface{}, bool, error) {
	for _, clause := range clauses {
		scope, err := m.Match(clause.Pattern, source)
		if err != nil {
			if IsNoMatch(err) {
				continue
			}
			return nil, false, err
		}
		if clause.Action == nil {
			return nil, true, nil
		}
		return clause.Action(scope), true, nil
	}
	return nil, false, nil
}

// Compile makes sure patternText is cached and returns its content
// fingerprint. Useful for validating pattern literals up front.
func (m *Matcher) Compile(patternText string) (uint64, error) {
	compiled, err := m.cache.Load(patternText)
	if err != nil {
		return 0, err
	}
	return compiled.Fingerprint(), nil
}

// Literals returns the exact string literals the pattern asserts, in
// traversal order. Any source value the pattern matches necessarily
// contains each of them; prefilters build on this.
func (m *Matcher) Literals(patternText string) ([]string, error) {
	compiled, err := m.cache.Load(patternText)
	if err != nil {
		return nil, err
	}
	return pattern.StringLiterals(compiled.Tree), nil
}
