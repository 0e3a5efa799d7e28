// Package ruleset loads declarative dispatch tables: named patterns defined
// in a YAML document, compiled once and matched against many source values.
// A literal prefilter skips rules whose required string literals cannot
// occur in the source.
package ruleset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/funmatch"
	"github.com/funvibe/funmatch/internal/prefilter"
)

// Rule is one entry of a dispatch table.
type Rule struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Tags    []string `yaml:"tags"`
}

type document struct {
	Rules []Rule `yaml:"rules"`
}

// Result is a successful rule match: the rule plus the variable bindings its
// pattern produced.
type Result struct {
	Rule     Rule
	Bindings funmatch.Scope
}

// Ruleset is a compiled, ordered rule table. Safe for concurrent Match
// calls; each call gets its own scopes.
type Ruleset struct {
	engine *funmatch.Matcher
	rules  []Rule
	filter *prefilter.Filter
}

// Load parses a YAML rule document and compiles every pattern. A rule
// without an id gets a generated one. Any malformed pattern fails the whole
// load, naming the rule.
func Load(data []byte) (*Ruleset, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ruleset: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("ruleset: no rules defined")
	}

	rs := &Ruleset{engine: funmatch.New(), rules: doc.Rules}
	literals := make([][]string, len(rs.rules))
	for i := range rs.rules {
		rule := &rs.rules[i]
		if rule.Pattern == "" {
			return nil, fmt.Errorf("ruleset: rule %q has no pattern", rule.Name)
		}
		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		lits, err := rs.engine.Literals(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("ruleset: rule %q: %w", rule.Name, err)
		}
		literals[i] = lits
	}
	rs.filter = prefilter.Build(literals)
	return rs, nil
}

// LoadFile reads and loads a YAML rule document from disk.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data)
}

// Rules returns the compiled rules in document order.
func (rs *Ruleset) Rules() []Rule {
	return rs.rules
}

// Match returns the first rule, in document order, whose pattern matches the
// source, with its bindings. ok is false when no rule matches. Pattern
// errors other than a non-match propagate.
func (rs *Ruleset) Match(source interface{}) (Result, bool, error) {
	for _, idx := range rs.candidates(source) {
		rule := rs.rules[idx]
		scope, err := rs.engine.Match(rule.Pattern, source)
		if err != nil {
			if funmatch.IsNoMatch(err) {
				continue
			}
			return Result{}, false, err
		}
		return Result{Rule: rule, Bindings: scope}, true, nil
	}
	return Result{}, false, nil
}

// MatchAll returns every matching rule in document order.
func (rs *Ruleset) MatchAll(source interface{}) ([]Result, error) {
	var results []Result
	for _, idx := range rs.candidates(source) {
		rule := rs.rules[idx]
		scope, err := rs.engine.Match(rule.Pattern, source)
		if err != nil {
			if funmatch.IsNoMatch(err) {
				continue
			}
			return nil, err
		}
		results = append(results, Result{Rule: rule, Bindings: scope})
	}
	return results, nil
}

// candidates consults the literal prefilter. Sources that cannot be
// rendered to JSON skip the filter rather than fail: the structural matcher
// is the authority on what matches.
func (rs *Ruleset) candidates(source interface{}) []int {
	if !rs.filter.Enabled() {
		return rs.allRules()
	}
	doc, err := json.Marshal(source)
	if err != nil {
		return rs.allRules()
	}
	return rs.filter.Candidates(string(doc))
}

func (rs *Ruleset) allRules() []int {
	out := make([]int, len(rs.rules))
	for i := range out {
		out[i] = i
	}
	return out
}
