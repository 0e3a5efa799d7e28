package prefilter

import (
	"encoding/json"

	ac "github.com/petar-dambovaliev/aho-corasick"
)

// Filter is an Aho-Corasick literal prefilter over a set of rules. Every
// exact string literal a rule's pattern asserts must occur somewhere in the
// JSON rendering of a source value for the rule to possibly match, so a
// single automaton pass can discard most rules before any structural
// matching runs.
type Filter struct {
	automaton   *ac.AhoCorasick
	needles     []string
	ruleNeedles [][]int // rule index -> indexes into needles, deduped
	ruleCount   int
}

// Stats describes a built filter.
type Stats struct {
	NeedleCount int
	RuleCount   int
	// FilteredRules is the number of rules that carry at least one needle
	// and can therefore be skipped by the filter.
	FilteredRules int
}

// Build constructs a filter from the string literals of each rule's pattern,
// indexed by rule position. Rules without literals are never filtered.
func Build(ruleLiterals [][]string) *Filter {
	f := &Filter{ruleCount: len(ruleLiterals)}
	dedupe := make(map[string]int)
	f.ruleNeedles = make([][]int, len(ruleLiterals))

	for rule, lits := range ruleLiterals {
		seen := make(map[int]bool)
		for _, lit := range lits {
			if lit == "" {
				continue
			}
			needle := encodeNeedle(lit)
			idx, ok := dedupe[needle]
			if !ok {
				idx = len(f.needles)
				f.needles = append(f.needles, needle)
				dedupe[needle] = idx
			}
			if !seen[idx] {
				seen[idx] = true
				f.ruleNeedles[rule] = append(f.ruleNeedles[rule], idx)
			}
		}
	}

	if len(f.needles) > 0 {
		// Standard match kind so overlapping occurrences are all reported;
		// leftmost-longest would let one needle shadow another and filter a
		// rule that could still match.
		builder := ac.NewAhoCorasickBuilder(ac.Opts{
			MatchKind: ac.StandardMatch,
		})
		automaton := builder.Build(f.needles)
		f.automaton = &automaton
	}
	return f
}

// encodeNeedle renders a literal the way encoding/json renders it inside a
// document, quotes stripped, so the substring search sees the same bytes the
// document does even when the literal needs escaping.
func encodeNeedle(lit string) string {
	b, err := json.Marshal(lit)
	if err != nil || len(b) < 2 {
		return lit
	}
	return string(b[1 : len(b)-1])
}

// Enabled reports whether the filter can exclude anything at all.
func (f *Filter) Enabled() bool {
	return f.automaton != nil
}

// Stats reports the built filter's shape.
func (f *Filter) Stats() Stats {
	filtered := 0
	for _, needles := range f.ruleNeedles {
		if len(needles) > 0 {
			filtered++
		}
	}
	return Stats{NeedleCount: len(f.needles), RuleCount: f.ruleCount, FilteredRules: filtered}
}

// Candidates returns the rule indexes that could still match the document:
// rules all of whose needles occur in it, plus rules with no needles. The
// document is the JSON rendering of the source value.
func (f *Filter) Candidates(doc string) []int {
	if f.automaton == nil {
		out := make([]int, f.ruleCount)
		for i := range out {
			out[i] = i
		}
		return out
	}

	found := make(map[int]bool)
	it := f.automaton.IterOverlapping(doc)
	for m := it.Next(); m != nil; m = it.Next() {
		found[m.Pattern()] = true
	}

	var out []int
	for rule, needles := range f.ruleNeedles {
		ok := true
		for _, n := range needles {
			if !found[n] {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rule)
		}
	}
	return out
}
