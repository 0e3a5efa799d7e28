package pattern

import (
	"regexp"
	"strings"

	"github.com/funvibe/funmatch/internal/ast"
	"github.com/funvibe/funmatch/internal/diagnostics"
	"github.com/funvibe/funmatch/internal/escape"
	"github.com/funvibe/funmatch/internal/parser"
)

// whenSeparator locates the first whitespace-delimited `when` in the escaped
// template. Literals are already replaced by placeholders at this point, so
// a `when` inside a string or regex cannot split the pattern.
var whenSeparator = regexp.MustCompile(`\swhen(\s|$)`)

// Compile turns one pattern-condition string into its compiled form. Callers
// normally go through a Cache; compiling the same text twice yields
// equivalent results either way.
func Compile(text string) (*CompiledPattern, error) {
	template, literals, err := escape.Escape(text)
	if err != nil {
		return nil, err
	}

	patternPart := template
	conditionPart := ""
	hasWhen := false
	if loc := whenSeparator.FindStringIndex(template); loc != nil {
		patternPart = template[:loc[0]]
		conditionPart = template[loc[1]:]
		hasWhen = true
	}
	if strings.TrimSpace(patternPart) == "" {
		return nil, diagnostics.InvalidPatternf("empty pattern")
	}

	tree, err := parseTree(patternPart, literals)
	if err != nil {
		return nil, err
	}

	compiled := &CompiledPattern{Tree: tree, fingerprint: fingerprint(text)}

	if hasWhen {
		conditionText := restoreLiterals(conditionPart, literals)
		if strings.TrimSpace(conditionText) == "" {
			return nil, diagnostics.InvalidPatternf("empty condition after when")
		}
		condition, err := parser.Parse(conditionText)
		if err != nil {
			return nil, err
		}
		if err := checkConditionNames(condition, tree); err != nil {
			return nil, err
		}
		compiled.Condition = condition
		compiled.ConditionText = strings.TrimSpace(conditionText)
	}

	return compiled, nil
}

// restoreLiterals puts the original literal text back into the condition
// part of the template. The condition is compiled by its own parser, which
// wants the raw source, not placeholder markers.
func restoreLiterals(template string, literals []escape.Literal) string {
	if !strings.ContainsRune(template, rune(escape.MarkerStart)) {
		return template
	}
	var out strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != escape.MarkerStart {
			out.WriteByte(ch)
			continue
		}
		// Placeholder: kind byte, decimal index, MarkerEnd.
		j := i + 2
		idx := 0
		for j < len(template) && template[j] != escape.MarkerEnd {
			idx = idx*10 + int(template[j]-'0')
			j++
		}
		if idx >= 1 && idx <= len(literals) {
			out.WriteString(literals[idx-1].Raw)
		}
		i = j
	}
	return out.String()
}

// checkConditionNames rejects conditions that reference names the pattern
// cannot bind. Resolving these at compile time keeps unresolved identifiers
// an invalid-pattern error instead of a silent runtime non-match.
func checkConditionNames(condition ast.Expression, tree Node) error {
	bound := BoundNames(tree)
	for _, name := range ast.Identifiers(condition) {
		if !bound[name] {
			return diagnostics.InvalidPatternf("condition references %q, which the pattern does not bind", name)
		}
	}
	return nil
}
