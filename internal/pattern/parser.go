package pattern

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/funmatch/internal/diagnostics"
	"github.com/funvibe/funmatch/internal/escape"
)

// MaxRecursionDepth bounds structural nesting, reported as an invalid
// pattern rather than a stack fault.
const MaxRecursionDepth = 200

// treeParser builds a pattern tree directly from the escaped template. The
// accepted grammar is JSON-like: [...] is a sequence, {key = value, ...} a
// mapping, a bare identifier a bind variable, and literal placeholders stand
// for the payloads extracted by the escaper.
type treeParser struct {
	template string
	literals []escape.Literal
	position int
	depth    int
}

// parseTree parses the pattern part of an escaped template into a tree.
func parseTree(template string, literals []escape.Literal) (Node, error) {
	p := &treeParser{template: template, literals: literals}
	node, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.position < len(p.template) {
		return nil, diagnostics.InvalidPatternf("unexpected trailing pattern text %q", p.rest())
	}
	return node, nil
}

func (p *treeParser) rest() string {
	return strings.TrimSpace(p.template[p.position:])
}

func (p *treeParser) skipSpace() {
	for p.position < len(p.template) {
		r, w := utf8.DecodeRuneInString(p.template[p.position:])
		if !unicode.IsSpace(r) {
			return
		}
		p.position += w
	}
}

func (p *treeParser) peek() byte {
	if p.position >= len(p.template) {
		return 0
	}
	return p.template[p.position]
}

func (p *treeParser) parseElement() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		return nil, diagnostics.InvalidPatternf("pattern too deeply nested")
	}

	p.skipSpace()
	switch ch := p.peek(); {
	case ch == 0:
		return nil, diagnostics.InvalidPatternf("unexpected end of pattern")
	case ch == escape.MarkerStart:
		return p.parseLiteral()
	case ch == '[':
		return p.parseSequence()
	case ch == '{':
		return p.parseMapping()
	default:
		name, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &BindVariable{Name: name}, nil
	}
}

func (p *treeParser) parseLiteral() (Node, error) {
	lit, err := p.readMarker()
	if err != nil {
		return nil, err
	}
	switch lit.Kind {
	case escape.KindString:
		return &LiteralString{Value: lit.Str}, nil
	case escape.KindNumber:
		return &LiteralNumber{Value: lit.Num}, nil
	}

	re, err := compileRegex(lit)
	if err != nil {
		return nil, err
	}

	// A bracketed sequence immediately after a regex binds the captured
	// groups instead of asserting the match alone.
	p.skipSpace()
	if p.peek() == '[' {
		seq, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		return &RegexGroupBinding{Regex: re, Groups: seq.(*Sequence)}, nil
	}
	return re, nil
}

func (p *treeParser) readMarker() (escape.Literal, error) {
	p.position++ // consume MarkerStart
	if p.position >= len(p.template) {
		return escape.Literal{}, diagnostics.InvalidPatternf("truncated literal placeholder")
	}
	kind, ok := escape.KindFromByte(p.template[p.position])
	if !ok {
		return escape.Literal{}, diagnostics.InvalidPatternf("corrupt literal placeholder")
	}
	p.position++
	start := p.position
	for p.position < len(p.template) && p.template[p.position] != escape.MarkerEnd {
		p.position++
	}
	if p.position >= len(p.template) {
		return escape.Literal{}, diagnostics.InvalidPatternf("truncated literal placeholder")
	}
	index, err := strconv.Atoi(p.template[start:p.position])
	p.position++ // consume MarkerEnd
	if err != nil || index < 1 || index > len(p.literals) {
		return escape.Literal{}, diagnostics.InvalidPatternf("corrupt literal placeholder")
	}
	lit := p.literals[index-1]
	if lit.Kind != kind {
		return escape.Literal{}, diagnostics.InvalidPatternf("corrupt literal placeholder")
	}
	return lit, nil
}

func (p *treeParser) parseSequence() (Node, error) {
	p.position++ // consume '['
	seq := &Sequence{}

	p.skipSpace()
	if p.peek() == ']' {
		p.position++
		return seq, nil
	}

	for {
		p.skipSpace()
		if p.peek() == '|' {
			tail, err := p.parseTail()
			if err != nil {
				return nil, err
			}
			seq.Elements = append(seq.Elements, tail)
			return seq, nil
		}

		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		seq.Elements = append(seq.Elements, elem)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.position++
		case '|':
			tail, err := p.parseTail()
			if err != nil {
				return nil, err
			}
			seq.Elements = append(seq.Elements, tail)
			return seq, nil
		case ']':
			p.position++
			return seq, nil
		default:
			return nil, diagnostics.InvalidPatternf("expected ',', '|' or ']' in sequence pattern, got %q", p.rest())
		}
	}
}

// parseTail handles the `| name` suffix. The tail must be the final element;
// anything between it and the closing bracket is malformed.
func (p *treeParser) parseTail() (Node, error) {
	p.position++ // consume '|'
	p.skipSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ']' {
		return nil, diagnostics.InvalidPatternf("tail capture %q must be the last element of a sequence pattern", name)
	}
	p.position++ // consume ']'
	return &BindVariable{Name: name, IsTail: true}, nil
}

func (p *treeParser) parseMapping() (Node, error) {
	p.position++ // consume '{'
	mapping := &Mapping{Entries: make(map[string]Node)}

	p.skipSpace()
	if p.peek() == '}' {
		p.position++
		return mapping, nil
	}

	for {
		p.skipSpace()
		key, err := p.parseMappingKey()
		if err != nil {
			return nil, err
		}

		p.skipSpace()
		if p.peek() != '=' {
			return nil, diagnostics.InvalidPatternf("expected '=' after mapping key %q", key)
		}
		p.position++

		value, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		mapping.Entries[key] = value

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.position++
		case '}':
			p.position++
			return mapping, nil
		default:
			return nil, diagnostics.InvalidPatternf("expected ',' or '}' in mapping pattern, got %q", p.rest())
		}
	}
}

// parseMappingKey accepts a bare identifier or a quoted string literal.
func (p *treeParser) parseMappingKey() (string, error) {
	if p.peek() == escape.MarkerStart {
		lit, err := p.readMarker()
		if err != nil {
			return "", err
		}
		if lit.Kind != escape.KindString {
			return "", diagnostics.InvalidPatternf("mapping key must be an identifier or string, got %s", lit.Raw)
		}
		return lit.Str, nil
	}
	return p.parseIdentifier()
}

func (p *treeParser) parseIdentifier() (string, error) {
	start := p.position
	for p.position < len(p.template) {
		r, w := utf8.DecodeRuneInString(p.template[p.position:])
		if r != '_' && !unicode.IsLetter(r) && !(p.position > start && unicode.IsDigit(r)) {
			break
		}
		p.position += w
	}
	if p.position == start {
		return "", diagnostics.InvalidPatternf("expected identifier in pattern, got %q", p.rest())
	}
	return p.template[start:p.position], nil
}

// compileRegex precompiles a regex literal as an anchored whole-string
// match; substring hits are not matches.
func compileRegex(lit escape.Literal) (*RegexLiteral, error) {
	source := lit.Str
	anchored := `\A(?:` + source + `)\z`
	if lit.IgnoreCase {
		anchored = `(?i)` + anchored
	}
	re, err := regexp.Compile(anchored)
	if err != nil {
		return nil, diagnostics.InvalidPatternf("invalid regex /%s/: %v", source, err)
	}
	return &RegexLiteral{Source: source, IgnoreCase: lit.IgnoreCase, Regex: re}, nil
}
