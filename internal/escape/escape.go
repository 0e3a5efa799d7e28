package escape

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/funmatch/internal/diagnostics"
)

// Kind classifies an extracted literal.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindRegex
)

// Markers delimit a literal placeholder in the escaped template:
// MarkerStart, a kind byte ('s', 'n' or 'r'), the 1-based literal index in
// decimal, MarkerEnd. The control bytes cannot occur in pattern text, so the
// structural parser never confuses a placeholder with user syntax.
const (
	MarkerStart byte = 0x01
	MarkerEnd   byte = 0x02
)

// Literal is one extracted literal payload.
type Literal struct {
	Kind       Kind
	Str        string  // decoded string value, or regex source
	Num        float64 // numeric value for KindNumber
	IgnoreCase bool    // regex /.../i flag
	Raw        string  // original source text including delimiters
}

// KindByte returns the template marker byte for a literal kind.
func KindByte(k Kind) byte {
	switch k {
	case KindString:
		return 's'
	case KindNumber:
		return 'n'
	default:
		return 'r'
	}
}

// KindFromByte is the inverse of KindByte.
func KindFromByte(b byte) (Kind, bool) {
	switch b {
	case 's':
		return KindString, true
	case 'n':
		return KindNumber, true
	case 'r':
		return KindRegex, true
	}
	return 0, false
}

type state int

const (
	stateOutside state = iota
	stateSingleQuoted
	stateDoubleQuoted
	stateRegex
)

type escaper struct {
	input    string
	position int  // current offset in input
	ch       rune // current rune under examination
	width    int  // byte width of ch

	state     state
	escaped   bool // backslash sub-state of the current literal state
	prevIdent bool // last copied char belonged to an identifier
	template  strings.Builder
	buf       strings.Builder // payload of the literal being scanned
	rawStart  int             // offset of the current literal's first byte
	literals  []Literal
}

// Escape performs a single left-to-right scan over the pattern text,
// extracting quoted-string, numeric and slash-delimited regex literals.
// It returns the marked template plus the ordered literal payloads.
// Unterminated string or regex literals are invalid patterns; silently
// truncating at end of input would hide caller mistakes.
func Escape(source string) (string, []Literal, error) {
	e := &escaper{input: source}
	e.readRune()

	for e.ch != 0 {
		switch e.state {
		case stateOutside:
			if err := e.scanOutside(); err != nil {
				return "", nil, err
			}
		case stateSingleQuoted:
			e.scanQuoted('\'')
		case stateDoubleQuoted:
			e.scanQuoted('"')
		case stateRegex:
			e.scanRegex()
		}
	}

	switch e.state {
	case stateSingleQuoted, stateDoubleQuoted:
		return "", nil, diagnostics.InvalidPatternf("unterminated string literal: %s", e.input[e.rawStart:])
	case stateRegex:
		return "", nil, diagnostics.InvalidPatternf("unterminated regex literal: %s", e.input[e.rawStart:])
	}

	return e.template.String(), e.literals, nil
}

func (e *escaper) readRune() {
	e.position += e.width
	if e.position >= len(e.input) {
		e.ch = 0
		e.width = 0
		return
	}
	r, w := utf8.DecodeRuneInString(e.input[e.position:])
	e.ch = r
	e.width = w
}

func (e *escaper) peekIsDigit() bool {
	next := e.position + e.width
	return next < len(e.input) && e.input[next] >= '0' && e.input[next] <= '9'
}

func (e *escaper) scanOutside() error {
	switch {
	case e.ch == '\'':
		e.enter(stateSingleQuoted)
	case e.ch == '"':
		e.enter(stateDoubleQuoted)
	case e.ch == '/':
		e.enter(stateRegex)
	case !e.prevIdent && (e.ch >= '0' && e.ch <= '9' ||
		(e.ch == '+' || e.ch == '-') && e.peekIsDigit()):
		// A digit inside an identifier (a1) is not a numeric literal.
		return e.scanNumber()
	default:
		e.prevIdent = isIdentRune(e.ch)
		e.template.WriteRune(e.ch)
		e.readRune()
	}
	return nil
}

func isIdentRune(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (e *escaper) enter(s state) {
	e.state = s
	e.escaped = false
	e.prevIdent = false
	e.rawStart = e.position
	e.buf.Reset()
	e.readRune() // consume the opening delimiter
}

// scanQuoted handles both quote styles; they normalize to the same internal
// string literal, so the delimiter is not preserved. An escaped quote becomes
// a literal quote character.
func (e *escaper) scanQuoted(delim rune) {
	for e.ch != 0 {
		if e.escaped {
			switch e.ch {
			case '\'', '"', '\\':
				e.buf.WriteRune(e.ch)
			default:
				e.buf.WriteRune('\\')
				e.buf.WriteRune(e.ch)
			}
			e.escaped = false
			e.readRune()
			continue
		}
		if e.ch == '\\' {
			e.escaped = true
			e.readRune()
			continue
		}
		if e.ch == delim {
			e.readRune() // consume the closing delimiter
			e.emit(Literal{Kind: KindString, Str: e.buf.String(), Raw: e.input[e.rawStart:e.position]})
			e.state = stateOutside
			return
		}
		e.buf.WriteRune(e.ch)
		e.readRune()
	}
}

// scanRegex collects the regex source verbatim; backslash escapes stay part
// of the source so the regex engine sees them. An optional trailing 'i'
// immediately after the closing delimiter is recorded as a flag, not emitted.
func (e *escaper) scanRegex() {
	for e.ch != 0 {
		if e.escaped {
			e.buf.WriteRune('\\')
			e.buf.WriteRune(e.ch)
			e.escaped = false
			e.readRune()
			continue
		}
		if e.ch == '\\' {
			e.escaped = true
			e.readRune()
			continue
		}
		if e.ch == '/' {
			e.readRune() // consume the closing delimiter
			lit := Literal{Kind: KindRegex, Str: e.buf.String()}
			if e.ch == 'i' {
				lit.IgnoreCase = true
				e.readRune()
			}
			lit.Raw = e.input[e.rawStart:e.position]
			e.emit(lit)
			e.state = stateOutside
			return
		}
		e.buf.WriteRune(e.ch)
		e.readRune()
	}
}

// scanNumber terminates on the first character outside [0-9.eE+-]; the
// terminator is not consumed and is re-examined by the outside state.
func (e *escaper) scanNumber() error {
	start := e.position
	for e.ch != 0 && isNumberRune(e.ch) {
		e.readRune()
	}
	raw := e.input[start:e.position]
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return diagnostics.InvalidPatternf("invalid numeric literal: %s", raw)
	}
	e.emit(Literal{Kind: KindNumber, Num: num, Raw: raw})
	return nil
}

func isNumberRune(ch rune) bool {
	return (ch >= '0' && ch <= '9') || ch == '.' || ch == 'e' || ch == 'E' || ch == '+' || ch == '-'
}

func (e *escaper) emit(lit Literal) {
	e.literals = append(e.literals, lit)
	e.template.WriteByte(MarkerStart)
	e.template.WriteByte(KindByte(lit.Kind))
	e.template.WriteString(strconv.Itoa(len(e.literals)))
	e.template.WriteByte(MarkerEnd)
}
