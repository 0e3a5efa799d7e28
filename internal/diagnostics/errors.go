package diagnostics

import "fmt"

// NoMatchError signals that a structurally well-formed pattern did not match
// the source value. It is expected control flow: guard dispatch swallows it
// and moves on to the next clause.
type NoMatchError struct {
	Message string
}

func (e *NoMatchError) Error() string {
	return e.Message
}

// InvalidPatternError signals malformed pattern or condition text, or a regex
// that fails to compile. It is always fatal to the call and never retried.
// Line and Column are set when the condition parser can point at the
// offending token; zero values mean "position unknown".
type InvalidPatternError struct {
	Message string
	Line    int
	Column  int
}

func (e *InvalidPatternError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (at %d:%d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

func NoMatchf(format string, args ...interface{}) *NoMatchError {
	return &NoMatchError{Message: fmt.Sprintf(format, args...)}
}

func InvalidPatternf(format string, args ...interface{}) *InvalidPatternError {
	return &InvalidPatternError{Message: fmt.Sprintf(format, args...)}
}

func InvalidPatternAt(line, column int, format string, args ...interface{}) *InvalidPatternError {
	return &InvalidPatternError{Message: fmt.Sprintf(format, args...), Line: line, Column: column}
}
