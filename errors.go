package funmatch

import (
	"errors"

	"github.com/funvibe/funmatch/internal/diagnostics"
)

// NoMatchError is the expected, recoverable failure: the pattern is well
// formed but the source does not satisfy it.
type NoMatchError = diagnostics.NoMatchError

// InvalidPatternError is fatal to the call: the pattern or condition text is
// malformed, or an embedded regex does not compile.
type InvalidPatternError = diagnostics.InvalidPatternError

// IsNoMatch reports whether err is a structural or guard-condition mismatch.
func IsNoMatch(err error) bool {
	var nm *NoMatchError
	return errors.As(err, &nm)
}

// IsInvalidPattern reports whether err came from malformed pattern text.
func IsInvalidPattern(err error) bool {
	var ip *InvalidPatternError
	return errors.As(err, &ip)
}
