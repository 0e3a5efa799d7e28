package match

import (
	"fmt"

	"github.com/funvibe/funmatch/internal/diagnostics"
)

// Bind records value under key in the scope. Under the Mutable policy, or
// when the key is absent, the entry is simply (over)written. Under the
// Immutable policy an existing entry becomes an assertion: the incoming
// value must agree with it or the match fails.
func Bind(scope map[string]interface{}, key string, value interface{}, policy Policy) error {
	if policy == Mutable {
		scope[key] = value
		return nil
	}
	existing, ok := scope[key]
	if !ok {
		scope[key] = value
		return nil
	}
	return verifyExisting(key, existing, value)
}

// verifyExisting compares an incoming value against the existing scope entry
// under the Immutable policy. Scalars compare by value, sequences compare
// element-wise with an indexed key so nested mismatches name their position.
// Anything else (mappings, host structs) is always considered non-matching.
func verifyExisting(key string, existing, incoming interface{}) error {
	if existingNum, ok := numericValue(existing); ok {
		if incomingNum, ok := numericValue(incoming); ok && existingNum == incomingNum {
			return nil
		}
		return diagnostics.NoMatchf("value for %q does not match existing value %v", key, existing)
	}

	switch existingVal := existing.(type) {
	case string:
		if incomingVal, ok := incoming.(string); ok && incomingVal == existingVal {
			return nil
		}
		return diagnostics.NoMatchf("value for %q does not match existing value %q", key, existingVal)

	case bool:
		if incomingVal, ok := incoming.(bool); ok && incomingVal == existingVal {
			return nil
		}
		return diagnostics.NoMatchf("value for %q does not match existing value %v", key, existingVal)

	case []interface{}:
		incomingSeq, ok := incoming.([]interface{})
		if !ok {
			return diagnostics.NoMatchf("value for %q is not an array but the existing value is", key)
		}
		if len(incomingSeq) != len(existingVal) {
			return diagnostics.NoMatchf("array length for %q does not match existing value (%d vs %d)",
				key, len(incomingSeq), len(existingVal))
		}
		for i := range existingVal {
			elemKey := fmt.Sprintf("%s[%d]", key, i)
			if err := verifyExisting(elemKey, existingVal[i], incomingSeq[i]); err != nil {
				return err
			}
		}
		return nil
	}

	if _, ok := incoming.([]interface{}); ok {
		return diagnostics.NoMatchf("value for %q is an array but the existing value is not", key)
	}
	return diagnostics.NoMatchf("existing value for %q is complex; complex values are always considered non-matching", key)
}
