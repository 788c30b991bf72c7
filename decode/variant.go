package decode

import (
	"errors"
	"fmt"
)

// Candidate is one alternative of an untagged family.
type Candidate[T any] struct {
	Name   string
	Decode func(data []byte) (T, error)
}

// FirstMatch tries candidates in order and returns the first success.
// A recursion-limit failure aborts immediately. When the input names a
// single candidate and that candidate reports a malformed field, the field
// error is returned as is. Otherwise, when every candidate fails, the
// result is a NoMatchingVariant error carrying each candidate's cause.
func FirstMatch[T any](target string, data []byte, candidates []Candidate[T]) (T, error) {
	var zero T
	causes := make([]error, 0, len(candidates))

	for _, c := range candidates {
		v, err := c.Decode(data)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, ErrRecursionLimit) {
			return zero, err
		}
		var de *Error
		if len(candidates) == 1 && errors.As(err, &de) && de.Kind == ErrMalformedField {
			return zero, err
		}
		causes = append(causes, fmt.Errorf("%s: %w", c.Name, err))
	}
	return zero, NoMatch(target, data, causes...)
}
