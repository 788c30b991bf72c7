package decode

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Every *Error matches exactly one of them with errors.Is.
var (
	ErrNoMatchingVariant = errors.New("no matching variant")
	ErrMalformedField    = errors.New("malformed field")
	ErrRecursionLimit    = errors.New("recursion limit exceeded")
)

// Error describes why an input could not be decoded.
type Error struct {
	Kind   error  // ErrNoMatchingVariant, ErrMalformedField or ErrRecursionLimit
	Target string // what was being decoded: "query", "bucket", ...

	// NoMatchingVariant
	Shape string   // JSON type of the input: object, array, string, number, bool, null
	Keys  []string // top-level keys when Shape is object, sorted

	// MalformedField
	Field    string
	Expected string

	// RecursionLimit
	Depth int
	Limit int

	// Err is the underlying cause; for NoMatchingVariant it joins the
	// per-candidate failures.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("decode ")
	b.WriteString(e.Target)
	b.WriteString(": ")

	switch e.Kind {
	case ErrNoMatchingVariant:
		b.WriteString("no matching variant for ")
		b.WriteString(e.Shape)
		if e.Shape == "object" {
			fmt.Fprintf(&b, " with keys [%s]", strings.Join(e.Keys, " "))
		}
	case ErrMalformedField:
		fmt.Fprintf(&b, "field %q: expected %s", e.Field, e.Expected)
	case ErrRecursionLimit:
		fmt.Fprintf(&b, "nesting depth %d exceeds limit %d", e.Depth, e.Limit)
	default:
		b.WriteString("failed")
	}

	if e.Err != nil && e.Kind != ErrNoMatchingVariant {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the cause. The joined candidate failures of a
// NoMatchingVariant error stay in Err but are not unwrapped, so each
// error matches a single kind.
func (e *Error) Unwrap() error {
	if e.Kind == ErrNoMatchingVariant {
		return nil
	}
	return e.Err
}

// NoMatch builds a NoMatchingVariant error for data.
func NoMatch(target string, data []byte, causes ...error) *Error {
	return &Error{
		Kind:   ErrNoMatchingVariant,
		Target: target,
		Shape:  Shape(data),
		Keys:   TopLevelKeys(data),
		Err:    errors.Join(causes...),
	}
}

// Malformed builds a MalformedField error.
func Malformed(target, field, expected string, cause error) *Error {
	return &Error{
		Kind:     ErrMalformedField,
		Target:   target,
		Field:    field,
		Expected: expected,
		Err:      cause,
	}
}

// TooDeep builds a RecursionLimit error.
func TooDeep(target string, depth, limit int) *Error {
	return &Error{
		Kind:   ErrRecursionLimit,
		Target: target,
		Depth:  depth,
		Limit:  limit,
	}
}
