package query

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/kailas-cloud/searchdsl/decode"
)

// Clause is implemented by Query and by every query payload type.
type Clause interface {
	// IsEmpty reports whether the clause carries no effective constraint.
	// Empty clauses are dropped when embedded in a compound query.
	IsEmpty() bool

	variant() (Kind, Clause)
}

// Query holds exactly one query variant. The zero Query holds none and
// encodes as null.
type Query struct {
	clause Clause
}

// From wraps c in a Query. A Query passed in is returned unchanged.
func From(c Clause) Query {
	if c == nil {
		return Query{}
	}
	_, p := c.variant()
	if p == nil {
		return Query{}
	}
	return Query{clause: p}
}

// FromNonEmpty wraps c only when it is not empty.
func FromNonEmpty(c Clause) (Query, bool) {
	if c == nil || c.IsEmpty() {
		return Query{}, false
	}
	return From(c), true
}

// Collect wraps every non-empty clause, dropping the rest.
func Collect(clauses ...Clause) []Query {
	var out []Query
	for _, c := range clauses {
		if q, ok := FromNonEmpty(c); ok {
			out = append(out, q)
		}
	}
	return out
}

// Equal reports whether a and b hold the same variant with equal payloads.
// A payload and a Query wrapping an equal payload are equal.
func Equal(a, b Clause) bool {
	ka, pa := unwrap(a)
	kb, pb := unwrap(b)
	return ka == kb && reflect.DeepEqual(pa, pb)
}

// Equal reports whether q and c hold the same variant with equal payloads.
func (q Query) Equal(c Clause) bool { return Equal(q, c) }

func unwrap(c Clause) (Kind, Clause) {
	if c == nil {
		return KindNone, nil
	}
	return c.variant()
}

// Kind returns the held variant, KindNone for the zero Query.
func (q Query) Kind() Kind {
	k, _ := unwrap(q.clause)
	return k
}

// Clause returns the held payload, nil for the zero Query.
func (q Query) Clause() Clause { return q.clause }

// IsZero reports whether q holds no variant.
func (q Query) IsZero() bool { return q.clause == nil }

// IsEmpty delegates to the held payload. The zero Query is empty.
func (q Query) IsEmpty() bool {
	return q.clause == nil || q.clause.IsEmpty()
}

func (q Query) variant() (Kind, Clause) {
	return unwrap(q.clause)
}

// Format renders q exactly as its payload would be rendered.
func (q Query) Format(f fmt.State, verb rune) {
	if q.clause == nil {
		fmt.Fprint(f, "<nil>")
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), q.clause)
}

// MarshalJSON encodes the payload's wire form.
func (q Query) MarshalJSON() ([]byte, error) {
	if q.clause == nil {
		return []byte("null"), nil
	}
	return json.Marshal(q.clause)
}

// UnmarshalJSON decodes any query variant. Candidates are tried in
// declaration order; only those whose clause name equals the single
// top-level key are considered, and unknown keys fall through to JSON.
func (q *Query) UnmarshalJSON(data []byte) error {
	if err := decode.CheckDepth("query", data, decode.MaxDepth); err != nil {
		return err
	}
	if decode.IsNull(data) {
		*q = Query{}
		return nil
	}
	c, err := decodeVariant(data)
	if err != nil {
		return err
	}
	q.clause = c
	return nil
}

// Decode decodes data with the given options.
func Decode(data []byte, opts ...decode.Option) (Query, error) {
	o := decode.Apply(opts...)
	if err := decode.CheckDepth("query", data, o.MaxDepth); err != nil {
		return Query{}, err
	}
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return Query{}, err
	}
	return q, nil
}
