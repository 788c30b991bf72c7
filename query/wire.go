package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/kailas-cloud/searchdsl/decode"
)

// common carries the options most clauses accept.
type common struct {
	Boost *float64 `json:"boost,omitempty"`
	Name  string   `json:"_name,omitempty"`
}

var commonKeys = []string{"boost", "_name"}

func ptr[T any](v T) *T { return &v }

// wrap writes {"key": raw}.
func wrap(key string, raw []byte) []byte {
	k, _ := json.Marshal(key)
	out := make([]byte, 0, len(k)+len(raw)+3)
	out = append(out, '{')
	out = append(out, k...)
	out = append(out, ':')
	out = append(out, raw...)
	return append(out, '}')
}

// prependMember writes key:value in front of the members of object.
func prependMember(key string, value, object []byte) []byte {
	k, _ := json.Marshal(key)
	out := make([]byte, 0, len(k)+len(value)+len(object)+3)
	out = append(out, '{')
	out = append(out, k...)
	out = append(out, ':')
	out = append(out, value...)

	trimmed := bytes.TrimSpace(object)
	if len(trimmed) > 2 {
		out = append(out, ',')
		return append(out, trimmed[1:]...)
	}
	return append(out, '}')
}

// encodeClause writes {"name": body}.
func encodeClause(name string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return wrap(name, raw), nil
}

// encodeFieldClause writes {"name": {"field": body}}.
func encodeFieldClause(name, field string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return wrap(name, wrap(field, raw)), nil
}

// encodeMixedClause writes {"name": {"field": value, <body members>}}.
func encodeMixedClause(name, field string, value, body any) ([]byte, error) {
	v, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	rest, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return wrap(name, prependMember(field, v, rest)), nil
}

// clauseBody returns the value under name, which must be the only key.
func clauseBody(data []byte, name string) (json.RawMessage, error) {
	members, err := decode.Members(data)
	if err != nil {
		return nil, err
	}
	if len(members) != 1 {
		return nil, fmt.Errorf("expected single key %q, got %d keys", name, len(members))
	}
	if members[0].Key != name {
		return nil, fmt.Errorf("expected key %q, got %q", name, members[0].Key)
	}
	return members[0].Value, nil
}

// decodeClause reads {"name": body} strictly.
func decodeClause(data []byte, name string, body any) error {
	raw, err := clauseBody(data, name)
	if err != nil {
		return err
	}
	return decode.Strict(raw, body)
}

// decodeFieldClause reads {"name": {"field": body}}. When short is set
// it handles a non-object field value.
func decodeFieldClause(data []byte, name string, field *string, body any, short func(json.RawMessage) error) error {
	raw, err := clauseBody(data, name)
	if err != nil {
		return err
	}
	members, err := decode.Members(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if len(members) != 1 {
		return fmt.Errorf("%s: expected exactly one field, got %d", name, len(members))
	}

	m := members[0]
	*field = m.Key
	if short != nil && !decode.IsObject(m.Value) {
		return short(m.Value)
	}
	if err := decode.Strict(m.Value, body); err != nil {
		return fmt.Errorf("%s: field %q: %w", name, m.Key, err)
	}
	return nil
}

// decodeMixedClause reads {"name": {"field": value, <fixed keys>}}. The
// one key not listed in fixed is the field; the rest decode into body.
func decodeMixedClause(data []byte, name string, fixed []string, field *string, value func(json.RawMessage) error, body any) error {
	raw, err := clauseBody(data, name)
	if err != nil {
		return err
	}
	members, err := decode.Members(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	rest := make([]decode.Member, 0, len(members))
	found := false
	for _, m := range members {
		if slices.Contains(fixed, m.Key) {
			rest = append(rest, m)
			continue
		}
		if found {
			return fmt.Errorf("%s: unexpected second field %q", name, m.Key)
		}
		found = true
		*field = m.Key
		if err := value(m.Value); err != nil {
			return fmt.Errorf("%s: field %q: %w", name, m.Key, err)
		}
	}
	if !found {
		return fmt.Errorf("%s: missing field", name)
	}
	return decode.Strict(decode.EncodeMembers(rest), body)
}

func missing(name, field string) error {
	return fmt.Errorf("%s: missing required %q", name, field)
}

var errNotObject = errors.New("expected object")

// clauseList decodes from a single query object or an array of them.
type clauseList []Query

func (l *clauseList) UnmarshalJSON(data []byte) error {
	if decode.IsObject(data) {
		var q Query
		if err := q.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = clauseList{q}
		return nil
	}

	var qs []Query
	if err := json.Unmarshal(data, &qs); err != nil {
		return err
	}
	if len(qs) == 0 {
		*l = nil
		return nil
	}
	*l = qs
	return nil
}

// appendClauses returns dst plus the non-empty clauses in a fresh array.
func appendClauses(dst []Query, clauses []Clause) []Query {
	add := Collect(clauses...)
	if len(add) == 0 {
		return dst
	}
	return append(slices.Clip(dst), add...)
}

// nonEmpty drops empty entries; nil when none remain.
func nonEmpty(qs []Query) clauseList {
	var out clauseList
	for _, q := range qs {
		if !q.IsEmpty() {
			out = append(out, q)
		}
	}
	return out
}

func allEmpty(qs []Query) bool {
	for _, q := range qs {
		if !q.IsEmpty() {
			return false
		}
	}
	return true
}

// optional drops an empty optional sub-query.
func optional(q Query) Query {
	if q.IsEmpty() {
		return Query{}
	}
	return q
}

func normalizeAll(vs []any) []any {
	if len(vs) == 0 {
		return nil
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = decode.Normalize(v)
	}
	return out
}

func isEmptyValue(v any) bool {
	return v == nil || v == ""
}

// decodeValues reads a JSON array of scalars; an empty array yields nil.
func decodeValues(raw json.RawMessage) ([]any, error) {
	var vs []any
	if err := decode.Strict(raw, &vs); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return vs, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
