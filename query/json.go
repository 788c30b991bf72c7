package query

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/kailas-cloud/searchdsl/decode"
)

// JSONQuery carries a clause this package has no typed model for. It is
// written to the wire as given.
type JSONQuery struct {
	v map[string]any
}

// JSON wraps a raw single-key query object such as a plugin clause. Any
// other value produces an empty JSONQuery. An object keyed by a clause
// name this package models decodes back as that typed clause, not JSON.
func JSON(v any) JSONQuery {
	m, ok := decode.Normalize(v).(map[string]any)
	if !ok || len(m) != 1 {
		return JSONQuery{}
	}
	return JSONQuery{v: m}
}

// Value returns a copy of the wrapped object.
func (q JSONQuery) Value() map[string]any { return maps.Clone(q.v) }

func (q JSONQuery) IsEmpty() bool { return len(q.v) == 0 }

func (q JSONQuery) variant() (Kind, Clause) { return KindJSON, q }

func (q JSONQuery) MarshalJSON() ([]byte, error) {
	if q.v == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(q.v)
}

func (q *JSONQuery) UnmarshalJSON(data []byte) error {
	if decode.IsNull(data) {
		*q = JSONQuery{}
		return nil
	}
	if !decode.IsObject(data) {
		return fmt.Errorf("json query: %w, got %s", errNotObject, decode.Shape(data))
	}
	var m map[string]any
	if err := decode.Strict(data, &m); err != nil {
		return err
	}
	if len(m) > 1 {
		return fmt.Errorf("json query: expected a single key, got %d", len(m))
	}
	*q = JSONQuery{v: nilIfEmptyMap(m)}
	return nil
}

func nilIfEmptyMap(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return m
}
