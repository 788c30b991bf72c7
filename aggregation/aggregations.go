package aggregation

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/searchdsl/decode"
)

// Aggregations maps aggregation names to results, keeping the order in
// which entries were decoded or set. The zero value is empty and ready to
// use.
type Aggregations struct {
	names   []string
	results map[string]Result
}

// Len returns the number of entries.
func (a Aggregations) Len() int { return len(a.names) }

// IsZero reports whether a has no entries; empty aggregations are not
// serialized.
func (a Aggregations) IsZero() bool { return len(a.names) == 0 }

// Get returns the result stored under name. Names are bare: an entry
// decoded from "sterms#tags" is found under "tags".
func (a Aggregations) Get(name string) (Result, bool) {
	r, ok := a.results[name]
	return r, ok
}

// Names returns the entry names in order.
func (a Aggregations) Names() []string { return slices.Clone(a.names) }

// All iterates over the entries in order.
func (a Aggregations) All() iter.Seq2[string, Result] {
	return func(yield func(string, Result) bool) {
		for _, n := range a.names {
			if !yield(n, a.results[n]) {
				return
			}
		}
	}
}

// Set stores r under name, replacing an existing entry in place or
// appending a new one. Copies of a taken before Set are not affected.
func (a *Aggregations) Set(name string, r Result) {
	results := maps.Clone(a.results)
	if results == nil {
		results = make(map[string]Result, 1)
	}
	if _, ok := results[name]; !ok {
		a.names = append(slices.Clip(a.names), name)
	}
	results[name] = r
	a.results = results
}

// put adds or replaces an entry without copying; for values still being
// built.
func (a *Aggregations) put(name string, r Result) {
	if a.results == nil {
		a.results = make(map[string]Result)
	}
	if _, ok := a.results[name]; !ok {
		a.names = append(a.names, name)
	}
	a.results[name] = r
}

// MarshalJSON writes the entries in order. A result with a Type is written
// under its typed name, "type#name".
func (a Aggregations) MarshalJSON() ([]byte, error) {
	members := make([]decode.Member, 0, len(a.names))
	for name, r := range a.All() {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode aggregation %q: %w", name, err)
		}
		key := name
		if r.Type != "" {
			key = r.Type + "#" + name
		}
		members = append(members, decode.Member{Key: key, Value: raw})
	}
	return decode.EncodeMembers(members), nil
}

// UnmarshalJSON decodes every entry, stopping at the first failure. Use
// DecodeEach to keep the entries that do decode.
func (a *Aggregations) UnmarshalJSON(data []byte) error {
	out, _, err := decodeEach(data, true)
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// Decode decodes an aggregations object, stopping at the first failure.
func Decode(data []byte, opts ...decode.Option) (Aggregations, error) {
	out, _, err := decodeEach(data, true, opts...)
	return out, err
}

// DecodeEach decodes an aggregations object entry by entry. Entries that
// fail are reported in the error map under their bare name and left out
// of the result; the others are kept. The returned error is set only when
// data as a whole cannot be read.
func DecodeEach(data []byte, opts ...decode.Option) (Aggregations, map[string]error, error) {
	return decodeEach(data, false, opts...)
}

func decodeEach(data []byte, stop bool, opts ...decode.Option) (Aggregations, map[string]error, error) {
	o := decode.Apply(opts...)
	if err := decode.CheckDepth("aggregations", data, o.MaxDepth); err != nil {
		return Aggregations{}, nil, err
	}
	if decode.IsNull(data) {
		return Aggregations{}, nil, nil
	}
	members, err := decode.Members(data)
	if err != nil {
		return Aggregations{}, nil, decode.Malformed("aggregations", ".", "object", err)
	}

	var out Aggregations
	var errs map[string]error
	for _, m := range members {
		name, r, err := decodeEntry(m.Key, m.Value)
		if err != nil {
			if stop {
				return Aggregations{}, nil, fmt.Errorf("aggregation %q: %w", name, err)
			}
			if errs == nil {
				errs = make(map[string]error)
			}
			errs[name] = err
			continue
		}
		out.put(name, r)
	}
	return out, errs, nil
}

// decodeEntry decodes one name → result member. A typed_keys name such as
// "date_histogram#per_day" yields the bare name and records the type.
func decodeEntry(key string, raw json.RawMessage) (string, Result, error) {
	name, typ := key, ""
	if isTypedName(key) {
		typ, name, _ = strings.Cut(key, "#")
	}
	r, err := decodeResult(raw, typ)
	if err != nil {
		return name, Result{}, err
	}
	return name, r, nil
}
