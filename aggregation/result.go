package aggregation

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/kailas-cloud/searchdsl/decode"
)

// Result is the value under one aggregation name: a bucket sequence, a
// metric value, or a single-bucket count with nested aggregations.
type Result struct {
	// Type is the typed_keys prefix the result was decoded under, such as
	// "sterms"; empty when the response had no type prefix.
	Type string

	// Buckets is nil when the result has no "buckets" member and empty,
	// non-nil when the member is an empty array or object.
	Buckets []Bucket
	// Keyed reports that buckets were given as an object keyed by label.
	Keyed bool

	DocCountErrorUpperBound *int64
	SumOtherDocCount        *int64

	// DocCount is set for single-bucket aggregations such as filter.
	DocCount *uint64

	Value         *float64
	ValueAsString string

	Aggregations Aggregations
	Meta         map[string]any

	// Fields holds members not modelled above, such as the min and max of
	// a stats aggregation.
	Fields map[string]any
}

func (r *Result) UnmarshalJSON(data []byte) error {
	if err := decode.CheckDepth("aggregation", data, decode.MaxDepth); err != nil {
		return err
	}
	out, err := decodeResult(data, "")
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func decodeResult(data []byte, typ string) (Result, error) {
	members, err := decode.Members(data)
	if err != nil {
		return Result{}, decode.Malformed("aggregation", ".", "object", err)
	}

	out := Result{Type: typ}
	hint := HintFor(typ)
	for _, m := range members {
		switch m.Key {
		case "buckets":
			if err := out.decodeBuckets(m.Value, hint); err != nil {
				return Result{}, err
			}
		case "doc_count":
			n, err := docCount(m.Value)
			if err != nil {
				return Result{}, err
			}
			out.DocCount = &n
		case "doc_count_error_upper_bound":
			if out.DocCountErrorUpperBound, err = int64Field(m); err != nil {
				return Result{}, err
			}
		case "sum_other_doc_count":
			if out.SumOtherDocCount, err = int64Field(m); err != nil {
				return Result{}, err
			}
		case "value":
			if decode.IsNull(m.Value) {
				continue
			}
			var v float64
			if err := json.Unmarshal(m.Value, &v); err != nil {
				return Result{}, decode.Malformed("aggregation", "value", "number", err)
			}
			out.Value = &v
		case "value_as_string":
			if err := json.Unmarshal(m.Value, &out.ValueAsString); err != nil {
				return Result{}, decode.Malformed("aggregation", "value_as_string", "string", err)
			}
		case "meta":
			if err := decode.Strict(m.Value, &out.Meta); err != nil {
				return Result{}, decode.Malformed("aggregation", "meta", "object", err)
			}
		case "aggregations":
			if !decode.IsObject(m.Value) {
				return Result{}, decode.Malformed("aggregation", "aggregations", "object", nil)
			}
			sub, _, err := decodeEach(m.Value, true)
			if err != nil {
				return Result{}, err
			}
			for name, r := range sub.All() {
				out.Aggregations.put(name, r)
			}
		default:
			if isTypedName(m.Key) && decode.IsObject(m.Value) {
				name, r, err := decodeEntry(m.Key, m.Value)
				if err != nil {
					return Result{}, fmt.Errorf("aggregation %q: %w", name, err)
				}
				out.Aggregations.put(name, r)
				continue
			}
			v, err := decode.Value(m.Value)
			if err != nil {
				return Result{}, err
			}
			if out.Fields == nil {
				out.Fields = make(map[string]any)
			}
			out.Fields[m.Key] = v
		}
	}
	return out, nil
}

func int64Field(m decode.Member) (*int64, error) {
	var n int64
	if err := json.Unmarshal(m.Value, &n); err != nil {
		return nil, decode.Malformed("aggregation", m.Key, "integer", err)
	}
	return &n, nil
}

func (r *Result) decodeBuckets(raw json.RawMessage, hint Kind) error {
	switch decode.Shape(raw) {
	case "array":
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		r.Buckets = make([]Bucket, 0, len(items))
		for i, item := range items {
			b, err := decodeBucket(item, hint, nil)
			if err != nil {
				return fmt.Errorf("bucket %d: %w", i, err)
			}
			r.Buckets = append(r.Buckets, b)
		}
		return nil
	case "object":
		members, err := decode.Members(raw)
		if err != nil {
			return err
		}
		r.Keyed = true
		r.Buckets = make([]Bucket, 0, len(members))
		for _, m := range members {
			b, err := decodeBucket(m.Value, hint, &m.Key)
			if err != nil {
				return fmt.Errorf("bucket %q: %w", m.Key, err)
			}
			r.Buckets = append(r.Buckets, b)
		}
		return nil
	}
	return decode.Malformed("aggregation", "buckets", "array or object", nil)
}

// MarshalJSON writes the result with its members in a fixed order.
// Aggregations are omitted when empty.
func (r Result) MarshalJSON() ([]byte, error) {
	var members []decode.Member
	add := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		members = append(members, decode.Member{Key: key, Value: raw})
		return nil
	}

	if r.Meta != nil {
		if err := add("meta", r.Meta); err != nil {
			return nil, err
		}
	}
	if r.DocCount != nil {
		members = append(members, decode.Member{Key: "doc_count", Value: strconv.AppendUint(nil, *r.DocCount, 10)})
	}
	if r.DocCountErrorUpperBound != nil {
		members = append(members, decode.Member{Key: "doc_count_error_upper_bound", Value: strconv.AppendInt(nil, *r.DocCountErrorUpperBound, 10)})
	}
	if r.SumOtherDocCount != nil {
		members = append(members, decode.Member{Key: "sum_other_doc_count", Value: strconv.AppendInt(nil, *r.SumOtherDocCount, 10)})
	}
	if r.Buckets != nil {
		raw, err := r.marshalBuckets()
		if err != nil {
			return nil, err
		}
		members = append(members, decode.Member{Key: "buckets", Value: raw})
	}
	if r.Value != nil {
		if err := add("value", *r.Value); err != nil {
			return nil, err
		}
	}
	if r.ValueAsString != "" {
		if err := add("value_as_string", r.ValueAsString); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(r.Fields)) {
		if err := add(k, r.Fields[k]); err != nil {
			return nil, err
		}
	}
	if !r.Aggregations.IsZero() {
		if err := add("aggregations", r.Aggregations); err != nil {
			return nil, err
		}
	}
	return decode.EncodeMembers(members), nil
}

func (r Result) marshalBuckets() ([]byte, error) {
	if !r.Keyed {
		raw, err := json.Marshal(r.Buckets)
		if err != nil {
			return nil, fmt.Errorf("encode buckets: %w", err)
		}
		return raw, nil
	}
	members := make([]decode.Member, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode bucket %q: %w", b.Label(), err)
		}
		members = append(members, decode.Member{Key: b.Label(), Value: raw})
	}
	return decode.EncodeMembers(members), nil
}
