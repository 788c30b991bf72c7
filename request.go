package searchdsl

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/query"
)

// Request is a search request body. Setters chain and mutate the request.
// Keys the request does not model are kept verbatim and written back after
// the modeled ones.
type Request struct {
	query      query.Query
	postFilter query.Query
	aggs       []decode.Member
	size       *int
	from       *int
	sort       []json.RawMessage
	source     json.RawMessage
	extra      []decode.Member
	err        error
}

// NewRequest returns an empty search request.
func NewRequest() *Request {
	return &Request{}
}

// Query sets the main query. An empty clause clears it.
func (r *Request) Query(c query.Clause) *Request {
	r.query, _ = query.FromNonEmpty(c)
	return r
}

// PostFilter sets a filter applied to hits after aggregations are computed.
func (r *Request) PostFilter(c query.Clause) *Request {
	r.postFilter, _ = query.FromNonEmpty(c)
	return r
}

// Aggregation adds or replaces a named aggregation. body is the
// aggregation definition: a json.RawMessage, []byte or any value that
// encodes to a JSON object.
func (r *Request) Aggregation(name string, body any) *Request {
	raw, err := rawObject(body)
	if err != nil {
		r.fail(fmt.Errorf("aggregation %q: %w", name, err))
		return r
	}
	r.aggs = setMember(r.aggs, name, raw)
	return r
}

// Size sets the number of hits to return.
func (r *Request) Size(n int) *Request {
	r.size = &n
	return r
}

// From sets the offset of the first hit.
func (r *Request) From(n int) *Request {
	r.from = &n
	return r
}

// Sort appends sort criteria, each a field name or a sort object.
func (r *Request) Sort(criteria ...any) *Request {
	for _, c := range criteria {
		raw, err := json.Marshal(c)
		if err != nil {
			r.fail(fmt.Errorf("sort: %w", err))
			return r
		}
		r.sort = append(r.sort, raw)
	}
	return r
}

// Source sets _source filtering: false, a field list or an
// includes/excludes object.
func (r *Request) Source(v any) *Request {
	raw, err := json.Marshal(v)
	if err != nil {
		r.fail(fmt.Errorf("_source: %w", err))
		return r
	}
	r.source = raw
	return r
}

// Set stores a top-level request key such as highlight or
// track_total_hits. A key the request models (query, post_filter, aggs,
// aggregations, size, from, sort, _source) is decoded into that field, so
// it is written once.
func (r *Request) Set(key string, v any) *Request {
	raw, err := json.Marshal(v)
	if err != nil {
		r.fail(fmt.Errorf("%s: %w", key, err))
		return r
	}
	if err := r.apply(decode.Member{Key: key, Value: raw}); err != nil {
		r.fail(err)
	}
	return r
}

// QueryClause returns the main query. The zero Query means match all.
func (r *Request) QueryClause() query.Query { return r.query }

// PostFilterClause returns the post filter.
func (r *Request) PostFilterClause() query.Query { return r.postFilter }

// AggregationNames returns the aggregation names in insertion order.
func (r *Request) AggregationNames() []string {
	names := make([]string, len(r.aggs))
	for i, m := range r.aggs {
		names[i] = m.Key
	}
	return names
}

// Err reports the first error recorded by a setter.
func (r *Request) Err() error { return r.err }

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// MarshalJSON encodes the request body. Fields that were never set are
// omitted.
func (r *Request) MarshalJSON() ([]byte, error) {
	if r.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, r.err)
	}

	var members []decode.Member
	add := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		members = append(members, decode.Member{Key: key, Value: raw})
		return nil
	}

	if !r.query.IsEmpty() {
		if err := add("query", r.query); err != nil {
			return nil, err
		}
	}
	if !r.postFilter.IsEmpty() {
		if err := add("post_filter", r.postFilter); err != nil {
			return nil, err
		}
	}
	if len(r.aggs) > 0 {
		members = append(members, decode.Member{Key: "aggs", Value: decode.EncodeMembers(r.aggs)})
	}
	if r.size != nil {
		if err := add("size", *r.size); err != nil {
			return nil, err
		}
	}
	if r.from != nil {
		if err := add("from", *r.from); err != nil {
			return nil, err
		}
	}
	if len(r.sort) > 0 {
		if err := add("sort", r.sort); err != nil {
			return nil, err
		}
	}
	if r.source != nil {
		members = append(members, decode.Member{Key: "_source", Value: r.source})
	}
	members = append(members, r.extra...)
	return decode.EncodeMembers(members), nil
}

// UnmarshalJSON decodes a request body. The query and post_filter are
// decoded strictly; aggregation definitions are kept as written.
func (r *Request) UnmarshalJSON(data []byte) error {
	return r.decode(data)
}

// DecodeRequest decodes a search request body with the given limits.
func DecodeRequest(data []byte, opts ...decode.Option) (*Request, error) {
	r := NewRequest()
	if err := r.decode(data, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) decode(data []byte, opts ...decode.Option) error {
	o := decode.Apply(opts...)
	if err := decode.CheckDepth("search request", data, o.MaxDepth); err != nil {
		return err
	}
	members, err := decode.Members(data)
	if err != nil {
		return decode.Malformed("search request", ".", "object", err)
	}

	var out Request
	for _, m := range members {
		if err := out.apply(m, opts...); err != nil {
			return err
		}
	}
	*r = out
	return nil
}

// apply stores one top-level member in its field. A repeated key replaces
// the earlier value, except aggregations, which merge by name.
func (r *Request) apply(m decode.Member, opts ...decode.Option) error {
	switch m.Key {
	case "query", "post_filter":
		q, err := query.Decode(m.Value, opts...)
		if err != nil {
			return fmt.Errorf("%s: %w", m.Key, err)
		}
		if m.Key == "query" {
			r.query = q
		} else {
			r.postFilter = q
		}
	case "aggs", "aggregations":
		aggs, err := decode.Members(m.Value)
		if err != nil {
			return decode.Malformed("search request", m.Key, "object", err)
		}
		for _, a := range aggs {
			r.aggs = setMember(r.aggs, a.Key, a.Value)
		}
	case "size", "from":
		var n int
		if err := decode.Strict(m.Value, &n); err != nil {
			return decode.Malformed("search request", m.Key, "integer", err)
		}
		if m.Key == "size" {
			r.size = &n
		} else {
			r.from = &n
		}
	case "sort":
		var sort []json.RawMessage
		if err := decodeSort(m.Value, &sort); err != nil {
			return err
		}
		r.sort = sort
	case "_source":
		r.source = slices.Clone(m.Value)
	default:
		r.extra = setMember(r.extra, m.Key, slices.Clone(m.Value))
	}
	return nil
}

// decodeSort accepts a single criterion or a list of them.
func decodeSort(raw json.RawMessage, into *[]json.RawMessage) error {
	if decode.Shape(raw) != "array" {
		*into = append(*into, slices.Clone(raw))
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return decode.Malformed("search request", "sort", "array", err)
	}
	*into = append(*into, items...)
	return nil
}

func rawObject(body any) (json.RawMessage, error) {
	var raw []byte
	switch v := body.(type) {
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		var err error
		if raw, err = json.Marshal(v); err != nil {
			return nil, err
		}
	}
	if !decode.IsObject(raw) {
		return nil, fmt.Errorf("definition must be a JSON object, got %s", decode.Shape(raw))
	}
	return slices.Clone(raw), nil
}

// setMember replaces the value under key or appends a new member.
func setMember(members []decode.Member, key string, value json.RawMessage) []decode.Member {
	for i := range members {
		if members[i].Key == key {
			members[i].Value = value
			return members
		}
	}
	return append(members, decode.Member{Key: key, Value: value})
}
