package searchdsl

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchdsl/aggregation"
	"github.com/kailas-cloud/searchdsl/decode"
)

// Response is a decoded search response.
type Response struct {
	Took         int64                    `json:"took"`
	TimedOut     bool                     `json:"timed_out"`
	Shards       Shards                   `json:"_shards"`
	Hits         Hits                     `json:"hits"`
	Aggregations aggregation.Aggregations `json:"aggregations,omitzero"`
	ScrollID     string                   `json:"_scroll_id,omitempty"`

	// AggregationErrors holds per-aggregation decode failures when partial
	// aggregation decoding is enabled. Keys are bare aggregation names.
	AggregationErrors map[string]error `json:"-"`
}

// Shards reports how many shards answered.
type Shards struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Hits is the hits section of a search response.
type Hits struct {
	Total    *TotalHits `json:"total,omitempty"`
	MaxScore *float64   `json:"max_score"`
	Hits     []Hit      `json:"hits"`
}

// TotalHits is the hit count, exact when Relation is "eq" and a lower
// bound when it is "gte".
type TotalHits struct {
	Value    int64  `json:"value"`
	Relation string `json:"relation"`
}

// UnmarshalJSON also accepts the bare number older clusters return.
func (t *TotalHits) UnmarshalJSON(data []byte) error {
	if decode.Shape(data) == "number" {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return decode.Malformed("hits.total", ".", "integer", err)
		}
		*t = TotalHits{Value: n, Relation: "eq"}
		return nil
	}
	type plain TotalHits
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return decode.Malformed("hits.total", ".", "object", err)
	}
	*t = TotalHits(p)
	return nil
}

// Hit is one matching document.
type Hit struct {
	Index     string                     `json:"_index"`
	ID        string                     `json:"_id"`
	Score     *float64                   `json:"_score"`
	Routing   string                     `json:"_routing,omitempty"`
	Source    json.RawMessage            `json:"_source,omitempty"`
	Fields    map[string]json.RawMessage `json:"fields,omitempty"`
	Highlight map[string][]string        `json:"highlight,omitempty"`
	Sort      []json.RawMessage          `json:"sort,omitempty"`
	InnerHits map[string]json.RawMessage `json:"inner_hits,omitempty"`
}

// SourceAs decodes the hit's _source into T.
func SourceAs[T any](h Hit) (T, error) {
	var v T
	if len(h.Source) == 0 {
		return v, fmt.Errorf("hit %s/%s has no _source", h.Index, h.ID)
	}
	if err := json.Unmarshal(h.Source, &v); err != nil {
		return v, fmt.Errorf("decode _source of %s/%s: %w", h.Index, h.ID, err)
	}
	return v, nil
}

// responseBody is the wire form with aggregations left raw, so they can be
// decoded with the caller's limits.
type responseBody struct {
	Took         int64           `json:"took"`
	TimedOut     bool            `json:"timed_out"`
	Shards       Shards          `json:"_shards"`
	Hits         Hits            `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations"`
	ScrollID     string          `json:"_scroll_id"`
}

// decodeResponse decodes a search response. With partial set, aggregations
// that fail are collected into AggregationErrors instead of failing the
// whole response.
func decodeResponse(data []byte, partial bool, opts ...decode.Option) (*Response, error) {
	o := decode.Apply(opts...)
	if err := decode.CheckDepth("search response", data, o.MaxDepth); err != nil {
		return nil, err
	}
	var body responseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	resp := &Response{
		Took:     body.Took,
		TimedOut: body.TimedOut,
		Shards:   body.Shards,
		Hits:     body.Hits,
		ScrollID: body.ScrollID,
	}
	if len(body.Aggregations) == 0 {
		return resp, nil
	}

	if partial {
		aggs, errs, err := aggregation.DecodeEach(body.Aggregations, opts...)
		if err != nil {
			return nil, fmt.Errorf("decode aggregations: %w", err)
		}
		resp.Aggregations, resp.AggregationErrors = aggs, errs
		return resp, nil
	}
	aggs, err := aggregation.Decode(body.Aggregations, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode aggregations: %w", err)
	}
	resp.Aggregations = aggs
	return resp, nil
}
