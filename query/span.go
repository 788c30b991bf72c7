package query

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchdsl/decode"
)

// SpanClause is implemented by span queries, the only clauses allowed
// inside other span queries.
type SpanClause interface {
	Clause
	span()
}

// MultiTermClause is implemented by the queries span_multi can wrap.
type MultiTermClause interface {
	Clause
	multiTerm()
}

func spans(clauses []SpanClause) []Query {
	cs := make([]Clause, len(clauses))
	for i, c := range clauses {
		cs[i] = c
	}
	return Collect(cs...)
}

func spanOf(c SpanClause) Query {
	if c == nil {
		return Query{}
	}
	return From(c)
}

// requireSpan checks decoded children; only span kinds are accepted.
func requireSpan(name, field string, qs ...Query) error {
	for _, q := range qs {
		if !q.Kind().IsSpan() {
			return decode.Malformed(name, field, "span query", fmt.Errorf("got %s", q.Kind()))
		}
	}
	return nil
}

// SpanContainingQuery returns spans of big that contain a span of little.
type SpanContainingQuery struct {
	b littleBigBody
}

type littleBigBody struct {
	Little Query `json:"little"`
	Big    Query `json:"big"`
	common
}

func (b littleBigBody) isEmpty() bool { return b.Little.IsEmpty() || b.Big.IsEmpty() }

func decodeLittleBig(data []byte, name string, b *littleBigBody) error {
	if err := decodeClause(data, name, b); err != nil {
		return err
	}
	if b.Little.IsZero() || b.Big.IsZero() {
		return missing(name, "little and big")
	}
	if err := requireSpan(name, "little", b.Little); err != nil {
		return err
	}
	return requireSpan(name, "big", b.Big)
}

func SpanContaining(little, big SpanClause) SpanContainingQuery {
	return SpanContainingQuery{b: littleBigBody{Little: spanOf(little), Big: spanOf(big)}}
}

func (q SpanContainingQuery) Boost(boost float64) SpanContainingQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanContainingQuery) Name(name string) SpanContainingQuery {
	q.b.Name = name
	return q
}

func (q SpanContainingQuery) IsEmpty() bool { return q.b.isEmpty() }

func (q SpanContainingQuery) variant() (Kind, Clause) { return KindSpanContaining, q }
func (SpanContainingQuery) span()                     {}

func (q SpanContainingQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("span_containing", q.b)
}

func (q *SpanContainingQuery) UnmarshalJSON(data []byte) error {
	var out SpanContainingQuery
	if err := decodeLittleBig(data, "span_containing", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanWithinQuery returns spans of little enclosed by a span of big.
type SpanWithinQuery struct {
	b littleBigBody
}

func SpanWithin(little, big SpanClause) SpanWithinQuery {
	return SpanWithinQuery{b: littleBigBody{Little: spanOf(little), Big: spanOf(big)}}
}

func (q SpanWithinQuery) Boost(boost float64) SpanWithinQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanWithinQuery) Name(name string) SpanWithinQuery {
	q.b.Name = name
	return q
}

func (q SpanWithinQuery) IsEmpty() bool { return q.b.isEmpty() }

func (q SpanWithinQuery) variant() (Kind, Clause) { return KindSpanWithin, q }
func (SpanWithinQuery) span()                     {}

func (q SpanWithinQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("span_within", q.b)
}

func (q *SpanWithinQuery) UnmarshalJSON(data []byte) error {
	var out SpanWithinQuery
	if err := decodeLittleBig(data, "span_within", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanFieldMaskingQuery lets span queries on different fields combine by
// pretending its inner query runs on field.
type SpanFieldMaskingQuery struct {
	b fieldMaskingBody
}

type fieldMaskingBody struct {
	Query Query  `json:"query"`
	Field string `json:"field"`
	common
}

func SpanFieldMasking(field string, q SpanClause) SpanFieldMaskingQuery {
	return SpanFieldMaskingQuery{b: fieldMaskingBody{Query: spanOf(q), Field: field}}
}

func (q SpanFieldMaskingQuery) Boost(boost float64) SpanFieldMaskingQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanFieldMaskingQuery) Name(name string) SpanFieldMaskingQuery {
	q.b.Name = name
	return q
}

func (q SpanFieldMaskingQuery) IsEmpty() bool { return q.b.Query.IsEmpty() }

func (q SpanFieldMaskingQuery) variant() (Kind, Clause) { return KindSpanFieldMasking, q }
func (SpanFieldMaskingQuery) span()                     {}

func (q SpanFieldMaskingQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("field_masking_span", q.b)
}

func (q *SpanFieldMaskingQuery) UnmarshalJSON(data []byte) error {
	var out SpanFieldMaskingQuery
	if err := decodeClause(data, "field_masking_span", &out.b); err != nil {
		return err
	}
	if out.b.Query.IsZero() {
		return missing("field_masking_span", "query")
	}
	if err := requireSpan("field_masking_span", "query", out.b.Query); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanFirstQuery matches spans ending within the first end positions.
type SpanFirstQuery struct {
	b spanFirstBody
}

type spanFirstBody struct {
	Match Query `json:"match"`
	End   int64 `json:"end"`
	common
}

func SpanFirst(match SpanClause, end int64) SpanFirstQuery {
	return SpanFirstQuery{b: spanFirstBody{Match: spanOf(match), End: end}}
}

func (q SpanFirstQuery) Boost(boost float64) SpanFirstQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanFirstQuery) Name(name string) SpanFirstQuery {
	q.b.Name = name
	return q
}

func (q SpanFirstQuery) IsEmpty() bool { return q.b.Match.IsEmpty() }

func (q SpanFirstQuery) variant() (Kind, Clause) { return KindSpanFirst, q }
func (SpanFirstQuery) span()                     {}

func (q SpanFirstQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("span_first", q.b)
}

func (q *SpanFirstQuery) UnmarshalJSON(data []byte) error {
	var out SpanFirstQuery
	if err := decodeClause(data, "span_first", &out.b); err != nil {
		return err
	}
	if out.b.Match.IsZero() {
		return missing("span_first", "match")
	}
	if err := requireSpan("span_first", "match", out.b.Match); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanMultiQuery wraps a multi-term query as a span query.
type SpanMultiQuery struct {
	b spanMultiBody
}

type spanMultiBody struct {
	Match Query `json:"match"`
	common
}

func SpanMulti(match MultiTermClause) SpanMultiQuery {
	var q Query
	if match != nil {
		q = From(match)
	}
	return SpanMultiQuery{b: spanMultiBody{Match: q}}
}

func (q SpanMultiQuery) Boost(boost float64) SpanMultiQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanMultiQuery) Name(name string) SpanMultiQuery {
	q.b.Name = name
	return q
}

func (q SpanMultiQuery) IsEmpty() bool { return q.b.Match.IsEmpty() }

func (q SpanMultiQuery) variant() (Kind, Clause) { return KindSpanMulti, q }
func (SpanMultiQuery) span()                     {}

func (q SpanMultiQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("span_multi", q.b)
}

func (q *SpanMultiQuery) UnmarshalJSON(data []byte) error {
	var out SpanMultiQuery
	if err := decodeClause(data, "span_multi", &out.b); err != nil {
		return err
	}
	if out.b.Match.IsZero() {
		return missing("span_multi", "match")
	}
	if k := out.b.Match.Kind(); !k.IsMultiTerm() {
		return decode.Malformed("span_multi", "match", "multi-term query", fmt.Errorf("got %s", k))
	}
	*q = out
	return nil
}

// SpanNearQuery matches spans near each other.
type SpanNearQuery struct {
	b spanNearBody
}

type spanNearBody struct {
	Clauses clauseList `json:"clauses"`
	Slop    *int64     `json:"slop,omitempty"`
	InOrder *bool      `json:"in_order,omitempty"`
	common
}

func SpanNear(clauses ...SpanClause) SpanNearQuery {
	return SpanNearQuery{b: spanNearBody{Clauses: spans(clauses)}}
}

func (q SpanNearQuery) Slop(n int64) SpanNearQuery {
	q.b.Slop = &n
	return q
}

func (q SpanNearQuery) InOrder(v bool) SpanNearQuery {
	q.b.InOrder = &v
	return q
}

func (q SpanNearQuery) Boost(boost float64) SpanNearQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanNearQuery) Name(name string) SpanNearQuery {
	q.b.Name = name
	return q
}

func (q SpanNearQuery) IsEmpty() bool { return allEmpty(q.b.Clauses) }

func (q SpanNearQuery) variant() (Kind, Clause) { return KindSpanNear, q }
func (SpanNearQuery) span()                     {}

func (q SpanNearQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Clauses = emptyIfNil(nonEmpty(b.Clauses))
	return encodeClause("span_near", b)
}

func (q *SpanNearQuery) UnmarshalJSON(data []byte) error {
	var out SpanNearQuery
	if err := decodeClause(data, "span_near", &out.b); err != nil {
		return err
	}
	if err := requireSpan("span_near", "clauses", out.b.Clauses...); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanNotQuery removes spans of include that overlap exclude.
type SpanNotQuery struct {
	b spanNotBody
}

type spanNotBody struct {
	Include Query  `json:"include"`
	Exclude Query  `json:"exclude"`
	Pre     *int64 `json:"pre,omitempty"`
	Post    *int64 `json:"post,omitempty"`
	Dist    *int64 `json:"dist,omitempty"`
	common
}

func SpanNot(include, exclude SpanClause) SpanNotQuery {
	return SpanNotQuery{b: spanNotBody{Include: spanOf(include), Exclude: spanOf(exclude)}}
}

func (q SpanNotQuery) Pre(n int64) SpanNotQuery {
	q.b.Pre = &n
	return q
}

func (q SpanNotQuery) Post(n int64) SpanNotQuery {
	q.b.Post = &n
	return q
}

func (q SpanNotQuery) Dist(n int64) SpanNotQuery {
	q.b.Dist = &n
	return q
}

func (q SpanNotQuery) Boost(boost float64) SpanNotQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanNotQuery) Name(name string) SpanNotQuery {
	q.b.Name = name
	return q
}

func (q SpanNotQuery) IsEmpty() bool { return q.b.Include.IsEmpty() || q.b.Exclude.IsEmpty() }

func (q SpanNotQuery) variant() (Kind, Clause) { return KindSpanNot, q }
func (SpanNotQuery) span()                     {}

func (q SpanNotQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("span_not", q.b)
}

func (q *SpanNotQuery) UnmarshalJSON(data []byte) error {
	var out SpanNotQuery
	if err := decodeClause(data, "span_not", &out.b); err != nil {
		return err
	}
	if out.b.Include.IsZero() || out.b.Exclude.IsZero() {
		return missing("span_not", "include and exclude")
	}
	if err := requireSpan("span_not", "include", out.b.Include); err != nil {
		return err
	}
	if err := requireSpan("span_not", "exclude", out.b.Exclude); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanOrQuery matches the union of its span clauses.
type SpanOrQuery struct {
	b spanOrBody
}

type spanOrBody struct {
	Clauses clauseList `json:"clauses"`
	common
}

func SpanOr(clauses ...SpanClause) SpanOrQuery {
	return SpanOrQuery{b: spanOrBody{Clauses: spans(clauses)}}
}

func (q SpanOrQuery) Boost(boost float64) SpanOrQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanOrQuery) Name(name string) SpanOrQuery {
	q.b.Name = name
	return q
}

func (q SpanOrQuery) IsEmpty() bool { return allEmpty(q.b.Clauses) }

func (q SpanOrQuery) variant() (Kind, Clause) { return KindSpanOr, q }
func (SpanOrQuery) span()                     {}

func (q SpanOrQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Clauses = emptyIfNil(nonEmpty(b.Clauses))
	return encodeClause("span_or", b)
}

func (q *SpanOrQuery) UnmarshalJSON(data []byte) error {
	var out SpanOrQuery
	if err := decodeClause(data, "span_or", &out.b); err != nil {
		return err
	}
	if err := requireSpan("span_or", "clauses", out.b.Clauses...); err != nil {
		return err
	}
	*q = out
	return nil
}

// SpanTermQuery matches spans containing a term.
type SpanTermQuery struct {
	field string
	b     spanTermBody
}

type spanTermBody struct {
	Value any `json:"value"`
	common
}

func SpanTerm(field string, value any) SpanTermQuery {
	return SpanTermQuery{field: field, b: spanTermBody{Value: decode.Normalize(value)}}
}

func (q SpanTermQuery) Boost(boost float64) SpanTermQuery {
	q.b.Boost = &boost
	return q
}

func (q SpanTermQuery) Name(name string) SpanTermQuery {
	q.b.Name = name
	return q
}

func (q SpanTermQuery) IsEmpty() bool { return isEmptyValue(q.b.Value) }

func (q SpanTermQuery) variant() (Kind, Clause) { return KindSpanTerm, q }
func (SpanTermQuery) span()                     {}

func (q SpanTermQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("span_term", q.field, q.b)
}

func (q *SpanTermQuery) UnmarshalJSON(data []byte) error {
	var out SpanTermQuery
	err := decodeFieldClause(data, "span_term", &out.field, &out.b, func(raw json.RawMessage) error {
		v, err := decode.Value(raw)
		if err != nil {
			return err
		}
		out.b.Value = v
		return nil
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}
