// Package query models the OpenSearch query DSL as a closed set of typed
// clauses held by the Query container.
//
// Payload types are immutable values built with chained setters:
//
//	q := query.Bool().
//		Must(query.Match("title", "quick fox")).
//		Filter(query.Term("status", "published"), query.Range("age").Gte(18))
//
// Clauses that carry no constraint report IsEmpty and are dropped when
// composed into compound queries. Decoding is untagged: variants are tried
// in declaration order and the first exact match wins, so that decoding an
// encoded query yields an Equal query.
package query
