// Package decode holds the machinery shared by the query and aggregation
// decoders: ordered untagged matching, strict JSON decoding, the nesting
// guard and the error taxonomy.
package decode
