package aggregation

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Bucket is one entry of a bucket aggregation. The concrete types are
// TermsBucket, RangeBucket, DateRangeBucket, HistogramBucket,
// DateHistogramBucket, GeoDistanceBucket, FiltersBucket and MatrixRow.
type Bucket interface {
	Kind() Kind
	// Count returns doc_count; false for MatrixRow, which has none.
	Count() (uint64, bool)
	SubAggregations() Aggregations
	// Label renders the bucket key as text, as used for keyed buckets.
	Label() string

	withAggregations(Aggregations) Bucket
}

// TermsBucket holds one distinct value of the bucketed field.
type TermsBucket struct {
	Key          any          `json:"key"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b TermsBucket) Kind() Kind                    { return KindTerms }
func (b TermsBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b TermsBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b TermsBucket) Label() string                 { return labelOf(b.Key) }

func (b TermsBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// RangeBucket is one numeric range; either bound may be open.
type RangeBucket struct {
	Key          *string      `json:"key,omitempty"`
	From         *float64     `json:"from,omitempty"`
	To           *float64     `json:"to,omitempty"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b RangeBucket) Kind() Kind                    { return KindRange }
func (b RangeBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b RangeBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b RangeBucket) Label() string                 { return deref(b.Key) }

func (b RangeBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// DateRangeBucket is one date range. From and To hold the bound as sent;
// numeric epoch bounds are kept as their decimal text.
type DateRangeBucket struct {
	Key          *string      `json:"key,omitempty"`
	From         *string      `json:"from,omitempty"`
	FromAsString *string      `json:"from_as_string,omitempty"`
	To           *string      `json:"to,omitempty"`
	ToAsString   *string      `json:"to_as_string,omitempty"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b DateRangeBucket) Kind() Kind                    { return KindDateRange }
func (b DateRangeBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b DateRangeBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b DateRangeBucket) Label() string                 { return deref(b.Key) }

func (b DateRangeBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// HistogramBucket is one fixed-width numeric interval.
type HistogramBucket struct {
	Key          float64      `json:"key"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b HistogramBucket) Kind() Kind                    { return KindHistogram }
func (b HistogramBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b HistogramBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b HistogramBucket) Label() string                 { return strconv.FormatFloat(b.Key, 'f', -1, 64) }

func (b HistogramBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// DateHistogramBucket is one calendar or fixed interval; Key is epoch millis.
type DateHistogramBucket struct {
	Key          int64        `json:"key"`
	KeyAsString  *string      `json:"key_as_string,omitempty"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b DateHistogramBucket) Kind() Kind                    { return KindDateHistogram }
func (b DateHistogramBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b DateHistogramBucket) SubAggregations() Aggregations { return b.Aggregations }

func (b DateHistogramBucket) Label() string {
	if b.KeyAsString != nil {
		return *b.KeyAsString
	}
	return strconv.FormatInt(b.Key, 10)
}

func (b DateHistogramBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// GeoDistanceBucket is one distance ring around the origin. Absent bounds
// encode as null.
type GeoDistanceBucket struct {
	Key          string       `json:"key"`
	From         *float64     `json:"from"`
	To           *float64     `json:"to"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b GeoDistanceBucket) Kind() Kind                    { return KindGeoDistance }
func (b GeoDistanceBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b GeoDistanceBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b GeoDistanceBucket) Label() string                 { return b.Key }

func (b GeoDistanceBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// FiltersBucket is the result of one named or anonymous filter.
type FiltersBucket struct {
	Key          *string      `json:"key,omitempty"`
	DocCount     uint64       `json:"doc_count"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b FiltersBucket) Kind() Kind                    { return KindFilters }
func (b FiltersBucket) Count() (uint64, bool)         { return b.DocCount, true }
func (b FiltersBucket) SubAggregations() Aggregations { return b.Aggregations }
func (b FiltersBucket) Label() string                 { return deref(b.Key) }

func (b FiltersBucket) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// MatrixRow is a keyed row without a document count.
type MatrixRow struct {
	Key          any          `json:"key"`
	Aggregations Aggregations `json:"aggregations,omitzero"`
}

func (b MatrixRow) Kind() Kind                    { return KindMatrixRow }
func (b MatrixRow) Count() (uint64, bool)         { return 0, false }
func (b MatrixRow) SubAggregations() Aggregations { return b.Aggregations }
func (b MatrixRow) Label() string                 { return labelOf(b.Key) }

func (b MatrixRow) withAggregations(a Aggregations) Bucket {
	b.Aggregations = a
	return b
}

// BucketsOf returns the buckets of r that have type T, in order.
func BucketsOf[T Bucket](r Result) []T {
	var out []T
	for _, b := range r.Buckets {
		if v, ok := b.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func labelOf(key any) string {
	switch k := key.(type) {
	case nil:
		return ""
	case string:
		return k
	case json.Number:
		return k.String()
	default:
		raw, err := json.Marshal(k)
		if err != nil {
			return fmt.Sprint(k)
		}
		return string(raw)
	}
}
