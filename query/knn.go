package query

import "slices"

// KnnQuery finds the k nearest neighbours of a vector.
type KnnQuery struct {
	field string
	b     knnBody
}

type knnBody struct {
	Vector []float32 `json:"vector"`
	K      int64     `json:"k"`
	Filter Query     `json:"filter,omitzero"`
	Boost  *float64  `json:"boost,omitempty"`
}

// Knn searches field for the k vectors nearest to vector.
func Knn(field string, vector []float32, k int64) KnnQuery {
	return KnnQuery{field: field, b: knnBody{Vector: nilIfEmpty(slices.Clone(vector)), K: k}}
}

// Filter restricts the candidates before scoring.
func (q KnnQuery) Filter(c Clause) KnnQuery {
	q.b.Filter = From(c)
	return q
}

func (q KnnQuery) Boost(boost float64) KnnQuery {
	q.b.Boost = &boost
	return q
}

func (q KnnQuery) Field() string { return q.field }

// Vector returns a copy of the query vector.
func (q KnnQuery) Vector() []float32 { return slices.Clone(q.b.Vector) }

func (q KnnQuery) K() int64 { return q.b.K }

func (q KnnQuery) IsEmpty() bool { return len(q.b.Vector) == 0 }

func (q KnnQuery) variant() (Kind, Clause) { return KindKnn, q }

func (q KnnQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Vector = emptyIfNil(b.Vector)
	b.Filter = optional(b.Filter)
	return encodeFieldClause("knn", q.field, b)
}

func (q *KnnQuery) UnmarshalJSON(data []byte) error {
	var out KnnQuery
	if err := decodeFieldClause(data, "knn", &out.field, &out.b, nil); err != nil {
		return err
	}
	if out.b.K <= 0 {
		return missing("knn", "k")
	}
	out.b.Vector = nilIfEmpty(out.b.Vector)
	*q = out
	return nil
}
