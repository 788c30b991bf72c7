package query

// MatchAllQuery matches every document. It is never empty.
type MatchAllQuery struct {
	b common
}

func MatchAll() MatchAllQuery { return MatchAllQuery{} }

func (q MatchAllQuery) Boost(boost float64) MatchAllQuery {
	q.b.Boost = &boost
	return q
}

func (q MatchAllQuery) Name(name string) MatchAllQuery {
	q.b.Name = name
	return q
}

func (q MatchAllQuery) IsEmpty() bool { return false }

func (q MatchAllQuery) variant() (Kind, Clause) { return KindMatchAll, q }

func (q MatchAllQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("match_all", q.b)
}

func (q *MatchAllQuery) UnmarshalJSON(data []byte) error {
	var out MatchAllQuery
	if err := decodeClause(data, "match_all", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// MatchNoneQuery matches no documents. It is never empty.
type MatchNoneQuery struct {
	b matchNoneBody
}

type matchNoneBody struct {
	Name string `json:"_name,omitempty"`
}

func MatchNone() MatchNoneQuery { return MatchNoneQuery{} }

func (q MatchNoneQuery) Name(name string) MatchNoneQuery {
	q.b.Name = name
	return q
}

func (q MatchNoneQuery) IsEmpty() bool { return false }

func (q MatchNoneQuery) variant() (Kind, Clause) { return KindMatchNone, q }

func (q MatchNoneQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("match_none", q.b)
}

func (q *MatchNoneQuery) UnmarshalJSON(data []byte) error {
	var out MatchNoneQuery
	if err := decodeClause(data, "match_none", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}
