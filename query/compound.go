package query

// BoolQuery combines clauses with boolean occurrence types.
type BoolQuery struct {
	b boolBody
}

type boolBody struct {
	Must               clauseList         `json:"must,omitempty"`
	Filter             clauseList         `json:"filter,omitempty"`
	Should             clauseList         `json:"should,omitempty"`
	MustNot            clauseList         `json:"must_not,omitempty"`
	MinimumShouldMatch MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	common
}

// Bool returns an empty bool query.
func Bool() BoolQuery { return BoolQuery{} }

// Must adds clauses that must match and contribute to the score.
func (q BoolQuery) Must(clauses ...Clause) BoolQuery {
	q.b.Must = appendClauses(q.b.Must, clauses)
	return q
}

// Filter adds clauses that must match without scoring.
func (q BoolQuery) Filter(clauses ...Clause) BoolQuery {
	q.b.Filter = appendClauses(q.b.Filter, clauses)
	return q
}

// Should adds optional clauses.
func (q BoolQuery) Should(clauses ...Clause) BoolQuery {
	q.b.Should = appendClauses(q.b.Should, clauses)
	return q
}

// MustNot adds clauses that must not match.
func (q BoolQuery) MustNot(clauses ...Clause) BoolQuery {
	q.b.MustNot = appendClauses(q.b.MustNot, clauses)
	return q
}

func (q BoolQuery) MinimumShouldMatch(m string) BoolQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q BoolQuery) Boost(boost float64) BoolQuery {
	q.b.Boost = &boost
	return q
}

func (q BoolQuery) Name(name string) BoolQuery {
	q.b.Name = name
	return q
}

// MustClauses returns the must clauses.
func (q BoolQuery) MustClauses() []Query { return q.b.Must }

// FilterClauses returns the filter clauses.
func (q BoolQuery) FilterClauses() []Query { return q.b.Filter }

// ShouldClauses returns the should clauses.
func (q BoolQuery) ShouldClauses() []Query { return q.b.Should }

// MustNotClauses returns the must_not clauses.
func (q BoolQuery) MustNotClauses() []Query { return q.b.MustNot }

// IsEmpty reports whether every occurrence list holds only empty clauses.
func (q BoolQuery) IsEmpty() bool {
	return allEmpty(q.b.Must) && allEmpty(q.b.Filter) &&
		allEmpty(q.b.Should) && allEmpty(q.b.MustNot)
}

func (q BoolQuery) variant() (Kind, Clause) { return KindBool, q }

func (q BoolQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Must = nonEmpty(b.Must)
	b.Filter = nonEmpty(b.Filter)
	b.Should = nonEmpty(b.Should)
	b.MustNot = nonEmpty(b.MustNot)
	return encodeClause("bool", b)
}

func (q *BoolQuery) UnmarshalJSON(data []byte) error {
	var out BoolQuery
	if err := decodeClause(data, "bool", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// ConstantScoreQuery wraps a filter and scores every match with boost.
type ConstantScoreQuery struct {
	b constantScoreBody
}

type constantScoreBody struct {
	Filter Query `json:"filter"`
	common
}

// ConstantScore wraps filter.
func ConstantScore(filter Clause) ConstantScoreQuery {
	return ConstantScoreQuery{b: constantScoreBody{Filter: From(filter)}}
}

func (q ConstantScoreQuery) Boost(boost float64) ConstantScoreQuery {
	q.b.Boost = &boost
	return q
}

func (q ConstantScoreQuery) Name(name string) ConstantScoreQuery {
	q.b.Name = name
	return q
}

func (q ConstantScoreQuery) IsEmpty() bool { return q.b.Filter.IsEmpty() }

func (q ConstantScoreQuery) variant() (Kind, Clause) { return KindConstantScore, q }

func (q ConstantScoreQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("constant_score", q.b)
}

func (q *ConstantScoreQuery) UnmarshalJSON(data []byte) error {
	var out ConstantScoreQuery
	if err := decodeClause(data, "constant_score", &out.b); err != nil {
		return err
	}
	if out.b.Filter.IsZero() {
		return missing("constant_score", "filter")
	}
	*q = out
	return nil
}

// BoostingQuery demotes documents matching negative.
type BoostingQuery struct {
	b boostingBody
}

type boostingBody struct {
	Positive      Query    `json:"positive"`
	Negative      Query    `json:"negative"`
	NegativeBoost *float64 `json:"negative_boost"`
	common
}

// Boosting scores positive matches, multiplying by negativeBoost those
// that also match negative.
func Boosting(positive, negative Clause, negativeBoost float64) BoostingQuery {
	return BoostingQuery{b: boostingBody{
		Positive:      From(positive),
		Negative:      From(negative),
		NegativeBoost: &negativeBoost,
	}}
}

func (q BoostingQuery) Boost(boost float64) BoostingQuery {
	q.b.Boost = &boost
	return q
}

func (q BoostingQuery) Name(name string) BoostingQuery {
	q.b.Name = name
	return q
}

func (q BoostingQuery) IsEmpty() bool {
	return q.b.Positive.IsEmpty() || q.b.Negative.IsEmpty()
}

func (q BoostingQuery) variant() (Kind, Clause) { return KindBoosting, q }

func (q BoostingQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("boosting", q.b)
}

func (q *BoostingQuery) UnmarshalJSON(data []byte) error {
	var out BoostingQuery
	if err := decodeClause(data, "boosting", &out.b); err != nil {
		return err
	}
	switch {
	case out.b.Positive.IsZero():
		return missing("boosting", "positive")
	case out.b.Negative.IsZero():
		return missing("boosting", "negative")
	case out.b.NegativeBoost == nil:
		return missing("boosting", "negative_boost")
	}
	*q = out
	return nil
}

// DisMaxQuery scores by the best matching clause.
type DisMaxQuery struct {
	b disMaxBody
}

type disMaxBody struct {
	Queries    clauseList `json:"queries"`
	TieBreaker *float64   `json:"tie_breaker,omitempty"`
	common
}

// DisMax returns a dis_max over the non-empty clauses.
func DisMax(clauses ...Clause) DisMaxQuery {
	return DisMaxQuery{b: disMaxBody{Queries: Collect(clauses...)}}
}

// Queries adds clauses.
func (q DisMaxQuery) Queries(clauses ...Clause) DisMaxQuery {
	q.b.Queries = appendClauses(q.b.Queries, clauses)
	return q
}

func (q DisMaxQuery) TieBreaker(t float64) DisMaxQuery {
	q.b.TieBreaker = &t
	return q
}

func (q DisMaxQuery) Boost(boost float64) DisMaxQuery {
	q.b.Boost = &boost
	return q
}

func (q DisMaxQuery) Name(name string) DisMaxQuery {
	q.b.Name = name
	return q
}

func (q DisMaxQuery) IsEmpty() bool { return allEmpty(q.b.Queries) }

func (q DisMaxQuery) variant() (Kind, Clause) { return KindDisMax, q }

func (q DisMaxQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Queries = emptyIfNil(nonEmpty(b.Queries))
	return encodeClause("dis_max", b)
}

func (q *DisMaxQuery) UnmarshalJSON(data []byte) error {
	var out DisMaxQuery
	if err := decodeClause(data, "dis_max", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// PinnedQuery promotes chosen documents above the organic results.
type PinnedQuery struct {
	b pinnedBody
}

type pinnedBody struct {
	IDs     []string    `json:"ids,omitempty"`
	Docs    []PinnedDoc `json:"docs,omitempty"`
	Organic Query       `json:"organic"`
	common
}

// PinnedDoc names a document in a specific index.
type PinnedDoc struct {
	ID    string `json:"_id"`
	Index string `json:"_index,omitempty"`
}

// PinnedIDs pins documents by id.
func PinnedIDs(organic Clause, ids ...string) PinnedQuery {
	return PinnedQuery{b: pinnedBody{IDs: nilIfEmpty(ids), Organic: From(organic)}}
}

// PinnedDocs pins documents by id and index.
func PinnedDocs(organic Clause, docs ...PinnedDoc) PinnedQuery {
	return PinnedQuery{b: pinnedBody{Docs: nilIfEmpty(docs), Organic: From(organic)}}
}

func (q PinnedQuery) Boost(boost float64) PinnedQuery {
	q.b.Boost = &boost
	return q
}

func (q PinnedQuery) Name(name string) PinnedQuery {
	q.b.Name = name
	return q
}

func (q PinnedQuery) IsEmpty() bool {
	return q.b.Organic.IsEmpty()
}

func (q PinnedQuery) variant() (Kind, Clause) { return KindPinned, q }

func (q PinnedQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("pinned", q.b)
}

func (q *PinnedQuery) UnmarshalJSON(data []byte) error {
	var out PinnedQuery
	if err := decodeClause(data, "pinned", &out.b); err != nil {
		return err
	}
	if out.b.Organic.IsZero() {
		return missing("pinned", "organic")
	}
	out.b.IDs = nilIfEmpty(out.b.IDs)
	out.b.Docs = nilIfEmpty(out.b.Docs)
	*q = out
	return nil
}
