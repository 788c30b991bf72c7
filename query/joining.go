package query

// NestedQuery runs a query against nested objects under path.
type NestedQuery struct {
	b nestedBody
}

type nestedBody struct {
	Path           string     `json:"path"`
	Query          Query      `json:"query"`
	ScoreMode      ScoreMode  `json:"score_mode,omitempty"`
	IgnoreUnmapped *bool      `json:"ignore_unmapped,omitempty"`
	InnerHits      *InnerHits `json:"inner_hits,omitempty"`
	common
}

func Nested(path string, q Clause) NestedQuery {
	return NestedQuery{b: nestedBody{Path: path, Query: From(q)}}
}

func (q NestedQuery) ScoreMode(m ScoreMode) NestedQuery {
	q.b.ScoreMode = m
	return q
}

func (q NestedQuery) IgnoreUnmapped(v bool) NestedQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q NestedQuery) InnerHits(h InnerHits) NestedQuery {
	q.b.InnerHits = &h
	return q
}

func (q NestedQuery) Boost(boost float64) NestedQuery {
	q.b.Boost = &boost
	return q
}

func (q NestedQuery) Name(name string) NestedQuery {
	q.b.Name = name
	return q
}

func (q NestedQuery) IsEmpty() bool { return q.b.Query.IsEmpty() }

func (q NestedQuery) variant() (Kind, Clause) { return KindNested, q }

func (q NestedQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("nested", q.b)
}

func (q *NestedQuery) UnmarshalJSON(data []byte) error {
	var out NestedQuery
	if err := decodeClause(data, "nested", &out.b); err != nil {
		return err
	}
	if out.b.Query.IsZero() {
		return missing("nested", "query")
	}
	*q = out
	return nil
}

// ParentIDQuery matches child documents of one parent.
type ParentIDQuery struct {
	b parentIDBody
}

type parentIDBody struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	IgnoreUnmapped *bool  `json:"ignore_unmapped,omitempty"`
	common
}

// ParentID matches children of relation type for parent id.
func ParentID(typ, id string) ParentIDQuery {
	return ParentIDQuery{b: parentIDBody{Type: typ, ID: id}}
}

func (q ParentIDQuery) IgnoreUnmapped(v bool) ParentIDQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q ParentIDQuery) Boost(boost float64) ParentIDQuery {
	q.b.Boost = &boost
	return q
}

func (q ParentIDQuery) Name(name string) ParentIDQuery {
	q.b.Name = name
	return q
}

func (q ParentIDQuery) IsEmpty() bool { return q.b.Type == "" || q.b.ID == "" }

func (q ParentIDQuery) variant() (Kind, Clause) { return KindParentID, q }

func (q ParentIDQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("parent_id", q.b)
}

func (q *ParentIDQuery) UnmarshalJSON(data []byte) error {
	var out ParentIDQuery
	if err := decodeClause(data, "parent_id", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// HasParentQuery matches children whose parent matches a query.
type HasParentQuery struct {
	b hasParentBody
}

type hasParentBody struct {
	ParentType     string     `json:"parent_type"`
	Query          Query      `json:"query"`
	Score          *bool      `json:"score,omitempty"`
	IgnoreUnmapped *bool      `json:"ignore_unmapped,omitempty"`
	InnerHits      *InnerHits `json:"inner_hits,omitempty"`
	common
}

func HasParent(parentType string, q Clause) HasParentQuery {
	return HasParentQuery{b: hasParentBody{ParentType: parentType, Query: From(q)}}
}

func (q HasParentQuery) Score(v bool) HasParentQuery {
	q.b.Score = &v
	return q
}

func (q HasParentQuery) IgnoreUnmapped(v bool) HasParentQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q HasParentQuery) InnerHits(h InnerHits) HasParentQuery {
	q.b.InnerHits = &h
	return q
}

func (q HasParentQuery) Boost(boost float64) HasParentQuery {
	q.b.Boost = &boost
	return q
}

func (q HasParentQuery) Name(name string) HasParentQuery {
	q.b.Name = name
	return q
}

func (q HasParentQuery) IsEmpty() bool { return q.b.Query.IsEmpty() }

func (q HasParentQuery) variant() (Kind, Clause) { return KindHasParent, q }

func (q HasParentQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("has_parent", q.b)
}

func (q *HasParentQuery) UnmarshalJSON(data []byte) error {
	var out HasParentQuery
	if err := decodeClause(data, "has_parent", &out.b); err != nil {
		return err
	}
	if out.b.Query.IsZero() {
		return missing("has_parent", "query")
	}
	*q = out
	return nil
}

// HasChildQuery matches parents whose children match a query.
type HasChildQuery struct {
	b hasChildBody
}

type hasChildBody struct {
	Type           string     `json:"type"`
	Query          Query      `json:"query"`
	IgnoreUnmapped *bool      `json:"ignore_unmapped,omitempty"`
	MaxChildren    *int64     `json:"max_children,omitempty"`
	MinChildren    *int64     `json:"min_children,omitempty"`
	ScoreMode      ScoreMode  `json:"score_mode,omitempty"`
	InnerHits      *InnerHits `json:"inner_hits,omitempty"`
	common
}

func HasChild(childType string, q Clause) HasChildQuery {
	return HasChildQuery{b: hasChildBody{Type: childType, Query: From(q)}}
}

func (q HasChildQuery) IgnoreUnmapped(v bool) HasChildQuery {
	q.b.IgnoreUnmapped = &v
	return q
}

func (q HasChildQuery) MaxChildren(n int64) HasChildQuery {
	q.b.MaxChildren = &n
	return q
}

func (q HasChildQuery) MinChildren(n int64) HasChildQuery {
	q.b.MinChildren = &n
	return q
}

func (q HasChildQuery) ScoreMode(m ScoreMode) HasChildQuery {
	q.b.ScoreMode = m
	return q
}

func (q HasChildQuery) InnerHits(h InnerHits) HasChildQuery {
	q.b.InnerHits = &h
	return q
}

func (q HasChildQuery) Boost(boost float64) HasChildQuery {
	q.b.Boost = &boost
	return q
}

func (q HasChildQuery) Name(name string) HasChildQuery {
	q.b.Name = name
	return q
}

func (q HasChildQuery) IsEmpty() bool { return q.b.Query.IsEmpty() }

func (q HasChildQuery) variant() (Kind, Clause) { return KindHasChild, q }

func (q HasChildQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("has_child", q.b)
}

func (q *HasChildQuery) UnmarshalJSON(data []byte) error {
	var out HasChildQuery
	if err := decodeClause(data, "has_child", &out.b); err != nil {
		return err
	}
	if out.b.Query.IsZero() {
		return missing("has_child", "query")
	}
	*q = out
	return nil
}
