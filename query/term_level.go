package query

import (
	"encoding/json"

	"github.com/kailas-cloud/searchdsl/decode"
)

// PrefixQuery matches terms starting with value.
type PrefixQuery struct {
	field string
	b     prefixBody
}

type prefixBody struct {
	Value           string `json:"value"`
	Rewrite         string `json:"rewrite,omitempty"`
	CaseInsensitive *bool  `json:"case_insensitive,omitempty"`
	common
}

func Prefix(field, value string) PrefixQuery {
	return PrefixQuery{field: field, b: prefixBody{Value: value}}
}

func (q PrefixQuery) Rewrite(rewrite string) PrefixQuery {
	q.b.Rewrite = rewrite
	return q
}

func (q PrefixQuery) CaseInsensitive(v bool) PrefixQuery {
	q.b.CaseInsensitive = &v
	return q
}

func (q PrefixQuery) Boost(boost float64) PrefixQuery {
	q.b.Boost = &boost
	return q
}

func (q PrefixQuery) Name(name string) PrefixQuery {
	q.b.Name = name
	return q
}

func (q PrefixQuery) IsEmpty() bool { return q.b.Value == "" }

func (q PrefixQuery) variant() (Kind, Clause) { return KindPrefix, q }
func (PrefixQuery) multiTerm()                {}

func (q PrefixQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("prefix", q.field, q.b)
}

func (q *PrefixQuery) UnmarshalJSON(data []byte) error {
	var out PrefixQuery
	err := decodeFieldClause(data, "prefix", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Value)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// RegexpQuery matches terms against a regular expression.
type RegexpQuery struct {
	field string
	b     regexpBody
}

type regexpBody struct {
	Value                 string `json:"value"`
	Flags                 string `json:"flags,omitempty"`
	CaseInsensitive       *bool  `json:"case_insensitive,omitempty"`
	MaxDeterminizedStates *int64 `json:"max_determinized_states,omitempty"`
	Rewrite               string `json:"rewrite,omitempty"`
	common
}

func Regexp(field, value string) RegexpQuery {
	return RegexpQuery{field: field, b: regexpBody{Value: value}}
}

func (q RegexpQuery) Flags(flags string) RegexpQuery {
	q.b.Flags = flags
	return q
}

func (q RegexpQuery) CaseInsensitive(v bool) RegexpQuery {
	q.b.CaseInsensitive = &v
	return q
}

func (q RegexpQuery) MaxDeterminizedStates(n int64) RegexpQuery {
	q.b.MaxDeterminizedStates = &n
	return q
}

func (q RegexpQuery) Rewrite(rewrite string) RegexpQuery {
	q.b.Rewrite = rewrite
	return q
}

func (q RegexpQuery) Boost(boost float64) RegexpQuery {
	q.b.Boost = &boost
	return q
}

func (q RegexpQuery) Name(name string) RegexpQuery {
	q.b.Name = name
	return q
}

func (q RegexpQuery) IsEmpty() bool { return q.b.Value == "" }

func (q RegexpQuery) variant() (Kind, Clause) { return KindRegexp, q }
func (RegexpQuery) multiTerm()                {}

func (q RegexpQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("regexp", q.field, q.b)
}

func (q *RegexpQuery) UnmarshalJSON(data []byte) error {
	var out RegexpQuery
	err := decodeFieldClause(data, "regexp", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Value)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// WildcardQuery matches terms against a wildcard pattern.
type WildcardQuery struct {
	field string
	b     wildcardBody
}

type wildcardBody struct {
	Value           string `json:"value"`
	Rewrite         string `json:"rewrite,omitempty"`
	CaseInsensitive *bool  `json:"case_insensitive,omitempty"`
	common
}

func Wildcard(field, value string) WildcardQuery {
	return WildcardQuery{field: field, b: wildcardBody{Value: value}}
}

func (q WildcardQuery) Rewrite(rewrite string) WildcardQuery {
	q.b.Rewrite = rewrite
	return q
}

func (q WildcardQuery) CaseInsensitive(v bool) WildcardQuery {
	q.b.CaseInsensitive = &v
	return q
}

func (q WildcardQuery) Boost(boost float64) WildcardQuery {
	q.b.Boost = &boost
	return q
}

func (q WildcardQuery) Name(name string) WildcardQuery {
	q.b.Name = name
	return q
}

func (q WildcardQuery) IsEmpty() bool { return q.b.Value == "" }

func (q WildcardQuery) variant() (Kind, Clause) { return KindWildcard, q }
func (WildcardQuery) multiTerm()                {}

func (q WildcardQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("wildcard", q.field, q.b)
}

func (q *WildcardQuery) UnmarshalJSON(data []byte) error {
	var out WildcardQuery
	err := decodeFieldClause(data, "wildcard", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Value)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// TermsSetQuery matches documents containing a minimum number of terms.
type TermsSetQuery struct {
	field string
	b     termsSetBody
}

type termsSetBody struct {
	Terms                    []any   `json:"terms"`
	MinimumShouldMatchField  string  `json:"minimum_should_match_field,omitempty"`
	MinimumShouldMatchScript *Script `json:"minimum_should_match_script,omitempty"`
	common
}

func TermsSet(field string, terms ...any) TermsSetQuery {
	return TermsSetQuery{field: field, b: termsSetBody{Terms: normalizeAll(terms)}}
}

func (q TermsSetQuery) MinimumShouldMatchField(field string) TermsSetQuery {
	q.b.MinimumShouldMatchField = field
	return q
}

func (q TermsSetQuery) MinimumShouldMatchScript(s Script) TermsSetQuery {
	q.b.MinimumShouldMatchScript = &s
	return q
}

func (q TermsSetQuery) Boost(boost float64) TermsSetQuery {
	q.b.Boost = &boost
	return q
}

func (q TermsSetQuery) Name(name string) TermsSetQuery {
	q.b.Name = name
	return q
}

func (q TermsSetQuery) IsEmpty() bool { return len(q.b.Terms) == 0 }

func (q TermsSetQuery) variant() (Kind, Clause) { return KindTermsSet, q }

func (q TermsSetQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Terms = emptyIfNil(b.Terms)
	return encodeFieldClause("terms_set", q.field, b)
}

func (q *TermsSetQuery) UnmarshalJSON(data []byte) error {
	var out TermsSetQuery
	if err := decodeFieldClause(data, "terms_set", &out.field, &out.b, nil); err != nil {
		return err
	}
	out.b.Terms = nilIfEmpty(out.b.Terms)
	*q = out
	return nil
}

// TermQuery matches an exact term.
type TermQuery struct {
	field string
	b     termBody
}

type termBody struct {
	Value           any   `json:"value"`
	CaseInsensitive *bool `json:"case_insensitive,omitempty"`
	common
}

func Term(field string, value any) TermQuery {
	return TermQuery{field: field, b: termBody{Value: decode.Normalize(value)}}
}

func (q TermQuery) CaseInsensitive(v bool) TermQuery {
	q.b.CaseInsensitive = &v
	return q
}

func (q TermQuery) Boost(boost float64) TermQuery {
	q.b.Boost = &boost
	return q
}

func (q TermQuery) Name(name string) TermQuery {
	q.b.Name = name
	return q
}

// Field returns the queried field.
func (q TermQuery) Field() string { return q.field }

// Value returns the term, normalized to its JSON form.
func (q TermQuery) Value() any { return q.b.Value }

func (q TermQuery) IsEmpty() bool { return isEmptyValue(q.b.Value) }

func (q TermQuery) variant() (Kind, Clause) { return KindTerm, q }

func (q TermQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("term", q.field, q.b)
}

func (q *TermQuery) UnmarshalJSON(data []byte) error {
	var out TermQuery
	err := decodeFieldClause(data, "term", &out.field, &out.b, func(raw json.RawMessage) error {
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

// TermsQuery matches any of the listed terms.
type TermsQuery struct {
	field  string
	values []any
	b      common
}

func Terms(field string, values ...any) TermsQuery {
	return TermsQuery{field: field, values: normalizeAll(values)}
}

func (q TermsQuery) Boost(boost float64) TermsQuery {
	q.b.Boost = &boost
	return q
}

func (q TermsQuery) Name(name string) TermsQuery {
	q.b.Name = name
	return q
}

// Values returns the terms, normalized to their JSON form.
func (q TermsQuery) Values() []any { return q.values }

func (q TermsQuery) IsEmpty() bool { return len(q.values) == 0 }

func (q TermsQuery) variant() (Kind, Clause) { return KindTerms, q }

func (q TermsQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("terms", q.field, emptyIfNil(q.values), q.b)
}

func (q *TermsQuery) UnmarshalJSON(data []byte) error {
	var out TermsQuery
	err := decodeMixedClause(data, "terms", commonKeys, &out.field, func(raw json.RawMessage) error {
		vs, err := decodeValues(raw)
		out.values = vs
		return err
	}, &out.b)
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// TermsLookupQuery takes its terms from a field of another document.
type TermsLookupQuery struct {
	field  string
	lookup TermsLookupSource
	b      common
}

// TermsLookupSource locates the document holding the terms.
type TermsLookupSource struct {
	Index   string `json:"index"`
	ID      string `json:"id"`
	Path    string `json:"path"`
	Routing string `json:"routing,omitempty"`
}

func TermsLookup(field, index, id, path string) TermsLookupQuery {
	return TermsLookupQuery{field: field, lookup: TermsLookupSource{Index: index, ID: id, Path: path}}
}

func (q TermsLookupQuery) Routing(routing string) TermsLookupQuery {
	q.lookup.Routing = routing
	return q
}

func (q TermsLookupQuery) Boost(boost float64) TermsLookupQuery {
	q.b.Boost = &boost
	return q
}

func (q TermsLookupQuery) Name(name string) TermsLookupQuery {
	q.b.Name = name
	return q
}

func (q TermsLookupQuery) IsEmpty() bool {
	return q.lookup.Index == "" && q.lookup.ID == "" && q.lookup.Path == ""
}

func (q TermsLookupQuery) variant() (Kind, Clause) { return KindTermsLookup, q }

func (q TermsLookupQuery) MarshalJSON() ([]byte, error) {
	return encodeMixedClause("terms", q.field, q.lookup, q.b)
}

func (q *TermsLookupQuery) UnmarshalJSON(data []byte) error {
	var out TermsLookupQuery
	err := decodeMixedClause(data, "terms", commonKeys, &out.field, func(raw json.RawMessage) error {
		if err := decode.Strict(raw, &out.lookup); err != nil {
			return err
		}
		if out.lookup.Index == "" || out.lookup.ID == "" || out.lookup.Path == "" {
			return missing("terms lookup", "index, id and path")
		}
		return nil
	}, &out.b)
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// ExistsQuery matches documents with an indexed value for field.
type ExistsQuery struct {
	b existsBody
}

type existsBody struct {
	Field string `json:"field"`
	common
}

func Exists(field string) ExistsQuery {
	return ExistsQuery{b: existsBody{Field: field}}
}

func (q ExistsQuery) Boost(boost float64) ExistsQuery {
	q.b.Boost = &boost
	return q
}

func (q ExistsQuery) Name(name string) ExistsQuery {
	q.b.Name = name
	return q
}

func (q ExistsQuery) IsEmpty() bool { return q.b.Field == "" }

func (q ExistsQuery) variant() (Kind, Clause) { return KindExists, q }

func (q ExistsQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("exists", q.b)
}

func (q *ExistsQuery) UnmarshalJSON(data []byte) error {
	var out ExistsQuery
	if err := decodeClause(data, "exists", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// RangeQuery matches values within bounds.
type RangeQuery struct {
	field string
	b     rangeBody
}

type rangeBody struct {
	GT       any           `json:"gt,omitempty"`
	GTE      any           `json:"gte,omitempty"`
	LT       any           `json:"lt,omitempty"`
	LTE      any           `json:"lte,omitempty"`
	Format   string        `json:"format,omitempty"`
	Relation RangeRelation `json:"relation,omitempty"`
	TimeZone string        `json:"time_zone,omitempty"`
	common
}

// Range returns an unbounded, and therefore empty, range on field.
func Range(field string) RangeQuery { return RangeQuery{field: field} }

func (q RangeQuery) Gt(v any) RangeQuery {
	q.b.GT = decode.Normalize(v)
	return q
}

func (q RangeQuery) Gte(v any) RangeQuery {
	q.b.GTE = decode.Normalize(v)
	return q
}

func (q RangeQuery) Lt(v any) RangeQuery {
	q.b.LT = decode.Normalize(v)
	return q
}

func (q RangeQuery) Lte(v any) RangeQuery {
	q.b.LTE = decode.Normalize(v)
	return q
}

// DateFormat sets the date format used to parse the bounds.
func (q RangeQuery) DateFormat(format string) RangeQuery {
	q.b.Format = format
	return q
}

func (q RangeQuery) Relation(r RangeRelation) RangeQuery {
	q.b.Relation = r
	return q
}

func (q RangeQuery) TimeZone(tz string) RangeQuery {
	q.b.TimeZone = tz
	return q
}

func (q RangeQuery) Boost(boost float64) RangeQuery {
	q.b.Boost = &boost
	return q
}

func (q RangeQuery) Name(name string) RangeQuery {
	q.b.Name = name
	return q
}

func (q RangeQuery) IsEmpty() bool {
	return q.b.GT == nil && q.b.GTE == nil && q.b.LT == nil && q.b.LTE == nil
}

func (q RangeQuery) variant() (Kind, Clause) { return KindRange, q }
func (RangeQuery) multiTerm()                {}

func (q RangeQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("range", q.field, q.b)
}

func (q *RangeQuery) UnmarshalJSON(data []byte) error {
	var out RangeQuery
	if err := decodeFieldClause(data, "range", &out.field, &out.b, nil); err != nil {
		return err
	}
	*q = out
	return nil
}

// IdsQuery matches documents by _id.
type IdsQuery struct {
	b idsBody
}

type idsBody struct {
	Values []string `json:"values"`
	common
}

func Ids(values ...string) IdsQuery {
	return IdsQuery{b: idsBody{Values: nilIfEmpty(values)}}
}

func (q IdsQuery) Boost(boost float64) IdsQuery {
	q.b.Boost = &boost
	return q
}

func (q IdsQuery) Name(name string) IdsQuery {
	q.b.Name = name
	return q
}

func (q IdsQuery) IsEmpty() bool { return len(q.b.Values) == 0 }

func (q IdsQuery) variant() (Kind, Clause) { return KindIds, q }

func (q IdsQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Values = emptyIfNil(b.Values)
	return encodeClause("ids", b)
}

func (q *IdsQuery) UnmarshalJSON(data []byte) error {
	var out IdsQuery
	if err := decodeClause(data, "ids", &out.b); err != nil {
		return err
	}
	out.b.Values = nilIfEmpty(out.b.Values)
	*q = out
	return nil
}

// FuzzyQuery matches terms within an edit distance.
type FuzzyQuery struct {
	field string
	b     fuzzyBody
}

type fuzzyBody struct {
	Value          any       `json:"value"`
	Fuzziness      Fuzziness `json:"fuzziness,omitempty"`
	MaxExpansions  *int64    `json:"max_expansions,omitempty"`
	PrefixLength   *int64    `json:"prefix_length,omitempty"`
	Transpositions *bool     `json:"transpositions,omitempty"`
	Rewrite        string    `json:"rewrite,omitempty"`
	common
}

func Fuzzy(field string, value any) FuzzyQuery {
	return FuzzyQuery{field: field, b: fuzzyBody{Value: decode.Normalize(value)}}
}

func (q FuzzyQuery) Fuzziness(f Fuzziness) FuzzyQuery {
	q.b.Fuzziness = f
	return q
}

func (q FuzzyQuery) MaxExpansions(n int64) FuzzyQuery {
	q.b.MaxExpansions = &n
	return q
}

func (q FuzzyQuery) PrefixLength(n int64) FuzzyQuery {
	q.b.PrefixLength = &n
	return q
}

func (q FuzzyQuery) Transpositions(v bool) FuzzyQuery {
	q.b.Transpositions = &v
	return q
}

func (q FuzzyQuery) Rewrite(rewrite string) FuzzyQuery {
	q.b.Rewrite = rewrite
	return q
}

func (q FuzzyQuery) Boost(boost float64) FuzzyQuery {
	q.b.Boost = &boost
	return q
}

func (q FuzzyQuery) Name(name string) FuzzyQuery {
	q.b.Name = name
	return q
}

func (q FuzzyQuery) IsEmpty() bool { return isEmptyValue(q.b.Value) }

func (q FuzzyQuery) variant() (Kind, Clause) { return KindFuzzy, q }
func (FuzzyQuery) multiTerm()                {}

func (q FuzzyQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("fuzzy", q.field, q.b)
}

func (q *FuzzyQuery) UnmarshalJSON(data []byte) error {
	var out FuzzyQuery
	err := decodeFieldClause(data, "fuzzy", &out.field, &out.b, func(raw json.RawMessage) error {
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
