package query

import (
	"encoding/json"

	"github.com/kailas-cloud/searchdsl/decode"
)

// MatchQuery runs analyzed full-text matching on a field.
type MatchQuery struct {
	field string
	b     matchBody
}

type matchBody struct {
	Query                           any                `json:"query"`
	Analyzer                        string             `json:"analyzer,omitempty"`
	AutoGenerateSynonymsPhraseQuery *bool              `json:"auto_generate_synonyms_phrase_query,omitempty"`
	Fuzziness                       Fuzziness          `json:"fuzziness,omitempty"`
	MaxExpansions                   *int64             `json:"max_expansions,omitempty"`
	PrefixLength                    *int64             `json:"prefix_length,omitempty"`
	FuzzyTranspositions             *bool              `json:"fuzzy_transpositions,omitempty"`
	FuzzyRewrite                    string             `json:"fuzzy_rewrite,omitempty"`
	Lenient                         *bool              `json:"lenient,omitempty"`
	Operator                        Operator           `json:"operator,omitempty"`
	MinimumShouldMatch              MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	ZeroTermsQuery                  ZeroTermsQuery     `json:"zero_terms_query,omitempty"`
	common
}

func Match(field string, text any) MatchQuery {
	return MatchQuery{field: field, b: matchBody{Query: decode.Normalize(text)}}
}

func (q MatchQuery) Analyzer(a string) MatchQuery {
	q.b.Analyzer = a
	return q
}

func (q MatchQuery) AutoGenerateSynonymsPhraseQuery(v bool) MatchQuery {
	q.b.AutoGenerateSynonymsPhraseQuery = &v
	return q
}

func (q MatchQuery) Fuzziness(f Fuzziness) MatchQuery {
	q.b.Fuzziness = f
	return q
}

func (q MatchQuery) MaxExpansions(n int64) MatchQuery {
	q.b.MaxExpansions = &n
	return q
}

func (q MatchQuery) PrefixLength(n int64) MatchQuery {
	q.b.PrefixLength = &n
	return q
}

func (q MatchQuery) FuzzyTranspositions(v bool) MatchQuery {
	q.b.FuzzyTranspositions = &v
	return q
}

func (q MatchQuery) FuzzyRewrite(r string) MatchQuery {
	q.b.FuzzyRewrite = r
	return q
}

func (q MatchQuery) Lenient(v bool) MatchQuery {
	q.b.Lenient = &v
	return q
}

func (q MatchQuery) Operator(op Operator) MatchQuery {
	q.b.Operator = op
	return q
}

func (q MatchQuery) MinimumShouldMatch(m string) MatchQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q MatchQuery) ZeroTermsQuery(z ZeroTermsQuery) MatchQuery {
	q.b.ZeroTermsQuery = z
	return q
}

func (q MatchQuery) Boost(boost float64) MatchQuery {
	q.b.Boost = &boost
	return q
}

func (q MatchQuery) Name(name string) MatchQuery {
	q.b.Name = name
	return q
}

func (q MatchQuery) IsEmpty() bool { return isEmptyValue(q.b.Query) }

func (q MatchQuery) variant() (Kind, Clause) { return KindMatch, q }

func (q MatchQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("match", q.field, q.b)
}

func (q *MatchQuery) UnmarshalJSON(data []byte) error {
	var out MatchQuery
	err := decodeFieldClause(data, "match", &out.field, &out.b, func(raw json.RawMessage) error {
		v, err := decode.Value(raw)
		if err != nil {
			return err
		}
		out.b.Query = v
		return nil
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// MatchBoolPrefixQuery matches every term and treats the last as a prefix.
type MatchBoolPrefixQuery struct {
	field string
	b     matchBoolPrefixBody
}

type matchBoolPrefixBody struct {
	Query              string             `json:"query"`
	Analyzer           string             `json:"analyzer,omitempty"`
	MinimumShouldMatch MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	Operator           Operator           `json:"operator,omitempty"`
	common
}

func MatchBoolPrefix(field, text string) MatchBoolPrefixQuery {
	return MatchBoolPrefixQuery{field: field, b: matchBoolPrefixBody{Query: text}}
}

func (q MatchBoolPrefixQuery) Analyzer(a string) MatchBoolPrefixQuery {
	q.b.Analyzer = a
	return q
}

func (q MatchBoolPrefixQuery) MinimumShouldMatch(m string) MatchBoolPrefixQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q MatchBoolPrefixQuery) Operator(op Operator) MatchBoolPrefixQuery {
	q.b.Operator = op
	return q
}

func (q MatchBoolPrefixQuery) Boost(boost float64) MatchBoolPrefixQuery {
	q.b.Boost = &boost
	return q
}

func (q MatchBoolPrefixQuery) Name(name string) MatchBoolPrefixQuery {
	q.b.Name = name
	return q
}

func (q MatchBoolPrefixQuery) IsEmpty() bool { return q.b.Query == "" }

func (q MatchBoolPrefixQuery) variant() (Kind, Clause) { return KindMatchBoolPrefix, q }

func (q MatchBoolPrefixQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("match_bool_prefix", q.field, q.b)
}

func (q *MatchBoolPrefixQuery) UnmarshalJSON(data []byte) error {
	var out MatchBoolPrefixQuery
	err := decodeFieldClause(data, "match_bool_prefix", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Query)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// MatchPhrasePrefixQuery matches a phrase whose last term is a prefix.
type MatchPhrasePrefixQuery struct {
	field string
	b     matchPhrasePrefixBody
}

type matchPhrasePrefixBody struct {
	Query          string         `json:"query"`
	Analyzer       string         `json:"analyzer,omitempty"`
	MaxExpansions  *int64         `json:"max_expansions,omitempty"`
	Slop           *int64         `json:"slop,omitempty"`
	ZeroTermsQuery ZeroTermsQuery `json:"zero_terms_query,omitempty"`
	common
}

func MatchPhrasePrefix(field, text string) MatchPhrasePrefixQuery {
	return MatchPhrasePrefixQuery{field: field, b: matchPhrasePrefixBody{Query: text}}
}

func (q MatchPhrasePrefixQuery) Analyzer(a string) MatchPhrasePrefixQuery {
	q.b.Analyzer = a
	return q
}

func (q MatchPhrasePrefixQuery) MaxExpansions(n int64) MatchPhrasePrefixQuery {
	q.b.MaxExpansions = &n
	return q
}

func (q MatchPhrasePrefixQuery) Slop(n int64) MatchPhrasePrefixQuery {
	q.b.Slop = &n
	return q
}

func (q MatchPhrasePrefixQuery) ZeroTermsQuery(z ZeroTermsQuery) MatchPhrasePrefixQuery {
	q.b.ZeroTermsQuery = z
	return q
}

func (q MatchPhrasePrefixQuery) Boost(boost float64) MatchPhrasePrefixQuery {
	q.b.Boost = &boost
	return q
}

func (q MatchPhrasePrefixQuery) Name(name string) MatchPhrasePrefixQuery {
	q.b.Name = name
	return q
}

func (q MatchPhrasePrefixQuery) IsEmpty() bool { return q.b.Query == "" }

func (q MatchPhrasePrefixQuery) variant() (Kind, Clause) { return KindMatchPhrasePrefix, q }

func (q MatchPhrasePrefixQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("match_phrase_prefix", q.field, q.b)
}

func (q *MatchPhrasePrefixQuery) UnmarshalJSON(data []byte) error {
	var out MatchPhrasePrefixQuery
	err := decodeFieldClause(data, "match_phrase_prefix", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Query)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// MatchPhraseQuery matches terms in order within slop.
type MatchPhraseQuery struct {
	field string
	b     matchPhraseBody
}

type matchPhraseBody struct {
	Query          string         `json:"query"`
	Analyzer       string         `json:"analyzer,omitempty"`
	Slop           *int64         `json:"slop,omitempty"`
	ZeroTermsQuery ZeroTermsQuery `json:"zero_terms_query,omitempty"`
	common
}

func MatchPhrase(field, text string) MatchPhraseQuery {
	return MatchPhraseQuery{field: field, b: matchPhraseBody{Query: text}}
}

func (q MatchPhraseQuery) Analyzer(a string) MatchPhraseQuery {
	q.b.Analyzer = a
	return q
}

func (q MatchPhraseQuery) Slop(n int64) MatchPhraseQuery {
	q.b.Slop = &n
	return q
}

func (q MatchPhraseQuery) ZeroTermsQuery(z ZeroTermsQuery) MatchPhraseQuery {
	q.b.ZeroTermsQuery = z
	return q
}

func (q MatchPhraseQuery) Boost(boost float64) MatchPhraseQuery {
	q.b.Boost = &boost
	return q
}

func (q MatchPhraseQuery) Name(name string) MatchPhraseQuery {
	q.b.Name = name
	return q
}

func (q MatchPhraseQuery) IsEmpty() bool { return q.b.Query == "" }

func (q MatchPhraseQuery) variant() (Kind, Clause) { return KindMatchPhrase, q }

func (q MatchPhraseQuery) MarshalJSON() ([]byte, error) {
	return encodeFieldClause("match_phrase", q.field, q.b)
}

func (q *MatchPhraseQuery) UnmarshalJSON(data []byte) error {
	var out MatchPhraseQuery
	err := decodeFieldClause(data, "match_phrase", &out.field, &out.b, func(raw json.RawMessage) error {
		return decode.Strict(raw, &out.b.Query)
	})
	if err != nil {
		return err
	}
	*q = out
	return nil
}

// MultiMatchQuery runs a match over several fields.
type MultiMatchQuery struct {
	b multiMatchBody
}

type multiMatchBody struct {
	Query              string             `json:"query"`
	Fields             []string           `json:"fields,omitempty"`
	Type               TextQueryType      `json:"type,omitempty"`
	TieBreaker         *float64           `json:"tie_breaker,omitempty"`
	Analyzer           string             `json:"analyzer,omitempty"`
	Operator           Operator           `json:"operator,omitempty"`
	MinimumShouldMatch MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	Fuzziness          Fuzziness          `json:"fuzziness,omitempty"`
	PrefixLength       *int64             `json:"prefix_length,omitempty"`
	MaxExpansions      *int64             `json:"max_expansions,omitempty"`
	Slop               *int64             `json:"slop,omitempty"`
	Lenient            *bool              `json:"lenient,omitempty"`
	ZeroTermsQuery     ZeroTermsQuery     `json:"zero_terms_query,omitempty"`
	common
}

func MultiMatch(fields []string, text string) MultiMatchQuery {
	return MultiMatchQuery{b: multiMatchBody{Query: text, Fields: nilIfEmpty(fields)}}
}

func (q MultiMatchQuery) Type(t TextQueryType) MultiMatchQuery {
	q.b.Type = t
	return q
}

func (q MultiMatchQuery) TieBreaker(t float64) MultiMatchQuery {
	q.b.TieBreaker = &t
	return q
}

func (q MultiMatchQuery) Analyzer(a string) MultiMatchQuery {
	q.b.Analyzer = a
	return q
}

func (q MultiMatchQuery) Operator(op Operator) MultiMatchQuery {
	q.b.Operator = op
	return q
}

func (q MultiMatchQuery) MinimumShouldMatch(m string) MultiMatchQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q MultiMatchQuery) Fuzziness(f Fuzziness) MultiMatchQuery {
	q.b.Fuzziness = f
	return q
}

func (q MultiMatchQuery) PrefixLength(n int64) MultiMatchQuery {
	q.b.PrefixLength = &n
	return q
}

func (q MultiMatchQuery) MaxExpansions(n int64) MultiMatchQuery {
	q.b.MaxExpansions = &n
	return q
}

func (q MultiMatchQuery) Slop(n int64) MultiMatchQuery {
	q.b.Slop = &n
	return q
}

func (q MultiMatchQuery) Lenient(v bool) MultiMatchQuery {
	q.b.Lenient = &v
	return q
}

func (q MultiMatchQuery) ZeroTermsQuery(z ZeroTermsQuery) MultiMatchQuery {
	q.b.ZeroTermsQuery = z
	return q
}

func (q MultiMatchQuery) Boost(boost float64) MultiMatchQuery {
	q.b.Boost = &boost
	return q
}

func (q MultiMatchQuery) Name(name string) MultiMatchQuery {
	q.b.Name = name
	return q
}

func (q MultiMatchQuery) IsEmpty() bool { return q.b.Query == "" }

func (q MultiMatchQuery) variant() (Kind, Clause) { return KindMultiMatch, q }

func (q MultiMatchQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("multi_match", q.b)
}

func (q *MultiMatchQuery) UnmarshalJSON(data []byte) error {
	var out MultiMatchQuery
	if err := decodeClause(data, "multi_match", &out.b); err != nil {
		return err
	}
	out.b.Fields = nilIfEmpty(out.b.Fields)
	*q = out
	return nil
}

// SimpleQueryStringQuery parses a limited, fault-tolerant query syntax.
type SimpleQueryStringQuery struct {
	b simpleQueryStringBody
}

type simpleQueryStringBody struct {
	Query                           string             `json:"query"`
	Fields                          []string           `json:"fields,omitempty"`
	DefaultOperator                 Operator           `json:"default_operator,omitempty"`
	Analyzer                        string             `json:"analyzer,omitempty"`
	Flags                           string             `json:"flags,omitempty"`
	AnalyzeWildcard                 *bool              `json:"analyze_wildcard,omitempty"`
	AutoGenerateSynonymsPhraseQuery *bool              `json:"auto_generate_synonyms_phrase_query,omitempty"`
	Lenient                         *bool              `json:"lenient,omitempty"`
	MinimumShouldMatch              MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	QuoteFieldSuffix                string             `json:"quote_field_suffix,omitempty"`
	common
}

func SimpleQueryString(text string) SimpleQueryStringQuery {
	return SimpleQueryStringQuery{b: simpleQueryStringBody{Query: text}}
}

func (q SimpleQueryStringQuery) Fields(fields ...string) SimpleQueryStringQuery {
	q.b.Fields = nilIfEmpty(fields)
	return q
}

func (q SimpleQueryStringQuery) DefaultOperator(op Operator) SimpleQueryStringQuery {
	q.b.DefaultOperator = op
	return q
}

func (q SimpleQueryStringQuery) Analyzer(a string) SimpleQueryStringQuery {
	q.b.Analyzer = a
	return q
}

// Flags enables syntax operators, e.g. "OR|AND|PREFIX".
func (q SimpleQueryStringQuery) Flags(flags string) SimpleQueryStringQuery {
	q.b.Flags = flags
	return q
}

func (q SimpleQueryStringQuery) AnalyzeWildcard(v bool) SimpleQueryStringQuery {
	q.b.AnalyzeWildcard = &v
	return q
}

func (q SimpleQueryStringQuery) AutoGenerateSynonymsPhraseQuery(v bool) SimpleQueryStringQuery {
	q.b.AutoGenerateSynonymsPhraseQuery = &v
	return q
}

func (q SimpleQueryStringQuery) Lenient(v bool) SimpleQueryStringQuery {
	q.b.Lenient = &v
	return q
}

func (q SimpleQueryStringQuery) MinimumShouldMatch(m string) SimpleQueryStringQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q SimpleQueryStringQuery) QuoteFieldSuffix(s string) SimpleQueryStringQuery {
	q.b.QuoteFieldSuffix = s
	return q
}

func (q SimpleQueryStringQuery) Boost(boost float64) SimpleQueryStringQuery {
	q.b.Boost = &boost
	return q
}

func (q SimpleQueryStringQuery) Name(name string) SimpleQueryStringQuery {
	q.b.Name = name
	return q
}

func (q SimpleQueryStringQuery) IsEmpty() bool { return q.b.Query == "" }

func (q SimpleQueryStringQuery) variant() (Kind, Clause) { return KindSimpleQueryString, q }

func (q SimpleQueryStringQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("simple_query_string", q.b)
}

func (q *SimpleQueryStringQuery) UnmarshalJSON(data []byte) error {
	var out SimpleQueryStringQuery
	if err := decodeClause(data, "simple_query_string", &out.b); err != nil {
		return err
	}
	out.b.Fields = nilIfEmpty(out.b.Fields)
	*q = out
	return nil
}

// QueryStringQuery parses the full Lucene query syntax.
type QueryStringQuery struct {
	b queryStringBody
}

type queryStringBody struct {
	Query                string             `json:"query"`
	DefaultField         string             `json:"default_field,omitempty"`
	Fields               []string           `json:"fields,omitempty"`
	DefaultOperator      Operator           `json:"default_operator,omitempty"`
	Analyzer             string             `json:"analyzer,omitempty"`
	AllowLeadingWildcard *bool              `json:"allow_leading_wildcard,omitempty"`
	AnalyzeWildcard      *bool              `json:"analyze_wildcard,omitempty"`
	Fuzziness            Fuzziness          `json:"fuzziness,omitempty"`
	Lenient              *bool              `json:"lenient,omitempty"`
	MinimumShouldMatch   MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	PhraseSlop           *int64             `json:"phrase_slop,omitempty"`
	TimeZone             string             `json:"time_zone,omitempty"`
	common
}

func QueryString(text string) QueryStringQuery {
	return QueryStringQuery{b: queryStringBody{Query: text}}
}

func (q QueryStringQuery) DefaultField(f string) QueryStringQuery {
	q.b.DefaultField = f
	return q
}

func (q QueryStringQuery) Fields(fields ...string) QueryStringQuery {
	q.b.Fields = nilIfEmpty(fields)
	return q
}

func (q QueryStringQuery) DefaultOperator(op Operator) QueryStringQuery {
	q.b.DefaultOperator = op
	return q
}

func (q QueryStringQuery) Analyzer(a string) QueryStringQuery {
	q.b.Analyzer = a
	return q
}

func (q QueryStringQuery) AllowLeadingWildcard(v bool) QueryStringQuery {
	q.b.AllowLeadingWildcard = &v
	return q
}

func (q QueryStringQuery) AnalyzeWildcard(v bool) QueryStringQuery {
	q.b.AnalyzeWildcard = &v
	return q
}

func (q QueryStringQuery) Fuzziness(f Fuzziness) QueryStringQuery {
	q.b.Fuzziness = f
	return q
}

func (q QueryStringQuery) Lenient(v bool) QueryStringQuery {
	q.b.Lenient = &v
	return q
}

func (q QueryStringQuery) MinimumShouldMatch(m string) QueryStringQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q QueryStringQuery) PhraseSlop(n int64) QueryStringQuery {
	q.b.PhraseSlop = &n
	return q
}

func (q QueryStringQuery) TimeZone(tz string) QueryStringQuery {
	q.b.TimeZone = tz
	return q
}

func (q QueryStringQuery) Boost(boost float64) QueryStringQuery {
	q.b.Boost = &boost
	return q
}

func (q QueryStringQuery) Name(name string) QueryStringQuery {
	q.b.Name = name
	return q
}

func (q QueryStringQuery) IsEmpty() bool { return q.b.Query == "" }

func (q QueryStringQuery) variant() (Kind, Clause) { return KindQueryString, q }

func (q QueryStringQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("query_string", q.b)
}

func (q *QueryStringQuery) UnmarshalJSON(data []byte) error {
	var out QueryStringQuery
	if err := decodeClause(data, "query_string", &out.b); err != nil {
		return err
	}
	out.b.Fields = nilIfEmpty(out.b.Fields)
	*q = out
	return nil
}

// CombinedFieldsQuery matches text across fields as if they were one.
type CombinedFieldsQuery struct {
	b combinedFieldsBody
}

type combinedFieldsBody struct {
	Query                           string             `json:"query"`
	Fields                          []string           `json:"fields"`
	AutoGenerateSynonymsPhraseQuery *bool              `json:"auto_generate_synonyms_phrase_query,omitempty"`
	Operator                        Operator           `json:"operator,omitempty"`
	MinimumShouldMatch              MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	ZeroTermsQuery                  ZeroTermsQuery     `json:"zero_terms_query,omitempty"`
	common
}

func CombinedFields(fields []string, text string) CombinedFieldsQuery {
	return CombinedFieldsQuery{b: combinedFieldsBody{Query: text, Fields: nilIfEmpty(fields)}}
}

func (q CombinedFieldsQuery) AutoGenerateSynonymsPhraseQuery(v bool) CombinedFieldsQuery {
	q.b.AutoGenerateSynonymsPhraseQuery = &v
	return q
}

func (q CombinedFieldsQuery) Operator(op Operator) CombinedFieldsQuery {
	q.b.Operator = op
	return q
}

func (q CombinedFieldsQuery) MinimumShouldMatch(m string) CombinedFieldsQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q CombinedFieldsQuery) ZeroTermsQuery(z ZeroTermsQuery) CombinedFieldsQuery {
	q.b.ZeroTermsQuery = z
	return q
}

func (q CombinedFieldsQuery) Boost(boost float64) CombinedFieldsQuery {
	q.b.Boost = &boost
	return q
}

func (q CombinedFieldsQuery) Name(name string) CombinedFieldsQuery {
	q.b.Name = name
	return q
}

func (q CombinedFieldsQuery) IsEmpty() bool { return q.b.Query == "" }

func (q CombinedFieldsQuery) variant() (Kind, Clause) { return KindCombinedFields, q }

func (q CombinedFieldsQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Fields = emptyIfNil(b.Fields)
	return encodeClause("combined_fields", b)
}

func (q *CombinedFieldsQuery) UnmarshalJSON(data []byte) error {
	var out CombinedFieldsQuery
	if err := decodeClause(data, "combined_fields", &out.b); err != nil {
		return err
	}
	out.b.Fields = nilIfEmpty(out.b.Fields)
	*q = out
	return nil
}
