package query

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/searchdsl/decode"
)

// DistanceFeatureDateQuery boosts documents whose date is close to origin.
type DistanceFeatureDateQuery struct {
	b distanceFeatureDateBody
}

type distanceFeatureDateBody struct {
	Field  string     `json:"field"`
	Origin *time.Time `json:"origin"`
	Pivot  string     `json:"pivot"`
	common
}

// DistanceFeatureDate scores by proximity of field to origin; pivot is a
// duration such as "7d". Origin is kept in UTC.
func DistanceFeatureDate(field string, origin time.Time, pivot string) DistanceFeatureDateQuery {
	o := origin.UTC()
	return DistanceFeatureDateQuery{b: distanceFeatureDateBody{Field: field, Origin: &o, Pivot: pivot}}
}

func (q DistanceFeatureDateQuery) Boost(boost float64) DistanceFeatureDateQuery {
	q.b.Boost = &boost
	return q
}

func (q DistanceFeatureDateQuery) Name(name string) DistanceFeatureDateQuery {
	q.b.Name = name
	return q
}

func (q DistanceFeatureDateQuery) IsEmpty() bool { return q.b.Field == "" }

func (q DistanceFeatureDateQuery) variant() (Kind, Clause) { return KindDistanceFeatureDate, q }

func (q DistanceFeatureDateQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("distance_feature", q.b)
}

func (q *DistanceFeatureDateQuery) UnmarshalJSON(data []byte) error {
	var out DistanceFeatureDateQuery
	if err := decodeClause(data, "distance_feature", &out.b); err != nil {
		return err
	}
	if out.b.Origin == nil {
		return missing("distance_feature", "origin")
	}
	o := out.b.Origin.UTC()
	out.b.Origin = &o
	*q = out
	return nil
}

// DistanceFeatureGeoQuery boosts documents whose location is close to origin.
type DistanceFeatureGeoQuery struct {
	b distanceFeatureGeoBody
}

type distanceFeatureGeoBody struct {
	Field  string    `json:"field"`
	Origin *GeoPoint `json:"origin"`
	Pivot  string    `json:"pivot"`
	common
}

// DistanceFeatureGeo scores by proximity of field to origin; pivot is a
// distance such as "1km".
func DistanceFeatureGeo(field string, origin GeoPoint, pivot string) DistanceFeatureGeoQuery {
	return DistanceFeatureGeoQuery{b: distanceFeatureGeoBody{Field: field, Origin: &origin, Pivot: pivot}}
}

func (q DistanceFeatureGeoQuery) Boost(boost float64) DistanceFeatureGeoQuery {
	q.b.Boost = &boost
	return q
}

func (q DistanceFeatureGeoQuery) Name(name string) DistanceFeatureGeoQuery {
	q.b.Name = name
	return q
}

func (q DistanceFeatureGeoQuery) IsEmpty() bool { return q.b.Field == "" }

func (q DistanceFeatureGeoQuery) variant() (Kind, Clause) { return KindDistanceFeatureGeo, q }

func (q DistanceFeatureGeoQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("distance_feature", q.b)
}

func (q *DistanceFeatureGeoQuery) UnmarshalJSON(data []byte) error {
	var out DistanceFeatureGeoQuery
	if err := decodeClause(data, "distance_feature", &out.b); err != nil {
		return err
	}
	if out.b.Origin == nil {
		return missing("distance_feature", "origin")
	}
	*q = out
	return nil
}

// PercolateQuery matches stored queries against provided documents.
type PercolateQuery struct {
	field     string
	documents []any
	name      string
}

type percolateBody struct {
	Field     string `json:"field"`
	Document  any    `json:"document,omitempty"`
	Documents []any  `json:"documents,omitempty"`
	Name      string `json:"name,omitempty"`
}

// Percolate matches the queries stored in field against documents. One
// document encodes as "document", several as "documents".
func Percolate(field string, documents ...any) PercolateQuery {
	return PercolateQuery{field: field, documents: normalizeAll(documents)}
}

// Name sets the percolator name used in _percolator_document_slot keys.
func (q PercolateQuery) Name(name string) PercolateQuery {
	q.name = name
	return q
}

func (q PercolateQuery) IsEmpty() bool { return len(q.documents) == 0 }

func (q PercolateQuery) variant() (Kind, Clause) { return KindPercolate, q }

func (q PercolateQuery) MarshalJSON() ([]byte, error) {
	b := percolateBody{Field: q.field, Name: q.name}
	if len(q.documents) == 1 {
		b.Document = q.documents[0]
	} else {
		b.Documents = emptyIfNil(q.documents)
	}
	return encodeClause("percolate", b)
}

func (q *PercolateQuery) UnmarshalJSON(data []byte) error {
	var b percolateBody
	if err := decodeClause(data, "percolate", &b); err != nil {
		return err
	}
	out := PercolateQuery{field: b.Field, name: b.Name}
	switch {
	case b.Document != nil && b.Documents != nil:
		return missing("percolate", "exactly one of document and documents")
	case b.Document != nil:
		out.documents = []any{b.Document}
	case b.Documents != nil:
		out.documents = nilIfEmpty(b.Documents)
	default:
		return missing("percolate", "document")
	}
	*q = out
	return nil
}

// PercolateLookupQuery percolates a document already stored in an index.
type PercolateLookupQuery struct {
	b percolateLookupBody
}

type percolateLookupBody struct {
	Field      string `json:"field"`
	Index      string `json:"index"`
	ID         string `json:"id"`
	Routing    string `json:"routing,omitempty"`
	Preference string `json:"preference,omitempty"`
	Version    *int64 `json:"version,omitempty"`
	Name       string `json:"name,omitempty"`
}

func PercolateLookup(field, index, id string) PercolateLookupQuery {
	return PercolateLookupQuery{b: percolateLookupBody{Field: field, Index: index, ID: id}}
}

func (q PercolateLookupQuery) Routing(r string) PercolateLookupQuery {
	q.b.Routing = r
	return q
}

func (q PercolateLookupQuery) Preference(p string) PercolateLookupQuery {
	q.b.Preference = p
	return q
}

func (q PercolateLookupQuery) Version(v int64) PercolateLookupQuery {
	q.b.Version = &v
	return q
}

func (q PercolateLookupQuery) Name(name string) PercolateLookupQuery {
	q.b.Name = name
	return q
}

func (q PercolateLookupQuery) IsEmpty() bool { return q.b.Index == "" || q.b.ID == "" }

func (q PercolateLookupQuery) variant() (Kind, Clause) { return KindPercolateLookup, q }

func (q PercolateLookupQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("percolate", q.b)
}

func (q *PercolateLookupQuery) UnmarshalJSON(data []byte) error {
	var out PercolateLookupQuery
	if err := decodeClause(data, "percolate", &out.b); err != nil {
		return err
	}
	if out.b.Index == "" || out.b.ID == "" {
		return missing("percolate", "index and id")
	}
	*q = out
	return nil
}

// RankFeatureQuery boosts by a rank_feature field with the default function.
type RankFeatureQuery struct {
	b rankFeatureBody
}

type rankFeatureBody struct {
	Field string `json:"field"`
	common
}

func RankFeature(field string) RankFeatureQuery {
	return RankFeatureQuery{b: rankFeatureBody{Field: field}}
}

func (q RankFeatureQuery) Boost(boost float64) RankFeatureQuery {
	q.b.Boost = &boost
	return q
}

func (q RankFeatureQuery) Name(name string) RankFeatureQuery {
	q.b.Name = name
	return q
}

func (q RankFeatureQuery) IsEmpty() bool { return q.b.Field == "" }

func (q RankFeatureQuery) variant() (Kind, Clause) { return KindRankFeature, q }

func (q RankFeatureQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("rank_feature", q.b)
}

func (q *RankFeatureQuery) UnmarshalJSON(data []byte) error {
	var out RankFeatureQuery
	if err := decodeClause(data, "rank_feature", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// RankFeatureSaturationQuery boosts with S / (S + pivot).
type RankFeatureSaturationQuery struct {
	b rankFeatureSaturationBody
}

type saturation struct {
	Pivot *float64 `json:"pivot,omitempty"`
}

type rankFeatureSaturationBody struct {
	Field      string      `json:"field"`
	Saturation *saturation `json:"saturation"`
	common
}

func RankFeatureSaturation(field string) RankFeatureSaturationQuery {
	return RankFeatureSaturationQuery{b: rankFeatureSaturationBody{Field: field, Saturation: &saturation{}}}
}

func (q RankFeatureSaturationQuery) Pivot(p float64) RankFeatureSaturationQuery {
	q.b.Saturation = &saturation{Pivot: &p}
	return q
}

func (q RankFeatureSaturationQuery) Boost(boost float64) RankFeatureSaturationQuery {
	q.b.Boost = &boost
	return q
}

func (q RankFeatureSaturationQuery) Name(name string) RankFeatureSaturationQuery {
	q.b.Name = name
	return q
}

func (q RankFeatureSaturationQuery) IsEmpty() bool { return q.b.Field == "" }

func (q RankFeatureSaturationQuery) variant() (Kind, Clause) { return KindRankFeatureSaturation, q }

func (q RankFeatureSaturationQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("rank_feature", q.b)
}

func (q *RankFeatureSaturationQuery) UnmarshalJSON(data []byte) error {
	var out RankFeatureSaturationQuery
	if err := decodeClause(data, "rank_feature", &out.b); err != nil {
		return err
	}
	if out.b.Saturation == nil {
		return missing("rank_feature", "saturation")
	}
	*q = out
	return nil
}

// RankFeatureLogarithmQuery boosts with log(scaling_factor + S).
type RankFeatureLogarithmQuery struct {
	b rankFeatureLogarithmBody
}

type logarithm struct {
	ScalingFactor float64 `json:"scaling_factor"`
}

type rankFeatureLogarithmBody struct {
	Field string     `json:"field"`
	Log   *logarithm `json:"log"`
	common
}

func RankFeatureLogarithm(field string, scalingFactor float64) RankFeatureLogarithmQuery {
	return RankFeatureLogarithmQuery{b: rankFeatureLogarithmBody{Field: field, Log: &logarithm{ScalingFactor: scalingFactor}}}
}

func (q RankFeatureLogarithmQuery) Boost(boost float64) RankFeatureLogarithmQuery {
	q.b.Boost = &boost
	return q
}

func (q RankFeatureLogarithmQuery) Name(name string) RankFeatureLogarithmQuery {
	q.b.Name = name
	return q
}

func (q RankFeatureLogarithmQuery) IsEmpty() bool { return q.b.Field == "" }

func (q RankFeatureLogarithmQuery) variant() (Kind, Clause) { return KindRankFeatureLogarithm, q }

func (q RankFeatureLogarithmQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("rank_feature", q.b)
}

func (q *RankFeatureLogarithmQuery) UnmarshalJSON(data []byte) error {
	var out RankFeatureLogarithmQuery
	if err := decodeClause(data, "rank_feature", &out.b); err != nil {
		return err
	}
	if out.b.Log == nil {
		return missing("rank_feature", "log")
	}
	*q = out
	return nil
}

// RankFeatureSigmoidQuery boosts with S^exp / (S^exp + pivot^exp).
type RankFeatureSigmoidQuery struct {
	b rankFeatureSigmoidBody
}

type sigmoid struct {
	Pivot    float64 `json:"pivot"`
	Exponent float64 `json:"exponent"`
}

type rankFeatureSigmoidBody struct {
	Field   string   `json:"field"`
	Sigmoid *sigmoid `json:"sigmoid"`
	common
}

func RankFeatureSigmoid(field string, pivot, exponent float64) RankFeatureSigmoidQuery {
	return RankFeatureSigmoidQuery{b: rankFeatureSigmoidBody{Field: field, Sigmoid: &sigmoid{Pivot: pivot, Exponent: exponent}}}
}

func (q RankFeatureSigmoidQuery) Boost(boost float64) RankFeatureSigmoidQuery {
	q.b.Boost = &boost
	return q
}

func (q RankFeatureSigmoidQuery) Name(name string) RankFeatureSigmoidQuery {
	q.b.Name = name
	return q
}

func (q RankFeatureSigmoidQuery) IsEmpty() bool { return q.b.Field == "" }

func (q RankFeatureSigmoidQuery) variant() (Kind, Clause) { return KindRankFeatureSigmoid, q }

func (q RankFeatureSigmoidQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("rank_feature", q.b)
}

func (q *RankFeatureSigmoidQuery) UnmarshalJSON(data []byte) error {
	var out RankFeatureSigmoidQuery
	if err := decodeClause(data, "rank_feature", &out.b); err != nil {
		return err
	}
	if out.b.Sigmoid == nil {
		return missing("rank_feature", "sigmoid")
	}
	*q = out
	return nil
}

// RankFeatureLinearQuery boosts linearly with the feature value.
type RankFeatureLinearQuery struct {
	b rankFeatureLinearBody
}

type rankFeatureLinearBody struct {
	Field  string    `json:"field"`
	Linear *struct{} `json:"linear"`
	common
}

func RankFeatureLinear(field string) RankFeatureLinearQuery {
	return RankFeatureLinearQuery{b: rankFeatureLinearBody{Field: field, Linear: &struct{}{}}}
}

func (q RankFeatureLinearQuery) Boost(boost float64) RankFeatureLinearQuery {
	q.b.Boost = &boost
	return q
}

func (q RankFeatureLinearQuery) Name(name string) RankFeatureLinearQuery {
	q.b.Name = name
	return q
}

func (q RankFeatureLinearQuery) IsEmpty() bool { return q.b.Field == "" }

func (q RankFeatureLinearQuery) variant() (Kind, Clause) { return KindRankFeatureLinear, q }

func (q RankFeatureLinearQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("rank_feature", q.b)
}

func (q *RankFeatureLinearQuery) UnmarshalJSON(data []byte) error {
	var out RankFeatureLinearQuery
	if err := decodeClause(data, "rank_feature", &out.b); err != nil {
		return err
	}
	if out.b.Linear == nil {
		return missing("rank_feature", "linear")
	}
	*q = out
	return nil
}

// Like is one more_like_this input: free text or a document.
type Like struct {
	Text string
	Doc  *LikeDocument
}

// LikeDocument is an indexed document or, with Doc set, an artificial one.
type LikeDocument struct {
	Index   string   `json:"_index,omitempty"`
	ID      string   `json:"_id,omitempty"`
	Doc     any      `json:"doc,omitempty"`
	Fields  []string `json:"fields,omitempty"`
	Routing string   `json:"routing,omitempty"`
}

func LikeText(text string) Like { return Like{Text: text} }

func LikeIndexed(index, id string) Like {
	return Like{Doc: &LikeDocument{Index: index, ID: id}}
}

func LikeArtificial(doc any) Like {
	return Like{Doc: &LikeDocument{Doc: decode.Normalize(doc)}}
}

func (l Like) MarshalJSON() ([]byte, error) {
	if l.Doc != nil {
		return json.Marshal(l.Doc)
	}
	return json.Marshal(l.Text)
}

func (l *Like) UnmarshalJSON(data []byte) error {
	if decode.Shape(data) == "string" {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Like{Text: s}
		return nil
	}
	var d LikeDocument
	if err := decode.Strict(data, &d); err != nil {
		return err
	}
	d.Fields = nilIfEmpty(d.Fields)
	*l = Like{Doc: &d}
	return nil
}

// likeList decodes from one like or an array of them.
type likeList []Like

func (l *likeList) UnmarshalJSON(data []byte) error {
	if decode.Shape(data) != "array" {
		var one Like
		if err := one.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = likeList{one}
		return nil
	}
	var many []Like
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = nilIfEmpty(many)
	return nil
}

// MoreLikeThisQuery finds documents similar to the given inputs.
type MoreLikeThisQuery struct {
	b moreLikeThisBody
}

type moreLikeThisBody struct {
	Fields             []string           `json:"fields,omitempty"`
	Like               likeList           `json:"like"`
	Unlike             likeList           `json:"unlike,omitempty"`
	MinTermFreq        *int64             `json:"min_term_freq,omitempty"`
	MaxQueryTerms      *int64             `json:"max_query_terms,omitempty"`
	MinDocFreq         *int64             `json:"min_doc_freq,omitempty"`
	MaxDocFreq         *int64             `json:"max_doc_freq,omitempty"`
	MinWordLength      *int64             `json:"min_word_length,omitempty"`
	MaxWordLength      *int64             `json:"max_word_length,omitempty"`
	StopWords          []string           `json:"stop_words,omitempty"`
	Analyzer           string             `json:"analyzer,omitempty"`
	MinimumShouldMatch MinimumShouldMatch `json:"minimum_should_match,omitempty"`
	BoostTerms         *float64           `json:"boost_terms,omitempty"`
	Include            *bool              `json:"include,omitempty"`
	common
}

func MoreLikeThis(like ...Like) MoreLikeThisQuery {
	return MoreLikeThisQuery{b: moreLikeThisBody{Like: nilIfEmpty(like)}}
}

func (q MoreLikeThisQuery) Fields(fields ...string) MoreLikeThisQuery {
	q.b.Fields = nilIfEmpty(fields)
	return q
}

func (q MoreLikeThisQuery) Unlike(unlike ...Like) MoreLikeThisQuery {
	q.b.Unlike = nilIfEmpty(unlike)
	return q
}

func (q MoreLikeThisQuery) MinTermFreq(n int64) MoreLikeThisQuery {
	q.b.MinTermFreq = &n
	return q
}

func (q MoreLikeThisQuery) MaxQueryTerms(n int64) MoreLikeThisQuery {
	q.b.MaxQueryTerms = &n
	return q
}

func (q MoreLikeThisQuery) MinDocFreq(n int64) MoreLikeThisQuery {
	q.b.MinDocFreq = &n
	return q
}

func (q MoreLikeThisQuery) MaxDocFreq(n int64) MoreLikeThisQuery {
	q.b.MaxDocFreq = &n
	return q
}

func (q MoreLikeThisQuery) MinWordLength(n int64) MoreLikeThisQuery {
	q.b.MinWordLength = &n
	return q
}

func (q MoreLikeThisQuery) MaxWordLength(n int64) MoreLikeThisQuery {
	q.b.MaxWordLength = &n
	return q
}

func (q MoreLikeThisQuery) StopWords(words ...string) MoreLikeThisQuery {
	q.b.StopWords = nilIfEmpty(words)
	return q
}

func (q MoreLikeThisQuery) Analyzer(a string) MoreLikeThisQuery {
	q.b.Analyzer = a
	return q
}

func (q MoreLikeThisQuery) MinimumShouldMatch(m string) MoreLikeThisQuery {
	q.b.MinimumShouldMatch = MinimumShouldMatch(m)
	return q
}

func (q MoreLikeThisQuery) BoostTerms(f float64) MoreLikeThisQuery {
	q.b.BoostTerms = &f
	return q
}

func (q MoreLikeThisQuery) Include(v bool) MoreLikeThisQuery {
	q.b.Include = &v
	return q
}

func (q MoreLikeThisQuery) Boost(boost float64) MoreLikeThisQuery {
	q.b.Boost = &boost
	return q
}

func (q MoreLikeThisQuery) Name(name string) MoreLikeThisQuery {
	q.b.Name = name
	return q
}

func (q MoreLikeThisQuery) IsEmpty() bool { return len(q.b.Like) == 0 }

func (q MoreLikeThisQuery) variant() (Kind, Clause) { return KindMoreLikeThis, q }

func (q MoreLikeThisQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Like = emptyIfNil(b.Like)
	return encodeClause("more_like_this", b)
}

func (q *MoreLikeThisQuery) UnmarshalJSON(data []byte) error {
	var out MoreLikeThisQuery
	if err := decodeClause(data, "more_like_this", &out.b); err != nil {
		return err
	}
	out.b.Fields = nilIfEmpty(out.b.Fields)
	out.b.StopWords = nilIfEmpty(out.b.StopWords)
	*q = out
	return nil
}

// WrapperQuery carries a base64-encoded query.
type WrapperQuery struct {
	b wrapperBody
}

type wrapperBody struct {
	Query string `json:"query"`
}

func Wrapper(encoded string) WrapperQuery {
	return WrapperQuery{b: wrapperBody{Query: encoded}}
}

func (q WrapperQuery) IsEmpty() bool { return q.b.Query == "" }

func (q WrapperQuery) variant() (Kind, Clause) { return KindWrapper, q }

func (q WrapperQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("wrapper", q.b)
}

func (q *WrapperQuery) UnmarshalJSON(data []byte) error {
	var out WrapperQuery
	if err := decodeClause(data, "wrapper", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// ScriptQuery filters documents with a script.
type ScriptQuery struct {
	b scriptBody
}

type scriptBody struct {
	Script *Script `json:"script"`
	common
}

func ScriptFilter(s Script) ScriptQuery {
	return ScriptQuery{b: scriptBody{Script: &s}}
}

func (q ScriptQuery) Boost(boost float64) ScriptQuery {
	q.b.Boost = &boost
	return q
}

func (q ScriptQuery) Name(name string) ScriptQuery {
	q.b.Name = name
	return q
}

func (q ScriptQuery) IsEmpty() bool {
	return q.b.Script == nil || (q.b.Script.Source == "" && q.b.Script.ID == "")
}

func (q ScriptQuery) variant() (Kind, Clause) { return KindScript, q }

func (q ScriptQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("script", q.b)
}

func (q *ScriptQuery) UnmarshalJSON(data []byte) error {
	var out ScriptQuery
	if err := decodeClause(data, "script", &out.b); err != nil {
		return err
	}
	if out.b.Script == nil {
		return missing("script", "script")
	}
	*q = out
	return nil
}

// ScriptScoreQuery rescores the matches of a query with a script.
type ScriptScoreQuery struct {
	b scriptScoreBody
}

type scriptScoreBody struct {
	Query    Query    `json:"query"`
	Script   *Script  `json:"script"`
	MinScore *float64 `json:"min_score,omitempty"`
	common
}

func ScriptScore(q Clause, s Script) ScriptScoreQuery {
	return ScriptScoreQuery{b: scriptScoreBody{Query: From(q), Script: &s}}
}

func (q ScriptScoreQuery) MinScore(f float64) ScriptScoreQuery {
	q.b.MinScore = &f
	return q
}

func (q ScriptScoreQuery) Boost(boost float64) ScriptScoreQuery {
	q.b.Boost = &boost
	return q
}

func (q ScriptScoreQuery) Name(name string) ScriptScoreQuery {
	q.b.Name = name
	return q
}

func (q ScriptScoreQuery) IsEmpty() bool { return q.b.Query.IsEmpty() }

func (q ScriptScoreQuery) variant() (Kind, Clause) { return KindScriptScore, q }

func (q ScriptScoreQuery) MarshalJSON() ([]byte, error) {
	return encodeClause("script_score", q.b)
}

func (q *ScriptScoreQuery) UnmarshalJSON(data []byte) error {
	var out ScriptScoreQuery
	if err := decodeClause(data, "script_score", &out.b); err != nil {
		return err
	}
	if out.b.Query.IsZero() {
		return missing("script_score", "query")
	}
	if out.b.Script == nil {
		return missing("script_score", "script")
	}
	*q = out
	return nil
}
