package query

import (
	"encoding/json"

	"github.com/kailas-cloud/searchdsl/decode"
)

type variant struct {
	kind   Kind
	name   string // clause key on the wire; empty for JSON
	decode func([]byte) (Clause, error)
}

// variants lists every query variant in decode priority order.
// Populated in init to keep the table out of initialization-order
// analysis: decoding a variant recursively decodes queries.
var (
	variants    []variant
	clauseNames map[string]bool
)

func init() {
	variants = []variant{
		{KindBool, "bool", decodeAs[BoolQuery]},
		{KindPrefix, "prefix", decodeAs[PrefixQuery]},
		{KindRegexp, "regexp", decodeAs[RegexpQuery]},
		{KindWildcard, "wildcard", decodeAs[WildcardQuery]},
		{KindTermsSet, "terms_set", decodeAs[TermsSetQuery]},
		{KindTerm, "term", decodeAs[TermQuery]},
		{KindTerms, "terms", decodeAs[TermsQuery]},
		{KindTermsLookup, "terms", decodeAs[TermsLookupQuery]},
		{KindExists, "exists", decodeAs[ExistsQuery]},
		{KindRange, "range", decodeAs[RangeQuery]},
		{KindIds, "ids", decodeAs[IdsQuery]},
		{KindConstantScore, "constant_score", decodeAs[ConstantScoreQuery]},
		{KindDistanceFeatureDate, "distance_feature", decodeAs[DistanceFeatureDateQuery]},
		{KindDistanceFeatureGeo, "distance_feature", decodeAs[DistanceFeatureGeoQuery]},
		{KindMatch, "match", decodeAs[MatchQuery]},
		{KindMatchBoolPrefix, "match_bool_prefix", decodeAs[MatchBoolPrefixQuery]},
		{KindMatchPhrasePrefix, "match_phrase_prefix", decodeAs[MatchPhrasePrefixQuery]},
		{KindMatchAll, "match_all", decodeAs[MatchAllQuery]},
		{KindMatchNone, "match_none", decodeAs[MatchNoneQuery]},
		{KindMatchPhrase, "match_phrase", decodeAs[MatchPhraseQuery]},
		{KindMultiMatch, "multi_match", decodeAs[MultiMatchQuery]},
		{KindNested, "nested", decodeAs[NestedQuery]},
		{KindBoosting, "boosting", decodeAs[BoostingQuery]},
		{KindDisMax, "dis_max", decodeAs[DisMaxQuery]},
		{KindPinned, "pinned", decodeAs[PinnedQuery]},
		{KindPercolate, "percolate", decodeAs[PercolateQuery]},
		{KindPercolateLookup, "percolate", decodeAs[PercolateLookupQuery]},
		{KindFunctionScore, "function_score", decodeAs[FunctionScoreQuery]},
		{KindRankFeature, "rank_feature", decodeAs[RankFeatureQuery]},
		{KindRankFeatureSaturation, "rank_feature", decodeAs[RankFeatureSaturationQuery]},
		{KindRankFeatureLogarithm, "rank_feature", decodeAs[RankFeatureLogarithmQuery]},
		{KindRankFeatureSigmoid, "rank_feature", decodeAs[RankFeatureSigmoidQuery]},
		{KindRankFeatureLinear, "rank_feature", decodeAs[RankFeatureLinearQuery]},
		{KindMoreLikeThis, "more_like_this", decodeAs[MoreLikeThisQuery]},
		{KindFuzzy, "fuzzy", decodeAs[FuzzyQuery]},
		{KindGeoDistance, "geo_distance", decodeAs[GeoDistanceQuery]},
		{KindGeoBoundingBox, "geo_bounding_box", decodeAs[GeoBoundingBoxQuery]},
		{KindGeoShapeLookup, "geo_shape", decodeAs[GeoShapeLookupQuery]},
		{KindGeoShape, "geo_shape", decodeAs[GeoShapeQuery]},
		{KindShapeLookup, "shape", decodeAs[ShapeLookupQuery]},
		{KindShape, "shape", decodeAs[ShapeQuery]},
		{KindWrapper, "wrapper", decodeAs[WrapperQuery]},
		{KindScript, "script", decodeAs[ScriptQuery]},
		{KindScriptScore, "script_score", decodeAs[ScriptScoreQuery]},
		{KindParentID, "parent_id", decodeAs[ParentIDQuery]},
		{KindHasParent, "has_parent", decodeAs[HasParentQuery]},
		{KindHasChild, "has_child", decodeAs[HasChildQuery]},
		{KindSimpleQueryString, "simple_query_string", decodeAs[SimpleQueryStringQuery]},
		{KindQueryString, "query_string", decodeAs[QueryStringQuery]},
		{KindCombinedFields, "combined_fields", decodeAs[CombinedFieldsQuery]},
		{KindSpanContaining, "span_containing", decodeAs[SpanContainingQuery]},
		{KindSpanFieldMasking, "field_masking_span", decodeAs[SpanFieldMaskingQuery]},
		{KindSpanFirst, "span_first", decodeAs[SpanFirstQuery]},
		{KindSpanMulti, "span_multi", decodeAs[SpanMultiQuery]},
		{KindSpanNear, "span_near", decodeAs[SpanNearQuery]},
		{KindSpanNot, "span_not", decodeAs[SpanNotQuery]},
		{KindSpanOr, "span_or", decodeAs[SpanOrQuery]},
		{KindSpanTerm, "span_term", decodeAs[SpanTermQuery]},
		{KindSpanWithin, "span_within", decodeAs[SpanWithinQuery]},
		{KindKnn, "knn", decodeAs[KnnQuery]},
		{KindJSON, "", decodeAs[JSONQuery]},
	}

	clauseNames = make(map[string]bool, len(variants))
	for _, v := range variants {
		if v.name != "" {
			clauseNames[v.name] = true
		}
	}
}

func decodeAs[T Clause, PT interface {
	*T
	json.Unmarshaler
}](data []byte) (Clause, error) {
	var v T
	if err := PT(&v).UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return v, nil
}

// ClauseName returns the wire key of k, empty for JSON and KindNone.
func ClauseName(k Kind) string {
	for _, v := range variants {
		if v.kind == k {
			return v.name
		}
	}
	return ""
}

func decodeVariant(data []byte) (Clause, error) {
	var candidates []decode.Candidate[Clause]

	if keys := decode.TopLevelKeys(data); len(keys) == 1 {
		key := keys[0]
		for _, v := range variants {
			if v.name == key || (v.name == "" && !clauseNames[key]) {
				candidates = append(candidates, decode.Candidate[Clause]{
					Name:   v.kind.String(),
					Decode: v.decode,
				})
			}
		}
	}
	return decode.FirstMatch("query", data, candidates)
}
