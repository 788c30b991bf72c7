package query

// Kind identifies a query variant. Values follow decode priority.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindPrefix
	KindRegexp
	KindWildcard
	KindTermsSet
	KindTerm
	KindTerms
	KindTermsLookup
	KindExists
	KindRange
	KindIds
	KindConstantScore
	KindDistanceFeatureDate
	KindDistanceFeatureGeo
	KindMatch
	KindMatchBoolPrefix
	KindMatchPhrasePrefix
	KindMatchAll
	KindMatchNone
	KindMatchPhrase
	KindMultiMatch
	KindNested
	KindBoosting
	KindDisMax
	KindPinned
	KindPercolate
	KindPercolateLookup
	KindFunctionScore
	KindRankFeature
	KindRankFeatureSaturation
	KindRankFeatureLogarithm
	KindRankFeatureSigmoid
	KindRankFeatureLinear
	KindMoreLikeThis
	KindFuzzy
	KindGeoDistance
	KindGeoBoundingBox
	KindGeoShapeLookup
	KindGeoShape
	KindShapeLookup
	KindShape
	KindWrapper
	KindScript
	KindScriptScore
	KindParentID
	KindHasParent
	KindHasChild
	KindSimpleQueryString
	KindQueryString
	KindCombinedFields
	KindSpanContaining
	KindSpanFieldMasking
	KindSpanFirst
	KindSpanMulti
	KindSpanNear
	KindSpanNot
	KindSpanOr
	KindSpanTerm
	KindSpanWithin
	KindKnn
	KindJSON

	kindCount
)

var kindNames = [kindCount]string{
	KindNone:                  "None",
	KindBool:                  "Bool",
	KindPrefix:                "Prefix",
	KindRegexp:                "Regexp",
	KindWildcard:              "Wildcard",
	KindTermsSet:              "TermsSet",
	KindTerm:                  "Term",
	KindTerms:                 "Terms",
	KindTermsLookup:           "TermsLookup",
	KindExists:                "Exists",
	KindRange:                 "Range",
	KindIds:                   "Ids",
	KindConstantScore:         "ConstantScore",
	KindDistanceFeatureDate:   "DistanceFeatureDate",
	KindDistanceFeatureGeo:    "DistanceFeatureGeo",
	KindMatch:                 "Match",
	KindMatchBoolPrefix:       "MatchBoolPrefix",
	KindMatchPhrasePrefix:     "MatchPhrasePrefix",
	KindMatchAll:              "MatchAll",
	KindMatchNone:             "MatchNone",
	KindMatchPhrase:           "MatchPhrase",
	KindMultiMatch:            "MultiMatch",
	KindNested:                "Nested",
	KindBoosting:              "Boosting",
	KindDisMax:                "DisMax",
	KindPinned:                "Pinned",
	KindPercolate:             "Percolate",
	KindPercolateLookup:       "PercolateLookup",
	KindFunctionScore:         "FunctionScore",
	KindRankFeature:           "RankFeature",
	KindRankFeatureSaturation: "RankFeatureSaturation",
	KindRankFeatureLogarithm:  "RankFeatureLogarithm",
	KindRankFeatureSigmoid:    "RankFeatureSigmoid",
	KindRankFeatureLinear:     "RankFeatureLinear",
	KindMoreLikeThis:          "MoreLikeThis",
	KindFuzzy:                 "Fuzzy",
	KindGeoDistance:           "GeoDistance",
	KindGeoBoundingBox:        "GeoBoundingBox",
	KindGeoShapeLookup:        "GeoShapeLookup",
	KindGeoShape:              "GeoShape",
	KindShapeLookup:           "ShapeLookup",
	KindShape:                 "Shape",
	KindWrapper:               "Wrapper",
	KindScript:                "Script",
	KindScriptScore:           "ScriptScore",
	KindParentID:              "ParentID",
	KindHasParent:             "HasParent",
	KindHasChild:              "HasChild",
	KindSimpleQueryString:     "SimpleQueryString",
	KindQueryString:           "QueryString",
	KindCombinedFields:        "CombinedFields",
	KindSpanContaining:        "SpanContaining",
	KindSpanFieldMasking:      "SpanFieldMasking",
	KindSpanFirst:             "SpanFirst",
	KindSpanMulti:             "SpanMulti",
	KindSpanNear:              "SpanNear",
	KindSpanNot:               "SpanNot",
	KindSpanOr:                "SpanOr",
	KindSpanTerm:              "SpanTerm",
	KindSpanWithin:            "SpanWithin",
	KindKnn:                   "Knn",
	KindJSON:                  "JSON",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Kinds returns every variant in decode priority order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindBool; k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsSpan reports whether k is a span query.
func (k Kind) IsSpan() bool {
	return k >= KindSpanContaining && k <= KindSpanWithin
}

// IsMultiTerm reports whether k can be wrapped by span_multi.
func (k Kind) IsMultiTerm() bool {
	switch k {
	case KindPrefix, KindRegexp, KindWildcard, KindRange, KindFuzzy:
		return true
	}
	return false
}
