package query

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchdsl/decode"
)

func TestDecodeResolvesOverlappingShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Kind
	}{
		{"terms values", `{"terms":{"tags":["a","b"]}}`, KindTerms},
		{"terms lookup", `{"terms":{"tags":{"index":"users","id":"2","path":"tags"}}}`, KindTermsLookup},
		{"distance feature date", `{"distance_feature":{"field":"d","origin":"2024-01-01T00:00:00Z","pivot":"7d"}}`, KindDistanceFeatureDate},
		{"distance feature geo", `{"distance_feature":{"field":"loc","origin":{"lat":1,"lon":2},"pivot":"1km"}}`, KindDistanceFeatureGeo},
		{"distance feature geo string", `{"distance_feature":{"field":"loc","origin":"1,2","pivot":"1km"}}`, KindDistanceFeatureGeo},
		{"percolate document", `{"percolate":{"field":"q","document":{"msg":"x"}}}`, KindPercolate},
		{"percolate lookup", `{"percolate":{"field":"q","index":"docs","id":"1"}}`, KindPercolateLookup},
		{"rank feature", `{"rank_feature":{"field":"pr"}}`, KindRankFeature},
		{"rank feature saturation", `{"rank_feature":{"field":"pr","saturation":{}}}`, KindRankFeatureSaturation},
		{"rank feature log", `{"rank_feature":{"field":"pr","log":{"scaling_factor":4}}}`, KindRankFeatureLogarithm},
		{"rank feature sigmoid", `{"rank_feature":{"field":"pr","sigmoid":{"pivot":7,"exponent":0.6}}}`, KindRankFeatureSigmoid},
		{"rank feature linear", `{"rank_feature":{"field":"pr","linear":{}}}`, KindRankFeatureLinear},
		{"geo shape lookup", `{"geo_shape":{"loc":{"indexed_shape":{"index":"shapes","id":"1"}}}}`, KindGeoShapeLookup},
		{"geo shape", `{"geo_shape":{"loc":{"shape":{"type":"point","coordinates":[1,2]}}}}`, KindGeoShape},
		{"shape lookup", `{"shape":{"g":{"indexed_shape":{"index":"shapes","id":"1"}}}}`, KindShapeLookup},
		{"shape", `{"shape":{"g":{"shape":{"type":"point","coordinates":[1,2]}},"ignore_unmapped":true}}`, KindShape},
		{"unknown key", `{"neural":{"embedding":{"query_text":"hi","k":10}}}`, KindJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Kind() != tt.want {
				t.Fatalf("kind = %s, want %s", q.Kind(), tt.want)
			}
		})
	}
}

func TestDecodeNoMatchingVariant(t *testing.T) {
	_, err := Decode([]byte(`{"term":5}`))
	if !errors.Is(err, decode.ErrNoMatchingVariant) {
		t.Fatalf("expected ErrNoMatchingVariant, got %v", err)
	}

	var de *decode.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *decode.Error, got %T", err)
	}
	if !slices.Equal(de.Keys, []string{"term"}) {
		t.Fatalf("keys = %v, want [term]", de.Keys)
	}
	if !strings.Contains(err.Error(), "[term]") {
		t.Fatalf("message should name the keys: %q", err.Error())
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown field in known clause", `{"term":{"user":{"value":"x","bogus":1}}}`},
		{"two top level keys", `{"term":{"a":"x"},"match":{"b":"y"}}`},
		{"empty object", `{}`},
		{"array", `[{"match_all":{}}]`},
		{"string", `"match_all"`},
		{"percolate both forms", `{"percolate":{"field":"q","document":{},"documents":[{}]}}`},
		{"terms lookup missing path", `{"terms":{"tags":{"index":"u","id":"2"}}}`},
		{"multi key json", `{"neural":{},"other":{}}`},
		{"knn without k", `{"knn":{"v":{"vector":[1]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.in)); !errors.Is(err, decode.ErrNoMatchingVariant) {
				t.Fatalf("expected ErrNoMatchingVariant, got %v", err)
			}
		})
	}
}

func TestDecodeDepthLimit(t *testing.T) {
	nested := `{"match_all":{}}`
	for range 20 {
		nested = `{"bool":{"must":[` + nested + `]}}`
	}

	if _, err := Decode([]byte(nested)); err != nil {
		t.Fatalf("unexpected error at default limit: %v", err)
	}

	_, err := Decode([]byte(nested), decode.WithMaxDepth(10))
	if !errors.Is(err, decode.ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
	if errors.Is(err, decode.ErrNoMatchingVariant) {
		t.Fatal("recursion limit must not be reported as no match")
	}
}

func TestDecodeDeepInputAbortsEarly(t *testing.T) {
	deep := strings.Repeat(`{"bool":{"must":`, 600) + `{"match_all":{}}` + strings.Repeat(`}}`, 600)
	_, err := Decode([]byte(deep))
	if !errors.Is(err, decode.ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
}

func TestSpanChildrenMustBeSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"span near with term", `{"span_near":{"clauses":[{"term":{"f":{"value":"x"}}}]}}`},
		{"span containing with match", `{"span_containing":{"little":{"match":{"f":{"query":"x"}}},"big":{"span_term":{"f":{"value":"y"}}}}}`},
		{"span first with bool", `{"span_first":{"match":{"bool":{}},"end":3}}`},
		{"span multi with term", `{"span_multi":{"match":{"term":{"f":{"value":"x"}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if !errors.Is(err, decode.ErrMalformedField) {
				t.Fatalf("expected ErrMalformedField, got %v", err)
			}
		})
	}
}

func TestFunctionDecodeOrder(t *testing.T) {
	in := `{"function_score":{"functions":[
		{"weight":2},
		{"filter":{"term":{"a":{"value":"b"}}},"weight":3},
		{"random_score":{},"weight":1},
		{"field_value_factor":{"field":"likes","modifier":"log1p"}},
		{"linear":{"price":{"origin":0,"scale":20},"multi_value_mode":"avg"}},
		{"script_score":{"script":{"source":"_score"}}}
	]}}`

	q, err := Decode([]byte(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fs, ok := q.Clause().(FunctionScoreQuery)
	if !ok {
		t.Fatalf("expected FunctionScoreQuery, got %T", q.Clause())
	}

	fns := fs.b.Functions
	if len(fns) != 6 {
		t.Fatalf("expected 6 functions, got %d", len(fns))
	}
	if _, ok := fns[0].(WeightFunction); !ok {
		t.Errorf("0: got %T", fns[0])
	}
	if w, ok := fns[1].(WeightFunction); !ok || w.Filter.Kind() != KindTerm {
		t.Errorf("1: got %T", fns[1])
	}
	if _, ok := fns[2].(RandomScoreFunction); !ok {
		t.Errorf("2: got %T", fns[2])
	}
	if f, ok := fns[3].(FieldValueFactorFunction); !ok || f.Modifier != ModifierLog1p {
		t.Errorf("3: got %T", fns[3])
	}
	if d, ok := fns[4].(DecayFunction); !ok || d.Shape != DecayLinear || d.Field != "price" || d.MultiValueMode != MultiValueAvg {
		t.Errorf("4: got %+v", fns[4])
	}
	if _, ok := fns[5].(ScriptScoreFunction); !ok {
		t.Errorf("5: got %T", fns[5])
	}
}

func TestFunctionDecodeUnknown(t *testing.T) {
	_, err := Decode([]byte(`{"function_score":{"functions":[{"bogus":{}}]}}`))
	if !errors.Is(err, decode.ErrNoMatchingVariant) {
		t.Fatalf("expected ErrNoMatchingVariant, got %v", err)
	}
}
