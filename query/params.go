package query

import (
	"encoding/json"
	"maps"

	"github.com/kailas-cloud/searchdsl/decode"
)

// Operator combines analyzed terms.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// ZeroTermsQuery selects behavior when analysis removes every term.
type ZeroTermsQuery string

const (
	ZeroTermsNone ZeroTermsQuery = "none"
	ZeroTermsAll  ZeroTermsQuery = "all"
)

// TextQueryType is the multi_match execution type.
type TextQueryType string

const (
	TypeBestFields   TextQueryType = "best_fields"
	TypeMostFields   TextQueryType = "most_fields"
	TypeCrossFields  TextQueryType = "cross_fields"
	TypePhrase       TextQueryType = "phrase"
	TypePhrasePrefix TextQueryType = "phrase_prefix"
	TypeBoolPrefix   TextQueryType = "bool_prefix"
)

// ScoreMode combines child or nested scores.
type ScoreMode string

const (
	ScoreModeAvg  ScoreMode = "avg"
	ScoreModeSum  ScoreMode = "sum"
	ScoreModeMin  ScoreMode = "min"
	ScoreModeMax  ScoreMode = "max"
	ScoreModeNone ScoreMode = "none"
)

// FunctionScoreMode combines scoring function results.
type FunctionScoreMode string

const (
	FunctionScoreMultiply FunctionScoreMode = "multiply"
	FunctionScoreSum      FunctionScoreMode = "sum"
	FunctionScoreAvg      FunctionScoreMode = "avg"
	FunctionScoreFirst    FunctionScoreMode = "first"
	FunctionScoreMax      FunctionScoreMode = "max"
	FunctionScoreMin      FunctionScoreMode = "min"
)

// BoostMode combines the function score with the query score.
type BoostMode string

const (
	BoostModeMultiply BoostMode = "multiply"
	BoostModeReplace  BoostMode = "replace"
	BoostModeSum      BoostMode = "sum"
	BoostModeAvg      BoostMode = "avg"
	BoostModeMax      BoostMode = "max"
	BoostModeMin      BoostMode = "min"
)

// RangeRelation applies to range queries over range fields.
type RangeRelation string

const (
	RelationIntersects RangeRelation = "INTERSECTS"
	RelationContains   RangeRelation = "CONTAINS"
	RelationWithin     RangeRelation = "WITHIN"
)

// ShapeRelation is the spatial relation of geo_shape and shape queries.
type ShapeRelation string

const (
	ShapeIntersects ShapeRelation = "intersects"
	ShapeDisjoint   ShapeRelation = "disjoint"
	ShapeWithin     ShapeRelation = "within"
	ShapeContains   ShapeRelation = "contains"
)

// ValidationMethod controls handling of malformed geo points.
type ValidationMethod string

const (
	ValidationStrict          ValidationMethod = "STRICT"
	ValidationCoerce          ValidationMethod = "COERCE"
	ValidationIgnoreMalformed ValidationMethod = "IGNORE_MALFORMED"
)

// DistanceType selects the geo distance formula.
type DistanceType string

const (
	DistanceArc   DistanceType = "arc"
	DistancePlane DistanceType = "plane"
)

// MultiValueMode picks a value from multi-valued fields for decay functions.
type MultiValueMode string

const (
	MultiValueMin MultiValueMode = "min"
	MultiValueMax MultiValueMode = "max"
	MultiValueAvg MultiValueMode = "avg"
	MultiValueSum MultiValueMode = "sum"
)

// FieldValueModifier is applied to a field value in field_value_factor.
type FieldValueModifier string

const (
	ModifierNone       FieldValueModifier = "none"
	ModifierLog        FieldValueModifier = "log"
	ModifierLog1p      FieldValueModifier = "log1p"
	ModifierLog2p      FieldValueModifier = "log2p"
	ModifierLn         FieldValueModifier = "ln"
	ModifierLn1p       FieldValueModifier = "ln1p"
	ModifierLn2p       FieldValueModifier = "ln2p"
	ModifierSquare     FieldValueModifier = "square"
	ModifierSqrt       FieldValueModifier = "sqrt"
	ModifierReciprocal FieldValueModifier = "reciprocal"
)

// Fuzziness is an edit distance: "AUTO", "AUTO:3,6" or a number.
type Fuzziness string

// FuzzinessAuto derives the edit distance from the term length.
const FuzzinessAuto Fuzziness = "AUTO"

func (f *Fuzziness) UnmarshalJSON(data []byte) error {
	s, err := stringOrNumber(data)
	if err != nil {
		return err
	}
	*f = Fuzziness(s)
	return nil
}

// MinimumShouldMatch is an absolute count ("2"), a percentage ("75%")
// or a combination ("3<90%").
type MinimumShouldMatch string

func (m *MinimumShouldMatch) UnmarshalJSON(data []byte) error {
	s, err := stringOrNumber(data)
	if err != nil {
		return err
	}
	*m = MinimumShouldMatch(s)
	return nil
}

func stringOrNumber(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// Script is an inline or stored script.
type Script struct {
	Source string         `json:"source,omitempty"`
	ID     string         `json:"id,omitempty"`
	Lang   string         `json:"lang,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// InlineScript returns a script with inline source.
func InlineScript(source string) Script { return Script{Source: source} }

// StoredScript references a stored script by id.
func StoredScript(id string) Script { return Script{ID: id} }

// WithLang sets the script language.
func (s Script) WithLang(lang string) Script {
	s.Lang = lang
	return s
}

// WithParam adds a script parameter.
func (s Script) WithParam(name string, value any) Script {
	params := maps.Clone(s.Params)
	if params == nil {
		params = make(map[string]any, 1)
	}
	params[name] = decode.Normalize(value)
	s.Params = params
	return s
}

// UnmarshalJSON also accepts the bare-string shorthand.
func (s *Script) UnmarshalJSON(data []byte) error {
	if decode.Shape(data) == "string" {
		var src string
		if err := json.Unmarshal(data, &src); err != nil {
			return err
		}
		*s = Script{Source: src}
		return nil
	}
	type plain Script
	var p plain
	if err := decode.Strict(data, &p); err != nil {
		return err
	}
	if len(p.Params) == 0 {
		p.Params = nil
	}
	*s = Script(p)
	return nil
}

// InnerHits requests the matching nested or child documents.
type InnerHits struct {
	Name   string `json:"name,omitempty"`
	From   *int64 `json:"from,omitempty"`
	Size   *int64 `json:"size,omitempty"`
	Source any    `json:"_source,omitempty"`
}

// IndexedShape references a shape stored in another document.
type IndexedShape struct {
	ID      string `json:"id"`
	Index   string `json:"index,omitempty"`
	Path    string `json:"path,omitempty"`
	Routing string `json:"routing,omitempty"`
}
