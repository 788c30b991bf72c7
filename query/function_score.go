package query

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchdsl/decode"
)

// FunctionScoreQuery rescores the matches of a query with functions.
type FunctionScoreQuery struct {
	b functionScoreBody
}

type functionScoreBody struct {
	Query     Query             `json:"query,omitzero"`
	Functions functionList      `json:"functions,omitempty"`
	MaxBoost  *float64          `json:"max_boost,omitempty"`
	MinScore  *float64          `json:"min_score,omitempty"`
	ScoreMode FunctionScoreMode `json:"score_mode,omitempty"`
	BoostMode BoostMode         `json:"boost_mode,omitempty"`
	common
}

// FunctionScore scores the matches of q with functions.
func FunctionScore(q Clause, functions ...Function) FunctionScoreQuery {
	return FunctionScoreQuery{b: functionScoreBody{Query: From(q), Functions: nilIfEmpty(functions)}}
}

// Functions adds scoring functions.
func (q FunctionScoreQuery) Functions(functions ...Function) FunctionScoreQuery {
	if len(functions) > 0 {
		q.b.Functions = append(functionList(nil), append(q.b.Functions, functions...)...)
	}
	return q
}

func (q FunctionScoreQuery) MaxBoost(f float64) FunctionScoreQuery {
	q.b.MaxBoost = &f
	return q
}

func (q FunctionScoreQuery) MinScore(f float64) FunctionScoreQuery {
	q.b.MinScore = &f
	return q
}

func (q FunctionScoreQuery) ScoreMode(m FunctionScoreMode) FunctionScoreQuery {
	q.b.ScoreMode = m
	return q
}

func (q FunctionScoreQuery) BoostMode(m BoostMode) FunctionScoreQuery {
	q.b.BoostMode = m
	return q
}

func (q FunctionScoreQuery) Boost(boost float64) FunctionScoreQuery {
	q.b.Boost = &boost
	return q
}

func (q FunctionScoreQuery) Name(name string) FunctionScoreQuery {
	q.b.Name = name
	return q
}

func (q FunctionScoreQuery) IsEmpty() bool {
	return q.b.Query.IsEmpty() && len(q.b.Functions) == 0
}

func (q FunctionScoreQuery) variant() (Kind, Clause) { return KindFunctionScore, q }

func (q FunctionScoreQuery) MarshalJSON() ([]byte, error) {
	b := q.b
	b.Query = optional(b.Query)
	return encodeClause("function_score", b)
}

func (q *FunctionScoreQuery) UnmarshalJSON(data []byte) error {
	var out FunctionScoreQuery
	if err := decodeClause(data, "function_score", &out.b); err != nil {
		return err
	}
	*q = out
	return nil
}

// Function is one scoring function of a function_score query. The
// concrete types are WeightFunction, RandomScoreFunction,
// FieldValueFactorFunction, DecayFunction and ScriptScoreFunction.
type Function interface {
	json.Marshaler
	function()
}

// functionOptions are accepted by every function.
type functionOptions struct {
	Filter Query    `json:"filter,omitzero"`
	Weight *float64 `json:"weight,omitempty"`
}

func (o functionOptions) encoded() functionOptions {
	o.Filter = optional(o.Filter)
	return o
}

// WeightFunction multiplies the score by a constant.
type WeightFunction struct {
	Filter Query
	Weight float64
}

// Weight returns a weight function; filter may be nil.
func Weight(weight float64, filter Clause) WeightFunction {
	return WeightFunction{Filter: From(filter), Weight: weight}
}

func (WeightFunction) function() {}

func (f WeightFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(functionOptions{Filter: f.Filter, Weight: &f.Weight}.encoded())
}

func (f *WeightFunction) UnmarshalJSON(data []byte) error {
	var o functionOptions
	if err := decode.Strict(data, &o); err != nil {
		return err
	}
	if o.Weight == nil {
		return missing("weight function", "weight")
	}
	*f = WeightFunction{Filter: o.Filter, Weight: *o.Weight}
	return nil
}

// RandomScoreFunction scores uniformly at random, reproducibly for a seed.
type RandomScoreFunction struct {
	Filter Query
	Weight *float64
	Seed   any
	Field  string
}

func RandomScore() RandomScoreFunction { return RandomScoreFunction{} }

// WithSeed sets the seed and the field it is combined with.
func (f RandomScoreFunction) WithSeed(seed any, field string) RandomScoreFunction {
	f.Seed = decode.Normalize(seed)
	f.Field = field
	return f
}

func (RandomScoreFunction) function() {}

type randomScore struct {
	Seed  any    `json:"seed,omitempty"`
	Field string `json:"field,omitempty"`
}

type randomScoreWire struct {
	RandomScore *randomScore `json:"random_score"`
	functionOptions
}

func (f RandomScoreFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(randomScoreWire{
		RandomScore:     &randomScore{Seed: f.Seed, Field: f.Field},
		functionOptions: functionOptions{Filter: f.Filter, Weight: f.Weight}.encoded(),
	})
}

func (f *RandomScoreFunction) UnmarshalJSON(data []byte) error {
	var w randomScoreWire
	if err := decode.Strict(data, &w); err != nil {
		return err
	}
	if w.RandomScore == nil {
		return missing("function", "random_score")
	}
	*f = RandomScoreFunction{Filter: w.Filter, Weight: w.Weight, Seed: w.RandomScore.Seed, Field: w.RandomScore.Field}
	return nil
}

// FieldValueFactorFunction scores by a document field.
type FieldValueFactorFunction struct {
	Filter   Query
	Weight   *float64
	Field    string
	Factor   *float64
	Modifier FieldValueModifier
	Missing  *float64
}

func FieldValueFactor(field string) FieldValueFactorFunction {
	return FieldValueFactorFunction{Field: field}
}

func (FieldValueFactorFunction) function() {}

type fieldValueFactor struct {
	Field    string             `json:"field"`
	Factor   *float64           `json:"factor,omitempty"`
	Modifier FieldValueModifier `json:"modifier,omitempty"`
	Missing  *float64           `json:"missing,omitempty"`
}

type fieldValueFactorWire struct {
	FieldValueFactor *fieldValueFactor `json:"field_value_factor"`
	functionOptions
}

func (f FieldValueFactorFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldValueFactorWire{
		FieldValueFactor: &fieldValueFactor{Field: f.Field, Factor: f.Factor, Modifier: f.Modifier, Missing: f.Missing},
		functionOptions:  functionOptions{Filter: f.Filter, Weight: f.Weight}.encoded(),
	})
}

func (f *FieldValueFactorFunction) UnmarshalJSON(data []byte) error {
	var w fieldValueFactorWire
	if err := decode.Strict(data, &w); err != nil {
		return err
	}
	if w.FieldValueFactor == nil {
		return missing("function", "field_value_factor")
	}
	v := w.FieldValueFactor
	*f = FieldValueFactorFunction{
		Filter: w.Filter, Weight: w.Weight,
		Field: v.Field, Factor: v.Factor, Modifier: v.Modifier, Missing: v.Missing,
	}
	return nil
}

// DecayShape is the decay curve of a DecayFunction.
type DecayShape string

const (
	DecayGauss  DecayShape = "gauss"
	DecayExp    DecayShape = "exp"
	DecayLinear DecayShape = "linear"
)

// DecayFunction scores by distance of a field value from origin.
type DecayFunction struct {
	Filter         Query
	Weight         *float64
	Shape          DecayShape
	Field          string
	Origin         any
	Scale          any
	Offset         any
	Decay          *float64
	MultiValueMode MultiValueMode
}

// Decay returns a decay function on field.
func Decay(shape DecayShape, field string, origin, scale any) DecayFunction {
	return DecayFunction{Shape: shape, Field: field, Origin: decode.Normalize(origin), Scale: decode.Normalize(scale)}
}

func (DecayFunction) function() {}

type decayParams struct {
	Origin any      `json:"origin,omitempty"`
	Scale  any      `json:"scale"`
	Offset any      `json:"offset,omitempty"`
	Decay  *float64 `json:"decay,omitempty"`
}

type decayBody struct {
	MultiValueMode MultiValueMode `json:"multi_value_mode,omitempty"`
}

type decayWire struct {
	Gauss  json.RawMessage `json:"gauss,omitempty"`
	Exp    json.RawMessage `json:"exp,omitempty"`
	Linear json.RawMessage `json:"linear,omitempty"`
	functionOptions
}

func (f DecayFunction) MarshalJSON() ([]byte, error) {
	params, err := json.Marshal(decayParams{Origin: f.Origin, Scale: f.Scale, Offset: f.Offset, Decay: f.Decay})
	if err != nil {
		return nil, err
	}
	rest, err := json.Marshal(decayBody{MultiValueMode: f.MultiValueMode})
	if err != nil {
		return nil, err
	}
	inner := prependMember(f.Field, params, rest)

	w := decayWire{functionOptions: functionOptions{Filter: f.Filter, Weight: f.Weight}.encoded()}
	switch f.Shape {
	case DecayGauss:
		w.Gauss = inner
	case DecayExp:
		w.Exp = inner
	case DecayLinear:
		w.Linear = inner
	default:
		return nil, fmt.Errorf("encode decay function: unknown shape %q", f.Shape)
	}
	return json.Marshal(w)
}

func (f *DecayFunction) UnmarshalJSON(data []byte) error {
	var w decayWire
	if err := decode.Strict(data, &w); err != nil {
		return err
	}

	out := DecayFunction{Filter: w.Filter, Weight: w.Weight}
	var inner json.RawMessage
	for _, c := range []struct {
		shape DecayShape
		raw   json.RawMessage
	}{{DecayGauss, w.Gauss}, {DecayExp, w.Exp}, {DecayLinear, w.Linear}} {
		if c.raw == nil {
			continue
		}
		if inner != nil {
			return errors.New("decay function: more than one decay shape")
		}
		out.Shape, inner = c.shape, c.raw
	}
	if inner == nil {
		return missing("function", "gauss, exp or linear")
	}

	members, err := decode.Members(inner)
	if err != nil {
		return fmt.Errorf("decay function: %w", err)
	}
	var rest []decode.Member
	found := false
	for _, m := range members {
		if m.Key == "multi_value_mode" {
			rest = append(rest, m)
			continue
		}
		if found {
			return fmt.Errorf("decay function: unexpected second field %q", m.Key)
		}
		found = true
		out.Field = m.Key
		var p decayParams
		if err := decode.Strict(m.Value, &p); err != nil {
			return fmt.Errorf("decay function: field %q: %w", m.Key, err)
		}
		if p.Scale == nil {
			return missing("decay function", "scale")
		}
		out.Origin, out.Scale, out.Offset, out.Decay = p.Origin, p.Scale, p.Offset, p.Decay
	}
	if !found {
		return missing("decay function", "field")
	}
	var b decayBody
	if err := decode.Strict(decode.EncodeMembers(rest), &b); err != nil {
		return err
	}
	out.MultiValueMode = b.MultiValueMode
	*f = out
	return nil
}

// ScriptScoreFunction scores with a script.
type ScriptScoreFunction struct {
	Filter Query
	Weight *float64
	Script Script
}

func ScriptScoreFn(s Script) ScriptScoreFunction { return ScriptScoreFunction{Script: s} }

func (ScriptScoreFunction) function() {}

type scriptScoreFunction struct {
	Script *Script `json:"script"`
}

type scriptScoreWire struct {
	ScriptScore *scriptScoreFunction `json:"script_score"`
	functionOptions
}

func (f ScriptScoreFunction) MarshalJSON() ([]byte, error) {
	return json.Marshal(scriptScoreWire{
		ScriptScore:     &scriptScoreFunction{Script: &f.Script},
		functionOptions: functionOptions{Filter: f.Filter, Weight: f.Weight}.encoded(),
	})
}

func (f *ScriptScoreFunction) UnmarshalJSON(data []byte) error {
	var w scriptScoreWire
	if err := decode.Strict(data, &w); err != nil {
		return err
	}
	if w.ScriptScore == nil || w.ScriptScore.Script == nil {
		return missing("function", "script_score.script")
	}
	*f = ScriptScoreFunction{Filter: w.Filter, Weight: w.Weight, Script: *w.ScriptScore.Script}
	return nil
}

func decodeFunctionAs[T Function, PT interface {
	*T
	json.Unmarshaler
}](data []byte) (Function, error) {
	var v T
	if err := PT(&v).UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return v, nil
}

// functionCandidates is the decode order of function kinds. Weight comes
// first: it only matches an object holding nothing but filter and weight.
var functionCandidates = []decode.Candidate[Function]{
	{Name: "weight", Decode: decodeFunctionAs[WeightFunction]},
	{Name: "random_score", Decode: decodeFunctionAs[RandomScoreFunction]},
	{Name: "field_value_factor", Decode: decodeFunctionAs[FieldValueFactorFunction]},
	{Name: "decay", Decode: decodeFunctionAs[DecayFunction]},
	{Name: "script_score", Decode: decodeFunctionAs[ScriptScoreFunction]},
}

// functionList decodes an array of untagged functions.
type functionList []Function

func (l *functionList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(functionList, 0, len(raws))
	for _, raw := range raws {
		fn, err := decodeFunction(raw)
		if err != nil {
			return err
		}
		out = append(out, fn)
	}
	*l = nilIfEmpty(out)
	return nil
}

// decodeFunction decodes the filter once and tries the candidates on the
// remaining fields, so a rejected kind never walks the filter query.
func decodeFunction(raw []byte) (Function, error) {
	members, err := decode.Members(raw)
	if err != nil {
		return decode.FirstMatch("score function", raw, functionCandidates)
	}
	var filter Query
	rest := make([]decode.Member, 0, len(members))
	for _, m := range members {
		if m.Key != "filter" {
			rest = append(rest, m)
			continue
		}
		if err := filter.UnmarshalJSON(m.Value); err != nil {
			return nil, fmt.Errorf("score function: filter: %w", err)
		}
	}
	fn, err := decode.FirstMatch("score function", decode.EncodeMembers(rest), functionCandidates)
	if err != nil {
		return nil, err
	}
	return withFilter(fn, filter), nil
}

func withFilter(fn Function, filter Query) Function {
	switch f := fn.(type) {
	case WeightFunction:
		f.Filter = filter
		return f
	case RandomScoreFunction:
		f.Filter = filter
		return f
	case FieldValueFactorFunction:
		f.Filter = filter
		return f
	case DecayFunction:
		f.Filter = filter
		return f
	case ScriptScoreFunction:
		f.Filter = filter
		return f
	}
	return fn
}
