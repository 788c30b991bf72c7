package aggregation

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/searchdsl/decode"
)

// shape is one bucket family as tried by the untagged decoder.
type shape struct {
	kind     Kind
	required []string
	decode   func(data []byte, strict bool) (Bucket, error)
}

// shapes lists the bucket families in decode priority order. A candidate
// is attempted only when its required keys are present; strict decoding
// then rejects any key the family does not know.
var shapes = []shape{
	{KindTerms, []string{"key", "doc_count"}, decodeAs[TermsBucket]},
	{KindRange, []string{"doc_count"}, decodeAs[RangeBucket]},
	{KindDateRange, []string{"doc_count"}, decodeDateRange},
	{KindHistogram, []string{"key", "doc_count"}, decodeAs[HistogramBucket]},
	{KindDateHistogram, []string{"key", "doc_count"}, decodeAs[DateHistogramBucket]},
	{KindGeoDistance, []string{"key", "doc_count"}, decodeAs[GeoDistanceBucket]},
	{KindFilters, []string{"doc_count"}, decodeAs[FiltersBucket]},
	{KindMatrixRow, []string{"key"}, decodeAs[MatrixRow]},
}

func shapeFor(k Kind) (shape, bool) {
	for _, s := range shapes {
		if s.kind == k {
			return s, true
		}
	}
	return shape{}, false
}

func into(data []byte, strict bool, v any) error {
	if strict {
		return decode.Strict(data, v)
	}
	return decode.Lenient(data, v)
}

func decodeAs[T Bucket](data []byte, strict bool) (Bucket, error) {
	var b T
	if err := into(data, strict, &b); err != nil {
		return nil, err
	}
	return b, nil
}

// dateBound accepts a date string or an epoch number, keeping its text.
type dateBound string

func (d *dateBound) UnmarshalJSON(data []byte) error {
	switch decode.Shape(data) {
	case "string":
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = dateBound(s)
		return nil
	case "number":
		*d = dateBound(bytes.TrimSpace(data))
		return nil
	}
	return errors.New("date bound must be a string or a number")
}

func decodeDateRange(data []byte, strict bool) (Bucket, error) {
	var w struct {
		Key          *string      `json:"key"`
		From         *dateBound   `json:"from"`
		FromAsString *string      `json:"from_as_string"`
		To           *dateBound   `json:"to"`
		ToAsString   *string      `json:"to_as_string"`
		DocCount     uint64       `json:"doc_count"`
		Aggregations Aggregations `json:"aggregations"`
	}
	if err := into(data, strict, &w); err != nil {
		return nil, err
	}
	return DateRangeBucket{
		Key:          w.Key,
		From:         boundText(w.From),
		FromAsString: w.FromAsString,
		To:           boundText(w.To),
		ToAsString:   w.ToAsString,
		DocCount:     w.DocCount,
		Aggregations: w.Aggregations,
	}, nil
}

func boundText(d *dateBound) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}

// decodeBucket decodes one bucket object. A hint other than KindNone
// selects the shape directly and decodes leniently. When fillKey is set
// and the object has no key, the bucket key is taken from it.
func decodeBucket(data []byte, hint Kind, fillKey *string) (Bucket, error) {
	members, err := decode.Members(data)
	if err != nil {
		return nil, decode.NoMatch("bucket", data, err)
	}

	// Sub-aggregations are decoded once here and attached after the shape is
	// chosen, so rejected candidates never walk the subtree.
	plain := make([]decode.Member, 0, len(members)+1)
	var nested, inline Aggregations
	hasKey := false
	for _, m := range members {
		switch {
		case m.Key == "key":
			hasKey = true
		case m.Key == "doc_count":
			if _, err := docCount(m.Value); err != nil {
				return nil, err
			}
		case m.Key == "aggregations":
			if !decode.IsObject(m.Value) {
				return nil, decode.Malformed("bucket", "aggregations", "object", nil)
			}
			sub, _, err := decodeEach(m.Value, true)
			if err != nil {
				return nil, err
			}
			for name, r := range sub.All() {
				nested.put(name, r)
			}
			continue
		case isTypedName(m.Key) && decode.IsObject(m.Value):
			name, r, err := decodeEntry(m.Key, m.Value)
			if err != nil {
				return nil, err
			}
			inline.put(name, r)
			continue
		}
		plain = append(plain, m)
	}
	if fillKey != nil && !hasKey {
		k, _ := json.Marshal(*fillKey)
		plain = append([]decode.Member{{Key: "key", Value: k}}, plain...)
	}

	body := decode.EncodeMembers(plain)
	keys := make([]string, len(plain))
	for i, m := range plain {
		keys[i] = m.Key
	}

	var b Bucket
	if s, ok := shapeFor(hint); ok {
		if missing := missingKeys(keys, s.required); len(missing) > 0 {
			return nil, decode.Malformed("bucket", strings.Join(missing, ","), "present for "+s.kind.String(), nil)
		}
		if b, err = s.decode(body, false); err != nil {
			return nil, err
		}
	} else {
		b, err = decode.FirstMatch("bucket", body, candidates(keys))
		if err != nil {
			return nil, err
		}
	}

	if nested.Len() > 0 || inline.Len() > 0 {
		for name, r := range inline.All() {
			nested.put(name, r)
		}
		b = b.withAggregations(nested)
	}
	return b, nil
}

// candidates returns the shapes whose required keys are all present, in
// priority order. Shapes ruled out by missing keys still report why.
func candidates(keys []string) []decode.Candidate[Bucket] {
	out := make([]decode.Candidate[Bucket], 0, len(shapes))
	for _, s := range shapes {
		c := decode.Candidate[Bucket]{Name: s.kind.String()}
		if missing := missingKeys(keys, s.required); len(missing) > 0 {
			err := errors.New("missing " + strings.Join(missing, ", "))
			c.Decode = func([]byte) (Bucket, error) { return nil, err }
		} else {
			c.Decode = func(data []byte) (Bucket, error) { return s.decode(data, true) }
		}
		out = append(out, c)
	}
	return out
}

func missingKeys(keys, required []string) []string {
	var out []string
	for _, r := range required {
		if !slices.Contains(keys, r) {
			out = append(out, r)
		}
	}
	return out
}

// docCount validates a doc_count value: a non-negative integer.
func docCount(raw json.RawMessage) (uint64, error) {
	n, err := strconv.ParseUint(string(bytes.TrimSpace(raw)), 10, 64)
	if err != nil {
		return 0, decode.Malformed("bucket", "doc_count", "non-negative integer", err)
	}
	return n, nil
}

func isTypedName(key string) bool {
	i := strings.IndexByte(key, '#')
	return i > 0 && i < len(key)-1
}
