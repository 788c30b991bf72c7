package decode

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Member is one key/value pair of a JSON object, in document order.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Strict decodes a single JSON value into v. Numbers decoded into
// interface values become json.Number, unknown object keys are rejected,
// and trailing data is an error. Type mismatches surface as
// ErrMalformedField.
func Strict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "."
			}
			return Malformed(fmt.Sprintf("%T", v), field, typeErr.Type.String(), err)
		}
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

// Lenient decodes like Strict but ignores unknown object keys.
func Lenient(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Value decodes data into a generic value, keeping numbers as json.Number.
func Value(data []byte) (any, error) {
	var v any
	if err := Strict(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Normalize returns v as it would look after a JSON round trip through
// Value, so values built in code compare equal to decoded ones.
func Normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, json.Number:
		return v
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	out, err := Value(raw)
	if err != nil {
		return v
	}
	return out
}

// Members parses data as a JSON object and returns its members in order.
func Members(data []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %s", Shape(data))
	}

	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		members = append(members, Member{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return members, nil
}

// EncodeMembers writes members back as a JSON object, preserving order.
func EncodeMembers(members []Member) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(m.Key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// Shape names the JSON type of data by its first significant byte.
func Shape(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "empty input"
	}
	switch c := trimmed[0]; {
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '"':
		return "string"
	case c == 't' || c == 'f':
		return "bool"
	case c == 'n':
		return "null"
	default:
		return "number"
	}
}

// IsObject reports whether data starts a JSON object.
func IsObject(data []byte) bool { return Shape(data) == "object" }

// IsNull reports whether data is the JSON literal null.
func IsNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// TopLevelKeys returns the sorted keys of data if it is an object.
func TopLevelKeys(data []byte) []string {
	if !IsObject(data) {
		return nil
	}
	members, err := Members(data)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, m.Key)
	}
	slices.Sort(keys)
	return keys
}
