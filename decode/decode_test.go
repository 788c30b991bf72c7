package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDepth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`1`, 0},
		{`"{[{["`, 0},
		{`{}`, 1},
		{`[[],[[]]]`, 3},
		{`{"a":{"b":"}}}}"}}`, 2},
		{`{"a":"\"{"}`, 1},
	}
	for _, tt := range tests {
		if got := Depth([]byte(tt.in)); got != tt.want {
			t.Errorf("Depth(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCheckDepth(t *testing.T) {
	data := []byte(strings.Repeat("[", 10) + strings.Repeat("]", 10))

	if err := CheckDepth("query", data, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := CheckDepth("query", data, 9)
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
	var de *Error
	if !errors.As(err, &de) || de.Depth != 10 || de.Limit != 9 {
		t.Errorf("unexpected error details: %+v", de)
	}
}

func TestApplyClampsDepth(t *testing.T) {
	if got := Apply().MaxDepth; got != MaxDepth {
		t.Errorf("default MaxDepth = %d, want %d", got, MaxDepth)
	}
	if got := Apply(WithMaxDepth(10_000)).MaxDepth; got != MaxDepth {
		t.Errorf("clamped MaxDepth = %d, want %d", got, MaxDepth)
	}
	if got := Apply(WithMaxDepth(8)).MaxDepth; got != 8 {
		t.Errorf("MaxDepth = %d, want 8", got)
	}
}

func TestStrict(t *testing.T) {
	type body struct {
		Value any     `json:"value"`
		Boost float64 `json:"boost"`
	}

	var b body
	if err := Strict([]byte(`{"value":12,"boost":1.5}`), &b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Value != json.Number("12") {
		t.Errorf("value = %#v, want json.Number", b.Value)
	}

	if err := Strict([]byte(`{"value":1,"extra":true}`), &b); err == nil {
		t.Error("expected unknown field error")
	}
	if err := Strict([]byte(`{"value":1} {}`), &b); err == nil {
		t.Error("expected trailing data error")
	}

	err := Strict([]byte(`{"boost":"high"}`), &b)
	if !errors.Is(err, ErrMalformedField) {
		t.Errorf("expected ErrMalformedField, got %v", err)
	}
}

func TestMembersKeepOrder(t *testing.T) {
	members, err := Members([]byte(`{"z":1,"a":{"b":[1,2]},"m":"x"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var keys []string
	for _, m := range members {
		keys = append(keys, m.Key)
	}
	if strings.Join(keys, ",") != "z,a,m" {
		t.Errorf("keys = %v", keys)
	}
	if string(EncodeMembers(members)) != `{"z":1,"a":{"b":[1,2]},"m":"x"}` {
		t.Errorf("EncodeMembers = %s", EncodeMembers(members))
	}

	if _, err := Members([]byte(`[1]`)); err == nil {
		t.Error("expected error for array input")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(5); got != json.Number("5") {
		t.Errorf("Normalize(5) = %#v", got)
	}
	if got := Normalize("x"); got != "x" {
		t.Errorf("Normalize(x) = %#v", got)
	}
	got, ok := Normalize([]int{1, 2}).([]any)
	if !ok || len(got) != 2 || got[1] != json.Number("2") {
		t.Errorf("Normalize([]int) = %#v", got)
	}
}

func TestFirstMatch(t *testing.T) {
	never := func(name string) Candidate[string] {
		return Candidate[string]{Name: name, Decode: func([]byte) (string, error) {
			return "", errors.New(name + " rejected")
		}}
	}
	always := func(name string) Candidate[string] {
		return Candidate[string]{Name: name, Decode: func([]byte) (string, error) {
			return name, nil
		}}
	}

	t.Run("first success wins", func(t *testing.T) {
		got, err := FirstMatch("thing", []byte(`{}`), []Candidate[string]{never("a"), always("b"), always("c")})
		if err != nil || got != "b" {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := FirstMatch("thing", []byte(`{"y":1,"x":2}`), []Candidate[string]{never("a"), never("b")})
		if !errors.Is(err, ErrNoMatchingVariant) {
			t.Fatalf("expected ErrNoMatchingVariant, got %v", err)
		}
		var de *Error
		if !errors.As(err, &de) {
			t.Fatal("expected *Error")
		}
		if strings.Join(de.Keys, ",") != "x,y" || de.Shape != "object" {
			t.Errorf("keys = %v shape = %s", de.Keys, de.Shape)
		}
		if !strings.Contains(de.Err.Error(), "b rejected") {
			t.Errorf("causes not kept: %v", de.Err)
		}
		if err.Error() != "decode thing: no matching variant for object with keys [x y]" {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("recursion limit aborts", func(t *testing.T) {
		deep := Candidate[string]{Name: "deep", Decode: func([]byte) (string, error) {
			return "", TooDeep("thing", 9, 8)
		}}
		_, err := FirstMatch("thing", []byte(`[]`), []Candidate[string]{deep, always("b")})
		if !errors.Is(err, ErrRecursionLimit) {
			t.Fatalf("expected ErrRecursionLimit, got %v", err)
		}
	})
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := Malformed("bucket", "doc_count", "non-negative integer", nil)
	if errors.Is(err, ErrNoMatchingVariant) || errors.Is(err, ErrRecursionLimit) {
		t.Error("malformed error matches another kind")
	}
	if err.Error() != `decode bucket: field "doc_count": expected non-negative integer` {
		t.Errorf("message = %q", err.Error())
	}
}

func TestFirstMatchSurfacesMalformedSingleCandidate(t *testing.T) {
	bad := Candidate[string]{Name: "only", Decode: func([]byte) (string, error) {
		return "", fmt.Errorf("only: %w", Malformed("thing", "x", "number", nil))
	}}

	_, err := FirstMatch("thing", []byte(`{"x":"y"}`), []Candidate[string]{bad})
	if !errors.Is(err, ErrMalformedField) {
		t.Fatalf("expected ErrMalformedField, got %v", err)
	}

	_, err = FirstMatch("thing", []byte(`{"x":"y"}`), []Candidate[string]{bad, bad})
	if !errors.Is(err, ErrNoMatchingVariant) {
		t.Fatalf("expected ErrNoMatchingVariant, got %v", err)
	}
	if errors.Is(err, ErrMalformedField) {
		t.Fatal("no match error must not also match malformed field")
	}
}
