package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestStatusError(t *testing.T) {
	err := fmt.Errorf("search: %w", &StatusError{Code: 400, Type: "parsing_exception", Reason: "unknown query [foo]"})

	if !errors.Is(err, ErrStatus) {
		t.Fatal("expected ErrStatus")
	}
	if errors.Is(err, ErrTransport) {
		t.Fatal("status error must not match ErrTransport")
	}
	if got := StatusCode(err); got != 400 {
		t.Errorf("StatusCode = %d, want 400", got)
	}
	want := "search: cluster returned error status: 400 parsing_exception: unknown query [foo]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStatusError_NoReason(t *testing.T) {
	err := &StatusError{Code: 503}
	if err.Error() != "cluster returned error status: 503" {
		t.Errorf("Error() = %q", err.Error())
	}
	if StatusCode(errors.New("other")) != 0 {
		t.Error("StatusCode of a plain error must be 0")
	}
}

func TestStatusError_Retryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{400, false},
		{404, false},
		{429, true},
		{500, false},
		{502, true},
		{503, true},
		{504, true},
	}
	for _, tc := range tests {
		e := &StatusError{Code: tc.code}
		if got := e.Retryable(); got != tc.want {
			t.Errorf("Retryable(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
