package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport signals that the cluster could not be reached or the
	// exchange did not complete.
	ErrTransport = errors.New("cluster transport error")
	// ErrStatus signals a non-2xx response from the cluster.
	ErrStatus = errors.New("cluster returned error status")
	// ErrInvalidRequest signals a request the caller must fix.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbedderNotConfigured signals a text knn request without an embedder.
	ErrEmbedderNotConfigured = errors.New("embedder not configured")
)

// StatusError wraps ErrStatus with the response code and the error body
// the cluster returned.
type StatusError struct {
	Code int
	// Type and Reason come from the body's error object when present.
	Type   string
	Reason string
	Body   []byte
}

func (e *StatusError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %d %s: %s", ErrStatus.Error(), e.Code, e.Type, e.Reason)
	}
	return fmt.Sprintf("%s: %d", ErrStatus.Error(), e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case 429, 502, 503, 504:
		return true
	}
	return false
}

// StatusCode returns the cluster status code carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
