package searchdsl

import (
	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport              = domain.ErrTransport
	ErrStatus                 = domain.ErrStatus
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrEmbedderNotConfigured  = domain.ErrEmbedderNotConfigured
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)

// Decode failures, re-exported from package decode.
var (
	ErrNoMatchingVariant = decode.ErrNoMatchingVariant
	ErrMalformedField    = decode.ErrMalformedField
	ErrRecursionLimit    = decode.ErrRecursionLimit
)

// StatusError is the error returned for a non-2xx cluster reply.
type StatusError = domain.StatusError

// StatusCode returns the HTTP status carried by err, or 0 when err is not
// a cluster status error.
func StatusCode(err error) int { return domain.StatusCode(err) }
