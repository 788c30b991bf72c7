package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/domain"
	logpkg "github.com/kailas-cloud/searchdsl/internal/logger"
	"github.com/kailas-cloud/searchdsl/internal/metrics"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest            = "bad_request"
	codeUnauthorized          = "unauthorized"
	codeNotFound              = "not_found"
	codePayloadTooLarge       = "payload_too_large"
	codeNoMatchingVariant     = "no_matching_variant"
	codeMalformedField        = "malformed_field"
	codeRecursionLimit        = "recursion_limit"
	codeClusterError          = "cluster_error"
	codeClusterUnavailable    = "cluster_unavailable"
	codeEmbedderNotConfigured = "embedder_not_configured"
	codeEmbeddingProvider     = "embedding_provider_error"
	codeInternal              = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Target  string   `json:"target,omitempty"`
	Field   string   `json:"field,omitempty"`
	Keys    []string `json:"keys,omitempty"`
	// Status is the cluster's HTTP status when the cluster rejected the request.
	Status int `json:"status,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// defaultErrorHandlers is ordered: the first match wins.
func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		decodeErrorHandler(decode.ErrRecursionLimit, http.StatusBadRequest, codeRecursionLimit),
		decodeErrorHandler(decode.ErrNoMatchingVariant, http.StatusUnprocessableEntity, codeNoMatchingVariant),
		decodeErrorHandler(decode.ErrMalformedField, http.StatusUnprocessableEntity, codeMalformedField),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, codeBadRequest),
		sentinelHandler(domain.ErrEmbedderNotConfigured, http.StatusNotImplemented, codeEmbedderNotConfigured),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider),
		clusterStatusHandler,
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, codeClusterUnavailable),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The reply carries the sentinel's message only, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if sentinel == domain.ErrInvalidRequest {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

// decodeErrorHandler reports a rejected document with the decoder's
// description, which only refers to the caller's own input.
func decodeErrorHandler(kind error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, kind) {
			return false
		}
		resp := ErrorResponse{Code: code, Message: err.Error()}
		var de *decode.Error
		if errors.As(err, &de) {
			resp.Target, resp.Field, resp.Keys = de.Target, de.Field, de.Keys
		}
		writeJSON(w, status, resp)
		return true
	}
}

// clusterStatusHandler passes the cluster's 4xx verdicts through and maps
// its 5xx replies to 502.
func clusterStatusHandler(w http.ResponseWriter, err error) bool {
	var se *domain.StatusError
	if !errors.As(err, &se) {
		return false
	}
	status := http.StatusBadGateway
	if se.Code >= 400 && se.Code < 500 {
		status = se.Code
	}
	writeJSON(w, status, ErrorResponse{Code: codeClusterError, Message: se.Error(), Status: se.Code})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	recordDecodeFailure(err)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

// recordDecodeFailure counts err when it is a decode failure.
func recordDecodeFailure(err error) {
	var de *decode.Error
	if !errors.As(err, &de) {
		return
	}
	metrics.DecodeFailuresTotal.WithLabelValues(de.Target, decodeKind(de.Kind)).Inc()
}

func decodeKind(kind error) string {
	switch kind {
	case decode.ErrNoMatchingVariant:
		return codeNoMatchingVariant
	case decode.ErrMalformedField:
		return codeMalformedField
	case decode.ErrRecursionLimit:
		return codeRecursionLimit
	default:
		return "unknown"
	}
}
