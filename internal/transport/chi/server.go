package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl"
	"github.com/kailas-cloud/searchdsl/aggregation"
	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/domain"
	logpkg "github.com/kailas-cloud/searchdsl/internal/logger"
	healthuc "github.com/kailas-cloud/searchdsl/internal/usecase/health"
	"github.com/kailas-cloud/searchdsl/query"
)

const defaultMaxBodyBytes = 10 << 20

// Searcher is the SDK surface the server runs requests through.
type Searcher interface {
	Search(ctx context.Context, index string, req *searchdsl.Request) (*searchdsl.Response, error)
	Count(ctx context.Context, index string, q query.Clause) (int64, error)
	KnnText(ctx context.Context, field, text string, k int64) (query.KnnQuery, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the searchdsl HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	decodeOpts    []decode.Option
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		health:        health,
		maxBodyBytes:  defaultMaxBodyBytes,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithMaxDepth lowers the JSON nesting limit applied to request bodies.
func (s *Server) WithMaxDepth(n int) *Server {
	if n > 0 {
		s.decodeOpts = []decode.Option{decode.WithMaxDepth(n)}
	}
	return s
}

// WithMaxBodyBytes caps request body size.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/query/_normalize", s.NormalizeQuery)
		r.Post("/aggregations/_decode", s.DecodeAggregations)
		r.Post("/indexes/{index}/_search", s.Search)
		r.Post("/indexes/{index}/_count", s.Count)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
}

type normalizeResponse struct {
	Query json.RawMessage `json:"query"`
	Kind  string          `json:"kind,omitempty"`
	Empty bool            `json:"empty"`
}

// NormalizeQuery handles POST /v1/query/_normalize. It decodes one query
// clause and returns its canonical encoding.
func (s *Server) NormalizeQuery(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	q, err := query.Decode(body, s.decodeOpts...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	data, err := json.Marshal(q)
	if err != nil {
		s.handleDomainError(w, r, fmt.Errorf("encode query: %w", err))
		return
	}

	resp := normalizeResponse{Query: data, Empty: q.IsEmpty()}
	if !q.IsEmpty() {
		resp.Kind = q.Kind().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

type decodeAggregationsResponse struct {
	Aggregations aggregation.Aggregations `json:"aggregations"`
	Errors       map[string]string        `json:"errors,omitempty"`
}

// DecodeAggregations handles POST /v1/aggregations/_decode. The body is the
// aggregations object of a search response. With ?partial=true entries that
// fail are reported per name instead of failing the request.
func (s *Server) DecodeAggregations(w http.ResponseWriter, r *http.Request) {
	partial, err := boolParam(r, "partial")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var resp decodeAggregationsResponse
	if partial {
		aggs, errs, err := aggregation.DecodeEach(body, s.decodeOpts...)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Aggregations = aggs
		for name, aerr := range errs {
			recordDecodeFailure(aerr)
			if resp.Errors == nil {
				resp.Errors = make(map[string]string, len(errs))
			}
			resp.Errors[name] = aerr.Error()
		}
	} else {
		aggs, err := aggregation.Decode(body, s.decodeOpts...)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		resp.Aggregations = aggs
	}
	writeJSON(w, http.StatusOK, resp)
}

// knnText asks the server to embed text and add a knn clause to the query.
type knnText struct {
	Field string `json:"field"`
	Text  string `json:"text"`
	K     int64  `json:"k"`
}

type searchResponse struct {
	*searchdsl.Response
	AggregationErrors map[string]string `json:"aggregation_errors,omitempty"`
}

// Search handles POST /v1/indexes/{index}/_search. The body is a search
// request; an extra top-level "knn_text" object is embedded server side and
// combined with the query.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	body, knn, err := splitKnnText(body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	req, err := searchdsl.DecodeRequest(body, s.decodeOpts...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if knn != nil {
		kq, err := s.search.KnnText(r.Context(), knn.Field, knn.Text, knn.K)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		if existing := req.QueryClause(); existing.IsEmpty() {
			req.Query(kq)
		} else {
			req.Query(query.Bool().Must(kq, existing))
		}
	}

	resp, err := s.search.Search(r.Context(), index, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := searchResponse{Response: resp}
	for name, aerr := range resp.AggregationErrors {
		recordDecodeFailure(aerr)
		if out.AggregationErrors == nil {
			out.AggregationErrors = make(map[string]string, len(resp.AggregationErrors))
		}
		out.AggregationErrors[name] = aerr.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

// Count handles POST /v1/indexes/{index}/_count. The body is optional and
// may carry a "query".
func (s *Server) Count(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var q query.Query
	if len(body) > 0 {
		req, err := searchdsl.DecodeRequest(body, s.decodeOpts...)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		q = req.QueryClause()
	}

	n, err := s.search.Count(r.Context(), index, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

type healthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{Status: report.Status, Checks: report.Checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// readBody reads the request body within the configured size limit.
// It writes the error response itself and reports false on failure.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
			return nil, false
		}
		logpkg.FromContextOr(r.Context(), s.logger).Warn("read request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return nil, false
	}
	return data, true
}

// splitKnnText removes the "knn_text" member from a search body.
func splitKnnText(body []byte) ([]byte, *knnText, error) {
	if len(body) == 0 {
		return []byte(`{}`), nil, nil
	}
	members, err := decode.Members(body)
	if err != nil {
		return nil, nil, decode.Malformed("search request", ".", "object", err)
	}

	var knn *knnText
	kept := members[:0]
	for _, m := range members {
		if m.Key != "knn_text" {
			kept = append(kept, m)
			continue
		}
		var k knnText
		if err := decode.Strict(m.Value, &k); err != nil {
			return nil, nil, decode.Malformed("search request", "knn_text", "{field,text,k} object", err)
		}
		knn = &k
	}
	if knn == nil {
		return body, nil, nil
	}
	return decode.EncodeMembers(kept), knn, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: query parameter %s must be a boolean", domain.ErrInvalidRequest, name)
	}
	return b, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
