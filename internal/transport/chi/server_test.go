package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/searchdsl"
	"github.com/kailas-cloud/searchdsl/aggregation"
	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/domain"
	"github.com/kailas-cloud/searchdsl/internal/metrics"
	healthuc "github.com/kailas-cloud/searchdsl/internal/usecase/health"
	"github.com/kailas-cloud/searchdsl/query"
)

// --- Mocks ---

type mockSearcher struct {
	gotIndex string
	gotReq   *searchdsl.Request
	gotCount query.Clause
	resp     *searchdsl.Response
	count    int64
	knn      query.KnnQuery
	err      error
	knnErr   error
}

func (m *mockSearcher) Search(_ context.Context, index string, req *searchdsl.Request) (*searchdsl.Response, error) {
	m.gotIndex, m.gotReq = index, req
	if m.err != nil {
		return nil, m.err
	}
	if m.resp == nil {
		return &searchdsl.Response{Took: 1}, nil
	}
	return m.resp, nil
}

func (m *mockSearcher) Count(_ context.Context, index string, q query.Clause) (int64, error) {
	m.gotIndex, m.gotCount = index, q
	return m.count, m.err
}

func (m *mockSearcher) KnnText(_ context.Context, _, _ string, _ int64) (query.KnnQuery, error) {
	return m.knn, m.knnErr
}

type mockHealth struct {
	report healthuc.Report
}

func (m mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestServer(t *testing.T, s *mockSearcher) *httptest.Server {
	t.Helper()
	h := mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{"cluster": healthuc.CheckOK}}}
	srv := httptest.NewServer(NewRouter(NewServer(s, h, nil).WithMaxDepth(32).WithMaxBodyBytes(1<<10), nil, nil))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data
}

func decodeError(t *testing.T, data []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		t.Fatalf("decode error response %s: %v", data, err)
	}
	return e
}

// --- Normalize tests ---

func TestNormalizeQuery(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})

	status, data := post(t, srv.URL+"/v1/query/_normalize", `{"term":{"user":"kimchy"}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	var resp normalizeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Query) != `{"term":{"user":{"value":"kimchy"}}}` {
		t.Errorf("query = %s", resp.Query)
	}
	if resp.Kind != "Term" || resp.Empty {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestNormalizeQuery_Empty(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})

	status, data := post(t, srv.URL+"/v1/query/_normalize", `{"terms":{"tag":[]}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	var resp normalizeResponse
	_ = json.Unmarshal(data, &resp)
	if !resp.Empty || resp.Kind != "" {
		t.Errorf("expected empty query, got %+v", resp)
	}
}

func TestNormalizeQuery_Errors(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	deep := strings.Repeat(`{"bool":{"must":`, 20) + `{"match_all":{}}` + strings.Repeat(`}}`, 20)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no variant", `{"term":{"a":"x"},"match":{"b":"y"}}`, http.StatusUnprocessableEntity, codeNoMatchingVariant},
		{"malformed", `{"span_first":{"match":{"bool":{}},"end":3}}`, http.StatusUnprocessableEntity, codeMalformedField},
		{"too deep", deep, http.StatusBadRequest, codeRecursionLimit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, data := post(t, srv.URL+"/v1/query/_normalize", tc.body)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", status, tc.wantStatus, data)
			}
			if e := decodeError(t, data); e.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tc.wantCode)
			}
		})
	}
}

func TestNormalizeQuery_CountsDecodeFailures(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	counter := metrics.DecodeFailuresTotal.WithLabelValues("query", codeNoMatchingVariant)
	before := testutil.ToFloat64(counter)

	_, _ = post(t, srv.URL+"/v1/query/_normalize", `{"a":1,"b":2}`)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("decode failures recorded = %f, want 1", got)
	}
}

func TestNormalizeQuery_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	body := `{"term":{"user":"` + strings.Repeat("x", 2<<10) + `"}}`

	status, data := post(t, srv.URL+"/v1/query/_normalize", body)
	if status != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", status)
	}
	if e := decodeError(t, data); e.Code != codePayloadTooLarge {
		t.Errorf("code = %q", e.Code)
	}
}

// --- Aggregation decode tests ---

func TestDecodeAggregations(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	body := `{"sterms#by_tag":{"buckets":[{"key":"a","doc_count":2}]}}`

	status, data := post(t, srv.URL+"/v1/aggregations/_decode", body)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	var resp struct {
		Aggregations aggregation.Aggregations `json:"aggregations"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byTag, ok := resp.Aggregations.Get("by_tag")
	if !ok || len(aggregation.BucketsOf[aggregation.TermsBucket](byTag)) != 1 {
		t.Errorf("unexpected aggregations: %s", data)
	}
}

func TestDecodeAggregations_Partial(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	body := `{"good":{"value":3},"bad":{"buckets":[{"key":"a","doc_count":-1}]}}`

	status, data := post(t, srv.URL+"/v1/aggregations/_decode", body)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("strict: status = %d, body %s", status, data)
	}

	status, data = post(t, srv.URL+"/v1/aggregations/_decode?partial=true", body)
	if status != http.StatusOK {
		t.Fatalf("partial: status = %d, body %s", status, data)
	}
	var resp decodeAggregationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp.Aggregations.Get("good"); !ok {
		t.Error("expected good aggregation")
	}
	if resp.Errors["bad"] == "" {
		t.Errorf("expected error for bad, got %v", resp.Errors)
	}
}

func TestDecodeAggregations_BadPartialParam(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})
	if status, _ := post(t, srv.URL+"/v1/aggregations/_decode?partial=maybe", `{}`); status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

// --- Search tests ---

func TestSearch(t *testing.T) {
	s := &mockSearcher{resp: &searchdsl.Response{
		Took:              2,
		AggregationErrors: map[string]error{"x": decode.Malformed("bucket", "doc_count", "non-negative integer", nil)},
	}}
	srv := newTestServer(t, s)

	status, data := post(t, srv.URL+"/v1/indexes/logs-*/_search", `{"query":{"exists":{"field":"user"}},"size":3}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	if s.gotIndex != "logs-*" {
		t.Errorf("index = %q", s.gotIndex)
	}
	if !query.Equal(s.gotReq.QueryClause(), query.Exists("user")) {
		t.Errorf("query = %v", s.gotReq.QueryClause())
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp["took"]) != "2" {
		t.Errorf("took = %s", resp["took"])
	}
	if _, ok := resp["aggregation_errors"]; !ok {
		t.Errorf("expected aggregation_errors in %s", data)
	}
}

func TestSearch_KnnText(t *testing.T) {
	s := &mockSearcher{knn: query.Knn("v", []float32{1, 2}, 5)}
	srv := newTestServer(t, s)

	body := `{"knn_text":{"field":"v","text":"red shoes","k":5},"query":{"term":{"brand":"acme"}}}`
	status, data := post(t, srv.URL+"/v1/indexes/products/_search", body)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	want := query.Bool().Must(query.Knn("v", []float32{1, 2}, 5), query.Term("brand", "acme"))
	if !query.Equal(s.gotReq.QueryClause(), want) {
		t.Errorf("query = %v, want %v", s.gotReq.QueryClause(), want)
	}
}

func TestSearch_KnnTextOnly(t *testing.T) {
	s := &mockSearcher{knn: query.Knn("v", []float32{1}, 1)}
	srv := newTestServer(t, s)

	status, _ := post(t, srv.URL+"/v1/indexes/products/_search", `{"knn_text":{"field":"v","text":"x","k":1}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if !query.Equal(s.gotReq.QueryClause(), query.Knn("v", []float32{1}, 1)) {
		t.Errorf("query = %v", s.gotReq.QueryClause())
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		knnErr     error
		body       string
		wantStatus int
		wantCode   string
	}{
		{"cluster 4xx passes through", &domain.StatusError{Code: 404, Type: "index_not_found_exception"}, nil, `{}`,
			http.StatusNotFound, codeClusterError},
		{"cluster 5xx", fmt.Errorf("search: %w", &domain.StatusError{Code: 503}), nil, `{}`,
			http.StatusBadGateway, codeClusterError},
		{"transport", fmt.Errorf("%w: dial tcp", domain.ErrTransport), nil, `{}`,
			http.StatusBadGateway, codeClusterUnavailable},
		{"invalid request", fmt.Errorf("%w: index is required", domain.ErrInvalidRequest), nil, `{}`,
			http.StatusBadRequest, codeBadRequest},
		{"embedder missing", nil, domain.ErrEmbedderNotConfigured, `{"knn_text":{"field":"v","text":"x","k":1}}`,
			http.StatusNotImplemented, codeEmbedderNotConfigured},
		{"embedder failing", nil, fmt.Errorf("%w: 500", domain.ErrEmbeddingProviderError), `{"knn_text":{"field":"v","text":"x","k":1}}`,
			http.StatusBadGateway, codeEmbeddingProvider},
		{"bad knn_text", nil, nil, `{"knn_text":{"field":"v","bogus":1}}`,
			http.StatusUnprocessableEntity, codeMalformedField},
		{"unexpected", fmt.Errorf("boom"), nil, `{}`,
			http.StatusInternalServerError, codeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &mockSearcher{err: tc.err, knnErr: tc.knnErr})
			status, data := post(t, srv.URL+"/v1/indexes/logs/_search", tc.body)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", status, tc.wantStatus, data)
			}
			e := decodeError(t, data)
			if e.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tc.wantCode)
			}
			if tc.wantCode == codeInternal && e.Message != "internal error" {
				t.Errorf("internal details leaked: %q", e.Message)
			}
		})
	}
}

// --- Count tests ---

func TestCount(t *testing.T) {
	s := &mockSearcher{count: 9}
	srv := newTestServer(t, s)

	status, data := post(t, srv.URL+"/v1/indexes/logs/_count", `{"query":{"exists":{"field":"user"}}}`)
	if status != http.StatusOK {
		t.Fatalf("status = %d, body %s", status, data)
	}
	if strings.TrimSpace(string(data)) != `{"count":9}` {
		t.Errorf("body = %s", data)
	}
	if !query.Equal(s.gotCount, query.Exists("user")) {
		t.Errorf("query = %v", s.gotCount)
	}
}

// --- Health and routing tests ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		want   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		h := mockHealth{report: healthuc.Report{Status: tc.status, Checks: map[string]healthuc.CheckResult{}}}
		srv := httptest.NewServer(NewRouter(NewServer(&mockSearcher{}, h, nil), nil, nil))

		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = resp.Body.Close()
		srv.Close()
		if resp.StatusCode != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.status, resp.StatusCode, tc.want)
		}
	}
}

func TestRouter_NotFoundAndRequestID(t *testing.T) {
	srv := newTestServer(t, &mockSearcher{})

	resp, err := http.Get(srv.URL + "/v1/nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := NewRouter(NewServer(&mockSearcher{}, nil, nil), nil, nil)
	// A nil health checker panics in the handler.
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr.Body.Bytes()); e.Code != codeInternal {
		t.Errorf("code = %q", e.Code)
	}
}
