package searchdsl

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/searchdsl/aggregation"
	"github.com/kailas-cloud/searchdsl/query"
)

// --- fakes ---

type call struct {
	method, path string
	body         []byte
}

type fakeTransport struct {
	calls []call
	resp  []byte
	err   error
}

func (f *fakeTransport) Do(_ context.Context, method, path string, body []byte) ([]byte, error) {
	f.calls = append(f.calls, call{method: method, path: path, body: body})
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return EmbeddingResult{}, f.err
	}
	return EmbeddingResult{Embedding: f.vec, PromptTokens: 3, TotalTokens: 3}, nil
}

func newTestClient(t *testing.T, tr Transport, opts ...Option) *Client {
	t.Helper()
	c, err := New(tr, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

const searchResponse = `{
	"took": 5,
	"timed_out": false,
	"_shards": {"total": 2, "successful": 2, "skipped": 0, "failed": 0},
	"hits": {
		"total": {"value": 1, "relation": "eq"},
		"max_score": 1.5,
		"hits": [{"_index": "logs", "_id": "1", "_score": 1.5, "_source": {"msg": "hello"}}]
	},
	"aggregations": {
		"sterms#by_tag": {
			"doc_count_error_upper_bound": 0,
			"sum_other_doc_count": 0,
			"buckets": [{"key": "a", "doc_count": 2}, {"key": "b", "doc_count": 1}]
		}
	}
}`

// --- New tests ---

func TestNew_NilTransport(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil transport")
	}
}

// --- Search tests ---

func TestSearch_SendsRequest(t *testing.T) {
	tr := &fakeTransport{resp: []byte(searchResponse)}
	c := newTestClient(t, tr, WithTypedKeys())

	req := NewRequest().Query(query.Term("user", "kimchy")).Size(0)
	resp, err := c.Search(context.Background(), "logs-*", req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tr.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(tr.calls))
	}
	got := tr.calls[0]
	if got.method != "POST" || got.path != "/logs-*/_search?typed_keys=true" {
		t.Errorf("unexpected call: %s %s", got.method, got.path)
	}
	if want := `{"query":{"term":{"user":{"value":"kimchy"}}},"size":0}`; string(got.body) != want {
		t.Errorf("body = %s, want %s", got.body, want)
	}

	if resp.Took != 5 || resp.Hits.Total.Value != 1 || len(resp.Hits.Hits) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	byTag, ok := resp.Aggregations.Get("by_tag")
	if !ok {
		t.Fatal("expected by_tag aggregation")
	}
	if byTag.Type != "sterms" {
		t.Errorf("Type = %q, want sterms", byTag.Type)
	}
	buckets := aggregation.BucketsOf[aggregation.TermsBucket](byTag)
	if len(buckets) != 2 || buckets[0].Key != "a" || buckets[0].DocCount != 2 {
		t.Errorf("unexpected buckets: %+v", buckets)
	}
}

func TestSearch_NilRequest(t *testing.T) {
	tr := &fakeTransport{resp: []byte(`{"took":1,"hits":{"hits":[]}}`)}
	c := newTestClient(t, tr)

	if _, err := c.Search(context.Background(), "logs", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.calls[0].path != "/logs/_search" {
		t.Errorf("path = %s", tr.calls[0].path)
	}
	if string(tr.calls[0].body) != `{}` {
		t.Errorf("body = %s, want {}", tr.calls[0].body)
	}
}

func TestSearch_InvalidIndex(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	for _, index := range []string{"", "  ", "a/b", "a?b", "a b"} {
		if _, err := c.Search(context.Background(), index, nil); !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("index %q: expected ErrInvalidRequest, got %v", index, err)
		}
	}
}

func TestSearch_TransportError(t *testing.T) {
	c := newTestClient(t, &fakeTransport{err: &StatusError{Code: 404, Type: "index_not_found_exception"}})

	_, err := c.Search(context.Background(), "missing", nil)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
	if StatusCode(err) != 404 {
		t.Errorf("StatusCode = %d, want 404", StatusCode(err))
	}
}

func TestSearch_RequestError(t *testing.T) {
	tr := &fakeTransport{}
	c := newTestClient(t, tr)

	req := NewRequest().Aggregation("bad", "not an object")
	_, err := c.Search(context.Background(), "logs", req)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if len(tr.calls) != 0 {
		t.Error("request must not be sent")
	}
}

func TestSearch_AggregationFailure(t *testing.T) {
	body := `{"took":1,"hits":{"hits":[]},"aggregations":{
		"good":{"buckets":[{"key":"a","doc_count":1}]},
		"bad":{"buckets":[{"key":"a","doc_count":-1}]}
	}}`

	strict := newTestClient(t, &fakeTransport{resp: []byte(body)})
	if _, err := strict.Search(context.Background(), "logs", nil); !errors.Is(err, ErrMalformedField) {
		t.Fatalf("expected ErrMalformedField, got %v", err)
	}

	partial := newTestClient(t, &fakeTransport{resp: []byte(body)}, WithPartialAggregations())
	resp, err := partial.Search(context.Background(), "logs", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp.Aggregations.Get("good"); !ok {
		t.Error("expected good aggregation to survive")
	}
	if !errors.Is(resp.AggregationErrors["bad"], ErrMalformedField) {
		t.Errorf("expected bad aggregation error, got %v", resp.AggregationErrors)
	}
}

func TestSearch_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := &fakeTransport{resp: []byte(`{"took":1,"hits":{"hits":[]}}`)}
	c := newTestClient(t, tr, WithPrometheus(reg))

	_, _ = c.Search(context.Background(), "logs", nil)
	_, _ = c.Search(context.Background(), "", nil)

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "ok")); got != 1 {
		t.Errorf("ok = %f, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("search", "error")); got != 1 {
		t.Errorf("error = %f, want 1", got)
	}

	// A second client on the same registry reuses the collectors.
	if _, err := New(tr, WithPrometheus(reg)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Count tests ---

func TestCount(t *testing.T) {
	tr := &fakeTransport{resp: []byte(`{"count":42,"_shards":{"total":1}}`)}
	c := newTestClient(t, tr)

	n, err := c.Count(context.Background(), "logs", query.Exists("user"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("count = %d, want 42", n)
	}
	if tr.calls[0].path != "/logs/_count" {
		t.Errorf("path = %s", tr.calls[0].path)
	}
	if want := `{"query":{"exists":{"field":"user"}}}`; string(tr.calls[0].body) != want {
		t.Errorf("body = %s, want %s", tr.calls[0].body, want)
	}
}

func TestCount_EmptyQuery(t *testing.T) {
	tr := &fakeTransport{resp: []byte(`{"count":7}`)}
	c := newTestClient(t, tr)

	if _, err := c.Count(context.Background(), "logs", query.Terms("tag")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(tr.calls[0].body) != `{}` {
		t.Errorf("body = %s, want {}", tr.calls[0].body)
	}
}

func TestCount_MissingCount(t *testing.T) {
	c := newTestClient(t, &fakeTransport{resp: []byte(`{}`)})
	if _, err := c.Count(context.Background(), "logs", nil); err == nil {
		t.Fatal("expected error for response without count")
	}
}

// --- DecodeResponse tests ---

func TestDecodeResponse_DepthLimit(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, WithMaxDepth(4))
	deep := `{"hits":{"hits":[{"_source":{"a":{"b":{}}}}]}}`
	if _, err := c.DecodeResponse([]byte(deep)); !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected ErrRecursionLimit, got %v", err)
	}
}

func TestDecodeQuery(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	q, err := c.DecodeQuery([]byte(`{"term":{"user":"kimchy"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !query.Equal(q, query.Term("user", "kimchy")) {
		t.Errorf("unexpected query: %v", q)
	}
}

// --- KnnText tests ---

func TestKnnText(t *testing.T) {
	emb := &fakeEmbedder{vec: []float32{1, 2}}
	c := newTestClient(t, &fakeTransport{}, WithEmbedder(emb))

	q, err := c.KnnText(context.Background(), "v", "red shoes", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, _ := json.Marshal(q)
	if string(data) != `{"knn":{"v":{"vector":[1,2],"k":3}}}` {
		t.Errorf("knn = %s", data)
	}
	if len(emb.texts) != 1 || emb.texts[0] != "red shoes" {
		t.Errorf("embedded texts = %v", emb.texts)
	}
}

func TestKnnText_NotConfigured(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	if _, err := c.KnnText(context.Background(), "v", "x", 3); !errors.Is(err, ErrEmbedderNotConfigured) {
		t.Fatalf("expected ErrEmbedderNotConfigured, got %v", err)
	}
}

func TestKnnText_Validation(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, WithEmbedder(&fakeEmbedder{vec: []float32{1}}))
	tests := []struct {
		name, field, text string
		k                 int64
	}{
		{"no field", "", "x", 1},
		{"blank text", "v", "   ", 1},
		{"zero k", "v", "x", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.KnnText(context.Background(), tc.field, tc.text, tc.k)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestKnnText_EmbedderError(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("boom")}
	c := newTestClient(t, &fakeTransport{}, WithEmbedder(emb))

	_, err := c.KnnText(context.Background(), "v", "x", 3)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected wrapped embedder error, got %v", err)
	}
}

func TestKnnText_EmptyEmbedding(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, WithEmbedder(&fakeEmbedder{}))
	if _, err := c.KnnText(context.Background(), "v", "x", 3); !errors.Is(err, ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
