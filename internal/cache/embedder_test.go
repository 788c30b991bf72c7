package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	calls     int
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

func newTestEmbedder(inner domain.Embedder, s store) (*CachedEmbedder, *prometheus.CounterVec) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_embedding_cache_total"}, []string{"result"})
	return NewEmbedder(inner, s, time.Hour, "searchdsl:", "m1", total, zap.NewNop()), total
}

func TestCachedEmbedder_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ms := newMockKVStore()
	ce, total := newTestEmbedder(inner, ms)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "red shoes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10 on miss, got %d", first.TotalTokens)
	}
	if ms.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ms.ttl)
	}
	for key := range ms.data {
		if !strings.HasPrefix(key, "searchdsl:emb:m1:") {
			t.Errorf("unexpected key %q", key)
		}
	}

	second, err := ce.Embed(ctx, "red shoes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected one provider call, got %d", inner.calls)
	}
	if len(second.Embedding) != 3 || second.Embedding[1] != 0.2 || second.TotalTokens != 0 {
		t.Fatalf("unexpected cached result: %+v", second)
	}

	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}

func TestCachedEmbedder_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ms := newMockKVStore()
	ce, _ := newTestEmbedder(inner, ms)

	if _, err := ce.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.data) != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestCachedEmbedder_StoreFailuresDegrade(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ms := newMockKVStore()
	ms.getErr = errors.New("conn refused")
	ms.setErr = errors.New("conn refused")
	ce, _ := newTestEmbedder(inner, ms)

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("store failures must not fail embedding: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCachedEmbedder_CorruptEntry(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ms := newMockKVStore()
	ce, _ := newTestEmbedder(inner, ms)
	ms.data[ce.cacheKey("x")] = []byte{1, 2, 3}

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(res.Embedding) != 2 {
		t.Fatalf("corrupt entry should fall through to the provider, got %+v", res)
	}
}

func TestCachedEmbedder_HealthCheck(t *testing.T) {
	inner := &mockEmbedder{healthErr: errors.New("down")}
	ce, _ := newTestEmbedder(inner, newMockKVStore())
	if err := ce.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected inner health error")
	}
}

func TestVectorBytes(t *testing.T) {
	in := []float32{-1.5, 0, 3.25}
	out, err := bytesToVector(vectorToBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], in[i])
		}
	}
}
