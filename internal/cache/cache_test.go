package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/internal/db"
)

type mockTransport struct {
	resp  []byte
	err   error
	calls int
}

func (m *mockTransport) Do(_ context.Context, _, _ string, _ []byte) ([]byte, error) {
	m.calls++
	return m.resp, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	ttl    time.Duration
}

func newMockKVStore() *mockKVStore { return &mockKVStore{data: map[string][]byte{}} }

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttl = ttl
	return nil
}

func newTestCache(inner Transport, s store) (*CachedTransport, *prometheus.CounterVec) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	return New(inner, s, 30*time.Second, "searchdsl:", total, zap.NewNop()), total
}

func TestDo_MissThenHit(t *testing.T) {
	inner := &mockTransport{resp: []byte(`{"took":2}`)}
	ms := newMockKVStore()
	c, total := newTestCache(inner, ms)
	ctx := context.Background()

	for range 2 {
		resp, err := c.Do(ctx, "POST", "/logs/_search", []byte(`{"size":0}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp) != `{"took":2}` {
			t.Fatalf("unexpected response: %s", resp)
		}
	}

	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
	if ms.ttl != 30*time.Second {
		t.Errorf("expected ttl 30s, got %v", ms.ttl)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %f, want 1", got)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %f, want 1", got)
	}
}

func TestDo_KeyDependsOnRequest(t *testing.T) {
	inner := &mockTransport{resp: []byte(`{}`)}
	c, _ := newTestCache(inner, newMockKVStore())
	ctx := context.Background()

	_, _ = c.Do(ctx, "POST", "/logs/_search", []byte(`{"size":0}`))
	_, _ = c.Do(ctx, "POST", "/logs/_search", []byte(`{"size":1}`))
	_, _ = c.Do(ctx, "POST", "/other/_search", []byte(`{"size":0}`))

	if inner.calls != 3 {
		t.Errorf("expected 3 inner calls, got %d", inner.calls)
	}

	k := c.cacheKey("POST", "/logs/_search", []byte(`{}`))
	if len(k) != len("searchdsl:resp:")+64 {
		t.Errorf("unexpected key %q", k)
	}
}

func TestDo_NotCacheable(t *testing.T) {
	tests := []struct {
		method, path string
	}{
		{"PUT", "/logs/_doc/1"},
		{"DELETE", "/logs"},
		{"POST", "/logs/_bulk"},
		{"POST", "/logs/_search?scroll=1m"},
	}
	for _, tc := range tests {
		inner := &mockTransport{resp: []byte(`{}`)}
		ms := newMockKVStore()
		c, _ := newTestCache(inner, ms)

		_, _ = c.Do(context.Background(), tc.method, tc.path, nil)
		_, _ = c.Do(context.Background(), tc.method, tc.path, nil)

		if inner.calls != 2 {
			t.Errorf("%s %s: expected pass-through, got %d calls", tc.method, tc.path, inner.calls)
		}
		if len(ms.data) != 0 {
			t.Errorf("%s %s: expected nothing cached", tc.method, tc.path)
		}
	}
}

func TestDo_InnerErrorNotCached(t *testing.T) {
	boom := errors.New("cluster down")
	inner := &mockTransport{err: boom}
	ms := newMockKVStore()
	c, _ := newTestCache(inner, ms)

	_, err := c.Do(context.Background(), "POST", "/logs/_count", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
	if len(ms.data) != 0 {
		t.Error("errors must not be cached")
	}
}

func TestDo_StoreFailuresDegrade(t *testing.T) {
	inner := &mockTransport{resp: []byte(`{"count":1}`)}
	ms := newMockKVStore()
	ms.getErr = errors.New("redis timeout")
	ms.setErr = errors.New("redis timeout")
	c, _ := newTestCache(inner, ms)

	resp, err := c.Do(context.Background(), "GET", "/logs/_count", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp) != `{"count":1}` {
		t.Errorf("unexpected response: %s", resp)
	}
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		method, path string
		want         bool
	}{
		{"POST", "/logs/_search", true},
		{"GET", "/logs/_search?typed_keys=true", true},
		{"POST", "/logs,metrics/_count", true},
		{"POST", "/_search/scroll", false},
		{"HEAD", "/logs/_search", false},
	}
	for _, tc := range tests {
		if got := cacheable(tc.method, tc.path); got != tc.want {
			t.Errorf("cacheable(%s, %s) = %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}
