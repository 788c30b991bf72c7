// Package cache memoizes read-only cluster responses in a key-value store.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/internal/db"
	"github.com/kailas-cloud/searchdsl/internal/logger"
)

// Transport is the wrapped cluster transport.
type Transport interface {
	Do(ctx context.Context, method, path string, body []byte) ([]byte, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedTransport decorates a cluster transport with a response cache for
// _search and _count requests. Other requests pass through untouched, and
// store failures degrade to uncached calls.
type CachedTransport struct {
	inner      Transport
	store      store
	ttl        time.Duration
	prefix     string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Transport,
	s store,
	ttl time.Duration,
	prefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedTransport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedTransport{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		prefix:     prefix + "resp:",
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Do returns a cached response for cacheable requests or calls the inner
// transport. Only successful responses are cached.
func (c *CachedTransport) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	if !cacheable(method, path) {
		return c.inner.Do(ctx, method, path, body) //nolint:wrapcheck // transparent decorator
	}

	key := c.cacheKey(method, path, body)
	log := logger.FromContextOr(ctx, c.logger)

	if data, ok := c.getFromCache(ctx, log, key); ok {
		c.incCache("hit")
		return data, nil
	}
	c.incCache("miss")

	data, err := c.inner.Do(ctx, method, path, body)
	if err != nil {
		return nil, fmt.Errorf("cached transport: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		log.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}

func (c *CachedTransport) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedTransport) cacheKey(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return c.prefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedTransport) getFromCache(ctx context.Context, log *zap.Logger, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			log.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

// cacheable reports whether the request only reads: a GET or POST to a
// _search or _count endpoint. Scroll searches open server-side state and
// are never cached.
func cacheable(method, path string) bool {
	if method != "GET" && method != "POST" {
		return false
	}
	path, query, _ := strings.Cut(path, "?")
	if strings.Contains(query, "scroll=") {
		return false
	}
	return strings.HasSuffix(path, "/_search") || strings.HasSuffix(path, "/_count")
}
