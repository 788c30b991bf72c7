// Package cluster sends search requests to an OpenSearch cluster through
// the opensearch-go transport.
package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/internal/domain"
	"github.com/kailas-cloud/searchdsl/internal/logger"
	"github.com/kailas-cloud/searchdsl/internal/metrics"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultBackoff    = 100 * time.Millisecond
	maxBackoff        = 5 * time.Second
	jitterFraction    = 0.2
	maxErrorBodyBytes = 64 << 10
)

// Config holds the cluster connection settings.
type Config struct {
	// Addrs are base URLs such as https://search-1:9200. The opensearch-go
	// connection pool rotates over them, and a retry moves to the next one.
	Addrs    []string
	Username string
	Password string
	// Timeout bounds a single attempt.
	Timeout time.Duration
	// MaxRetries is the number of extra attempts after a retryable failure.
	MaxRetries int
	Backoff    time.Duration
	// Transport replaces http.DefaultTransport under the opensearch client.
	Transport http.RoundTripper
	Logger    *zap.Logger
}

// Client implements the searchdsl transport contract over opensearch-go.
// Retries stay here rather than in the library so each one is logged and
// counted per endpoint.
type Client struct {
	os         *opensearch.Client
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a cluster client.
func New(cfg Config) (*Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cluster: addrs is required")
	}
	addrs := make([]string, len(cfg.Addrs))
	for i, a := range cfg.Addrs {
		addrs[i] = strings.TrimRight(a, "/")
	}

	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses:    addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		Transport:    cfg.Transport,
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cluster: create opensearch client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		os:         osClient,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     log,
		sleep:      sleepContext,
	}, nil
}

// Do sends body to path and returns the response body of a 2xx reply.
// Non-2xx replies become *domain.StatusError; connection failures wrap
// domain.ErrTransport. 429, 502, 503, 504 and connection failures are
// retried with jittered exponential backoff.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	endpoint := endpointLabel(path)
	opaqueID := uuid.NewString()
	log := logger.FromContextOr(ctx, c.logger).With(
		zap.String("opaque_id", opaqueID),
		zap.String("endpoint", endpoint),
	)

	start := time.Now()
	var (
		resp []byte
		err  error
	)
	for attempt := 0; ; attempt++ {
		resp, err = c.attempt(ctx, method, path, body, opaqueID)
		if err == nil || attempt >= c.maxRetries || !retryable(err) || ctx.Err() != nil {
			break
		}
		delay := c.delay(attempt)
		metrics.ClusterRetriesTotal.WithLabelValues(endpoint).Inc()
		log.Warn("cluster request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.maxRetries),
			zap.Duration("next_delay", delay),
			zap.Error(err),
		)
		if serr := c.sleep(ctx, delay); serr != nil {
			err = fmt.Errorf("%w: retry aborted: %w", domain.ErrTransport, serr)
			break
		}
	}

	metrics.ClusterRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.ClusterRequestsTotal.WithLabelValues(endpoint, outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	log.Debug("cluster request completed", zap.Duration("latency", time.Since(start)))
	return resp, nil
}

// Ping reports whether the cluster answers its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.Do(ctx, http.MethodGet, "/_cluster/health", nil); err != nil {
		return fmt.Errorf("cluster ping: %w", err)
	}
	return nil
}

// attempt performs one request. The path is relative; the opensearch-go
// pool fills in the node's scheme and host and sets basic auth.
func (c *Client) attempt(ctx context.Context, method, path string, body []byte, opaqueID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Opaque-Id", opaqueID)

	resp, err := c.os.Perform(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, statusError(resp.StatusCode, raw)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}
	return data, nil
}

// statusError extracts the cluster's error type and reason when the body
// carries them.
func statusError(code int, body []byte) *domain.StatusError {
	se := &domain.StatusError{Code: code, Body: body}
	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil || len(parsed.Error) == 0 {
		return se
	}
	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(parsed.Error, &detail) == nil {
		se.Type, se.Reason = detail.Type, detail.Reason
		return se
	}
	var reason string
	if json.Unmarshal(parsed.Error, &reason) == nil {
		se.Reason = reason
	}
	return se
}

func retryable(err error) bool {
	var se *domain.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, domain.ErrTransport)
}

func (c *Client) delay(attempt int) time.Duration {
	backoff := float64(c.backoff) * math.Pow(2, float64(attempt))
	backoff += backoff * jitterFraction * (2*rand.Float64() - 1)
	return time.Duration(min(backoff, float64(maxBackoff)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrStatus):
		return "status_error"
	default:
		return "transport_error"
	}
}

// endpointLabel reduces a request path to its API endpoint so index names
// stay out of metric labels: /logs-2024/_search?typed_keys=true -> _search.
func endpointLabel(path string) string {
	path, _, _ = strings.Cut(path, "?")
	for _, seg := range strings.Split(path, "/") {
		if strings.HasPrefix(seg, "_") {
			return seg
		}
	}
	return "other"
}
