package searchdsl

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder Embedder

	typedKeys   bool
	partialAggs bool
	maxDepth    int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider used by KnnText.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithTypedKeys requests typed_keys responses, so every aggregation name
// arrives prefixed with its type and buckets decode without guessing.
func WithTypedKeys() Option {
	return optionFunc(func(c *clientConfig) {
		c.typedKeys = true
	})
}

// WithPartialAggregations keeps the aggregations that decode when a
// sibling fails. Failures are reported in Response.AggregationErrors.
func WithPartialAggregations() Option {
	return optionFunc(func(c *clientConfig) {
		c.partialAggs = true
	})
}

// WithMaxDepth lowers the JSON nesting limit applied to responses.
// Default: decode.MaxDepth.
func WithMaxDepth(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxDepth = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
