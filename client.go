package searchdsl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchdsl/decode"
	"github.com/kailas-cloud/searchdsl/internal/domain"
	"github.com/kailas-cloud/searchdsl/query"
)

// Transport sends one request to the cluster and returns the body of a
// successful reply. Implementations own retries, authentication and
// status handling; a non-2xx reply should surface as an error wrapping
// ErrStatus.
type Transport interface {
	Do(ctx context.Context, method, path string, body []byte) ([]byte, error)
}

// EmbeddingResult is a vector produced by an Embedder.
type EmbeddingResult = domain.EmbeddingResult

// Embedder turns text into a vector for knn queries.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Client is the searchdsl SDK entry point.
type Client struct {
	transport   Transport
	embedder    Embedder
	typedKeys   bool
	partialAggs bool
	decodeOpts  []decode.Option
	obs         *observer
}

// New creates a Client that sends requests through transport.
func New(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.New("searchdsl: transport is required")
	}
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		transport:   transport,
		embedder:    cfg.embedder,
		typedKeys:   cfg.typedKeys,
		partialAggs: cfg.partialAggs,
		obs:         obs,
	}
	if cfg.maxDepth > 0 {
		c.decodeOpts = []decode.Option{decode.WithMaxDepth(cfg.maxDepth)}
	}
	return c, nil
}

// Search runs req against index, which may be a comma separated list or
// a pattern. A nil req matches all documents.
func (c *Client) Search(ctx context.Context, index string, req *Request) (resp *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err, zap.String("index", index)) }()

	if req == nil {
		req = NewRequest()
	}
	path, err := indexPath(index, "_search")
	if err != nil {
		return nil, err
	}
	if c.typedKeys {
		path += "?typed_keys=true"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	data, err := c.transport.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", index, err)
	}
	return c.DecodeResponse(data)
}

// Count returns the number of documents in index matching q. An empty q
// counts every document.
func (c *Client) Count(ctx context.Context, index string, q query.Clause) (n int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err, zap.String("index", index)) }()

	path, err := indexPath(index, "_count")
	if err != nil {
		return 0, err
	}
	body := []byte(`{}`)
	if nq, ok := query.FromNonEmpty(q); ok {
		if body, err = json.Marshal(map[string]query.Query{"query": nq}); err != nil {
			return 0, fmt.Errorf("encode count request: %w", err)
		}
	}

	data, err := c.transport.Do(ctx, http.MethodPost, path, body)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", index, err)
	}
	var out struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	if out.Count == nil {
		return 0, errors.New("decode count response: missing count")
	}
	return *out.Count, nil
}

// DecodeResponse decodes a raw search response with the client's decode
// settings.
func (c *Client) DecodeResponse(data []byte) (*Response, error) {
	resp, err := decodeResponse(data, c.partialAggs, c.decodeOpts...)
	if err != nil {
		return nil, err
	}
	for name, aerr := range resp.AggregationErrors {
		c.obs.logger.Warn("aggregation skipped", zap.String("aggregation", name), zap.Error(aerr))
	}
	return resp, nil
}

// DecodeQuery decodes a query clause with the client's decode settings.
func (c *Client) DecodeQuery(data []byte) (query.Query, error) {
	return query.Decode(data, c.decodeOpts...)
}

// DecodeRequest decodes a search request body with the client's decode
// settings.
func (c *Client) DecodeRequest(data []byte) (*Request, error) {
	return DecodeRequest(data, c.decodeOpts...)
}

// KnnText embeds text and returns a knn clause over field asking for the
// k nearest neighbours.
func (c *Client) KnnText(ctx context.Context, field, text string, k int64) (q query.KnnQuery, err error) {
	start := time.Now()
	defer func() { c.obs.observe("knn_text", start, err, zap.String("field", field)) }()

	if c.embedder == nil {
		return query.KnnQuery{}, ErrEmbedderNotConfigured
	}
	switch {
	case field == "":
		return query.KnnQuery{}, fmt.Errorf("%w: knn field is required", ErrInvalidRequest)
	case strings.TrimSpace(text) == "":
		return query.KnnQuery{}, fmt.Errorf("%w: knn text is required", ErrInvalidRequest)
	case k <= 0:
		return query.KnnQuery{}, fmt.Errorf("%w: knn k must be positive, got %d", ErrInvalidRequest, k)
	}

	res, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return query.KnnQuery{}, fmt.Errorf("embed knn text: %w", err)
	}
	if len(res.Embedding) == 0 {
		return query.KnnQuery{}, fmt.Errorf("%w: empty embedding", ErrEmbeddingProviderError)
	}
	return query.Knn(field, res.Embedding, k), nil
}

// invalidIndexChars may not appear in an index name or search target.
// Commas and wildcards stay allowed for multi-index targets.
const invalidIndexChars = "/\\?#\"<>| %"

func indexPath(index, endpoint string) (string, error) {
	index = strings.TrimSpace(index)
	if index == "" {
		return "", fmt.Errorf("%w: index is required", ErrInvalidRequest)
	}
	if strings.ContainsAny(index, invalidIndexChars) {
		return "", fmt.Errorf("%w: invalid index name %q", ErrInvalidRequest, index)
	}
	return "/" + index + "/" + endpoint, nil
}
