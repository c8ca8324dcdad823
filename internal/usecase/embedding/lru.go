package embedding

import (
	"context"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
)

// DefaultLRUSize is the default number of query embeddings kept in memory.
const DefaultLRUSize = 1000

// LRUEmbedder keeps recent embeddings in process memory in front of the
// store-backed cache. Popular ingredient searches never leave the process.
type LRUEmbedder struct {
	inner domain.Embedder
	cache *lru.Cache[string, []float32]
}

// NewLRUEmbedder wraps inner with an in-process LRU keyed by the exact text.
func NewLRUEmbedder(inner domain.Embedder, size int) *LRUEmbedder {
	if size <= 0 {
		size = DefaultLRUSize
	}
	cache, _ := lru.New[string, []float32](size) // only errors on size <= 0
	return &LRUEmbedder{inner: inner, cache: cache}
}

// Embed returns a remembered vector or calls the inner embedder.
// Hits report zero tokens.
func (c *LRUEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if vec, ok := c.cache.Get(text); ok {
		metrics.EmbeddingLRUTotal.WithLabelValues("hit").Inc()
		return domain.EmbeddingResult{Embedding: slices.Clone(vec)}, nil
	}
	metrics.EmbeddingLRUTotal.WithLabelValues("miss").Inc()

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // transparent decorator
	}
	c.cache.Add(text, slices.Clone(res.Embedding))
	return res, nil
}

func (c *LRUEmbedder) size() int {
	return c.cache.Len()
}

// HealthCheck proxies to the inner embedder when it supports health checks.
func (c *LRUEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
