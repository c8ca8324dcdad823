package search

import (
	"context"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
)

// Repository defines the storage contract for vector search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, limit, candidates int) ([]result.Result, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
