package ingest

import (
	"context"

	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
)

// Repository persists loaded recipes.
type Repository interface {
	Save(ctx context.Context, rec *domrecipe.Recipe) error
}

// Embedder vectorizes recipe ingredient text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
