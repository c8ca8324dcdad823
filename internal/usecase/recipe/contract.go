package recipe

import (
	"context"

	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
)

// Repository defines the storage contract for browsing recipes.
type Repository interface {
	Get(ctx context.Context, id domrecipe.ID) (domrecipe.Recipe, error)
	ListByTitle(ctx context.Context, limit int) ([]domrecipe.Recipe, error)
	CuisineStats(ctx context.Context) ([]stats.CuisineCount, error)
}
