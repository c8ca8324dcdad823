package chi

import (
	"context"

	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
	healthuc "github.com/kailas-cloud/cookbook/internal/usecase/health"
)

// RecipeService serves the browsing pages.
type RecipeService interface {
	ListRecent(ctx context.Context) ([]domrecipe.Recipe, error)
	Detail(ctx context.Context, rawID string) (domrecipe.Recipe, error)
	Statistics(ctx context.Context) ([]stats.CuisineCount, error)
}

// SearchService serves ingredient search. It never fails.
type SearchService interface {
	IngredientSearch(ctx context.Context, text string) []result.Result
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
