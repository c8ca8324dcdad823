package recipe

import (
	"context"
	"fmt"

	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
)

// DefaultTopLimit is the number of recipes on the listing page.
const DefaultTopLimit = 20

// Service serves the read-only recipe pages.
type Service struct {
	repo     Repository
	topLimit int
}

// New creates a recipe service.
func New(repo Repository) *Service {
	return &Service{repo: repo, topLimit: DefaultTopLimit}
}

// WithTopLimit overrides the listing size.
func (s *Service) WithTopLimit(n int) *Service {
	if n > 0 {
		s.topLimit = n
	}
	return s
}

// ListRecent returns the first recipes in ascending title order.
func (s *Service) ListRecent(ctx context.Context) ([]domrecipe.Recipe, error) {
	recipes, err := s.repo.ListByTitle(ctx, s.topLimit)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Detail returns one recipe by its textual identifier. A malformed identifier
// fails with domain.ErrInvalidID before the store is queried.
func (s *Service) Detail(ctx context.Context, rawID string) (domrecipe.Recipe, error) {
	id, err := domrecipe.ParseID(rawID)
	if err != nil {
		return domrecipe.Recipe{}, err //nolint:wrapcheck // typed domain error
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return domrecipe.Recipe{}, fmt.Errorf("get recipe %s: %w", id, err)
	}
	return rec, nil
}

// Statistics returns recipe counts per cuisine, largest first. Recipes without
// a cuisine are counted under stats.Unspecified.
func (s *Service) Statistics(ctx context.Context) ([]stats.CuisineCount, error) {
	rows, err := s.repo.CuisineStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("cuisine statistics: %w", err)
	}
	return rows, nil
}
