package recipe

import (
	"context"

	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
)

type mockRepo struct {
	getFn   func(ctx context.Context, id domrecipe.ID) (domrecipe.Recipe, error)
	listFn  func(ctx context.Context, limit int) ([]domrecipe.Recipe, error)
	statsFn func(ctx context.Context) ([]stats.CuisineCount, error)
	calls   int
}

func (m *mockRepo) Get(ctx context.Context, id domrecipe.ID) (domrecipe.Recipe, error) {
	m.calls++
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domrecipe.Recipe{}, nil
}

func (m *mockRepo) ListByTitle(ctx context.Context, limit int) ([]domrecipe.Recipe, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockRepo) CuisineStats(ctx context.Context) ([]stats.CuisineCount, error) {
	m.calls++
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return nil, nil
}

func testRecipe(id domrecipe.ID, title string) domrecipe.Recipe {
	return domrecipe.Reconstruct(id, title, []string{"flour", "water"}, "Mix.", domrecipe.Features{"cuisine": "Italian"}, nil)
}
