package search

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	aggregateFn func(ctx context.Context, p *db.Pipeline) (*db.Result, error)
}

func (m *mockStore) Aggregate(ctx context.Context, p *db.Pipeline) (*db.Result, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, p)
	}
	return &db.Result{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, Config{
		Index:       "recipe_vector_index",
		VectorField: "voyage_embedding",
		KeyPrefix:   "cookbook:recipe:",
	}, zap.NewNop())
	return repo, ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3}
}
