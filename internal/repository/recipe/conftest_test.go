package recipe

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn   func(ctx context.Context, key, path string, data []byte) error
	jsonGetFn   func(ctx context.Context, key string, paths ...string) ([]byte, error)
	aggregateFn func(ctx context.Context, p *db.Pipeline) (*db.Result, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
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
	return New(ms, "cookbook:", "recipe_vector_index", zap.NewNop()), ms
}
