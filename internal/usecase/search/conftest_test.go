package search

import (
	"context"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
)

type mockRepo struct {
	searchFn func(ctx context.Context, vector []float32, limit, candidates int) ([]result.Result, error)
	called   bool
}

func (m *mockRepo) SearchKNN(ctx context.Context, vector []float32, limit, candidates int) ([]result.Result, error) {
	m.called = true
	if m.searchFn != nil {
		return m.searchFn(ctx, vector, limit, candidates)
	}
	return nil, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}, nil
}

func testResult(id, title string, score float64) result.Result {
	return result.New(id, title, []string{"tomato"}, "", recipe.Features{}, score)
}
