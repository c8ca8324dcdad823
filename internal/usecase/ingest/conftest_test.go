package ingest

import (
	"context"
	"sync"

	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
)

type mockRepo struct {
	mu     sync.Mutex
	saveFn func(ctx context.Context, rec *domrecipe.Recipe) error
	saved  []domrecipe.Recipe
}

func (m *mockRepo) Save(ctx context.Context, rec *domrecipe.Recipe) error {
	if m.saveFn != nil {
		if err := m.saveFn(ctx, rec); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *rec)
	return nil
}

func (m *mockRepo) byTitle(title string) (domrecipe.Recipe, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.saved {
		if r.Title() == title {
			return r, true
		}
	}
	return domrecipe.Recipe{}, false
}

type mockEmbedder struct {
	mu      sync.Mutex
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	texts   []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.5, 0.5}, TotalTokens: 4}, nil
}
