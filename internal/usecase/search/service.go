package search

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/search/query"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
	"github.com/kailas-cloud/cookbook/internal/logger"
	"github.com/kailas-cloud/cookbook/internal/metrics"
)

// Service runs ingredient searches. It never fails: a blank query or any
// embedding or store error yields an empty result list.
type Service struct {
	repo       Repository
	embed      Embedder
	limit      int
	candidates int
	logger     *zap.Logger
}

// New creates a search service with the default limit and candidate pool.
func New(repo Repository, embed Embedder, log *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		embed:  embed,
		limit:  query.DefaultLimit,
		logger: log,
	}
}

// WithLimits overrides the result limit and the candidate ratio.
func (s *Service) WithLimits(limit, candidateRatio int) *Service {
	if limit > 0 {
		s.limit = limit
	}
	if candidateRatio > 0 {
		s.candidates = s.limit * candidateRatio
	}
	return s
}

// IngredientSearch embeds "Ingredients: <text>" and returns the nearest recipes.
func (s *Service) IngredientSearch(ctx context.Context, text string) []result.Result {
	if query.IsBlank(text) {
		metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchEmptyQuery).Inc()
		return []result.Result{}
	}

	log := logger.FromContext(ctx, s.logger)

	q, err := query.New(text, s.limit, s.candidates)
	if err != nil {
		log.Warn("Rejected search query", zap.Error(err))
		return s.degraded()
	}

	emb, err := s.embed.Embed(ctx, recipe.IngredientsLabel+q.Text())
	if err != nil {
		log.Error("Query embedding failed", zap.String("query", q.Text()), zap.Error(err))
		return s.degraded()
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	results, err := s.repo.SearchKNN(ctx, emb.Embedding, q.Limit(), q.Candidates())
	if err != nil {
		level := log.Error
		if errors.Is(err, domain.ErrIndexNotFound) {
			level = log.Warn
		}
		level("Vector search failed", zap.String("query", q.Text()), zap.Error(err))
		return s.degraded()
	}
	if results == nil {
		results = []result.Result{}
	}

	metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchOK).Inc()
	metrics.SearchResults.Observe(float64(len(results)))
	return results
}

func (s *Service) degraded() []result.Result {
	metrics.SearchRequestsTotal.WithLabelValues(metrics.SearchDegraded).Inc()
	return []result.Result{}
}
