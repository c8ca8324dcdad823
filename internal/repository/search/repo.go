package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/domain/search/query"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
)

// ScoreField is the projected name of the similarity score.
const ScoreField = "score"

// store is the consumer interface for search operations (ISP).
type store interface {
	Aggregate(ctx context.Context, p *db.Pipeline) (*db.Result, error)
}

// Config binds the repository to one vector index.
type Config struct {
	Index       string            // search index name, e.g. recipe_vector_index
	VectorField string            // indexed vector attribute, e.g. voyage_embedding
	Metric      db.DistanceMetric // distance metric the index was created with
	KeyPrefix   string            // document key prefix stripped to recover ids
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	cfg    Config
	logger *zap.Logger
}

// New creates a search repository.
func New(s store, cfg Config, logger *zap.Logger) *Repo {
	if cfg.Metric == "" {
		cfg.Metric = db.DistanceCosine
	}
	return &Repo{store: s, cfg: cfg, logger: logger}
}

// BuildPipeline assembles the two-stage vector search: nearest neighbours over
// the candidate pool, then a projection of the display fields and the score.
func (r *Repo) BuildPipeline(vector []float32, limit, candidates int) *db.Pipeline {
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	if candidates <= 0 {
		candidates = limit * query.DefaultCandidateRatio
	}
	return db.NewPipeline(r.cfg.Index).
		VectorSearch(db.VectorSearch{
			Path:          r.cfg.VectorField,
			QueryVector:   vector,
			NumCandidates: candidates,
			Limit:         limit,
			Metric:        r.cfg.Metric,
		}).
		Project(
			db.Field("title", "$.title"),
			db.Field("ingredients", "$.ingredients"),
			db.Field("instructions", "$.instructions"),
			db.Field("features", "$.features"),
			db.Score(ScoreField),
		)
}

// SearchKNN runs the vector search and formats the hits. Malformed hits are dropped.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, limit, candidates int) ([]result.Result, error) {
	res, err := r.store.Aggregate(ctx, r.BuildPipeline(vector, limit, candidates))
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, fmt.Errorf("search %s: %w: %w", r.cfg.Index, domain.ErrIndexNotFound, err)
		}
		return nil, fmt.Errorf("search %s: %w", r.cfg.Index, err)
	}
	return Format(res.Records, r.cfg.KeyPrefix, r.logger), nil
}
