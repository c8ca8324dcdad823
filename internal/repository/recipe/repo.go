package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
)

// store is the consumer interface for recipes (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Aggregate(ctx context.Context, p *db.Pipeline) (*db.Result, error)
}

// Repo implements usecase/recipe.Repository and usecase/ingest.Repository.
type Repo struct {
	store     store
	keyPrefix string // "<prefix>recipe:"
	index     string
	logger    *zap.Logger
}

// New creates a recipe repository. Recipes live at <prefix>recipe:<hex id>.
func New(s store, prefix, index string, logger *zap.Logger) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: KeyPrefix(prefix),
		index:     index,
		logger:    logger,
	}
}

// KeyPrefix returns the key prefix shared by all recipe documents.
func KeyPrefix(prefix string) string {
	return prefix + "recipe:"
}

// Get returns a recipe by ID.
func (r *Repo) Get(ctx context.Context, id domrecipe.ID) (domrecipe.Recipe, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domrecipe.Recipe{}, domain.ErrRecipeNotFound
		}
		return domrecipe.Recipe{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseDoc(id, raw)
}

// Save stores a recipe document, replacing any existing one.
func (r *Repo) Save(ctx context.Context, rec *domrecipe.Recipe) error {
	data, err := json.Marshal(buildDoc(rec))
	if err != nil {
		return fmt.Errorf("marshal recipe: %w", err)
	}
	key := r.key(rec.ID())
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// ListByTitle returns up to limit recipes ordered by title ascending.
// Records that cannot be decoded are logged and skipped.
func (r *Repo) ListByTitle(ctx context.Context, limit int) ([]domrecipe.Recipe, error) {
	p := db.NewPipeline(r.index).
		Project(
			db.Field("title", "$.title"),
			db.Field("ingredients", "$.ingredients"),
			db.Field("features", "$.features"),
		).
		Sort("title", false).
		Limit(limit)

	res, err := r.store.Aggregate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", mapIndexErr(err))
	}

	recipes := make([]domrecipe.Recipe, 0, len(res.Records))
	for _, rec := range res.Records {
		id, err := domrecipe.ParseID(strings.TrimPrefix(rec.Key, r.keyPrefix))
		if err != nil {
			r.logger.Warn("Skipping recipe with malformed key", zap.String("key", rec.Key))
			continue
		}
		item, err := parseFields(id, rec.Fields)
		if err != nil {
			r.logger.Warn("Skipping malformed recipe", zap.String("key", rec.Key), zap.Error(err))
			continue
		}
		recipes = append(recipes, item)
	}
	return recipes, nil
}

// CuisineStats counts recipes per cuisine, most frequent first.
// Recipes without a cuisine are reported as stats.Unspecified.
func (r *Repo) CuisineStats(ctx context.Context) ([]stats.CuisineCount, error) {
	p := db.NewPipeline(r.index).
		Project(db.Field("cuisine", "$.features.cuisine")).
		Group("cuisine", "count").
		Sort("count", true).
		Project(db.IfNull("cuisine", "", stats.Unspecified), db.Field("count", ""))

	res, err := r.store.Aggregate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("cuisine stats: %w", mapIndexErr(err))
	}

	rows := make([]stats.CuisineCount, 0, len(res.Records))
	for _, rec := range res.Records {
		n, err := strconv.Atoi(rec.Fields["count"])
		if err != nil {
			r.logger.Warn("Skipping cuisine row with bad count",
				zap.String("cuisine", rec.Fields["cuisine"]), zap.Error(err))
			continue
		}
		rows = append(rows, stats.NewCuisineCount(rec.Fields["cuisine"], n))
	}
	return rows, nil
}

func (r *Repo) key(id domrecipe.ID) string {
	return r.keyPrefix + id.String()
}

func mapIndexErr(err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
	}
	return err
}
