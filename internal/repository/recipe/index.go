package recipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
)

// Index attribute aliases used by the list, statistics and search pipelines.
const (
	TitleAttr   = "title"
	CuisineAttr = "cuisine"
)

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// IndexConfig describes the recipe search index.
type IndexConfig struct {
	Name        string
	KeyPrefix   string // global prefix, e.g. "cookbook:"
	VectorField string
	Dimensions  int
	Distance    db.DistanceMetric
	HNSW        HNSWConfig
}

// indexStore is the consumer interface for index lifecycle (ISP).
type indexStore interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// IndexManager creates and drops the recipe search index.
type IndexManager struct {
	store  indexStore
	cfg    IndexConfig
	logger *zap.Logger
}

// NewIndexManager creates an index manager.
func NewIndexManager(s indexStore, cfg IndexConfig, logger *zap.Logger) *IndexManager {
	if cfg.HNSW.M <= 0 {
		cfg.HNSW.M = 16
	}
	if cfg.HNSW.EFConstruct <= 0 {
		cfg.HNSW.EFConstruct = 200
	}
	if cfg.Distance == "" {
		cfg.Distance = db.DistanceCosine
	}
	return &IndexManager{store: s, cfg: cfg, logger: logger}
}

// Definition builds the FT.CREATE definition: JSON documents under the recipe
// prefix, a sortable title, the cuisine tag and the ingredient embedding.
func (m *IndexManager) Definition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(m.cfg.Name).
		OnJSON().
		Prefix(KeyPrefix(m.cfg.KeyPrefix)).
		Text("$.title", db.As(TitleAttr), db.Sortable(true)).
		Tag("$.features.cuisine", db.As(CuisineAttr)).
		VectorHNSW("$."+m.cfg.VectorField, m.cfg.Dimensions, m.cfg.Distance,
			m.cfg.HNSW.M, m.cfg.HNSW.EFConstruct, db.As(m.cfg.VectorField)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index %s: %w", m.cfg.Name, err)
	}
	return def, nil
}

// Ensure creates the index when it does not exist. Returns true if created.
func (m *IndexManager) Ensure(ctx context.Context) (bool, error) {
	def, err := m.Definition()
	if err != nil {
		return false, err
	}

	if err := m.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			m.logger.Debug("Search index already exists", zap.String("index", m.cfg.Name))
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", m.cfg.Name, err)
	}

	m.logger.Info("Search index created", zap.String("index", m.cfg.Name), zap.Stringer("definition", def))
	return true, nil
}

// Drop removes the index. Documents are kept. Returns false if it did not exist.
func (m *IndexManager) Drop(ctx context.Context) (bool, error) {
	if err := m.store.DropIndex(ctx, m.cfg.Name); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("drop index %s: %w", m.cfg.Name, err)
	}
	m.logger.Info("Search index dropped", zap.String("index", m.cfg.Name))
	return true, nil
}

// Exists reports whether the index exists.
func (m *IndexManager) Exists(ctx context.Context) (bool, error) {
	ok, err := m.store.IndexExists(ctx, m.cfg.Name)
	if err != nil {
		return false, fmt.Errorf("index info %s: %w", m.cfg.Name, err)
	}
	return ok, nil
}
