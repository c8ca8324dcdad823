package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/db"
	dbRedis "github.com/kailas-cloud/cookbook/internal/db/redis"
	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
	"github.com/kailas-cloud/cookbook/internal/repository/embcache"
	reciperepo "github.com/kailas-cloud/cookbook/internal/repository/recipe"
	openaiEmb "github.com/kailas-cloud/cookbook/internal/transport/openai"
	"github.com/kailas-cloud/cookbook/internal/transport/voyage"
	embeddinguc "github.com/kailas-cloud/cookbook/internal/usecase/embedding"
)

// connectStore opens the document store and waits until it answers.
func (a *app) connectStore(ctx context.Context) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Database.Addrs,
		Username: a.cfg.Database.Username,
		Password: a.cfg.Database.Password,
		DB:       a.cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	timeout := time.Duration(a.cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	a.logger.Info("Connected to database", zap.Strings("db_addrs", a.cfg.Database.Addrs))
	return store, nil
}

func (a *app) distance() db.DistanceMetric {
	// Validated by config.Validate.
	m, _ := db.ParseDistance(a.cfg.Index.Distance)
	return m
}

func (a *app) indexManager(store *dbRedis.Store) *reciperepo.IndexManager {
	return reciperepo.NewIndexManager(store, reciperepo.IndexConfig{
		Name:        a.cfg.Index.Name,
		KeyPrefix:   a.cfg.Database.KeyPrefix,
		VectorField: a.cfg.Index.VectorField,
		Dimensions:  a.cfg.Embedding.Dimensions,
		Distance:    a.distance(),
		HNSW: reciperepo.HNSWConfig{
			M:           a.cfg.Index.HNSWM,
			EFConstruct: a.cfg.Index.HNSWEFConstruct,
		},
	}, a.logger)
}

// buildEmbedder assembles the decorator chain for one input type:
// provider -> Breaker -> Cached (store) -> LRU -> Instrumented.
func (a *app) buildEmbedder(inputType domain.InputType, store *dbRedis.Store) domain.Embedder {
	ec := a.cfg.Embedding
	timeout := time.Duration(ec.TimeoutSec) * time.Second

	var embedder domain.Embedder
	switch ec.Provider {
	case "openai":
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Timeout:    timeout,
			Logger:     a.logger,
		})
		// No native input type hint, so the instruction is prepended instead.
		instruction := ec.DocumentInstruction
		if inputType == domain.InputQuery {
			instruction = ec.QueryInstruction
		}
		embedder = domain.NewInstructionEmbedder(base, instruction)
	default:
		embedder = voyage.NewEmbedder(&voyage.Config{
			APIKey:    ec.APIKey,
			BaseURL:   ec.BaseURL,
			Model:     ec.Model,
			InputType: inputType,
			Timeout:   timeout,
			Logger:    a.logger,
		})
	}

	embedder = embeddinguc.NewBreakerEmbedder(embedder, ec.Provider, embeddinguc.BreakerSettings{
		FailureThreshold: ec.Breaker.FailureThreshold,
		OpenTimeout:      time.Duration(ec.Breaker.OpenTimeoutSec) * time.Second,
	}, a.logger)

	if ec.Cache.TTLSec > 0 && store != nil {
		// Query and document vectors differ for the same text.
		prefix := a.cfg.Database.KeyPrefix + string(inputType) + ":"
		embedder = embcache.New(embedder, store, prefix,
			time.Duration(ec.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, a.logger)
	}

	embedder = embeddinguc.NewLRUEmbedder(embedder, ec.Cache.LRUSize)

	return embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, a.logger)
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
