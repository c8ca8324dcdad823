package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
	reciperepo "github.com/kailas-cloud/cookbook/internal/repository/recipe"
	searchrepo "github.com/kailas-cloud/cookbook/internal/repository/search"
	chiTransport "github.com/kailas-cloud/cookbook/internal/transport/chi"
	"github.com/kailas-cloud/cookbook/internal/version"
	healthuc "github.com/kailas-cloud/cookbook/internal/usecase/health"
	recipeuc "github.com/kailas-cloud/cookbook/internal/usecase/recipe"
	searchuc "github.com/kailas-cloud/cookbook/internal/usecase/search"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	logger.Info("Starting cookbook server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.Embedding.Provider),
	)

	store, err := a.connectStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	if cfg.Index.AutoCreate {
		if _, err := a.indexManager(store).Ensure(ctx); err != nil {
			// Pages degrade until the index shows up.
			logger.Error("Failed to create search index", zap.Error(err))
		}
	}

	queryEmbedder := a.buildEmbedder(domain.InputQuery, store)
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	recipeRepo := reciperepo.New(store, cfg.Database.KeyPrefix, cfg.Index.Name, logger)
	searchRepo := searchrepo.New(store, searchrepo.Config{
		Index:       cfg.Index.Name,
		VectorField: cfg.Index.VectorField,
		Metric:      a.distance(),
		KeyPrefix:   reciperepo.KeyPrefix(cfg.Database.KeyPrefix),
	}, logger)

	recipeSvc := recipeuc.New(recipeRepo).WithTopLimit(cfg.Search.TopLimit)
	searchSvc := searchuc.New(searchRepo, queryEmbedder, logger).
		WithLimits(cfg.Search.Limit, cfg.Search.CandidateRatio)
	healthSvc := healthuc.New(store, store, cfg.Index.Name, newEmbeddingHealthChecker(queryEmbedder))

	render, err := chiTransport.NewRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	server := chiTransport.NewServer(recipeSvc, searchSvc, healthSvc, render, logger)

	var searchMiddlewares []chiTransport.MiddlewareFunc
	if cfg.HTTP.SearchRateLimit > 0 {
		searchMiddlewares = append(searchMiddlewares,
			httprate.LimitByIP(cfg.HTTP.SearchRateLimit, time.Minute))
	}

	r := chi.NewRouter()
	r.Use(htmlRecoverer(server, logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:        r,
		SearchMiddlewares: searchMiddlewares,
		NotFound:          server.NotFound,
		ErrorHandlerFunc:  server.BadRequest,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
