package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cookbook/internal/metrics"
)

const (
	// DefaultWorkers bounds concurrent embedding calls during a load.
	DefaultWorkers = 4
	// maxLineSize is the largest accepted JSON Lines record.
	maxLineSize = 4 << 20
)

// Report summarizes a load run.
type Report struct {
	Loaded  int
	Skipped int
}

// Service loads recipes from JSON Lines, embedding each recipe's ingredients.
type Service struct {
	repo    Repository
	embed   Embedder
	workers int
	logger  *zap.Logger
}

// New creates a loader. embed must be configured for document input.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, workers: DefaultWorkers, logger: logger}
}

// WithWorkers sets the embedding concurrency.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// Load reads r line by line. Lines that fail to parse or embed are logged and
// skipped. A store write failure aborts the run.
func (s *Service) Load(ctx context.Context, r io.Reader) (Report, error) {
	var loaded, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if gctx.Err() != nil {
			break
		}
		data := sc.Bytes()
		if len(data) == 0 {
			continue
		}

		n := lineNo
		line := append([]byte(nil), data...)
		g.Go(func() error {
			ok, err := s.loadLine(gctx, n, line)
			if err != nil {
				return err
			}
			if ok {
				loaded.Add(1)
				metrics.RecipesLoadedTotal.WithLabelValues("loaded").Inc()
			} else {
				skipped.Add(1)
				metrics.RecipesLoadedTotal.WithLabelValues("skipped").Inc()
			}
			return nil
		})
	}

	err := g.Wait()
	report := Report{Loaded: int(loaded.Load()), Skipped: int(skipped.Load())}

	if err != nil {
		return report, err
	}
	if err := sc.Err(); err != nil {
		return report, fmt.Errorf("read line %d: %w", lineNo+1, err)
	}
	if err := ctx.Err(); err != nil {
		return report, err //nolint:wrapcheck // caller's context
	}

	s.logger.Info("Recipes loaded", zap.Int("loaded", report.Loaded), zap.Int("skipped", report.Skipped))
	return report, nil
}

// loadLine returns false for a skipped line and an error only for store failures.
func (s *Service) loadLine(ctx context.Context, lineNo int, data []byte) (bool, error) {
	rec, err := parseLine(data)
	if err != nil {
		s.logger.Warn("Skipping malformed recipe", zap.Int("line", lineNo), zap.Error(err))
		return false, nil
	}

	emb, err := s.embed.Embed(ctx, rec.IngredientText())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false, err //nolint:wrapcheck // aborted run
		}
		s.logger.Warn("Skipping recipe, embedding failed",
			zap.Int("line", lineNo),
			zap.Stringer("id", rec.ID()),
			zap.Error(err),
		)
		return false, nil
	}

	rec = rec.WithEmbedding(emb.Embedding)
	if err := s.repo.Save(ctx, &rec); err != nil {
		return false, fmt.Errorf("save recipe %s (line %d): %w", rec.ID(), lineNo, err)
	}
	return true, nil
}
