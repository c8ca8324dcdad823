package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
)

// BreakerSettings configures the provider circuit breaker.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a probe request.
	OpenTimeout time.Duration
}

// BreakerEmbedder fails fast while the embedding provider is known to be down.
type BreakerEmbedder struct {
	inner    domain.Embedder
	cb       *gobreaker.CircuitBreaker[domain.EmbeddingResult]
	provider string
	logger   *zap.Logger
}

// NewBreakerEmbedder wraps inner with a consecutive-failure circuit breaker.
func NewBreakerEmbedder(inner domain.Embedder, provider string, s BreakerSettings, logger *zap.Logger) *BreakerEmbedder {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	metrics.EmbeddingBreakerState.WithLabelValues(provider).Set(0)

	cb := gobreaker.NewCircuitBreaker[domain.EmbeddingResult](gobreaker.Settings{
		Name:        "embedding-" + provider,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// A canceled client request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.EmbeddingBreakerState.WithLabelValues(provider).Set(stateValue(to))
		},
	})

	return &BreakerEmbedder{inner: inner, cb: cb, provider: provider, logger: logger}
}

// Embed runs the inner embedder through the breaker. An open circuit returns
// domain.ErrEmbeddingProviderError without calling the provider.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := b.cb.Execute(func() (domain.EmbeddingResult, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
		}
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // inner error already wrapped
	}
	return res, nil
}

func (b *BreakerEmbedder) state() gobreaker.State {
	return b.cb.State()
}

// HealthCheck reports an open circuit as unhealthy, otherwise proxies to the inner embedder.
func (b *BreakerEmbedder) HealthCheck(ctx context.Context) error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, gobreaker.ErrOpenState)
	}
	if hc, ok := b.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
