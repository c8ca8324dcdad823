package voyage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	"github.com/kailas-cloud/cookbook/internal/metrics"
)

const (
	// DefaultBaseURL is the public Voyage AI API.
	DefaultBaseURL = "https://api.voyageai.com/v1"
	providerName   = "voyage"
	// maxErrorBody caps how much of an error response is read into the message.
	maxErrorBody = 4 << 10
)

// Config holds the Voyage client settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	InputType domain.InputType
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Embedder calls the Voyage AI embeddings endpoint with a fixed input type.
type Embedder struct {
	http      *http.Client
	apiKey    string
	url       string
	model     string
	inputType domain.InputType
	logger    *zap.Logger
}

// NewEmbedder creates a Voyage embedding provider. One instance serves one
// input type; create a query and a document embedder separately.
func NewEmbedder(cfg *Config) *Embedder {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Embedder{
		http:      &http.Client{Timeout: timeout},
		apiKey:    cfg.APIKey,
		url:       strings.TrimRight(base, "/") + "/embeddings",
		model:     cfg.Model,
		inputType: cfg.InputType,
		logger:    cfg.Logger,
	}
}

type embedRequest struct {
	Input     []string `json:"input"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	body, err := json.Marshal(embedRequest{
		Input:     []string{text},
		Model:     e.model,
		InputType: string(e.inputType),
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.EmbeddingResult{}, fmt.Errorf("embedding request: %w", err)
		}
		e.fail("transport_error")
		return domain.EmbeddingResult{}, fmt.Errorf("embedding request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.fail("api_error")
		return domain.EmbeddingResult{}, apiError(resp)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		e.fail("decode_error")
		return domain.EmbeddingResult{}, fmt.Errorf("decode response: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		e.fail("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())
	if out.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(providerName, e.model, "total").Add(float64(out.Usage.TotalTokens))
	}

	e.logger.Debug("Embedding API call",
		zap.String("provider", providerName),
		zap.String("input_type", string(e.inputType)),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)

	return domain.EmbeddingResult{
		Embedding:   out.Data[0].Embedding,
		TotalTokens: out.Usage.TotalTokens,
	}, nil
}

// HealthCheck reports a missing credential. Voyage has no free endpoint to probe.
func (e *Embedder) HealthCheck(_ context.Context) error {
	if e.apiKey == "" {
		return fmt.Errorf("voyage api key is not configured: %w", domain.ErrEmbeddingProviderError)
	}
	return nil
}

func (e *Embedder) fail(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, kind).Inc()
}

// apiError extracts the "detail" message from an error response.
func apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var parsed struct {
		Detail string `json:"detail"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &parsed) == nil && parsed.Detail != "" {
		msg = parsed.Detail
	}
	return fmt.Errorf("embedding API error %d: %s: %w", resp.StatusCode, msg, domain.ErrEmbeddingProviderError)
}
