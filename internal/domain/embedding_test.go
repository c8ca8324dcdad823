package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	return s.result, s.err
}

type healthyStub struct {
	stubEmbedder
	healthErr error
}

func (h *healthyStub) HealthCheck(context.Context) error { return h.healthErr }

func TestInstructionEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewInstructionEmbedder(inner, "Represent the query for retrieving recipes: ")

	result, err := emb.Embed(context.Background(), "Ingredients: chicken")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "Represent the query for retrieving recipes: Ingredients: chicken" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestInstructionEmbedder_ErrorPropagation(t *testing.T) {
	inner := &stubEmbedder{err: ErrEmbeddingProviderError}
	emb := NewInstructionEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, ErrEmbeddingProviderError) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestInstructionEmbedder_EmptyInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.5}}}
	emb := NewInstructionEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "test" {
		t.Errorf("expected 'test', got %q", inner.got)
	}
}

func TestInstructionEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	emb := NewInstructionEmbedder(&healthyStub{healthErr: down}, "q: ")
	if err := emb.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Errorf("expected inner health error, got %v", err)
	}

	plain := NewInstructionEmbedder(&stubEmbedder{}, "q: ")
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected nil for embedder without health check, got %v", err)
	}
}

func TestInputType_IsValid(t *testing.T) {
	tests := []struct {
		in   InputType
		want bool
	}{
		{InputQuery, true},
		{InputDocument, true},
		{"", false},
		{"passage", false},
	}
	for _, tc := range tests {
		if got := tc.in.IsValid(); got != tc.want {
			t.Errorf("InputType(%q).IsValid() = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestEmbeddingUsage_Context(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())
	UsageFromContext(ctx).AddTokens(7)

	if usage.TotalTokens != 7 || !usage.Used {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestEmbeddingUsage_NilSafe(t *testing.T) {
	// No collector in context: AddTokens must not panic.
	UsageFromContext(context.Background()).AddTokens(3)
}
