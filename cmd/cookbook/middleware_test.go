package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/cookbook/internal/domain"
	logpkg "github.com/kailas-cloud/cookbook/internal/logger"
)

type fakePager struct {
	called bool
}

func (p *fakePager) InternalError(w http.ResponseWriter, _ *http.Request) {
	p.called = true
	w.WriteHeader(http.StatusInternalServerError)
}

func TestHTMLRecoverer_RendersErrorPage(t *testing.T) {
	pager := &fakePager{}
	h := htmlRecoverer(pager, zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/top/", nil))

	if !pager.called {
		t.Error("expected error page to be rendered")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestWideEventMiddleware_LogsTokensAndRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	h := chiMiddleware.RequestID(wideEventMiddleware(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logpkg.FromContext(r.Context()).Info("inner")
			domain.UsageFromContext(r.Context()).AddTokens(12)
			w.WriteHeader(http.StatusOK)
		}),
	))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ingredient-search/?query=egg", nil))

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	inner := logs.FilterMessage("inner").All()
	if len(inner) != 1 || inner[0].ContextMap()["request_id"] == nil {
		t.Errorf("expected request-scoped logger with request_id, got %+v", inner)
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 canonical log line, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["embedding_tokens"] != int64(12) {
		t.Errorf("embedding_tokens = %v, want 12", fields["embedding_tokens"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status = %v", fields["status"])
	}
	if fields["path"] != "/ingredient-search/" {
		t.Errorf("path = %v", fields["path"])
	}
}
