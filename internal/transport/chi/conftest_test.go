package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/search/result"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
	healthuc "github.com/kailas-cloud/cookbook/internal/usecase/health"
)

type mockRecipes struct {
	listFn   func(ctx context.Context) ([]domrecipe.Recipe, error)
	detailFn func(ctx context.Context, rawID string) (domrecipe.Recipe, error)
	statsFn  func(ctx context.Context) ([]stats.CuisineCount, error)
}

func (m *mockRecipes) ListRecent(ctx context.Context) ([]domrecipe.Recipe, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRecipes) Detail(ctx context.Context, rawID string) (domrecipe.Recipe, error) {
	if m.detailFn != nil {
		return m.detailFn(ctx, rawID)
	}
	return domrecipe.Recipe{}, nil
}

func (m *mockRecipes) Statistics(ctx context.Context) ([]stats.CuisineCount, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return nil, nil
}

type mockSearch struct {
	searchFn func(ctx context.Context, text string) []result.Result
	queries  []string
}

func (m *mockSearch) IngredientSearch(ctx context.Context, text string) []result.Result {
	m.queries = append(m.queries, text)
	if m.searchFn != nil {
		return m.searchFn(ctx, text)
	}
	return []result.Result{}
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	return m.report
}

type testDeps struct {
	recipes *mockRecipes
	search  *mockSearch
	health  *mockHealth
}

func newTestRouter(t *testing.T) (http.Handler, *testDeps) {
	t.Helper()

	render, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	deps := &testDeps{
		recipes: &mockRecipes{},
		search:  &mockSearch{},
		health:  &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
	srv := NewServer(deps.recipes, deps.search, deps.health, render, zap.NewNop())
	h := HandlerWithOptions(srv, ChiServerOptions{
		NotFound:         srv.NotFound,
		ErrorHandlerFunc: srv.BadRequest,
	})
	return h, deps
}

func doGet(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
