package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cookbook/internal/domain"
	domrecipe "github.com/kailas-cloud/cookbook/internal/domain/recipe"
	"github.com/kailas-cloud/cookbook/internal/domain/stats"
	"github.com/kailas-cloud/cookbook/internal/logger"
	healthuc "github.com/kailas-cloud/cookbook/internal/usecase/health"
)

// IndexMessage is the landing page headline.
const IndexMessage = "Recipes App"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, err error) bool

// Server implements ServerInterface with server-rendered HTML pages.
type Server struct {
	recipes       RecipeService
	search        SearchService
	health        HealthService
	render        *Renderer
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates the HTTP server.
func NewServer(
	recipes RecipeService,
	search SearchService,
	health HealthService,
	render *Renderer,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recipes: recipes,
		search:  search,
		health:  health,
		render:  render,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		s.invalidIDHandler,
		s.sentinelHandler(domain.ErrRecipeNotFound, http.StatusNotFound, "404.html", "Recipe not found"),
	}
	return s
}

// Index handles GET /.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusOK, "index.html", map[string]any{
		"title":   IndexMessage,
		"message": IndexMessage,
	})
}

// TopRecipes handles GET /top/.
func (s *Server) TopRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.ListRecent(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if recipes == nil {
		recipes = []domrecipe.Recipe{}
	}

	s.page(w, r, http.StatusOK, "top_recipes.html", map[string]any{
		"title":   "Recipes",
		"recipes": recipes,
	})
}

// RecipeDetail handles GET /recipe/{id}/.
func (s *Server) RecipeDetail(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := s.recipes.Detail(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.page(w, r, http.StatusOK, "recipe_detail.html", map[string]any{
		"title":  rec.Title(),
		"recipe": rec,
	})
}

// Statistics handles GET /stats/.
func (s *Server) Statistics(w http.ResponseWriter, r *http.Request) {
	rows, err := s.recipes.Statistics(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if rows == nil {
		rows = []stats.CuisineCount{}
	}

	s.page(w, r, http.StatusOK, "statistics.html", map[string]any{
		"title":         "Statistics",
		"cuisine_stats": rows,
		"total":         stats.Total(rows),
	})
}

// IngredientSearch handles GET /ingredient-search/. Always 200.
func (s *Server) IngredientSearch(w http.ResponseWriter, r *http.Request, params IngredientSearchParams) {
	query := ""
	if params.Query != nil {
		query = *params.Query
	}

	ctx := r.Context()
	usage := domain.UsageFromContext(ctx)
	if usage == nil {
		ctx, usage = domain.NewContextWithUsage(ctx)
	}

	results := s.search.IngredientSearch(ctx, query)

	setEmbeddingHeaders(w, usage)
	s.page(w, r, http.StatusOK, "vector_search.html", map[string]any{
		"title":   "Search by ingredients",
		"query":   query,
		"results": results,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NotFound renders the 404 page for unknown routes.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusNotFound, "404.html", map[string]any{
		"title":   "Not found",
		"message": "Page not found",
	})
}

// BadRequest renders parameter binding failures.
func (s *Server) BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context(), s.logger).Warn("Invalid request parameter", zap.Error(err))
	s.page(w, r, http.StatusBadRequest, "400.html", map[string]any{
		"title":   "Bad request",
		"message": "Invalid request",
	})
}

// InternalError renders the generic 500 page.
func (s *Server) InternalError(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, http.StatusInternalServerError, "500.html", map[string]any{
		"title":   "Error",
		"message": "Internal error",
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := s.render.Render(w, status, name, data); err != nil {
		logger.FromContext(r.Context(), s.logger).Error("Template rendering failed",
			zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// invalidIDHandler answers a malformed identifier with 404 naming the input.
func (s *Server) invalidIDHandler(w http.ResponseWriter, r *http.Request, err error) bool {
	var ide *domrecipe.InvalidIDError
	if !errors.As(err, &ide) {
		return false
	}
	s.page(w, r, http.StatusNotFound, "404.html", map[string]any{
		"title":   "Not found",
		"message": fmt.Sprintf("Invalid recipe ID format: %s", ide.Input),
	})
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func (s *Server) sentinelHandler(sentinel error, status int, tmpl, msg string) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		s.page(w, r, status, tmpl, map[string]any{
			"title":   http.StatusText(status),
			"message": msg,
		})
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, r, err) {
			log.Debug("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	s.InternalError(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
