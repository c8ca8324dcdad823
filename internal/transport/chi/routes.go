package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// IngredientSearchParams defines parameters for IngredientSearch.
type IngredientSearchParams struct {
	// Query is the free-text ingredient list. Absent and empty are equivalent.
	Query *string `form:"query,omitempty" json:"query,omitempty"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// Landing page
	// (GET /)
	Index(w http.ResponseWriter, r *http.Request)
	// First recipes by title
	// (GET /top/)
	TopRecipes(w http.ResponseWriter, r *http.Request)
	// One recipe
	// (GET /recipe/{id}/)
	RecipeDetail(w http.ResponseWriter, r *http.Request, id string)
	// Recipe counts per cuisine
	// (GET /stats/)
	Statistics(w http.ResponseWriter, r *http.Request)
	// Semantic search over ingredients
	// (GET /ingredient-search/)
	IngredientSearch(w http.ResponseWriter, r *http.Request, params IngredientSearchParams)
	// Component health
	// (GET /healthz)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// Prometheus metrics
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps a single operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper converts raw requests to typed handler calls.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	// SearchMiddlewares apply to the ingredient search operation only.
	SearchMiddlewares []MiddlewareFunc
	ErrorHandlerFunc  func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) wrap(h http.Handler, extra ...MiddlewareFunc) http.Handler {
	for _, m := range extra {
		h = m(h)
	}
	for _, m := range siw.HandlerMiddlewares {
		h = m(h)
	}
	return h
}

// Index operation middleware.
func (siw *ServerInterfaceWrapper) Index(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Index)).ServeHTTP(w, r)
}

// TopRecipes operation middleware.
func (siw *ServerInterfaceWrapper) TopRecipes(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.TopRecipes)).ServeHTTP(w, r)
}

// RecipeDetail operation middleware.
func (siw *ServerInterfaceWrapper) RecipeDetail(w http.ResponseWriter, r *http.Request) {
	var id string

	raw := chi.URLParam(r, "id")
	err := runtime.BindStyledParameterWithOptions("simple", "id", raw, &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		// An id that does not even unescape is still just an unknown recipe;
		// the handler rejects it with a not-found page.
		id = raw
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.RecipeDetail(w, r, id)
	})).ServeHTTP(w, r)
}

// Statistics operation middleware.
func (siw *ServerInterfaceWrapper) Statistics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Statistics)).ServeHTTP(w, r)
}

// IngredientSearch operation middleware.
func (siw *ServerInterfaceWrapper) IngredientSearch(w http.ResponseWriter, r *http.Request) {
	var params IngredientSearchParams

	err := runtime.BindQueryParameter("form", true, false, "query", firstValues(r.URL.Query(), "query"), &params.Query)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "query", Err: err})
		return
	}

	siw.wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.IngredientSearch(w, r, params)
	}), siw.SearchMiddlewares...).ServeHTTP(w, r)
}

// firstValues keeps only the first occurrence of a repeated single-value parameter.
func firstValues(q url.Values, name string) url.Values {
	if vs := q[name]; len(vs) > 1 {
		q[name] = vs[:1]
	}
	return q
}

// HealthCheck operation middleware.
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.HealthCheck)).ServeHTTP(w, r)
}

// Metrics operation middleware.
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.wrap(http.HandlerFunc(siw.Handler.Metrics)).ServeHTTP(w, r)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseURL           string
	BaseRouter        chi.Router
	Middlewares       []MiddlewareFunc
	SearchMiddlewares []MiddlewareFunc
	NotFound          http.HandlerFunc
	ErrorHandlerFunc  func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions creates an http.Handler with additional options.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	if options.NotFound != nil {
		r.NotFound(options.NotFound)
	}

	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		SearchMiddlewares:  options.SearchMiddlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/", wrapper.Index)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/top/", wrapper.TopRecipes)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/recipe/{id}/", wrapper.RecipeDetail)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/stats/", wrapper.Statistics)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/ingredient-search/", wrapper.IngredientSearch)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/healthz", wrapper.HealthCheck)
	})
	r.Group(func(r chi.Router) {
		r.Get(options.BaseURL+"/metrics", wrapper.Metrics)
	})

	return r
}
