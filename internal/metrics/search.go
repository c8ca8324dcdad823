package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search outcomes.
const (
	SearchOK         = "ok"
	SearchEmptyQuery = "empty_query"
	SearchDegraded   = "degraded" // embedding or store failure, empty page served
)

// Ingredient search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookbook",
			Name:      "search_requests_total",
			Help:      "Ingredient searches by outcome",
		},
		[]string{"outcome"},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cookbook",
			Name:      "search_results",
			Help:      "Number of results returned per successful search",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	RecipesLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cookbook",
			Name:      "recipes_loaded_total",
			Help:      "Recipes processed by the loader",
		},
		[]string{"result"}, // "loaded" / "skipped"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search and loader metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchResults)
	prometheus.MustRegister(RecipesLoadedTotal)
	searchMetricsRegistered = true
}
