package metrics

import "github.com/prometheus/client_golang/prometheus"

// Generation and grouping Prometheus metrics.
var (
	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "generation_requests_total",
			Help:      "Total number of text generation requests",
		},
		[]string{"model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "coach",
			Name:      "generation_request_duration_seconds",
			Help:      "Text generation request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "generation_tokens_total",
			Help:      "Total generation tokens consumed",
		},
		[]string{"model", "type"}, // "prompt" / "completion"
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "generation_errors_total",
			Help:      "Total text generation errors",
		},
		[]string{"model", "error_type"},
	)

	GenerationBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coach",
			Name:      "generation_budget_tokens_remaining",
			Help:      "Remaining generation token budget",
		},
		[]string{"period"},
	)

	GroupingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "grouping_total",
			Help:      "Grouping passes by knowledge base and strategy",
		},
		[]string{"knowledge_base", "strategy"}, // "model" / "fallback"
	)

	GroupingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "coach",
			Name:      "grouping_cache_total",
			Help:      "Grouping cache lookups by result, one result per lookup",
		},
		[]string{"result"}, // "hit" / "miss" / "stale"
	)

	ContextFragments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "coach",
			Name:      "context_fragments",
			Help:      "Fragment count of the last assembled context per knowledge base",
		},
		[]string{"knowledge_base"},
	)
)

var genMetricsRegistered bool

// RegisterGenerationMetrics registers generation and grouping metrics. Must be called once from main.
func RegisterGenerationMetrics() {
	if genMetricsRegistered {
		return
	}
	prometheus.MustRegister(GenerationRequestsTotal)
	prometheus.MustRegister(GenerationRequestDuration)
	prometheus.MustRegister(GenerationTokensTotal)
	prometheus.MustRegister(GenerationErrorsTotal)
	prometheus.MustRegister(GenerationBudgetTokensRemaining)
	prometheus.MustRegister(GroupingTotal)
	prometheus.MustRegister(GroupingCacheTotal)
	prometheus.MustRegister(ContextFragments)
	genMetricsRegistered = true
}
