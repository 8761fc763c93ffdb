package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "sommelier"

// Pipeline Prometheus metrics.
var (
	AskRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ask_requests_total",
			Help:      "Questions answered, by classified domain and outcome",
		},
		[]string{"domain", "outcome"}, // answered, clarification, insufficient, apology, cached
	)

	AskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_duration_seconds",
			Help:      "End-to-end question pipeline duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"domain"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_total",
			Help:      "Response cache lookups",
		},
		[]string{"tier", "result"}, // tier: local/remote, result: hit/miss
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_total",
			Help:      "Query embedding cache lookups",
		},
		[]string{"result"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Passage retrieval duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"backend"},
	)

	RetrievalErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_errors_total",
			Help:      "Retrieval failures degraded to zero candidates",
		},
		[]string{"reason"}, // timeout, error
	)

	ValidationFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_fallbacks_total",
			Help:      "Validator filters that emptied the candidate set and fell back to unfiltered",
		},
		[]string{"rule"},
	)

	AssemblyFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assembly_failures_total",
			Help:      "Context assembly panics recovered as empty bundles",
		},
	)

	HandlerFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_failures_total",
			Help:      "Domain handler failures that fell through to default synthesis",
		},
		[]string{"domain"},
	)

	ClarificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clarifications_total",
			Help:      "Clarification state transitions",
		},
		[]string{"event"}, // requested, resolved, abandoned
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog file reload attempts",
		},
		[]string{"status"},
	)
)

// Synthesis and embedding provider metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of model provider requests",
		},
		[]string{"kind", "model", "status"}, // kind: embedding/synthesis
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Model provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind", "model"},
	)

	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total model provider tokens consumed",
		},
		[]string{"kind", "model", "type"}, // type: prompt/completion/total
	)

	ProviderErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total model provider errors",
		},
		[]string{"kind", "model", "error_type"},
	)

	SynthesisBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "synthesis_budget_tokens_remaining",
			Help:      "Remaining synthesis token budget",
		},
		[]string{"period"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the HTTP, pipeline and provider metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		httpRequestDuration,
		httpRequestsTotal,
		AskRequestsTotal,
		AskDuration,
		ResponseCacheTotal,
		EmbeddingCacheTotal,
		RetrievalDuration,
		RetrievalErrorsTotal,
		ValidationFallbacksTotal,
		AssemblyFailuresTotal,
		HandlerFailuresTotal,
		ClarificationsTotal,
		CatalogReloadsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderTokensTotal,
		ProviderErrorsTotal,
		SynthesisBudgetTokensRemaining,
	)
	pipelineMetricsRegistered = true
}
