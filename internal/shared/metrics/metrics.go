package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the stage counters.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeUnavailable = "unavailable"
)

var (
	// Registry holds every LexiGuard collector plus the Go runtime collectors.
	Registry = prometheus.NewRegistry()

	analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiguard",
		Name:      "analyses_total",
		Help:      "Document analyses by outcome.",
	}, []string{"outcome"})

	extractionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiguard",
		Name:      "extractions_total",
		Help:      "Text extractions by outcome.",
	}, []string{"outcome"})

	ragLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiguard",
		Name:      "rag_lookups_total",
		Help:      "Retrieval lookups for critical clauses by outcome.",
	}, []string{"outcome"})

	chatTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lexiguard",
		Name:      "chat_total",
		Help:      "Document chat requests by outcome.",
	}, []string{"outcome"})

	modelCallSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lexiguard",
		Name:      "model_call_seconds",
		Help:      "Latency of model gateway calls.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"provider", "operation"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		analysesTotal,
		extractionsTotal,
		ragLookupsTotal,
		chatTotal,
		modelCallSeconds,
	)
}

// IncAnalysis counts a finished analysis.
func IncAnalysis(outcome string) {
	analysesTotal.WithLabelValues(outcome).Inc()
}

// IncExtraction counts a finished extraction.
func IncExtraction(outcome string) {
	extractionsTotal.WithLabelValues(outcome).Inc()
}

// IncRAGLookup counts a retrieval lookup.
func IncRAGLookup(outcome string) {
	ragLookupsTotal.WithLabelValues(outcome).Inc()
}

// IncChat counts a chat request.
func IncChat(outcome string) {
	chatTotal.WithLabelValues(outcome).Inc()
}

// ObserveModelCall records the latency of one model gateway call.
func ObserveModelCall(provider, operation string, d time.Duration) {
	if d < 0 {
		d = 0
	}
	modelCallSeconds.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
