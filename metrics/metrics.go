package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	branchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ilera_branch_latency_ms",
		Help:    "Latency of context gathering branches in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 30000},
	}, []string{"branch"})

	branchResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ilera_branch_results",
		Help:    "Number of context items returned by a branch",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
	}, []string{"branch"})

	cacheEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilera_cache_events_total",
		Help: "Response cache hits and misses",
	}, []string{"event"})

	providerOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilera_provider_outcome_total",
		Help: "Generation outcomes per provider, including the degraded path",
	}, []string{"provider", "outcome"})

	safetyVerdict = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ilera_safety_verdict_total",
		Help: "Safety classification verdict count",
	}, []string{"level"})

	queryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ilera_query_latency_ms",
		Help:    "End-to-end query processing latency in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
	})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(branchLatency, branchResults, cacheEvents, providerOutcome, safetyVerdict, queryLatency)
	})
}

// ObserveBranch records latency and result size for a gathering branch.
func ObserveBranch(branch string, start time.Time, results int) {
	ensureRegistered()
	branchLatency.WithLabelValues(branch).Observe(float64(time.Since(start).Milliseconds()))
	branchResults.WithLabelValues(branch).Observe(float64(results))
}

// IncCache records a cache hit or miss.
func IncCache(event string) {
	ensureRegistered()
	cacheEvents.WithLabelValues(event).Inc()
}

// IncProvider records a generation outcome for a provider.
func IncProvider(provider, outcome string) {
	ensureRegistered()
	providerOutcome.WithLabelValues(provider, outcome).Inc()
}

// IncSafety records a safety verdict.
func IncSafety(level string) {
	ensureRegistered()
	safetyVerdict.WithLabelValues(level).Inc()
}

// ObserveQuery records the end-to-end latency of one query.
func ObserveQuery(start time.Time) {
	ensureRegistered()
	queryLatency.Observe(float64(time.Since(start).Milliseconds()))
}
