package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "forest_explorer"

// Fetch outcomes.
const (
	OutcomeReady  = "ready"
	OutcomeEmpty  = "empty"
	OutcomeFailed = "failed"
	OutcomeStale  = "stale"
)

// Metric used in monitoring service.
var (
	endpointChanges = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Number of RPC endpoint selections",
			Name:      "endpoint_changes_total",
			Namespace: namespace,
		},
	)

	queryFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Completed query fetches by outcome",
			Name:      "query_fetches_total",
			Namespace: namespace,
		},
		[]string{"query", "outcome"},
	)

	queryFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Help:      "Query fetch round-trip time",
			Name:      "query_fetch_duration_seconds",
			Namespace: namespace,
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	queryInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Help:      "Query fetches currently awaiting a response",
			Name:      "query_in_flight",
			Namespace: namespace,
		},
		[]string{"query"},
	)
)

func init() {
	prometheus.MustRegister(
		endpointChanges,
		queryFetches,
		queryFetchDuration,
		queryInFlight,
	)
}

func EndpointChanged() {
	endpointChanges.Inc()
}

func FetchStarted(query string) {
	queryInFlight.WithLabelValues(query).Inc()
}

// FetchFinished records a completed fetch, current or stale.
func FetchFinished(query, outcome string, took time.Duration) {
	queryInFlight.WithLabelValues(query).Dec()
	queryFetches.WithLabelValues(query, outcome).Inc()
	queryFetchDuration.WithLabelValues(query).Observe(took.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
