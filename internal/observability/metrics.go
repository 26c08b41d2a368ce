package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// feed fetches per feed and outcome
	FeedFetchCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aduan_feed_fetches_total",
			Help: "Total published feed fetches",
		},
		[]string{"feed", "outcome"},
	)

	// duration of a full repository refresh
	RefreshLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aduan_refresh_duration_seconds",
			Help:    "Histogram of repository refresh durations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// mutation intents per action and outcome (dispatched / failed)
	DispatchCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aduan_mutation_dispatches_total",
			Help: "Total mutation intents sent to the scripting endpoint",
		},
		[]string{"action", "outcome"},
	)

	// reconciliation outcomes (confirmed / discrepancy)
	ReconcileCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aduan_reconcile_results_total",
			Help: "Total reconciliation results for pending intents",
		},
		[]string{"action", "result"},
	)

	// intents still awaiting confirmation
	PendingGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aduan_pending_intents",
			Help: "Mutation intents not yet observed in the report feed",
		},
	)

	// intents past the grace period without confirmation
	DiscrepancyGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aduan_discrepancies",
			Help: "Mutation intents never observed in the report feed within the grace period",
		},
	)

	// chat notifications per kind and outcome (sent / failed)
	NotificationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aduan_notifications_total",
			Help: "Total chat notifications delivered or failed",
		},
		[]string{"kind", "outcome"},
	)

	// total requests per route, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aduan_http_requests_total",
			Help: "Total dashboard API requests received",
		},
		[]string{"route", "method", "status"},
	)

	// request latency in seconds per route/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aduan_http_request_duration_seconds",
			Help:    "Histogram of dashboard API request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		FeedFetchCount,
		RefreshLatency,
		DispatchCount,
		ReconcileCount,
		PendingGauge,
		DiscrepancyGauge,
		NotificationCount,
		RequestCount,
		RequestLatency,
	)
}

// Metrics records application metrics. Components depend on this interface
// rather than on the package-level collectors.
type Metrics interface {
	IncrementFeedFetch(feed, outcome string)
	RecordRefreshLatency(duration time.Duration)
	IncrementDispatch(action, outcome string)
	IncrementReconcile(action, result string)
	SetPending(count int)
	SetDiscrepancies(count int)
	IncrementNotification(kind, outcome string)
	IncrementRequests(route, method, status string)
	RecordRequestLatency(route, method string, duration time.Duration)
}

// PrometheusMetrics implements Metrics using the registered collectors.
type PrometheusMetrics struct{}

// NewPrometheusMetrics creates a new PrometheusMetrics
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

func (m *PrometheusMetrics) IncrementFeedFetch(feed, outcome string) {
	FeedFetchCount.WithLabelValues(feed, outcome).Inc()
}

func (m *PrometheusMetrics) RecordRefreshLatency(duration time.Duration) {
	RefreshLatency.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) IncrementDispatch(action, outcome string) {
	DispatchCount.WithLabelValues(action, outcome).Inc()
}

func (m *PrometheusMetrics) IncrementReconcile(action, result string) {
	ReconcileCount.WithLabelValues(action, result).Inc()
}

func (m *PrometheusMetrics) SetPending(count int) {
	PendingGauge.Set(float64(count))
}

func (m *PrometheusMetrics) SetDiscrepancies(count int) {
	DiscrepancyGauge.Set(float64(count))
}

func (m *PrometheusMetrics) IncrementNotification(kind, outcome string) {
	NotificationCount.WithLabelValues(kind, outcome).Inc()
}

func (m *PrometheusMetrics) IncrementRequests(route, method, status string) {
	RequestCount.WithLabelValues(route, method, status).Inc()
}

func (m *PrometheusMetrics) RecordRequestLatency(route, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}
