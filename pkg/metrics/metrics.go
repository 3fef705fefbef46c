// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// OracleDuration tracks completion oracle call duration.
	OracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "oracle_request_duration_seconds",
			Help:    "Completion oracle call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"provider", "status"},
	)

	// OracleRequestsTotal tracks total completion oracle calls.
	OracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oracle_requests_total",
			Help: "Total completion oracle calls",
		},
		[]string{"provider", "status"},
	)

	// UsersRegisteredTotal tracks total user registrations.
	UsersRegisteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "users_registered_total",
			Help: "Total users registered",
		},
	)

	// ConversationsRecordedTotal tracks total recorded Q&A exchanges.
	ConversationsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_recorded_total",
			Help: "Total question/answer exchanges recorded",
		},
	)

	// ConversationsDeletedTotal tracks total deleted exchanges.
	ConversationsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_deleted_total",
			Help: "Total question/answer exchanges deleted",
		},
	)

	// ExchangeEventsPublished tracks JetStream exchange events.
	ExchangeEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_events_published_total",
			Help: "Exchange events published to JetStream",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordOracleCall records metrics for a completion oracle call.
func RecordOracleCall(provider, status string, duration float64) {
	OracleDuration.WithLabelValues(provider, status).Observe(duration)
	OracleRequestsTotal.WithLabelValues(provider, status).Inc()
}
