// Package metrics defines the Prometheus collectors the server exports.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
	Mutations       *prometheus.CounterVec
	AuditFailures   *prometheus.CounterVec
}

// New creates and registers the collectors on reg. Tests pass a fresh
// prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pokereview_entity_mutations_total",
			Help: "Successful create, update and delete operations by entity.",
		}, []string{"entity", "operation"}),
		AuditFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pokereview_audit_publish_failures_total",
			Help: "Audit events that could not be published.",
		}, []string{"entity"}),
	}
}

// ObserveRequest records one request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// IncrementMutation counts one successful write.
func (m *Metrics) IncrementMutation(entity, operation string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(entity, operation).Inc()
}

// IncrementAuditFailure counts one dropped audit event.
func (m *Metrics) IncrementAuditFailure(entity string) {
	if m == nil {
		return
	}
	m.AuditFailures.WithLabelValues(entity).Inc()
}
