package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementMutation("pokemon", "create")
	m.IncrementMutation("pokemon", "create")
	m.IncrementAuditFailure("pokemon")
	m.ObserveRequest("GET", "/api/pokemon", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues("pokemon", "create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditFailures.WithLabelValues("pokemon")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.IncrementMutation("category", "delete")
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.IncrementAuditFailure("category")
}
