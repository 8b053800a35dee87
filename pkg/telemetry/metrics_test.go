package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.AddReportIngested("alice")
	m.AddDaysUpserted("alice", 3)
	m.AddDaysUpserted("alice", 0)
	m.AddUsageQuery("all")
	m.AddUsageQuery("all")
	m.AddRosterQuery()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.reportsIngested.WithLabelValues("alice")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.daysUpserted.WithLabelValues("alice")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.usageQueries.WithLabelValues("all")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.rosterQueries))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.AddReportIngested("alice")
		m.AddDaysUpserted("alice", 1)
		m.AddUsageQuery("custom")
		m.AddRosterQuery()
	})
}
