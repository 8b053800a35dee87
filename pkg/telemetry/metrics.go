package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus instruments for the usage engine.
type Metrics struct {
	reportsIngested *prometheus.CounterVec
	daysUpserted    *prometheus.CounterVec
	usageQueries    *prometheus.CounterVec
	rosterQueries   prometheus.Counter
}

// NewMetrics registers the engine instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	reportsIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlens_usage_reports_total",
		Help: "Daily usage reports merged, by username.",
	}, []string{"username"})

	daysUpserted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlens_usage_days_total",
		Help: "Per-day usage rows written, by username.",
	}, []string{"username"})

	usageQueries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tokenlens_usage_queries_total",
		Help: "Usage stats queries served, by period.",
	}, []string{"period"})

	rosterQueries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tokenlens_roster_queries_total",
		Help: "Roster listing queries served.",
	})

	reg.MustRegister(
		reportsIngested,
		daysUpserted,
		usageQueries,
		rosterQueries,
	)

	return &Metrics{
		reportsIngested: reportsIngested,
		daysUpserted:    daysUpserted,
		usageQueries:    usageQueries,
		rosterQueries:   rosterQueries,
	}
}

func (m *Metrics) AddReportIngested(username string) {
	if m == nil {
		return
	}
	m.reportsIngested.WithLabelValues(username).Inc()
}

func (m *Metrics) AddDaysUpserted(username string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.daysUpserted.WithLabelValues(username).Add(float64(n))
}

func (m *Metrics) AddUsageQuery(period string) {
	if m == nil {
		return
	}
	m.usageQueries.WithLabelValues(period).Inc()
}

func (m *Metrics) AddRosterQuery() {
	if m == nil {
		return
	}
	m.rosterQueries.Inc()
}

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Module provides a dedicated registry plus the engine metrics.
var Module = fx.Module("telemetry",
	fx.Provide(
		fx.Annotate(newRegistry, fx.As(new(prometheus.Registerer))),
		NewMetrics,
	),
)
