// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "ucmodeler"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	Statements        *prometheus.CounterVec
	StatementDuration *prometheus.HistogramVec
	MetadataQueries   *prometheus.CounterVec
	Renders           *prometheus.CounterVec
	RenderFallbacks   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statements_total",
			Help:      "Statements sent to the warehouse.",
		}, []string{"kind", "outcome"}),
		StatementDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "statement_duration_seconds",
			Help:      "Warehouse round trip time per statement kind.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
		MetadataQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_queries_total",
			Help:      "Catalog metadata reads.",
		}, []string{"operation", "outcome"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "ER diagram renders by renderer.",
		}, []string{"renderer", "outcome"}),
		RenderFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_fallbacks_total",
			Help:      "Renders served by the fallback renderer after the primary was unavailable.",
		}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Statements,
		m.StatementDuration,
		m.MetadataQueries,
		m.Renders,
		m.RenderFallbacks,
	}
}

// PoolsOpen reports the number of open warehouse pools at scrape time.
func PoolsOpen(count func() int) prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "warehouse_pools_open",
		Help:      "Connection pools currently held open, one per distinct connection.",
	}, func() float64 { return float64(count()) })
}

// Registry returns a registry with the Go runtime collectors and cols.
func Registry(cols ...prometheus.Collector) *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector())
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(cols...)

	return r
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}

	return OutcomeSuccess
}
