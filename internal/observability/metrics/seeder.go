// Package metrics provides seeder and migration metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SeederMetrics contains Prometheus metrics for one migrate run
type SeederMetrics struct {
	registry *prometheus.Registry

	bbcodesTotal      *prometheus.CounterVec
	migrationDuration *prometheus.HistogramVec
	migrationsTotal   *prometheus.CounterVec
	lastRunSuccess    prometheus.Gauge
	lastRunTimestamp  prometheus.Gauge

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewSeederMetrics creates and registers new seeder metrics
func NewSeederMetrics(registry *prometheus.Registry) (*SeederMetrics, error) {
	m := &SeederMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *SeederMetrics) initMetrics() {
	m.bbcodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abbc3_bbcodes_total",
			Help: "Catalog entries processed by the seeder",
		},
		[]string{"action"}, // action: inserted, updated, skipped
	)

	m.migrationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "abbc3_migration_duration_seconds",
			Help:    "Time taken to apply a migration",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15), // 1ms to ~16s
		},
		[]string{"migration"},
	)

	m.migrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "abbc3_migrations_total",
			Help: "Applied migrations by outcome",
		},
		[]string{"migration", "status"},
	)

	m.lastRunSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "abbc3_last_run_success",
		Help: "1 when the last migrate run completed, 0 when it failed",
	})

	m.lastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "abbc3_last_run_timestamp_seconds",
		Help: "Unix time the last migrate run finished",
	})

	m.collectors = []prometheus.Collector{
		m.bbcodesTotal,
		m.migrationDuration,
		m.migrationsTotal,
		m.lastRunSuccess,
		m.lastRunTimestamp,
	}
}

// Describe implements the Collector interface
func (m *SeederMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *SeederMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordBBCodes adds n catalog entries handled with action
func (m *SeederMetrics) RecordBBCodes(action string, n int) {
	m.bbcodesTotal.WithLabelValues(action).Add(float64(n))
}

// ObserveMigration records the duration and outcome of one migration
func (m *SeederMetrics) ObserveMigration(name string, duration time.Duration, err error) {
	m.migrationDuration.WithLabelValues(name).Observe(duration.Seconds())
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.migrationsTotal.WithLabelValues(name, status).Inc()
}

// RecordRun sets the last-run gauges
func (m *SeederMetrics) RecordRun(success bool, finished time.Time) {
	if success {
		m.lastRunSuccess.Set(1)
	} else {
		m.lastRunSuccess.Set(0)
	}
	m.lastRunTimestamp.Set(float64(finished.Unix()))
}
