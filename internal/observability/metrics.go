// Package observability provides Prometheus metrics for abbc3-migrate runs.
// A migrate run is a batch job, so metrics are pushed to a Pushgateway
// instead of being scraped.
package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/vse/abbc3-migrate/internal/errors"
	"github.com/vse/abbc3-migrate/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Seeder   *metrics.SeederMetrics
}

// NewMetrics creates a new instance of Metrics on a private registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	seederMetrics, err := metrics.NewSeederMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Seeder metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Seeder:   seederMetrics,
	}, nil
}

// Registry returns the registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Push replaces the metrics of job on the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	err := push.New(url, job).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return errors.New(fmt.Errorf("failed to push metrics: %w", err)).
			Component("observability").
			Category(errors.CategoryNetwork).
			Context("job", job).
			Build()
	}
	return nil
}
