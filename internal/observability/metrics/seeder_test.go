package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederMetricsRecordBBCodes(t *testing.T) {
	t.Parallel()

	m, err := NewSeederMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordBBCodes(ActionInserted, 20)
	m.RecordBBCodes(ActionUpdated, 2)
	m.RecordBBCodes(ActionInserted, 1)

	assert.InDelta(t, 21, testutil.ToFloat64(m.bbcodesTotal.WithLabelValues(ActionInserted)), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.bbcodesTotal.WithLabelValues(ActionUpdated)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.bbcodesTotal.WithLabelValues(ActionSkipped)), 0)
}

func TestSeederMetricsObserveMigration(t *testing.T) {
	t.Parallel()

	m, err := NewSeederMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveMigration("v310_update_schema", 15*time.Millisecond, nil)
	m.ObserveMigration("v310_update_data", time.Second, errors.New("boom"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.migrationsTotal.WithLabelValues("v310_update_schema", StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.migrationsTotal.WithLabelValues("v310_update_data", StatusError)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.migrationDuration))
}

func TestSeederMetricsRecordRun(t *testing.T) {
	t.Parallel()

	m, err := NewSeederMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	finished := time.Unix(1700000000, 0)
	m.RecordRun(true, finished)
	assert.InDelta(t, 1, testutil.ToFloat64(m.lastRunSuccess), 0)
	assert.InDelta(t, 1700000000, testutil.ToFloat64(m.lastRunTimestamp), 0)

	m.RecordRun(false, finished)
	assert.InDelta(t, 0, testutil.ToFloat64(m.lastRunSuccess), 0)
}

func TestSeederMetricsExposition(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewSeederMetrics(registry)
	require.NoError(t, err)
	m.RecordBBCodes(ActionSkipped, 3)

	expected := `
# HELP abbc3_bbcodes_total Catalog entries processed by the seeder
# TYPE abbc3_bbcodes_total counter
abbc3_bbcodes_total{action="skipped"} 3
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "abbc3_bbcodes_total"))
}

func TestNewSeederMetricsRejectsDoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewSeederMetrics(registry)
	require.NoError(t, err)

	_, err = NewSeederMetrics(registry)
	require.Error(t, err)
}
