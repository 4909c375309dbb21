// Package metrics provides constants used across metric definitions.
package metrics

// Seeder action label values.
const (
	// ActionInserted counts catalog entries written as new rows.
	ActionInserted = "inserted"
	// ActionUpdated counts catalog entries that rewrote an existing row.
	ActionUpdated = "updated"
	// ActionSkipped counts catalog entries dropped at the id ceiling.
	ActionSkipped = "skipped"
)

// Migration status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Histogram bucket parameters.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)
