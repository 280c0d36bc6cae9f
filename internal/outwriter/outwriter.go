// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
)

// Report is everything a metrics report prints: ranked branches and their totals.
type Report struct {
	Repo    string
	Since   time.Time // Zero when the report covers all stored time
	Metrics []schema.BranchMetric
	Summary schema.Summary
}

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMetrics prints a branch metrics report using the configured output format.
func (ow *OutWriter) WriteMetrics(report Report, cfg *contract.Config, duration time.Duration) error {
	return WriteMetricsResults(report, cfg, duration)
}

// WriteIntervals prints raw stored intervals using the configured output format.
func (ow *OutWriter) WriteIntervals(records []schema.IntervalRecord, cfg *contract.Config, duration time.Duration) error {
	return WriteIntervalResults(records, cfg, duration)
}
