// Package parquet provides data structures and functions for exporting timesplit
// intervals and branch metrics to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/timesplit/schema"
	"github.com/parquet-go/parquet-go"
)

// Interval represents one closed interval of time spent on a branch.
// This struct maps to the timesplit_intervals database table.
type Interval struct {
	// Repo is the repository root the interval belongs to
	Repo string `parquet:"repo,snappy,dict"`

	// Branch is the tracked subject
	Branch string `parquet:"branch,snappy,dict"`

	// Kind is active or inactive
	Kind string `parquet:"kind,snappy,dict"`

	StartTime time.Time `parquet:"start_time,snappy"`
	EndTime   time.Time `parquet:"end_time,snappy"`

	// DurationMs is EndTime minus StartTime in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// SessionID identifies the tracking session (nullable for imported data)
	SessionID *string `parquet:"session_id,optional,snappy"`

	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// BranchMetric represents the aggregated time of one branch.
type BranchMetric struct {
	Branch     string    `parquet:"branch,snappy"`
	ActiveMs   int64     `parquet:"active_ms,snappy"`
	InactiveMs int64     `parquet:"inactive_ms,snappy"`
	TotalMs    int64     `parquet:"total_ms,snappy"`
	FirstSeen  time.Time `parquet:"first_seen,snappy"`
	LastSeen   time.Time `parquet:"last_seen,snappy"`
}

// writeParquet writes rows to a new Parquet file at outputPath.
// The schema is derived from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteIntervalsParquet writes a slice of Interval structs to a Parquet file.
func WriteIntervalsParquet(data []Interval, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteBranchMetricsParquet writes a slice of BranchMetric structs to a Parquet file.
func WriteBranchMetricsParquet(data []BranchMetric, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertIntervalRecords converts stored interval records for Parquet export.
// Open intervals are skipped since the store only holds closed ones.
func ConvertIntervalRecords(records []schema.IntervalRecord) []Interval {
	result := make([]Interval, 0, len(records))
	for _, record := range records {
		iv := record.Interval
		if iv.End == nil {
			continue
		}
		var sessionID *string
		if iv.SessionID != "" {
			id := iv.SessionID
			sessionID = &id
		}
		result = append(result, Interval{
			Repo:       record.Repo,
			Branch:     iv.Subject,
			Kind:       string(iv.Kind),
			StartTime:  iv.Start,
			EndTime:    *iv.End,
			DurationMs: iv.End.Sub(iv.Start).Milliseconds(),
			SessionID:  sessionID,
			RecordedAt: record.RecordedAt,
		})
	}
	return result
}

// ConvertBranchMetrics converts computed branch metrics for Parquet export.
func ConvertBranchMetrics(metrics []schema.BranchMetric) []BranchMetric {
	result := make([]BranchMetric, len(metrics))
	for i, m := range metrics {
		result[i] = BranchMetric{
			Branch:     m.Subject,
			ActiveMs:   m.Active.Milliseconds(),
			InactiveMs: m.Inactive.Milliseconds(),
			TotalMs:    m.Total.Milliseconds(),
			FirstSeen:  m.FirstSeen,
			LastSeen:   m.LastSeen,
		}
	}
	return result
}
