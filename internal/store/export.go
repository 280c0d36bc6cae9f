package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/internal/parquet"
	"github.com/huangsam/timesplit/schema"
)

// ExecuteExport performs the export of stored intervals and their branch metrics to Parquet files.
func ExecuteExport(outputFile string, q schema.ListQuery) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	s := Manager.GetIntervalStore()
	status, err := s.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalIntervals == 0 {
		return errors.New("no interval data found to export")
	}

	records, err := s.List(q)
	if err != nil {
		return fmt.Errorf("failed to retrieve intervals: %w", err)
	}
	if len(records) == 0 {
		return errors.New("no intervals match the export filters")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)

	intervals := parquet.ConvertIntervalRecords(records)
	intervalsFile := outputFile + ".intervals.parquet"
	if err := parquet.WriteIntervalsParquet(intervals, intervalsFile); err != nil {
		return fmt.Errorf("failed to write intervals: %w", err)
	}
	fmt.Printf("Exported %d intervals to: %s\n", len(intervals), intervalsFile)

	metrics := parquet.ConvertBranchMetrics(agg.ComputeMetrics(Intervals(records), time.Now()))
	metricsFile := outputFile + ".branch_metrics.parquet"
	if err := parquet.WriteBranchMetricsParquet(metrics, metricsFile); err != nil {
		return fmt.Errorf("failed to write branch metrics: %w", err)
	}
	fmt.Printf("Exported %d branch metrics to: %s\n", len(metrics), metricsFile)

	return nil
}
