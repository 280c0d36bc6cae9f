// Package core has core logic for tracking sessions and branch reports.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/core/algo"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/outwriter"
	"github.com/huangsam/timesplit/internal/store"
	"github.com/huangsam/timesplit/schema"
)

// ExecutorFunc defines the function signature for executing different report modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ExecuteReport loads stored intervals and prints either ranked branch metrics
// or the raw intervals, depending on cfg.Intervals.
func ExecuteReport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	writer := outwriter.NewOutWriter()

	if cfg.Intervals {
		records, err := GetIntervalResults(ctx, cfg, mgr)
		if err != nil {
			return err
		}
		return writer.WriteIntervals(records, cfg, time.Since(start))
	}

	metrics, summary, err := GetBranchMetricsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	report := outwriter.Report{
		Repo:    cfg.RepoPath,
		Since:   cfg.Since,
		Metrics: metrics,
		Summary: summary,
	}
	return writer.WriteMetrics(report, cfg, time.Since(start))
}

// GetBranchMetricsResults computes metrics for the configured repository and window.
// Intervals crossing cfg.Since only count the part inside the window.
// The summary covers every branch; the metrics are sorted and cut to cfg.Limit.
func GetBranchMetricsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.BranchMetric, schema.Summary, error) {
	records, err := listIntervals(cfg, mgr, 0)
	if err != nil {
		return nil, schema.Summary{}, err
	}
	intervals := agg.ClipToWindow(store.Intervals(records), cfg.Since)
	metrics := agg.ComputeMetrics(intervals, nowFromContext(ctx))
	summary := agg.Summarize(metrics)

	sorted := algo.SortMetrics(metrics, cfg.SortKey, cfg.SortDesc)
	if cfg.Limit > 0 && len(sorted) > cfg.Limit {
		sorted = sorted[:cfg.Limit]
	}
	return sorted, summary, nil
}

// GetIntervalResults returns the stored intervals for the configured repository and window.
func GetIntervalResults(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.IntervalRecord, error) {
	return listIntervals(cfg, mgr, cfg.Limit)
}

func listIntervals(cfg *contract.Config, mgr contract.StoreManager, limit int) ([]schema.IntervalRecord, error) {
	if mgr == nil || mgr.GetIntervalStore() == nil {
		return nil, errors.New("interval store is not initialized")
	}
	records, err := mgr.GetIntervalStore().List(schema.ListQuery{
		Repo:  cfg.RepoPath,
		Since: cfg.Since,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list intervals: %w", err)
	}
	return records, nil
}
