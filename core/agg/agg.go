// Package agg reduces tracked intervals into per-branch metrics.
package agg

import (
	"sort"
	"time"

	"github.com/huangsam/timesplit/internal/logging"
	"github.com/huangsam/timesplit/schema"
	"github.com/sirupsen/logrus"
)

// Aggregator computes branch metrics. It holds no state besides its logger,
// so a single value can be shared by every caller.
type Aggregator struct {
	logger *logrus.Entry
}

// New creates an Aggregator. A nil logger uses the "aggregator" component logger.
func New(logger *logrus.Entry) *Aggregator {
	if logger == nil {
		logger = logging.NewLogger("aggregator")
	}
	return &Aggregator{logger: logger}
}

// ComputeMetrics reduces intervals into one metric per branch.
//
// An open interval contributes its running duration up to now. Intervals with an
// empty subject, a zero start or a non-positive duration are skipped. Kinds other
// than active count as inactive. The result is ordered by branch name, so equal
// inputs always give equal outputs.
func (a *Aggregator) ComputeMetrics(intervals []schema.Interval, now time.Time) []schema.BranchMetric {
	byBranch := make(map[string]*schema.BranchMetric)
	skipped := 0

	for _, iv := range intervals {
		end := iv.EffectiveEnd(now)
		duration := end.Sub(iv.Start)
		if iv.Subject == "" || iv.Start.IsZero() || duration <= 0 {
			skipped++
			a.logger.WithFields(logrus.Fields{
				"branch":   iv.Subject,
				"start":    iv.Start,
				"duration": duration,
			}).Debug("Skipping invalid interval")
			continue
		}

		m, ok := byBranch[iv.Subject]
		if !ok {
			m = &schema.BranchMetric{Subject: iv.Subject, FirstSeen: iv.Start, LastSeen: end}
			byBranch[iv.Subject] = m
		}

		if iv.Kind == schema.ActiveKind {
			m.Active += duration
		} else {
			m.Inactive += duration
		}
		m.Total = m.Active + m.Inactive
		if iv.Start.Before(m.FirstSeen) {
			m.FirstSeen = iv.Start
		}
		if end.After(m.LastSeen) {
			m.LastSeen = end
		}
	}

	if skipped > 0 {
		a.logger.Debugf("Skipped %d invalid intervals out of %d", skipped, len(intervals))
	}

	out := make([]schema.BranchMetric, 0, len(byBranch))
	for _, m := range byBranch {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Subject < out[j].Subject
	})
	return out
}

// ComputeMetrics is a convenience wrapper around a default Aggregator.
func ComputeMetrics(intervals []schema.Interval, now time.Time) []schema.BranchMetric {
	return New(nil).ComputeMetrics(intervals, now)
}

// ClipToWindow returns the intervals with every start before since moved up to
// since, so time before the window is not counted. Closed intervals that end at
// or before since are dropped. A zero since returns the input as is.
func ClipToWindow(intervals []schema.Interval, since time.Time) []schema.Interval {
	if since.IsZero() {
		return intervals
	}
	out := make([]schema.Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End != nil && !iv.End.After(since) {
			continue
		}
		if iv.Start.Before(since) {
			iv.Start = since
		}
		out = append(out, iv)
	}
	return out
}

// Summarize totals the metrics and picks the branch with the most tracked time.
// Ties on total time go to the branch whose name sorts first.
func Summarize(metrics []schema.BranchMetric) schema.Summary {
	var s schema.Summary
	s.BranchCount = len(metrics)
	for _, m := range metrics {
		s.Active += m.Active
		s.Inactive += m.Inactive
		s.Total += m.Total
		if s.MostUsed == "" || m.Total > s.MostUsedTime || (m.Total == s.MostUsedTime && m.Subject < s.MostUsed) {
			s.MostUsed = m.Subject
			s.MostUsedTime = m.Total
		}
	}
	return s
}
