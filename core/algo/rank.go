// Package algo has ordering logic for branch metrics.
package algo

import (
	"sort"

	"github.com/huangsam/timesplit/schema"
)

// DefaultChartSize is how many branches the dashboard chart shows.
const DefaultChartSize = 8

// SortMetrics returns a sorted copy of metrics. Ties fall back to the branch name
// so the order is stable across refreshes.
func SortMetrics(metrics []schema.BranchMetric, key schema.SortKey, desc bool) []schema.BranchMetric {
	out := make([]schema.BranchMetric, len(metrics))
	copy(out, metrics)

	less := lessFor(key)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

// RankMetrics sorts metrics by total time in descending order
// and returns the top 'limit' branches. A non-positive limit returns all of them.
func RankMetrics(metrics []schema.BranchMetric, limit int) []schema.BranchMetric {
	ranked := SortMetrics(metrics, schema.SortByTotal, true)
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}

// NextSortKey cycles through schema.AllSortKeys.
func NextSortKey(key schema.SortKey) schema.SortKey {
	for i, k := range schema.AllSortKeys {
		if k == key {
			return schema.AllSortKeys[(i+1)%len(schema.AllSortKeys)]
		}
	}
	return schema.SortByLastSeen
}

func lessFor(key schema.SortKey) func(a, b schema.BranchMetric) bool {
	switch key {
	case schema.SortByBranch:
		return func(a, b schema.BranchMetric) bool { return a.Subject < b.Subject }
	case schema.SortByActive:
		return func(a, b schema.BranchMetric) bool { return a.Active < b.Active }
	case schema.SortByInactive:
		return func(a, b schema.BranchMetric) bool { return a.Inactive < b.Inactive }
	case schema.SortByTotal:
		return func(a, b schema.BranchMetric) bool { return a.Total < b.Total }
	case schema.SortByFirstSeen:
		return func(a, b schema.BranchMetric) bool { return a.FirstSeen.Before(b.FirstSeen) }
	default: // SortByLastSeen
		return func(a, b schema.BranchMetric) bool { return a.LastSeen.Before(b.LastSeen) }
	}
}
