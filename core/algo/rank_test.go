package algo

import (
	"testing"
	"time"

	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/assert"
)

func sampleMetrics() []schema.BranchMetric {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []schema.BranchMetric{
		{Subject: "main", Active: 5 * time.Minute, Inactive: time.Minute, Total: 6 * time.Minute, FirstSeen: base, LastSeen: base.Add(time.Hour)},
		{Subject: "feature", Active: time.Minute, Inactive: 9 * time.Minute, Total: 10 * time.Minute, FirstSeen: base.Add(time.Minute), LastSeen: base.Add(3 * time.Hour)},
		{Subject: "fix", Active: 2 * time.Minute, Total: 2 * time.Minute, FirstSeen: base.Add(-time.Hour), LastSeen: base.Add(2 * time.Hour)},
		{Subject: "chore", Active: 2 * time.Minute, Total: 2 * time.Minute, FirstSeen: base.Add(-time.Hour), LastSeen: base.Add(2 * time.Hour)},
	}
}

func subjects(metrics []schema.BranchMetric) []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = m.Subject
	}
	return out
}

func TestSortMetrics(t *testing.T) {
	tests := []struct {
		key  schema.SortKey
		desc bool
		want []string
	}{
		{schema.SortByLastSeen, true, []string{"feature", "chore", "fix", "main"}},
		{schema.SortByLastSeen, false, []string{"main", "chore", "fix", "feature"}},
		{schema.SortByTotal, true, []string{"feature", "main", "chore", "fix"}},
		{schema.SortByActive, true, []string{"main", "chore", "fix", "feature"}},
		{schema.SortByInactive, false, []string{"chore", "fix", "main", "feature"}},
		{schema.SortByFirstSeen, false, []string{"chore", "fix", "main", "feature"}},
		{schema.SortByBranch, false, []string{"chore", "feature", "fix", "main"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			input := sampleMetrics()
			got := SortMetrics(input, tt.key, tt.desc)
			assert.Equal(t, tt.want, subjects(got))
			assert.Equal(t, "main", input[0].Subject, "input must not be reordered")
		})
	}
}

func TestRankMetrics(t *testing.T) {
	assert.Equal(t, []string{"feature", "main"}, subjects(RankMetrics(sampleMetrics(), 2)))
	assert.Len(t, RankMetrics(sampleMetrics(), 0), 4)
	assert.Len(t, RankMetrics(sampleMetrics(), DefaultChartSize), 4)
}

func TestNextSortKey(t *testing.T) {
	key := schema.SortByLastSeen
	seen := map[schema.SortKey]bool{}
	for range schema.AllSortKeys {
		seen[key] = true
		key = NextSortKey(key)
	}
	assert.Equal(t, schema.SortByLastSeen, key, "cycle returns to the start")
	assert.Len(t, seen, len(schema.AllSortKeys))
	assert.Equal(t, schema.SortByLastSeen, NextSortKey("bogus"))
}
