package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/timesplit/core/agg"
	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	pq "github.com/huangsam/timesplit/internal/parquet"
)

var t0 = time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

func sampleMetrics() []schema.BranchMetric {
	return []schema.BranchMetric{
		{
			Subject:   "main",
			Active:    90 * time.Minute,
			Inactive:  30 * time.Minute,
			Total:     2 * time.Hour,
			FirstSeen: t0,
			LastSeen:  t0.Add(3 * time.Hour),
		},
		{
			Subject:   "feature/login",
			Active:    10 * time.Minute,
			Total:     10 * time.Minute,
			FirstSeen: t0.Add(time.Hour),
			LastSeen:  t0.Add(70 * time.Minute),
		},
	}
}

func sampleReport() Report {
	metrics := sampleMetrics()
	return Report{Repo: "/work/app", Metrics: metrics, Summary: agg.Summarize(metrics)}
}

func sampleRecords() []schema.IntervalRecord {
	end := t0.Add(5 * time.Minute)
	return []schema.IntervalRecord{
		{Repo: "/work/app", Interval: schema.Interval{Subject: "main", Start: t0, End: &end, Kind: schema.ActiveKind, SessionID: "abc"}},
		{Repo: "/work/app", Interval: schema.Interval{Subject: "dev", Start: end, Kind: schema.InactiveKind}},
	}
}

func textConfig() *contract.Config {
	return &contract.Config{Output: schema.TextOut, Width: 120, Backend: schema.SQLiteBackend}
}

func TestWriteMetricsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetricsTable(sampleReport(), textConfig(), 25*time.Millisecond, &buf))

	out := buf.String()
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "feature/login")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "Showing 2 of 2 branches (total: 02h:10m:00s, active: 1h 40m, inactive: 30m 0s)")
	assert.Contains(t, out, "Most used branch: main (2h 0m)")
	assert.Contains(t, out, "Store backend: sqlite")
}

func TestWriteMetricsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetricsTable(Report{}, textConfig(), 0, &buf))
	assert.Contains(t, buf.String(), "Showing 0 of 0 branches")
	assert.NotContains(t, buf.String(), "Most used branch")
}

func TestWriteMetricsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeMetricsCSV(&buf, sampleMetrics()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 rows

	assert.Equal(t, []string{"rank", "branch", "active_s", "inactive_s", "total_s", "active_ratio", "first_seen", "last_seen"}, rows[0])
	assert.Equal(t, []string{"1", "main", "5400", "1800", "7200", "0.7500", "2025-03-03T09:00:00Z", "2025-03-03T12:00:00Z"}, rows[1])
	assert.Equal(t, "feature/login", rows[2][1])
	assert.Equal(t, "1.0000", rows[2][5])
}

func TestBuildMetricsDocument_JSON(t *testing.T) {
	report := sampleReport()
	report.Since = t0

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, buildMetricsDocument(report)))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "/work/app", result["repo"])
	assert.Equal(t, "2025-03-03T09:00:00Z", result["since"])

	summary := result["summary"].(map[string]any)
	assert.Equal(t, float64(2), summary["branch_count"])
	assert.Equal(t, float64(7800), summary["total_s"])
	assert.Equal(t, "main", summary["most_used"])

	branches := result["branches"].([]any)
	require.Len(t, branches, 2)
	first := branches[0].(map[string]any)
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "main", first["branch"])
	assert.Equal(t, 0.75, first["active_ratio"])
}

func TestBuildMetricsDocument_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, buildMetricsDocument(sampleReport())))

	var result map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "/work/app", result["repo"])
	assert.NotContains(t, result, "since")

	branches := result["branches"].([]any)
	require.Len(t, branches, 2)
	assert.Equal(t, "feature/login", branches[1].(map[string]any)["branch"])
	assert.Equal(t, 600, branches[1].(map[string]any)["total_s"])
}

func TestWriteMetricsResults_ToFile(t *testing.T) {
	dir := t.TempDir()
	stderr = &bytes.Buffer{}
	t.Cleanup(func() { stderr = os.Stderr })

	tests := []struct {
		output schema.OutputMode
		check  func(t *testing.T, data []byte)
	}{
		{schema.TextOut, func(t *testing.T, data []byte) { assert.Contains(t, string(data), "Most used branch: main") }},
		{schema.CSVOut, func(t *testing.T, data []byte) { assert.True(t, strings.HasPrefix(string(data), "rank,branch")) }},
		{schema.JSONOut, func(t *testing.T, data []byte) { assert.True(t, json.Valid(data)) }},
		{schema.YAMLOut, func(t *testing.T, data []byte) { assert.Contains(t, string(data), "branches:") }},
	}

	for _, tt := range tests {
		t.Run(string(tt.output), func(t *testing.T) {
			cfg := textConfig()
			cfg.Output = tt.output
			cfg.OutputFile = filepath.Join(dir, "report."+string(tt.output))

			require.NoError(t, NewOutWriter().WriteMetrics(sampleReport(), cfg, time.Millisecond))
			data, err := os.ReadFile(cfg.OutputFile)
			require.NoError(t, err)
			tt.check(t, data)
		})
	}
	assert.Contains(t, stderr.(*bytes.Buffer).String(), "💾 Wrote CSV to")
}

func TestWriteMetricsResults_Parquet(t *testing.T) {
	stderr = &bytes.Buffer{}
	t.Cleanup(func() { stderr = os.Stderr })

	cfg := textConfig()
	cfg.Output = schema.ParquetOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "metrics.parquet")
	require.NoError(t, WriteMetricsResults(sampleReport(), cfg, 0))

	file, err := os.Open(cfg.OutputFile)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	reader := parquet.NewGenericReader[pq.BranchMetric](file)
	defer func() { _ = reader.Close() }()
	require.Equal(t, int64(2), reader.NumRows())
	rows := make([]pq.BranchMetric, 2)
	n, _ := reader.Read(rows)
	require.Equal(t, 2, n)
	assert.Equal(t, "main", rows[0].Branch)
	assert.Contains(t, stderr.(*bytes.Buffer).String(), "Wrote Parquet")
}

func TestWriteIntervalsTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeIntervalsTable(sampleRecords(), textConfig(), 0, &buf))

	out := buf.String()
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "inactive")
	assert.Contains(t, out, "5m 0s")
	assert.Contains(t, out, "Showing 2 intervals")
}

func TestWriteIntervalsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeIntervalsCSV(&buf, sampleRecords()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"/work/app", "main", "active", "2025-03-03T09:00:00Z", "2025-03-03T09:05:00Z", "300", "abc"}, rows[1])
	assert.Equal(t, "", rows[2][4], "open intervals have no end")
}

func TestBuildIntervalDocuments(t *testing.T) {
	docs := buildIntervalDocuments(sampleRecords())
	require.Len(t, docs, 2)
	assert.Equal(t, int64(300), docs[0].Seconds)
	require.NotNil(t, docs[0].End)
	assert.Nil(t, docs[1].End)
	assert.Positive(t, docs[1].Seconds)
}

func TestWriteIntervalResults_ToFile(t *testing.T) {
	stderr = &bytes.Buffer{}
	t.Cleanup(func() { stderr = os.Stderr })

	cfg := textConfig()
	cfg.Output = schema.JSONOut
	cfg.OutputFile = filepath.Join(t.TempDir(), "intervals.json")
	require.NoError(t, NewOutWriter().WriteIntervals(sampleRecords(), cfg, 0))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(data, &docs))
	assert.Len(t, docs, 2)
}

func TestWriteWithFile_BadPath(t *testing.T) {
	err := writeWithFile(filepath.Join(t.TempDir(), "missing", "out.txt"), func(w io.Writer) error { return nil }, "Wrote")
	assert.Error(t, err)
}

func TestGetMaxTableBranchWidth(t *testing.T) {
	tests := []struct {
		width    int
		fixed    int
		expected int
	}{
		{width: 200, fixed: 100, expected: 60},
		{width: 140, fixed: 100, expected: 40},
		{width: 90, fixed: 100, expected: 12},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width}
		assert.Equal(t, tt.expected, getMaxTableBranchWidth(cfg, tt.fixed))
	}
}
