package outwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/parquet"
	"github.com/huangsam/timesplit/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricsFixedWidth is the space taken by every metrics column except the branch.
const metricsFixedWidth = 100

// WriteMetricsResults outputs a metrics report, dispatching based on the output format configured.
func WriteMetricsResults(report Report, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, buildMetricsDocument(report))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, buildMetricsDocument(report))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, report.Metrics)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteBranchMetricsParquet(parquet.ConvertBranchMetrics(report.Metrics), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsTable(report, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeMetricsTable generates and writes the human-readable table.
func writeMetricsTable(report Report, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Branch", "Active", "Inactive", "Total", "Active %", "First Seen", "Last Seen"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	branchWidth := getMaxTableBranchWidth(cfg, metricsFixedWidth)
	var data [][]string
	for i, m := range report.Metrics {
		branch := contract.TruncateName(m.Subject, branchWidth)
		if cfg.UseColors {
			branch = contract.BranchColor.Sprint(branch)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			branch,
			schema.FormatDurationSimple(m.Active),
			schema.FormatDurationSimple(m.Inactive),
			schema.FormatDurationSimple(m.Total),
			percent(m.ActiveRatio()),
			schema.FormatTimestamp(m.FirstSeen),
			schema.FormatTimestamp(m.LastSeen),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	s := report.Summary
	if _, err := fmt.Fprintf(writer, "Showing %d of %d branches (total: %s, active: %s, inactive: %s)\n",
		len(report.Metrics), s.BranchCount, schema.FormatDurationDetailed(s.Total),
		schema.FormatDurationSimple(s.Active), schema.FormatDurationSimple(s.Inactive)); err != nil {
		return err
	}
	if s.MostUsed != "" {
		if _, err := fmt.Fprintf(writer, "Most used branch: %s (%s)\n", s.MostUsed, schema.FormatDurationSimple(s.MostUsedTime)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Report completed in %v. Store backend: %s\n", duration, cfg.Backend); err != nil {
		return err
	}
	return nil
}

// writeMetricsCSV writes one row per branch with durations in seconds.
func writeMetricsCSV(w io.Writer, metrics []schema.BranchMetric) error {
	header := []string{"rank", "branch", "active_s", "inactive_s", "total_s", "active_ratio", "first_seen", "last_seen"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, m := range metrics {
			rec := []string{
				strconv.Itoa(i + 1),
				m.Subject,
				seconds(m.Active),
				seconds(m.Inactive),
				seconds(m.Total),
				strconv.FormatFloat(m.ActiveRatio(), 'f', 4, 64),
				csvTime(m.FirstSeen),
				csvTime(m.LastSeen),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// metricsDocument is the JSON and YAML shape of a report.
type metricsDocument struct {
	Repo     string           `json:"repo" yaml:"repo"`
	Since    *time.Time       `json:"since,omitempty" yaml:"since,omitempty"`
	Summary  summaryDocument  `json:"summary" yaml:"summary"`
	Branches []branchDocument `json:"branches" yaml:"branches"`
}

type summaryDocument struct {
	BranchCount     int    `json:"branch_count" yaml:"branch_count"`
	TotalSeconds    int64  `json:"total_s" yaml:"total_s"`
	ActiveSeconds   int64  `json:"active_s" yaml:"active_s"`
	InactiveSeconds int64  `json:"inactive_s" yaml:"inactive_s"`
	MostUsed        string `json:"most_used,omitempty" yaml:"most_used,omitempty"`
	Total           string `json:"total" yaml:"total"`
}

type branchDocument struct {
	Rank            int       `json:"rank" yaml:"rank"`
	Branch          string    `json:"branch" yaml:"branch"`
	ActiveSeconds   int64     `json:"active_s" yaml:"active_s"`
	InactiveSeconds int64     `json:"inactive_s" yaml:"inactive_s"`
	TotalSeconds    int64     `json:"total_s" yaml:"total_s"`
	ActiveRatio     float64   `json:"active_ratio" yaml:"active_ratio"`
	FirstSeen       time.Time `json:"first_seen" yaml:"first_seen"`
	LastSeen        time.Time `json:"last_seen" yaml:"last_seen"`
}

func buildMetricsDocument(report Report) metricsDocument {
	s := report.Summary
	doc := metricsDocument{
		Repo: report.Repo,
		Summary: summaryDocument{
			BranchCount:     s.BranchCount,
			TotalSeconds:    int64(s.Total / time.Second),
			ActiveSeconds:   int64(s.Active / time.Second),
			InactiveSeconds: int64(s.Inactive / time.Second),
			MostUsed:        s.MostUsed,
			Total:           schema.FormatDurationDetailed(s.Total),
		},
		Branches: make([]branchDocument, len(report.Metrics)),
	}
	if !report.Since.IsZero() {
		since := report.Since.UTC()
		doc.Since = &since
	}
	for i, m := range report.Metrics {
		doc.Branches[i] = branchDocument{
			Rank:            i + 1,
			Branch:          m.Subject,
			ActiveSeconds:   int64(m.Active / time.Second),
			InactiveSeconds: int64(m.Inactive / time.Second),
			TotalSeconds:    int64(m.Total / time.Second),
			ActiveRatio:     m.ActiveRatio(),
			FirstSeen:       m.FirstSeen.UTC(),
			LastSeen:        m.LastSeen.UTC(),
		}
	}
	return doc
}

// MetricsJSON returns the indented JSON document of a report, as written by --output json.
func MetricsJSON(report Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, buildMetricsDocument(report)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
