package outwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/internal/parquet"
	"github.com/huangsam/timesplit/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// intervalsFixedWidth is the space taken by every interval column except the branch.
const intervalsFixedWidth = 75

// WriteIntervalResults outputs stored intervals, dispatching based on the output format configured.
func WriteIntervalResults(records []schema.IntervalRecord, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, buildIntervalDocuments(records))
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, buildIntervalDocuments(records))
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIntervalsCSV(w, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteIntervalsParquet(parquet.ConvertIntervalRecords(records), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeIntervalsTable(records, cfg, duration, w)
		}, "Wrote table")
	}
}

func writeIntervalsTable(records []schema.IntervalRecord, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Branch", "Kind", "Start", "End", "Duration"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	branchWidth := getMaxTableBranchWidth(cfg, intervalsFixedWidth)
	now := time.Now()
	var data [][]string
	var total time.Duration
	for _, r := range records {
		iv := r.Interval
		d := iv.Duration(now)
		total += d
		end := "-"
		if iv.End != nil {
			end = schema.FormatTimestamp(*iv.End)
		}
		data = append(data, []string{
			contract.TruncateName(iv.Subject, branchWidth),
			contract.GetKindLabel(iv.Kind, cfg.UseColors),
			schema.FormatTimestamp(iv.Start),
			end,
			schema.FormatDurationSimple(d),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Showing %d intervals (total: %s)\n", len(records), schema.FormatDurationDetailed(total)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Report completed in %v. Store backend: %s\n", duration, cfg.Backend); err != nil {
		return err
	}
	return nil
}

func writeIntervalsCSV(w io.Writer, records []schema.IntervalRecord) error {
	header := []string{"repo", "branch", "kind", "start", "end", "duration_s", "session_id"}
	now := time.Now()
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			iv := r.Interval
			var end time.Time
			if iv.End != nil {
				end = *iv.End
			}
			rec := []string{
				r.Repo,
				iv.Subject,
				string(iv.Kind),
				csvTime(iv.Start),
				csvTime(end),
				seconds(iv.Duration(now)),
				iv.SessionID,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

type intervalDocument struct {
	Repo      string     `json:"repo" yaml:"repo"`
	Branch    string     `json:"branch" yaml:"branch"`
	Kind      string     `json:"kind" yaml:"kind"`
	Start     time.Time  `json:"start" yaml:"start"`
	End       *time.Time `json:"end,omitempty" yaml:"end,omitempty"`
	Seconds   int64      `json:"duration_s" yaml:"duration_s"`
	SessionID string     `json:"session_id,omitempty" yaml:"session_id,omitempty"`
}

func buildIntervalDocuments(records []schema.IntervalRecord) []intervalDocument {
	now := time.Now()
	docs := make([]intervalDocument, len(records))
	for i, r := range records {
		iv := r.Interval.Snapshot()
		docs[i] = intervalDocument{
			Repo:      r.Repo,
			Branch:    iv.Subject,
			Kind:      string(iv.Kind),
			Start:     iv.Start.UTC(),
			End:       iv.End,
			Seconds:   int64(iv.Duration(now) / time.Second),
			SessionID: iv.SessionID,
		}
		if docs[i].End != nil {
			utc := docs[i].End.UTC()
			docs[i].End = &utc
		}
	}
	return docs
}

// IntervalsJSON returns the indented JSON array of records, as written by --output json.
func IntervalsJSON(records []schema.IntervalRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, buildIntervalDocuments(records)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
