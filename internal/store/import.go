package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/timesplit/internal/contract"
	"github.com/huangsam/timesplit/schema"
)

// legacyEntry is one element of the timesplitter-data.json array
// written by the editor extension. Times are unix milliseconds.
type legacyEntry struct {
	Branch    string `json:"branch"`
	StartTime int64  `json:"startTime"`
	EndTime   *int64 `json:"endTime"`
	IsActive  bool   `json:"isActive"`
	Type      string `json:"type"`
}

// ImportResult counts what an import did with each entry.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportLegacyJSON reads a timesplitter-data.json document and records every
// complete entry under repo. Entries without an end time or with a
// non-positive duration are skipped.
func ImportLegacyJSON(s contract.IntervalStore, repo string, r io.Reader) (ImportResult, error) {
	var entries []legacyEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return ImportResult{}, fmt.Errorf("failed to decode legacy entries: %w", err)
	}

	var result ImportResult
	for _, e := range entries {
		iv, ok := e.toInterval()
		if !ok {
			result.Skipped++
			continue
		}
		if err := s.Record(repo, iv); err != nil {
			if errors.Is(err, ErrInvalidInterval) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Imported++
	}
	return result, nil
}

func (e legacyEntry) toInterval() (schema.Interval, bool) {
	if e.Branch == "" || e.StartTime <= 0 || e.EndTime == nil || *e.EndTime <= e.StartTime {
		return schema.Interval{}, false
	}
	kind := schema.InactiveKind
	if schema.Kind(e.Type) == schema.ActiveKind {
		kind = schema.ActiveKind
	}
	end := time.UnixMilli(*e.EndTime)
	return schema.Interval{
		Subject: e.Branch,
		Start:   time.UnixMilli(e.StartTime),
		End:     &end,
		Kind:    kind,
	}, true
}

// ExecuteImport imports a legacy data file into the global interval store.
func ExecuteImport(path, repo string) error {
	if path == "" {
		return errors.New("a file path is required for the import command")
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	result, err := ImportLegacyJSON(Manager.GetIntervalStore(), repo, file)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d intervals from %s (%d skipped)\n", result.Imported, path, result.Skipped)
	return nil
}
