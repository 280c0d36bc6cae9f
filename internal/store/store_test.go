package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

func newMemoryStore(t *testing.T) *IntervalStoreImpl {
	t.Helper()
	s, err := NewIntervalStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func closed(subject string, kind schema.Kind, startMin, endMin int) schema.Interval {
	end := base.Add(time.Duration(endMin) * time.Minute)
	return schema.Interval{
		Subject: subject,
		Start:   base.Add(time.Duration(startMin) * time.Minute),
		End:     &end,
		Kind:    kind,
	}
}

func TestRecordAndList(t *testing.T) {
	s := newMemoryStore(t)

	iv := closed("main", schema.ActiveKind, 0, 10)
	iv.SessionID = "session-1"
	require.NoError(t, s.Record("/repo/a", iv))
	require.NoError(t, s.Record("/repo/a", closed("main", schema.InactiveKind, 10, 15)))
	require.NoError(t, s.Record("/repo/a", closed("feature", schema.ActiveKind, 15, 40)))
	require.NoError(t, s.Record("/repo/b", closed("main", schema.ActiveKind, 5, 6)))

	t.Run("all", func(t *testing.T) {
		records, err := s.List(schema.ListQuery{})
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "/repo/a", records[0].Repo)
		assert.Equal(t, "session-1", records[0].Interval.SessionID)
		assert.True(t, base.Equal(records[0].Interval.Start))
		require.NotNil(t, records[0].Interval.End)
		assert.Equal(t, 10*time.Minute, records[0].Interval.End.Sub(records[0].Interval.Start))
		assert.False(t, records[0].RecordedAt.IsZero())
		assert.Equal(t, "/repo/b", records[1].Repo, "ordered by start time")
	})

	t.Run("by repo", func(t *testing.T) {
		records, err := s.List(schema.ListQuery{Repo: "/repo/a"})
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("by subject", func(t *testing.T) {
		records, err := s.List(schema.ListQuery{Repo: "/repo/a", Subject: "main"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, schema.InactiveKind, records[1].Interval.Kind)
	})

	t.Run("since", func(t *testing.T) {
		records, err := s.List(schema.ListQuery{Since: base.Add(12 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "main", records[0].Interval.Subject)
		assert.Equal(t, "feature", records[1].Interval.Subject)
	})

	t.Run("limit", func(t *testing.T) {
		records, err := s.List(schema.ListQuery{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})
}

func TestRecordDuplicateIsNotAnError(t *testing.T) {
	s := newMemoryStore(t)
	iv := closed("main", schema.ActiveKind, 0, 10)

	require.NoError(t, s.Record("/repo", iv))
	require.NoError(t, s.Record("/repo", iv))

	records, err := s.List(schema.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRecordRejectsInvalid(t *testing.T) {
	s := newMemoryStore(t)
	open := schema.Interval{Subject: "main", Start: base, Kind: schema.ActiveKind}

	tests := []struct {
		name string
		iv   schema.Interval
	}{
		{"empty subject", closed("", schema.ActiveKind, 0, 1)},
		{"zero duration", closed("main", schema.ActiveKind, 5, 5)},
		{"negative duration", closed("main", schema.ActiveKind, 5, 4)},
		{"open interval", open},
		{"zero start", schema.Interval{Subject: "main", End: open.Closed(base).End, Kind: schema.ActiveKind}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Record("/repo", tt.iv)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInterval))
		})
	}

	records, err := s.List(schema.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetStatus(t *testing.T) {
	s := newMemoryStore(t)

	status, err := s.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.Equal(t, ":memory:", status.Target)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalIntervals)
	assert.Equal(t, uint(2), status.SchemaVersion)
	assert.True(t, status.OldestStartTime.IsZero())

	a := closed("main", schema.ActiveKind, 0, 10)
	a.SessionID = "s1"
	b := closed("feature", schema.ActiveKind, 10, 30)
	b.SessionID = "s2"
	require.NoError(t, s.Record("/repo", a))
	require.NoError(t, s.Record("/repo", b))

	status, err = s.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalIntervals)
	assert.Equal(t, 2, status.TotalBranches)
	assert.Equal(t, 2, status.TotalSessions)
	assert.True(t, base.Equal(status.OldestStartTime))
	assert.True(t, base.Add(30*time.Minute).Equal(status.LastEndTime))
}

func TestNoneBackend(t *testing.T) {
	s, err := NewIntervalStore(schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, s.Record("/repo", closed("main", schema.ActiveKind, 0, 1)))
	assert.ErrorIs(t, s.Record("/repo", closed("main", schema.ActiveKind, 1, 1)), ErrInvalidInterval)

	records, err := s.List(schema.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)

	status, err := s.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, s.Close())
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "timesplit.db")

	s, err := NewIntervalStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Record("/repo", closed("main", schema.ActiveKind, 0, 3)))
	require.NoError(t, s.Close())

	reopened, err := NewIntervalStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.List(schema.ListQuery{Repo: "/repo"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestUnsupportedBackend(t *testing.T) {
	_, err := NewIntervalStore(schema.DatabaseBackend("redis"), "")
	assert.Error(t, err)
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`timesplit_intervals`", quoteTableName(intervalsTable, schema.MySQLBackend))
	assert.Equal(t, `"timesplit_intervals"`, quoteTableName(intervalsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"timesplit_intervals"`, quoteTableName(intervalsTable, schema.SQLiteBackend))

	assert.NoError(t, validateTableName(intervalsTable))
	assert.Error(t, validateTableName(""))
	assert.Error(t, validateTableName("intervals; DROP TABLE x"))
}

func TestPostgresTarget(t *testing.T) {
	assert.Equal(t, "db.local/timesplit", postgresTarget("host=db.local port=5432 user=u password=secret dbname=timesplit"))
	assert.Equal(t, "/", postgresTarget(""))
}

func TestIntervals(t *testing.T) {
	iv := closed("main", schema.ActiveKind, 0, 1)
	out := Intervals([]schema.IntervalRecord{{Repo: "/repo", Interval: iv}})
	require.Len(t, out, 1)
	assert.Equal(t, iv, out[0])
}
