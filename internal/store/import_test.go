package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const legacyData = `[
  {"branch": "main", "startTime": 1000, "endTime": 61000, "isActive": false, "type": "active"},
  {"branch": "main", "startTime": 61000, "endTime": 91000, "isActive": false, "type": "inactive"},
  {"branch": "feature", "startTime": 91000, "endTime": null, "isActive": true, "type": "active"},
  {"branch": "feature", "startTime": 0, "endTime": 5000, "isActive": false, "type": "active"},
  {"branch": "feature", "startTime": 9000, "endTime": 9000, "isActive": false, "type": "active"},
  {"branch": "", "startTime": 1, "endTime": 2, "isActive": false, "type": "active"}
]`

func TestImportLegacyJSON(t *testing.T) {
	s := newMemoryStore(t)

	result, err := ImportLegacyJSON(s, "/repo", strings.NewReader(legacyData))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2, Skipped: 4}, result)

	records, err := s.List(schema.ListQuery{Repo: "/repo"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.ActiveKind, records[0].Interval.Kind)
	assert.Equal(t, time.Minute, records[0].Interval.End.Sub(records[0].Interval.Start))
	assert.Equal(t, schema.InactiveKind, records[1].Interval.Kind)

	// Importing the same file twice keeps one copy
	again, err := ImportLegacyJSON(s, "/repo", strings.NewReader(legacyData))
	require.NoError(t, err)
	assert.Equal(t, 2, again.Imported)
	records, err = s.List(schema.ListQuery{Repo: "/repo"})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestImportLegacyJSON_Malformed(t *testing.T) {
	_, err := ImportLegacyJSON(&MockIntervalStore{}, "/repo", strings.NewReader(`{"branch": "main"}`))
	assert.Error(t, err)
}

func TestImportLegacyJSON_StoreFailure(t *testing.T) {
	m := &MockIntervalStore{}
	m.On("Record", "/repo", mock.Anything).Return(errors.New("disk full")).Once()

	_, err := ImportLegacyJSON(m, "/repo", strings.NewReader(legacyData))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	m.AssertExpectations(t)
}
