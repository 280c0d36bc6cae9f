package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/timesplit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKindLabel(t *testing.T) {
	tests := []struct {
		name  string
		kind  schema.Kind
		label string
	}{
		{"active", schema.ActiveKind, "active"},
		{"inactive", schema.InactiveKind, "inactive"},
		{"unknown shown as inactive", schema.Kind("passive"), "inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.label, GetKindLabel(tt.kind, false))
			// Colored output still contains the plain label
			assert.Contains(t, GetKindLabel(tt.kind, true), tt.label)
		})
	}
}

func TestGetNoticeLabel(t *testing.T) {
	assert.Contains(t, GetNoticeLabel(schema.NoticeError), "error")
	assert.Contains(t, GetNoticeLabel(schema.NoticeWarn), "warn")
	assert.Contains(t, GetNoticeLabel(schema.NoticeInfo), "info")
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "report.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		excludes []string
		expected bool
	}{
		{"no excludes", "main.go", nil, false},
		{"git dir prefix", ".git/index.lock", DefaultExcludes, true},
		{"nested segment", "web/node_modules/react/index.js", []string{"node_modules/"}, true},
		{"extension suffix", "notes.swp", []string{".swp"}, true},
		{"glob on base name", "src/app.min.js", []string{"*.min.js"}, true},
		{"substring", "tmp-backup/file.go", []string{"backup"}, true},
		{"unrelated file", "cmd/track.go", DefaultExcludes, false},
		{"blank pattern skipped", "main.go", []string{"  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestGetDBFilePath(t *testing.T) {
	path := GetDBFilePath()
	assert.True(t, strings.HasSuffix(path, ".timesplit.db"))

	home, err := os.UserHomeDir()
	if err == nil {
		assert.Equal(t, filepath.Join(home, ".timesplit.db"), path)
	}
	assert.True(t, strings.HasSuffix(GetLogFilePath(), ".timesplit.log"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "feature...", TruncateName("feature/very-long-name", 10))
	assert.Equal(t, "main", TruncateName("main", 10))
	assert.Equal(t, "abcdef", TruncateName("abcdef", 3), "too narrow to truncate")
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
