package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsSingletonPerComponent(t *testing.T) {
	a := NewLogger("singleton-a")
	b := NewLogger("singleton-a")
	c := NewLogger("singleton-c")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "singleton-a", a.Data["component"])
}

func TestConfigureWritesToFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "logs", "timesplit.log")

	require.NoError(t, Configure(Options{Level: "debug", Format: "json", File: path}))
	t.Cleanup(func() {
		Close()
		_ = Configure(Options{Level: "warn", Format: "text"})
	})

	logger := NewLogger("file-test")
	assert.Equal(t, logrus.DebugLevel, logger.Logger.GetLevel())
	logger.Debug("hello from test")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello from test"`)
	assert.Contains(t, string(data), `"component":"file-test"`)
}

func TestEnvLevelOverridesOptions(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	require.NoError(t, Configure(Options{Level: "debug"}))
	t.Cleanup(func() { _ = Configure(Options{Level: "warn", Format: "text"}) })

	assert.Equal(t, logrus.ErrorLevel, NewLogger("env-test").Logger.GetLevel())
}

func TestInvalidLevelFallsBackToWarn(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	require.NoError(t, Configure(Options{Level: "chatty"}))
	t.Cleanup(func() { _ = Configure(Options{Level: "warn", Format: "text"}) })

	assert.Equal(t, logrus.WarnLevel, NewLogger("fallback-test").Logger.GetLevel())
}
