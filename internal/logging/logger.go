// Package logging provides per-component logrus loggers for timesplit.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// EnvLogLevel overrides the configured level when set.
const EnvLogLevel = "TIMESPLIT_LOG_LEVEL"

// Options controls how every component logger is built.
type Options struct {
	Level  string // trace, debug, info, warn, error
	Format string // text or json
	File   string // optional log file; empty means stderr
}

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	options   = Options{Level: "warn", Format: "text"}
	output    io.Writer
)

// Configure sets the options used by loggers and rebuilds the existing ones.
// It opens the log file once; callers release it with Close.
func Configure(opts Options) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	var w io.Writer = os.Stderr
	if opts.File != "" {
		path := expandPath(opts.File)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	closeOutputLocked()
	options = opts
	output = w
	for component, entry := range loggers {
		configureLocked(entry.Logger, component)
	}
	return nil
}

// Close releases the log file opened by Configure, if any.
func Close() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	closeOutputLocked()
	output = nil
	for component, entry := range loggers {
		configureLocked(entry.Logger, component)
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	configureLocked(logger, component)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func configureLocked(logger *logrus.Logger, _ string) {
	levelStr := options.Level
	if env := os.Getenv(EnvLogLevel); env != "" {
		levelStr = env
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)

	w := output
	if w == nil {
		w = os.Stderr
	}
	logger.SetOutput(w)

	switch strings.ToLower(options.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		// Full timestamps when the output is not an interactive terminal (files, CI, pipes).
		interactive := w == os.Stderr && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    !interactive,
			DisableColors:    !interactive,
			DisableTimestamp: interactive,
		})
	}
}

func closeOutputLocked() {
	if f, ok := output.(*os.File); ok && f != os.Stderr && f != os.Stdout {
		_ = f.Close()
	}
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
