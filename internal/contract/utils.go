package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/timesplit/schema"
)

// Color variables for console output.
var (
	ActiveColor   = color.New(color.FgGreen, color.Bold) // ActiveColor marks time spent working.
	InactiveColor = color.New(color.FgHiBlack)           // InactiveColor marks time spent away.
	BranchColor   = color.New(color.FgCyan)
	WarnColor     = color.New(color.FgYellow)
	ErrorColor    = color.New(color.FgRed, color.Bold)
)

// GetKindLabel returns the display label for an interval kind.
// Unknown kinds are shown as inactive, matching how they are aggregated.
func GetKindLabel(kind schema.Kind, useColors bool) string {
	text := string(schema.InactiveKind)
	if kind == schema.ActiveKind {
		text = string(schema.ActiveKind)
	}
	if !useColors {
		return text
	}
	if kind == schema.ActiveKind {
		return ActiveColor.Sprint(text)
	}
	return InactiveColor.Sprint(text)
}

// GetNoticeLabel returns a colored prefix for a notice level.
func GetNoticeLabel(level schema.NoticeLevel) string {
	switch level {
	case schema.NoticeError:
		return ErrorColor.Sprint("error")
	case schema.NoticeWarn:
		return WarnColor.Sprint("warn")
	default:
		return BranchColor.Sprint("info")
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// It supports simple glob patterns (using filepath.Match) when the pattern
// contains wildcard characters (*, ?, [ ]). Patterns ending with '/' are treated
// as path segments. Patterns starting with '.' are treated as suffix (extension) matches.
func ShouldIgnore(path string, excludes []string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, slashed); err == nil && ok {
				return true
			}
			// Also try matching against the base filename (e.g. *.swp)
			if ok, err := filepath.Match(pat, filepath.Base(slashed)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(slashed, ex) || strings.Contains(slashed, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(slashed, ex) {
				return true
			}
		case strings.Contains(slashed, ex):
			return true
		}
	}
	return false
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for interval storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timesplit.db"
	}
	return filepath.Join(homeDir, ".timesplit.db")
}

// GetLogFilePath returns the default log file used while the dashboard owns the terminal.
func GetLogFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".timesplit.log"
	}
	return filepath.Join(homeDir, ".timesplit.log")
}

// TruncateName shortens a branch name to maxWidth, keeping its head.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
