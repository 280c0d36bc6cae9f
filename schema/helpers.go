package schema

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeFormat is the layout used for first/last seen columns.
const DateTimeFormat = "2006-01-02 15:04:05"

// FormatDurationSimple renders the two most significant units, e.g. "1d 2h", "3h 4m", "5m 6s" or "7s".
// Negative durations render as "0s".
func FormatDurationSimple(d time.Duration) string {
	seconds := int64(max(d, 0) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatDurationDetailed renders weeks:days:hours:minutes:seconds, e.g. "1w:2d:03h:04m:05s".
// The week and day segments are omitted while they are zero.
func FormatDurationDetailed(d time.Duration) string {
	seconds := int64(max(d, 0) / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	weeks := days / 7

	var b strings.Builder
	if weeks > 0 {
		fmt.Fprintf(&b, "%dw:", weeks)
	}
	if weeks > 0 || days%7 > 0 {
		fmt.Fprintf(&b, "%dd:", days%7)
	}
	fmt.Fprintf(&b, "%02dh:%02dm:%02ds", hours%24, minutes%60, seconds%60)
	return b.String()
}

// FormatElapsed renders the running time of an open interval as "Xm Ys".
func FormatElapsed(d time.Duration) string {
	seconds := int64(max(d, 0) / time.Second)
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// FormatStatusLine returns the one-line tracking status, e.g. "● main (3m 12s)".
// A nil interval yields "Not tracking".
func FormatStatusLine(current *Interval, now time.Time) string {
	if current == nil {
		return "Not tracking"
	}
	icon := "●"
	if current.Kind != ActiveKind {
		icon = "○"
	}
	return fmt.Sprintf("%s %s (%s)", icon, current.Subject, FormatElapsed(current.Duration(now)))
}

// FormatTimestamp renders an instant in local time, or "-" when it is zero.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(DateTimeFormat)
}

// ActiveRatio returns the share of active time in [0, 1], or 0 when nothing was tracked.
func (m BranchMetric) ActiveRatio() float64 {
	if m.Total <= 0 {
		return 0
	}
	return float64(m.Active) / float64(m.Total)
}
