package core

import (
	"context"
	"time"
)

// Context keys for report options
type contextKey string

const nowKey contextKey = "now"

// WithNow pins the instant used to close open intervals in reports.
func WithNow(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, nowKey, now)
}

// nowFromContext returns the pinned instant, or the wall clock when none is set.
func nowFromContext(ctx context.Context) time.Time {
	if now, ok := ctx.Value(nowKey).(time.Time); ok && !now.IsZero() {
		return now
	}
	return time.Now()
}
