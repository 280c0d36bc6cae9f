// Package schema has models, constants and formatting helpers shared by all parts of timesplit.
package schema

import "time"

// Interval is a timestamped span of tracked time attributed to one branch.
// It is a value record: every accessor returns a new value and never aliases tracker state.
type Interval struct {
	Subject   string     `json:"subject" yaml:"subject"`                           // Branch name
	Start     time.Time  `json:"start" yaml:"start"`                               // Instant the interval began
	End       *time.Time `json:"end,omitempty" yaml:"end,omitempty"`               // Instant it ended, nil while open
	Kind      Kind       `json:"kind" yaml:"kind"`                                 // Active or inactive bucket
	SessionID string     `json:"session_id,omitempty" yaml:"session_id,omitempty"` // Tracking session that produced it
}

// IsOpen reports whether the interval has not ended yet.
func (iv Interval) IsOpen() bool {
	return iv.End == nil
}

// EffectiveEnd returns the end instant, or now when the interval is still open.
func (iv Interval) EffectiveEnd(now time.Time) time.Time {
	if iv.End != nil {
		return *iv.End
	}
	return now
}

// Duration returns the elapsed time between start and the effective end.
func (iv Interval) Duration(now time.Time) time.Duration {
	return iv.EffectiveEnd(now).Sub(iv.Start)
}

// Closed returns a copy of the interval ending at the given instant.
func (iv Interval) Closed(at time.Time) Interval {
	end := at
	iv.End = &end
	return iv
}

// Snapshot returns a deep copy so callers cannot mutate the end pointer of the original.
func (iv Interval) Snapshot() Interval {
	if iv.End != nil {
		end := *iv.End
		iv.End = &end
	}
	return iv
}

// Valid reports whether a closed interval may be persisted or counted:
// non-empty subject, non-zero start, and an end strictly after the start.
func (iv Interval) Valid() bool {
	if iv.Subject == "" || iv.Start.IsZero() || iv.End == nil {
		return false
	}
	return iv.End.After(iv.Start)
}

// BranchMetric is the per-branch summary derived from a set of intervals.
// It is recomputed on demand and never persisted.
type BranchMetric struct {
	Subject   string        `json:"branch" yaml:"branch"`
	Active    time.Duration `json:"active_ns" yaml:"active_ns"`
	Inactive  time.Duration `json:"inactive_ns" yaml:"inactive_ns"`
	Total     time.Duration `json:"total_ns" yaml:"total_ns"`
	FirstSeen time.Time     `json:"first_seen" yaml:"first_seen"`
	LastSeen  time.Time     `json:"last_seen" yaml:"last_seen"`
}

// Summary holds the dashboard totals across every branch.
type Summary struct {
	Total        time.Duration `json:"total_ns" yaml:"total_ns"`
	Active       time.Duration `json:"active_ns" yaml:"active_ns"`
	Inactive     time.Duration `json:"inactive_ns" yaml:"inactive_ns"`
	BranchCount  int           `json:"branch_count" yaml:"branch_count"`
	MostUsed     string        `json:"most_used,omitempty" yaml:"most_used,omitempty"`
	MostUsedTime time.Duration `json:"most_used_ns,omitempty" yaml:"most_used_ns,omitempty"`
}

// Notice is a user-facing message raised by the session driver, e.g. a persistence failure.
type Notice struct {
	Level   NoticeLevel
	Message string
	At      time.Time
}

// ListQuery narrows the intervals returned by a store.
type ListQuery struct {
	Repo    string    // Repository root the intervals belong to; empty means all
	Subject string    // Branch filter; empty means all
	Since   time.Time // Only intervals ending after this instant; zero means no bound
	Limit   int       // Maximum rows; zero means no limit
}
