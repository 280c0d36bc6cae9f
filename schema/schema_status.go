package schema

import "time"

// StoreStatus represents the status of the interval store.
type StoreStatus struct {
	Backend         string    `json:"backend"`
	Target          string    `json:"target,omitempty"`
	Connected       bool      `json:"connected"`
	TotalIntervals  int       `json:"total_intervals"`
	TotalBranches   int       `json:"total_branches"`
	TotalSessions   int       `json:"total_sessions"`
	OldestStartTime time.Time `json:"oldest_start_time"`
	LastEndTime     time.Time `json:"last_end_time"`
	SchemaVersion   uint      `json:"schema_version"`
}

// IntervalRecord represents a row from the timesplit_intervals table.
type IntervalRecord struct {
	Repo       string
	Interval   Interval
	RecordedAt time.Time
}
