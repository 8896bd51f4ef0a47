package database

import (
	"time"
)

// Entry is a live dedup record. It suppresses near-duplicate items in its
// bucket until ExpiresAt passes.
type Entry struct {
	ID          int64
	Bucket      string
	Fingerprint string
	Signature   string
	SourceName  string
	Title       string
	URL         string
	FirstSeenAt time.Time
	ExpiresAt   time.Time
}

// SourceState tracks per-source scheduling state.
type SourceState struct {
	Name          string
	LastCheckedAt *time.Time
	NextCheckAt   *time.Time
	LastError     string
	CheckedCount  int
	ErrorCount    int
}
