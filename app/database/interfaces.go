package database

import (
	"time"
)

// EntryRepository is the persistence contract the dedup engine relies on.
// Durability across process restarts is the store's responsibility; the
// engine only assumes it.
type EntryRepository interface {
	GetLiveEntries(bucket string, now time.Time) ([]Entry, error)
	InsertEntry(entry Entry) error
	RefreshEntry(id int64, firstSeenAt, expiresAt time.Time) error
	DeleteExpired(bucket string, now time.Time) (int64, error)
	DeleteAllExpired(now time.Time) (int64, error)
	CountLive(bucket string, now time.Time) (int, error)
	Buckets() ([]string, error)
}

// SourceRepository tracks per-source scheduling state.
type SourceRepository interface {
	UpsertSource(name string) error
	GetState(name string) (*SourceState, error)
	GetAllStates() ([]SourceState, error)
	MarkChecked(name string, checkedAt, nextCheckAt time.Time) error
	MarkFailed(name string, errMsg string) error
}
