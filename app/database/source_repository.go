package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ SourceRepository = (*SQLSourceRepository)(nil)

// SQLSourceRepository handles database operations for source scheduling state
type SQLSourceRepository struct {
	db *DB
}

func NewSourceRepository(db *DB) *SQLSourceRepository {
	return &SQLSourceRepository{db: db}
}

// UpsertSource registers a configured source, keeping existing state when
// it is already known.
func (r *SQLSourceRepository) UpsertSource(name string) error {
	_, err := r.db.Exec(`
		INSERT INTO source_state (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING
	`, name)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}
	return nil
}

// GetState returns the scheduling state for a source, or nil when unknown.
func (r *SQLSourceRepository) GetState(name string) (*SourceState, error) {
	var s SourceState
	var lastChecked, nextCheck sql.NullTime

	err := r.db.QueryRow(`
		SELECT name, last_checked_at, next_check_at, last_error, checked_count, error_count
		FROM source_state WHERE name = ?
	`, name).Scan(&s.Name, &lastChecked, &nextCheck, &s.LastError, &s.CheckedCount, &s.ErrorCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source state: %w", err)
	}

	if lastChecked.Valid {
		s.LastCheckedAt = &lastChecked.Time
	}
	if nextCheck.Valid {
		s.NextCheckAt = &nextCheck.Time
	}

	return &s, nil
}

// GetAllStates returns the scheduling state of every known source.
func (r *SQLSourceRepository) GetAllStates() ([]SourceState, error) {
	rows, err := r.db.Query(`
		SELECT name, last_checked_at, next_check_at, last_error, checked_count, error_count
		FROM source_state ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get source states: %w", err)
	}
	defer rows.Close()

	var states []SourceState
	for rows.Next() {
		var s SourceState
		var lastChecked, nextCheck sql.NullTime
		err := rows.Scan(&s.Name, &lastChecked, &nextCheck, &s.LastError, &s.CheckedCount, &s.ErrorCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source state row: %w", err)
		}
		if lastChecked.Valid {
			s.LastCheckedAt = &lastChecked.Time
		}
		if nextCheck.Valid {
			s.NextCheckAt = &nextCheck.Time
		}
		states = append(states, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source state rows: %w", err)
	}

	return states, nil
}

// MarkChecked records a successful cycle and schedules the next one.
func (r *SQLSourceRepository) MarkChecked(name string, checkedAt, nextCheckAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE source_state
		SET last_checked_at = ?, next_check_at = ?, last_error = '',
		    checked_count = checked_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, checkedAt.UTC(), nextCheckAt.UTC(), name)
	if err != nil {
		return fmt.Errorf("failed to mark source checked: %w", err)
	}
	return nil
}

// MarkFailed records a failed cycle. Scheduling state is deliberately left
// untouched so the source is retried on the next pass instead of after a
// full TTL skip.
func (r *SQLSourceRepository) MarkFailed(name string, errMsg string) error {
	_, err := r.db.Exec(`
		UPDATE source_state
		SET last_error = ?, error_count = error_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE name = ?
	`, errMsg, name)
	if err != nil {
		return fmt.Errorf("failed to mark source failed: %w", err)
	}
	return nil
}
