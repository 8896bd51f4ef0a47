package database

import (
	"fmt"
	"time"
)

var _ EntryRepository = (*SQLEntryRepository)(nil)

// SQLEntryRepository handles database operations for dedup entries
type SQLEntryRepository struct {
	db *DB
}

func NewEntryRepository(db *DB) *SQLEntryRepository {
	return &SQLEntryRepository{db: db}
}

// GetLiveEntries returns the non-expired entries for a bucket.
func (r *SQLEntryRepository) GetLiveEntries(bucket string, now time.Time) ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT id, bucket, fingerprint, signature, source_name, title, url,
		       first_seen_at, expires_at
		FROM dedup_entries
		WHERE bucket = ? AND expires_at > ?
		ORDER BY first_seen_at ASC, id ASC
	`, bucket, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get live entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(&e.ID, &e.Bucket, &e.Fingerprint, &e.Signature,
			&e.SourceName, &e.Title, &e.URL, &e.FirstSeenAt, &e.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}

	return entries, nil
}

// InsertEntry records a new dedup entry. The insert is a single statement
// and therefore atomic; a fingerprint collision within the bucket updates
// the existing record instead of creating a second one.
func (r *SQLEntryRepository) InsertEntry(entry Entry) error {
	_, err := r.db.Exec(`
		INSERT INTO dedup_entries (
			bucket, fingerprint, signature, source_name, title, url,
			first_seen_at, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (bucket, fingerprint) DO UPDATE SET
			signature = excluded.signature,
			source_name = excluded.source_name,
			title = excluded.title,
			url = excluded.url,
			first_seen_at = excluded.first_seen_at,
			expires_at = excluded.expires_at
	`, entry.Bucket, entry.Fingerprint, entry.Signature, entry.SourceName,
		entry.Title, entry.URL, entry.FirstSeenAt.UTC(), entry.ExpiresAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// RefreshEntry slides an entry's freshness window. Only used when the
// bucket's policy enables refresh-on-repeat.
func (r *SQLEntryRepository) RefreshEntry(id int64, firstSeenAt, expiresAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE dedup_entries
		SET first_seen_at = ?, expires_at = ?
		WHERE id = ?
	`, firstSeenAt.UTC(), expiresAt.UTC(), id)

	if err != nil {
		return fmt.Errorf("failed to refresh entry: %w", err)
	}

	return nil
}

// DeleteExpired removes stale entries from a bucket and reports how many
// were dropped.
func (r *SQLEntryRepository) DeleteExpired(bucket string, now time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM dedup_entries WHERE bucket = ? AND expires_at <= ?
	`, bucket, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted entries: %w", err)
	}

	return deleted, nil
}

// DeleteAllExpired sweeps stale entries across every bucket.
func (r *SQLEntryRepository) DeleteAllExpired(now time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM dedup_entries WHERE expires_at <= ?
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired entries: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count swept entries: %w", err)
	}

	return deleted, nil
}

// CountLive returns the number of live entries in a bucket.
func (r *SQLEntryRepository) CountLive(bucket string, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM dedup_entries WHERE bucket = ? AND expires_at > ?
	`, bucket, now.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count live entries: %w", err)
	}
	return count, nil
}

// Buckets returns the distinct bucket keys present in the store.
func (r *SQLEntryRepository) Buckets() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT bucket FROM dedup_entries ORDER BY bucket`)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("failed to scan bucket row: %w", err)
		}
		buckets = append(buckets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bucket rows: %w", err)
	}

	return buckets, nil
}
