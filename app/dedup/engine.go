package dedup

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/deal-comb/app/database"
	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/sources"
)

// ErrPersistence marks a dedup store failure. A cycle hitting one cannot
// safely decide new-vs-duplicate and must not emit for the affected bucket.
var ErrPersistence = errors.New("dedup store unavailable")

var _ EngineInterface = (*Engine)(nil)

// Engine decides whether an incoming item is new or a near-duplicate of a
// live entry in its bucket.
//
// Bucket access is serialized by a per-bucket mutex held only across the
// prune/compare/insert step, never across fetch I/O. Within a bucket the
// engine guarantees that of two mutually similar items admitted
// concurrently, at most one survives as new.
type Engine struct {
	entries      database.EntryRepository
	globalMinHot float64

	mu      sync.Mutex
	buckets map[string]*sync.Mutex

	// now is replaceable in tests
	now func() time.Time
}

func NewEngine(entries database.EntryRepository, globalMinHot float64) *Engine {
	return &Engine{
		entries:      entries,
		globalMinHot: globalMinHot,
		buckets:      make(map[string]*sync.Mutex),
		now:          time.Now,
	}
}

// Admit runs the per-item procedure: prune expired entries lazily, scan
// the bucket's live entries for the best similarity, and either report a
// duplicate or insert a new entry.
//
// An item is a duplicate only when the best similarity reaches both the
// bucket's threshold and the global floor; the floor prevents false merges
// under very loose bucket thresholds.
func (e *Engine) Admit(item fingerprint.Item, policy sources.Policy) (Result, error) {
	bucket := policy.Type
	now := e.now().UTC()

	lock := e.bucketLock(bucket)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.entries.DeleteExpired(bucket, now); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	live, err := e.entries.GetLiveEntries(bucket, now)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	best := 0
	var representative *database.Entry
	for i := range live {
		score := fingerprint.Similarity(item.Signature, live[i].Signature)
		if live[i].Fingerprint == item.Fingerprint {
			score = 100
		}
		if score > best {
			best = score
			representative = &live[i]
		}
	}

	if representative != nil && best >= policy.SimilarityThreshold && float64(best) >= e.globalMinHot {
		if policy.RefreshOnRepeat {
			if err := e.entries.RefreshEntry(representative.ID, now, now.Add(policy.MaxAge)); err != nil {
				return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
		}
		slog.Debug("Duplicate suppressed", "bucket", bucket, "title", item.Title,
			"similarity", best, "representative", representative.Title)
		return Result{Decision: DecisionDuplicate, Similarity: best, Representative: representative}, nil
	}

	entry := database.Entry{
		Bucket:      bucket,
		Fingerprint: item.Fingerprint,
		Signature:   item.Signature,
		SourceName:  item.SourceName,
		Title:       item.Title,
		URL:         item.URL,
		FirstSeenAt: now,
		ExpiresAt:   now.Add(policy.MaxAge),
	}
	if err := e.entries.InsertEntry(entry); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return Result{Decision: DecisionNew, Similarity: best}, nil
}

// Sweep removes expired entries across every bucket. The scheduler runs
// this periodically; Admit also prunes lazily per bucket.
func (e *Engine) Sweep(now time.Time) (int64, error) {
	deleted, err := e.entries.DeleteAllExpired(now.UTC())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return deleted, nil
}

func (e *Engine) bucketLock(bucket string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.buckets[bucket]
	if !ok {
		lock = &sync.Mutex{}
		e.buckets[bucket] = lock
	}
	return lock
}
