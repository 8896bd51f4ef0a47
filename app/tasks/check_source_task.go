package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/deal-comb/app/database"
	"github.com/lysyi3m/deal-comb/app/dedup"
	"github.com/lysyi3m/deal-comb/app/emit"
	"github.com/lysyi3m/deal-comb/app/fetch"
	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/metrics"
	"github.com/lysyi3m/deal-comb/app/sources"
)

// CheckSourceTask runs one full cycle for a source: fetch, fingerprint,
// admit, emit, then advance the source's next due time. A failed fetch
// leaves the due time untouched so the source is retried on the next
// pass rather than after a full TTL skip.
type CheckSourceTask struct {
	Task
	Source       sources.Source
	fetcher      fetch.Fetcher
	engine       dedup.EngineInterface
	emitter      emit.Emitter
	sourceRepo   database.SourceRepository
	report       *metrics.Report
	fetchTimeout time.Duration

	// Fingerprints fully handled in an earlier attempt of this task.
	// A retry skips them so the run report counts each candidate once.
	handled map[string]bool
}

func NewCheckSourceTask(src sources.Source, fetcher fetch.Fetcher, engine dedup.EngineInterface,
	emitter emit.Emitter, sourceRepo database.SourceRepository, report *metrics.Report,
	fetchTimeout time.Duration) *CheckSourceTask {
	return &CheckSourceTask{
		Task:         NewTask(TaskTypeCheckSource, src.Name),
		Source:       src,
		fetcher:      fetcher,
		engine:       engine,
		emitter:      emitter,
		sourceRepo:   sourceRepo,
		report:       report,
		fetchTimeout: fetchTimeout,
		handled:      make(map[string]bool),
	}
}

func (t *CheckSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	candidates, err := t.fetchCandidates(ctx)
	if err != nil {
		t.markFailed(err)
		return fmt.Errorf("failed to fetch source: %w", err)
	}

	scrapedCount := 0
	duplicateCount := 0
	newCount := 0

	for _, candidate := range candidates {
		item := fingerprint.Run(candidate)
		if t.handled[item.Fingerprint] {
			continue
		}

		result, err := t.engine.Admit(item, t.Source.Policy)
		if err != nil {
			// Without a readable store there is no safe new-vs-duplicate
			// decision for this bucket; stop the cycle without emitting.
			// Flush the counts gathered so far so a retry only adds the
			// remaining, still-unhandled candidates.
			t.report.AddScraped(scrapedCount)
			t.report.AddDuplicates(duplicateCount)
			t.markFailed(err)
			return fmt.Errorf("failed to admit item: %w", err)
		}

		t.handled[item.Fingerprint] = true
		scrapedCount++

		if result.Decision == dedup.DecisionDuplicate {
			duplicateCount++
			continue
		}

		newCount++
		t.report.AddFresh(item.SourceName, item.Title, item.HotScore)

		if err := t.emitter.Emit(ctx, item, t.Source.Policy.Color); err != nil {
			// Delivery failure never rolls back the dedup entry; the item
			// stays admitted so it is not re-alerted forever.
			slog.Error("Failed to emit notification", "source", t.SourceName, "title", item.Title, "error", err)
		}
	}

	t.report.AddScraped(scrapedCount)
	t.report.AddDuplicates(duplicateCount)

	now := time.Now().UTC()
	if err := t.sourceRepo.MarkChecked(t.SourceName, now, now.Add(t.Source.Policy.TTL)); err != nil {
		return fmt.Errorf("failed to update source state: %w", err)
	}

	slog.Info("Task completed",
		"type", "CheckSource",
		"source", t.SourceName,
		"duration", t.GetDuration(),
		"total", len(candidates),
		"duplicates", duplicateCount,
		"new", newCount)

	return nil
}

// fetchCandidates bounds the adapter call with the per-source fetch
// timeout; a hung source must not stall the rest of the pass.
func (t *CheckSourceTask) fetchCandidates(ctx context.Context) ([]fetch.Candidate, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.fetchTimeout)
	defer cancel()

	return t.fetcher.Fetch(timeoutCtx, t.Source)
}

func (t *CheckSourceTask) markFailed(cause error) {
	if err := t.sourceRepo.MarkFailed(t.SourceName, cause.Error()); err != nil {
		slog.Error("Failed to record source failure", "source", t.SourceName, "error", err)
	}
}
