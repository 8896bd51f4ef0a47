package emit

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/metrics"
)

var _ Emitter = (*NoopEmitter)(nil)

// NoopEmitter logs what would have been posted. Used in dry-run mode so
// admission decisions stay identical to normal runs while delivery is
// suppressed.
type NoopEmitter struct{}

func NewNoopEmitter() *NoopEmitter {
	return &NoopEmitter{}
}

func (e *NoopEmitter) Emit(_ context.Context, item fingerprint.Item, color int) error {
	slog.Info("Dry run, notification suppressed",
		"source", item.SourceName, "title", item.Title, "url", item.URL,
		"color", color, "hot_score", item.HotScore)
	return nil
}

func (e *NoopEmitter) EmitRunSummary(_ context.Context, snap metrics.Snapshot, _ int) error {
	slog.Info("Dry run, summary suppressed",
		"fresh", len(snap.FreshDeals), "scraped", snap.TotalScraped, "errors", len(snap.Errors))
	return nil
}
