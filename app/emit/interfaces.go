package emit

import (
	"context"

	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/metrics"
)

// Emitter dispatches a confirmed-new item as a notification. Failures are
// non-fatal to the pipeline: an item already admitted as new stays new
// even when delivery fails, so it is never re-alerted.
type Emitter interface {
	Emit(ctx context.Context, item fingerprint.Item, color int) error
	EmitRunSummary(ctx context.Context, snap metrics.Snapshot, color int) error
}
