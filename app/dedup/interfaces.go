package dedup

import (
	"time"

	"github.com/lysyi3m/deal-comb/app/fingerprint"
	"github.com/lysyi3m/deal-comb/app/sources"
)

// EngineInterface defines the admission contract consumed by the task
// scheduler.
type EngineInterface interface {
	Admit(item fingerprint.Item, policy sources.Policy) (Result, error)
	Sweep(now time.Time) (int64, error)
}
