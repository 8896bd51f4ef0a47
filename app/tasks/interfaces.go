package tasks

import (
	"context"
	"time"

	"github.com/lysyi3m/deal-comb/app/metrics"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetSourceName() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// TaskSchedulerInterface defines the interface for scheduling operations.
// Used by the main application and the HTTP API to drive source checks.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	RunPass(ctx context.Context) (*metrics.Report, error)
	CheckNow(sourceName string) error
	LastSnapshot() *metrics.Snapshot
}
