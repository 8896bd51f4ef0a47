package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/deal-comb/app/dedup"
)

// SweepExpiredTask drops stale dedup entries across all buckets. Admit
// already prunes lazily per bucket; the sweep keeps buckets that stopped
// receiving items from growing stale rows forever.
type SweepExpiredTask struct {
	Task
	engine dedup.EngineInterface
}

func NewSweepExpiredTask(engine dedup.EngineInterface) *SweepExpiredTask {
	return &SweepExpiredTask{
		Task:   NewTask(TaskTypeSweepExpired, ""),
		engine: engine,
	}
}

func (t *SweepExpiredTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	deleted, err := t.engine.Sweep(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to sweep expired entries: %w", err)
	}

	if deleted > 0 {
		slog.Info("Task completed", "type", "SweepExpired", "duration", t.GetDuration(), "deleted", deleted)
	}

	return nil
}
