package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/deal-comb/app/cfg"
	"github.com/lysyi3m/deal-comb/app/database"
	"github.com/lysyi3m/deal-comb/app/dedup"
	"github.com/lysyi3m/deal-comb/app/emit"
	"github.com/lysyi3m/deal-comb/app/fetch"
	"github.com/lysyi3m/deal-comb/app/metrics"
	"github.com/lysyi3m/deal-comb/app/sources"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler decides which sources are due, runs their cycles on a
// bounded worker pool, and tracks the report of the latest pass.
//
// A failing source is isolated: its task is retried with backoff and its
// due time is not advanced, while other due sources in the same pass
// proceed normally.
type Scheduler struct {
	registry     *sources.Registry
	fetchers     map[sources.Kind]fetch.Fetcher
	engine       dedup.EngineInterface
	emitter      emit.Emitter
	sourceRepo   database.SourceRepository
	interval     time.Duration
	workerCount  int
	fetchTimeout time.Duration
	force        string
	only         string
	retryDelay   time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup

	mu           sync.Mutex
	lastSnapshot *metrics.Snapshot
}

func NewScheduler(registry *sources.Registry, fetchers []fetch.Fetcher, engine dedup.EngineInterface,
	emitter emit.Emitter, sourceRepo database.SourceRepository) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	byKind := make(map[sources.Kind]fetch.Fetcher, len(fetchers))
	for _, f := range fetchers {
		byKind[f.Kind()] = f
	}

	return &Scheduler{
		registry:     registry,
		fetchers:     byKind,
		engine:       engine,
		emitter:      emitter,
		sourceRepo:   sourceRepo,
		interval:     time.Duration(c.SchedulerInterval) * time.Second,
		workerCount:  c.WorkerCount,
		fetchTimeout: time.Duration(c.FetchTimeout) * time.Second,
		force:        c.Force,
		only:         c.Source,
		retryDelay:   time.Second,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start runs the coordinating loop in the background. Each tick executes
// one scheduling pass.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		if _, err := s.RunPass(s.ctx); err != nil {
			slog.Error("Scheduling pass failed", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunPass(s.ctx); err != nil {
					slog.Error("Scheduling pass failed", "error", err)
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for in-flight tasks. Cancellation lands
// between cycles; committed dedup entries are never lost.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// RunPass executes one scheduling pass: select due sources, run their
// cycles on the worker pool, sweep expired entries, and record the run
// report.
func (s *Scheduler) RunPass(ctx context.Context) (*metrics.Report, error) {
	report := metrics.NewReport()
	due := s.dueSources(time.Now().UTC())

	slog.Debug("Scheduling pass", "due", len(due), "total", s.registry.Count())

	taskQueue := make(chan TaskInterface, len(due)+1)
	for _, src := range due {
		task, err := s.newCheckTask(src, report)
		if err != nil {
			slog.Warn("Skipping source", "source", src.Name, "error", err)
			continue
		}
		taskQueue <- task
	}
	taskQueue <- NewSweepExpiredTask(s.engine)
	close(taskQueue)

	var workers sync.WaitGroup
	for i := 0; i < s.workerCount; i++ {
		workers.Add(1)
		go func(id int) {
			defer workers.Done()
			for task := range taskQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}
				s.executeTask(ctx, id, task, report)
			}
		}(i)
	}
	workers.Wait()

	snap := report.Snapshot()
	s.mu.Lock()
	s.lastSnapshot = &snap
	s.mu.Unlock()

	return report, ctx.Err()
}

// CheckNow schedules an immediate cycle for a named source, bypassing its
// due time. Used by the HTTP API.
func (s *Scheduler) CheckNow(sourceName string) error {
	src := s.registry.Get(sourceName)
	if src == nil {
		return fmt.Errorf("unknown source %q", sourceName)
	}

	report := metrics.NewReport()
	task, err := s.newCheckTask(*src, report)
	if err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.executeTask(s.ctx, -1, task, report)
	}()

	return nil
}

// LastSnapshot returns the report of the most recent completed pass.
func (s *Scheduler) LastSnapshot() *metrics.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSnapshot
}

func (s *Scheduler) newCheckTask(src sources.Source, report *metrics.Report) (*CheckSourceTask, error) {
	fetcher, ok := s.fetchers[src.Kind]
	if !ok {
		return nil, fmt.Errorf("no fetch adapter for kind %q", src.Kind)
	}
	return NewCheckSourceTask(src, fetcher, s.engine, s.emitter, s.sourceRepo, report, s.fetchTimeout), nil
}

// dueSources selects the sources to run this pass. Force mode bypasses
// the due-time check for sources of the matching kind; the name filter
// restricts the pass to a single source.
func (s *Scheduler) dueSources(now time.Time) []sources.Source {
	var due []sources.Source

	for _, src := range s.registry.All() {
		if s.only != "" && src.Name != s.only {
			continue
		}
		if src.NeedsJS {
			slog.Debug("Source requires JS rendering, skipping", "source", src.Name)
			continue
		}

		if s.force == "all" || s.force == string(src.Kind) {
			due = append(due, src)
			continue
		}

		state, err := s.sourceRepo.GetState(src.Name)
		if err != nil {
			slog.Warn("Failed to get source state, skipping", "source", src.Name, "error", err)
			continue
		}
		if state != nil && state.NextCheckAt != nil && state.NextCheckAt.After(now) {
			slog.Debug("Source not due yet", "source", src.Name, "next_check_at", state.NextCheckAt)
			continue
		}

		due = append(due, src)
	}

	return due
}

func (s *Scheduler) executeTask(ctx context.Context, workerID int, task TaskInterface, report *metrics.Report) {
	task.Start()

	for {
		taskCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		err := task.Execute(taskCtx)
		cancel()

		if err == nil {
			return
		}

		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()),
			"id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if !task.CanRetry() || ctx.Err() != nil {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()),
				"source", task.GetSourceName(), "retry_count", task.GetRetryCount(), "last_error", err)
			if task.GetSourceName() != "" {
				report.AddError(task.GetSourceName(), err)
			}
			return
		}

		task.IncrementRetryCount()
		retryDelay := s.retryDelay << uint(task.GetRetryCount()-1)
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", task.GetSourceName(),
			"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay):
		}
	}
}
