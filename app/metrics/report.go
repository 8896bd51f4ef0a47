package metrics

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// FreshDeal is one confirmed-new item in a run report.
type FreshDeal struct {
	Source   string  `json:"source"`
	Title    string  `json:"title"`
	HotScore float64 `json:"hot_score"`
}

// Snapshot is the serializable form of a run report.
type Snapshot struct {
	StartedAt    time.Time           `json:"started_at"`
	TotalScraped int                 `json:"total_scraped"`
	Duplicates   int                 `json:"duplicates"`
	FreshDeals   []FreshDeal         `json:"fresh_deals"`
	Errors       map[string][]string `json:"errors"`
}

// Report accumulates counters for a scheduling pass. Safe for concurrent
// use by the worker pool.
type Report struct {
	mu sync.Mutex

	startedAt    time.Time
	totalScraped int
	duplicates   int
	freshDeals   []FreshDeal
	errors       map[string][]string
}

func NewReport() *Report {
	return &Report{
		startedAt:  time.Now().UTC(),
		freshDeals: []FreshDeal{},
		errors:     make(map[string][]string),
	}
}

func (r *Report) AddScraped(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalScraped += count
}

func (r *Report) AddDuplicates(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duplicates += count
}

func (r *Report) AddFresh(source, title string, hotScore float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.freshDeals = append(r.freshDeals, FreshDeal{Source: source, Title: title, HotScore: hotScore})
}

func (r *Report) AddError(source string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[source] = append(r.errors[source], err.Error())
}

func (r *Report) FreshCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.freshDeals)
}

func (r *Report) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, errs := range r.errors {
		count += len(errs)
	}
	return count
}

// Snapshot returns a copy safe to serialize outside the lock.
func (r *Report) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		StartedAt:    r.startedAt,
		TotalScraped: r.totalScraped,
		Duplicates:   r.duplicates,
		FreshDeals:   make([]FreshDeal, len(r.freshDeals)),
		Errors:       make(map[string][]string, len(r.errors)),
	}
	copy(snap.FreshDeals, r.freshDeals)
	for k, v := range r.errors {
		snap.Errors[k] = append([]string(nil), v...)
	}
	return snap
}

// WriteFile writes the report as JSON, the run artifact operators consume.
func (r *Report) WriteFile(path string) error {
	snap := r.Snapshot()

	data, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
