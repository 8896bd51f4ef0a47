package fetch

import (
	"context"

	"github.com/lysyi3m/deal-comb/app/sources"
)

// Fetcher is the capability interface a source-kind adapter implements.
// The scheduler and dedup engine are fully decoupled from adapter
// internals; they only see normalized candidates.
type Fetcher interface {
	Kind() sources.Kind
	Fetch(ctx context.Context, src sources.Source) ([]Candidate, error)
}
