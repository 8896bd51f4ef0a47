package dedup

import (
	"github.com/lysyi3m/deal-comb/app/database"
)

// Decision is the outcome of admitting an item into a bucket.
type Decision int

const (
	DecisionNew Decision = iota
	DecisionDuplicate
)

func (d Decision) String() string {
	if d == DecisionDuplicate {
		return "duplicate"
	}
	return "new"
}

// Result carries the decision together with the best similarity found and,
// for duplicates, the live entry that suppressed the item.
type Result struct {
	Decision       Decision
	Similarity     int
	Representative *database.Entry
}
