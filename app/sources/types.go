package sources

import (
	"time"
)

// Kind identifies the fetch adapter a source is handled by. The set is
// closed: configuration listing a source under any other key is rejected
// at load time.
type Kind string

const (
	KindRSS    Kind = "rss"
	KindHTML   Kind = "html"
	KindReddit Kind = "reddit"
)

// Policy is the effective per-type policy a source resolves to.
type Policy struct {
	Type                string
	TTL                 time.Duration
	SimilarityThreshold int
	MaxAge              time.Duration
	RefreshOnRepeat     bool
	Color               int
}

// Source is a fully resolved feed source. Exactly one of URL/Selector or
// Subreddits is populated depending on Kind.
type Source struct {
	Name       string
	Kind       Kind
	URL        string
	Selector   string
	Subreddits []string
	Tags       []string
	NeedsJS    bool
	Policy     Policy
}

// Bucket returns the dedup scope for items from this source. Duplicate
// detection is evaluated per feed type, not per source.
func (s *Source) Bucket() string {
	return s.Policy.Type
}
