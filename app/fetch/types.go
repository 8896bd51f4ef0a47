package fetch

import (
	"time"
)

// Candidate is a normalized item produced by a fetch adapter. It has not
// been fingerprinted yet.
type Candidate struct {
	SourceName  string
	Title       string
	Body        string
	URL         string
	PublishedAt *time.Time
	Tags        []string
}
