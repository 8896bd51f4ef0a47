package fetch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/deal-comb/app/sources"
)

var _ Fetcher = (*RSSFetcher)(nil)

// RSSFetcher retrieves candidates from RSS/Atom feeds.
type RSSFetcher struct {
	client       *Client
	gofeedParser *gofeed.Parser
}

func NewRSSFetcher(client *Client) *RSSFetcher {
	return &RSSFetcher{
		client:       client,
		gofeedParser: gofeed.NewParser(),
	}
}

func (f *RSSFetcher) Kind() sources.Kind {
	return sources.KindRSS
}

func (f *RSSFetcher) Fetch(ctx context.Context, src sources.Source) ([]Candidate, error) {
	data, err := f.client.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	feed, err := f.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > maxItemsPerSource {
		items = items[:maxItemsPerSource]
	}

	candidates := make([]Candidate, 0, len(items))
	for _, item := range items {
		c := Candidate{
			SourceName:  src.Name,
			Title:       truncate(item.Title, maxTitleLen),
			Body:        truncate(collapse(item.Description), maxBodyLen),
			URL:         item.Link,
			PublishedAt: item.PublishedParsed,
			Tags:        src.Tags,
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}
