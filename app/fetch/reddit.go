package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/deal-comb/app/sources"
)

const redditBaseURL = "https://www.reddit.com"

var _ Fetcher = (*RedditFetcher)(nil)

// RedditFetcher retrieves new-post listings from the public Reddit JSON
// API for every subreddit in a category source.
type RedditFetcher struct {
	client  *Client
	baseURL string
}

func NewRedditFetcher(client *Client) *RedditFetcher {
	return &RedditFetcher{client: client, baseURL: redditBaseURL}
}

func (f *RedditFetcher) Kind() sources.Kind {
	return sources.KindReddit
}

// Fetch collects listings across the category's subreddits. A single
// failing subreddit is logged and skipped; the fetch only fails when no
// subreddit could be read at all.
func (f *RedditFetcher) Fetch(ctx context.Context, src sources.Source) ([]Candidate, error) {
	var candidates []Candidate
	var lastErr error
	fetched := 0

	for _, sub := range src.Subreddits {
		select {
		case <-ctx.Done():
			return candidates, ctx.Err()
		default:
		}

		posts, err := f.fetchSubreddit(ctx, src, sub)
		if err != nil {
			slog.Warn("Failed to fetch subreddit", "source", src.Name, "subreddit", sub, "error", err)
			lastErr = err
			continue
		}
		fetched++
		candidates = append(candidates, posts...)
	}

	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("all subreddits failed: %w", lastErr)
	}

	return candidates, nil
}

func (f *RedditFetcher) fetchSubreddit(ctx context.Context, src sources.Source, sub string) ([]Candidate, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d&raw_json=1", f.baseURL, sub, maxItemsPerSource)

	data, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var listing listingResponse
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	candidates := make([]Candidate, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		created := time.Unix(int64(d.CreatedUTC), 0).UTC()

		candidates = append(candidates, Candidate{
			SourceName:  src.Name,
			Title:       truncate(d.Title, maxTitleLen),
			Body:        fmt.Sprintf("r/%s · score %d · %d comments", sub, d.Score, d.NumComments),
			URL:         redditBaseURL + d.Permalink,
			PublishedAt: &created,
			Tags:        src.Tags,
		})
	}

	return candidates, nil
}

type listingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Permalink   string  `json:"permalink"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}
