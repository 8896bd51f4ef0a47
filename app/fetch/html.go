package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/lysyi3m/deal-comb/app/sources"
)

var _ Fetcher = (*HTMLFetcher)(nil)

// HTMLFetcher extracts candidates from scraped deal pages using the
// source's CSS selector.
type HTMLFetcher struct {
	client *Client
}

func NewHTMLFetcher(client *Client) *HTMLFetcher {
	return &HTMLFetcher{client: client}
}

func (f *HTMLFetcher) Kind() sources.Kind {
	return sources.KindHTML
}

func (f *HTMLFetcher) Fetch(ctx context.Context, src sources.Source) ([]Candidate, error) {
	data, err := f.client.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(src.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}

	var candidates []Candidate
	doc.Find(src.Selector).EachWithBreak(func(_ int, block *goquery.Selection) bool {
		title := block.AttrOr("alt", "")
		if title == "" {
			title = collapse(block.Text())
		}
		if title == "" {
			title = src.Name
		}

		link := src.URL
		if href, ok := block.Find("a[href]").First().Attr("href"); ok {
			link = resolveLink(base, href)
		}

		candidates = append(candidates, Candidate{
			SourceName: src.Name,
			Title:      truncate(title, maxTitleLen),
			Body:       truncate(collapse(block.Text()), maxBodyLen),
			URL:        link,
			Tags:       src.Tags,
		})

		return len(candidates) < maxItemsPerSource
	})

	return candidates, nil
}

// resolveLink makes scraped hrefs absolute against the page URL.
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
