// Package feed retrieves trending items from the upstream sources: an RSS
// baseline feed and an optional JSON search API used for enrichment. Each
// run walks the candidate lists sequentially and stops at the first source
// that yields items.
package feed

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/trends/internal/logger"
	"github.com/deusflow/trends/internal/trend"
)

// Fetcher retrieves trend items for one region.
type Fetcher struct {
	region     string
	httpClient *http.Client
	rssParser  *gofeed.Parser
	now        func() time.Time
}

// New builds a fetcher. The timeout applies per HTTP request.
func New(region string, timeout time.Duration) *Fetcher {
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client

	return &Fetcher{
		region:     region,
		httpClient: client,
		rssParser:  parser,
		now:        time.Now,
	}
}

// FetchBaseline walks the RSS candidates in order and returns the first
// non-empty item list. Every candidate exhausted or empty → FetchError.
func (f *Fetcher) FetchBaseline(ctx context.Context, urls []string) ([]trend.Item, error) {
	var lastErr error

	for _, raw := range urls {
		url := f.expandURL(raw)

		items, err := f.fetchRSS(ctx, url)
		if err != nil {
			logger.Warn("rss source failed, trying next", "url", url, "error", err)
			lastErr = err
			continue
		}
		if len(items) == 0 {
			logger.Warn("rss source returned no items, trying next", "url", url)
			continue
		}

		logger.Info("baseline fetched", "url", url, "items", len(items))
		return items, nil
	}

	return nil, &FetchError{Region: f.region, Attempts: len(urls), Err: lastErr}
}

// FetchEnrichment walks the JSON API candidates the same way. Enrichment is
// optional: callers treat an error here as "no enrichment", not a run
// failure.
func (f *Fetcher) FetchEnrichment(ctx context.Context, sources []APISource) ([]trend.Item, error) {
	var lastErr error

	for _, src := range sources {
		url := f.expandURL(src.URL)

		items, err := f.fetchAPI(ctx, url, src.Shape)
		if err != nil {
			logger.Warn("api source failed, trying next", "url", url, "error", err)
			lastErr = err
			continue
		}
		if len(items) == 0 {
			continue
		}

		logger.Info("enrichment fetched", "url", url, "items", len(items))
		return items, nil
	}

	if lastErr == nil && len(sources) == 0 {
		return nil, nil
	}
	return nil, &FetchError{Region: f.region, Attempts: len(sources), Err: lastErr}
}

// expandURL substitutes the {geo} placeholder with the configured region.
func (f *Fetcher) expandURL(url string) string {
	return strings.ReplaceAll(url, "{geo}", f.region)
}
