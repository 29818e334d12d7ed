package offers

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// FetcherConfig controls the plain-HTTP collector.
type FetcherConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// CollyFetcher implements Fetcher with a gocolly collector. One fetcher
// serves a whole run; each Fetch clones the base collector so callbacks
// never leak between requests.
type CollyFetcher struct {
	cfg  FetcherConfig
	base *colly.Collector
}

// NewCollyFetcher builds a fetcher.
func NewCollyFetcher(cfg FetcherConfig) *CollyFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = false
	return &CollyFetcher{cfg: cfg, base: c}
}

// Fetch executes a single GET and returns the raw body.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	collector := f.base.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
	case visitErr := <-done:
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
		}
		if visitErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, visitErr)
		}
	}
	if body == nil {
		return nil, fmt.Errorf("fetch %s: empty response", url)
	}
	return body, nil
}
