package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"robovac/internal/model"
)

// Crawler drives a full run: discovery, then one extraction per product
// URL, strictly sequential through the single fetcher so one clock governs
// all outbound request timing.
type Crawler struct {
	Discoverer *Discoverer
	Extractor  *Extractor

	// MaxProducts and TimeBudget bound the crawl; zero means unbounded.
	// Hitting a bound is a normal outcome, not an error.
	MaxProducts int
	TimeBudget  time.Duration
}

func (c *Crawler) Run(ctx context.Context, catalogURL string) ([]model.RawProduct, error) {
	start := time.Now()

	urls, err := c.Discoverer.Discover(ctx, catalogURL)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}

	var records []model.RawProduct
	failed := 0
	for i, u := range urls {
		if ctx.Err() != nil {
			slog.Warn("crawl: cancelled", "collected", len(records))
			break
		}
		if c.MaxProducts > 0 && len(records) >= c.MaxProducts {
			slog.Info("crawl: product cap reached", "cap", c.MaxProducts)
			break
		}
		if c.TimeBudget > 0 && time.Since(start) > c.TimeBudget {
			slog.Info("crawl: time budget exhausted", "budget", c.TimeBudget, "collected", len(records))
			break
		}

		rec := c.Extractor.Extract(ctx, u)
		if rec.Status == model.FetchFailed {
			failed++
		}
		records = append(records, rec)

		if (i+1)%25 == 0 {
			slog.Info("crawl: progress", "done", i+1, "total", len(urls))
		}
	}

	slog.Info("crawl: finished",
		"records", len(records), "failed", failed, "elapsed", time.Since(start).Round(time.Second))
	return records, nil
}
