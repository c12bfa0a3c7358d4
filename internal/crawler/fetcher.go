package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"robovac/internal/observability"
)

const maxBodyBytes = 5 * 1024 * 1024

// Clock abstracts request timing so the limiter can run against a fake
// clock in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// FetchError is the fetcher's terminal failure: a non-transient response,
// or a transient one that survived every retry.
type FetchError struct {
	URL       string
	Status    int // zero when the request never completed
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

type FetcherConfig struct {
	UserAgent   string
	MinDelay    time.Duration // minimum gap between network requests
	Retries     int           // extra attempts after the first
	BackoffBase time.Duration
	Timeout     time.Duration
}

// Fetcher issues all outbound requests for a crawl. It is the sole owner of
// request timing: the minimum inter-request delay is measured from the end
// of the previous request, and the caller blocks until it has elapsed. Not
// safe for concurrent use; the crawl is sequential by design.
type Fetcher struct {
	client   *http.Client
	clock    Clock
	cache    *PageCache
	cfg      FetcherConfig
	lastDone time.Time
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		clock:  systemClock{},
		cfg:    cfg,
	}
}

// SetCache installs a page cache consulted before the network. Cached pages
// bypass the rate limiter.
func (f *Fetcher) SetCache(c *PageCache) { f.cache = c }

// Fetch returns the page body, retrying transient failures (timeouts, 5xx,
// connection resets) with exponential backoff. Non-transient failures (4xx,
// malformed URLs) fail immediately. On exhaustion the error is a
// *FetchError rather than a panic past this boundary.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("malformed target: %w", err)}
	}

	if f.cache != nil {
		if body, ok := f.cache.Get(ctx, rawURL); ok {
			slog.Debug("fetch: cache hit", "url", rawURL)
			return body, nil
		}
	}

	var last *FetchError
	for attempt := 0; attempt <= f.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{URL: rawURL, Err: err}
		}
		if attempt > 0 {
			backoff := f.cfg.BackoffBase << (attempt - 1)
			slog.Warn("fetch: retrying", "url", rawURL, "attempt", attempt, "backoff", backoff)
			observability.FetchRetries.Inc()
			f.clock.Sleep(backoff)
		}

		f.throttle()
		body, ferr := f.attempt(ctx, rawURL)
		f.lastDone = f.clock.Now()

		if ferr == nil {
			observability.PagesFetched.Inc()
			slog.Info("fetch: ok", "url", rawURL, "bytes", len(body))
			if f.cache != nil {
				f.cache.Put(ctx, rawURL, body)
			}
			return body, nil
		}

		slog.Warn("fetch: attempt failed",
			"url", rawURL, "status", ferr.Status, "transient", ferr.Transient, "err", ferr.Err)
		last = ferr
		if !ferr.Transient {
			break
		}
	}

	observability.FetchFailures.Inc()
	return nil, last
}

// throttle blocks until MinDelay has passed since the end of the previous
// request.
func (f *Fetcher) throttle() {
	if f.lastDone.IsZero() {
		return
	}
	if wait := f.cfg.MinDelay - f.clock.Now().Sub(f.lastDone); wait > 0 {
		f.clock.Sleep(wait)
	}
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) ([]byte, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		// timeouts and connection resets are worth another attempt
		return nil, &FetchError{URL: rawURL, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &FetchError{
			URL: rawURL, Status: resp.StatusCode, Transient: true,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	default:
		return nil, &FetchError{
			URL: rawURL, Status: resp.StatusCode,
			Err: fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Transient: true, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}
