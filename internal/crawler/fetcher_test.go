package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newTestFetcher(cfg FetcherConfig) (*Fetcher, *fakeClock) {
	f := NewFetcher(cfg)
	fc := &fakeClock{now: time.Unix(1700000000, 0)}
	f.clock = fc
	return f, fc
}

func TestFetch_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>listing</body></html>"))
	}))
	defer srv.Close()

	f, _ := newTestFetcher(FetcherConfig{Retries: 3})
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "listing")
}

func TestFetch_EnforcesMinDelayBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f, fc := newTestFetcher(FetcherConfig{MinDelay: 3 * time.Second})

	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, fc.sleeps, "first request must not wait")

	_, err = f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, fc.sleeps, 1)
	assert.Equal(t, 3*time.Second, fc.sleeps[0])
}

func TestFetch_RetriesOn500WithBackoff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	f, fc := newTestFetcher(FetcherConfig{Retries: 3, BackoffBase: time.Second})

	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.EqualValues(t, 3, calls.Load())
	// exponential backoff before the second and third attempts
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, fc.sleeps)
}

func TestFetch_NoRetryOn404(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(FetcherConfig{Retries: 3, BackoffBase: time.Second})

	_, err := f.Fetch(context.Background(), srv.URL)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, http.StatusNotFound, ferr.Status)
	assert.False(t, ferr.Transient)
	assert.EqualValues(t, 1, calls.Load())
}

func TestFetch_TypedErrorAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f, _ := newTestFetcher(FetcherConfig{Retries: 2, BackoffBase: time.Millisecond})

	_, err := f.Fetch(context.Background(), srv.URL)
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.Transient)
	assert.Equal(t, srv.URL, ferr.URL)
	assert.EqualValues(t, 3, calls.Load(), "initial attempt plus two retries")
}

func TestFetch_MalformedTargetFailsWithoutRequest(t *testing.T) {
	f, fc := newTestFetcher(FetcherConfig{Retries: 3, MinDelay: time.Second})

	_, err := f.Fetch(context.Background(), "://not-a-url")
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	assert.False(t, ferr.Transient)
	assert.Empty(t, fc.sleeps)
}

func TestFetch_CancelledContextStopsRetrying(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, _ := newTestFetcher(FetcherConfig{Retries: 3})
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
