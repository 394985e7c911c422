package camsync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

// retryDelays is the backoff schedule between fetch attempts.
var retryDelays = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	20 * time.Second,
}

const maxFetchAttempts = 5

// Fetcher performs rate-limited GET requests with retries.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher. A nil client uses [http.DefaultClient];
// requestsPerSec <= 0 disables rate limiting.
func NewFetcher(client *http.Client, requestsPerSec float64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSec), 1)
	}
	return &Fetcher{client: client, limiter: limiter}
}

// Fetch GETs the url and returns the response body.
//
// Transient failures retry up to five times on the fixed backoff schedule.
// A 404 is permanent and returns immediately without further attempts.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := retry.DoWithData(
		func() ([]byte, error) {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, retry.Unrecoverable(err)
			}
			return f.get(ctx, url)
		},
		retry.Context(ctx),
		retry.Attempts(maxFetchAttempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			if int(n) < len(retryDelays) {
				return retryDelays[n]
			}
			return retryDelays[len(retryDelays)-1]
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	return body, nil
}

// ErrNotFound404 marks a permanent 404 response.
var ErrNotFound404 = fmt.Errorf("404 not found")

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, retry.Unrecoverable(fmt.Errorf("%w: %s", ErrNotFound404, url))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
