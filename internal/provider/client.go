package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// maxResponseBytes bounds how much of a provider response we will read.
// Search and detail pages are well under this; anything larger is abuse.
const maxResponseBytes = 4 << 20

// Client is the shared HTTP client adapters fetch through. Every request
// carries the parent context's deadline plus the client's own timeout, waits
// on a per-provider rate limiter, and runs through a circuit breaker so a
// provider that starts failing hard is skipped instead of hammered.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	headers map[string]string
}

// NewClient builds a client for one provider. rps is the sustained request
// rate allowed against that provider; headers are applied to every request.
func NewClient(name string, timeout time.Duration, rps float64, headers map[string]string) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if rps <= 0 {
		rps = 2
	}
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		breaker: breaker,
		headers: headers,
	}
}

// Get fetches url and returns the response body. Non-2xx responses are
// errors. Redirect-following is the default http.Client behavior.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("%s returned %d", url, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	})
}
