package transport

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Graph allows roughly 10,000 requests per 10 minutes per app and tenant;
// SharePoint throttles earlier under load. Stay well below both.
const (
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 5
	defaultRetryAfter        = 30 * time.Second
)

// RateLimiter is a token bucket that also honours server Retry-After hints.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter allows rps requests per second with the given burst. A
// non-positive rps disables the bucket but still honours Retry-After.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be sent or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Throttled pushes every future request back by the server's Retry-After
// value. A 429 without one falls back to a fixed delay; a 503 without one
// leaves the limiter alone. It returns the delay applied, or zero.
func (r *RateLimiter) Throttled(status int, retryAfter string) time.Duration {
	switch {
	case status == http.StatusTooManyRequests:
	case status == http.StatusServiceUnavailable && retryAfter != "":
	default:
		return 0
	}
	d := parseRetryAfter(retryAfter)

	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(d); at.After(r.retryAt) {
		r.retryAt = at
	}
	return d
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return defaultRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := time.Parse(time.RFC1123, v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return defaultRetryAfter
}
