package announcement

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultSearchLimit is the recent-search quota per window.
	DefaultSearchLimit = 450

	// DefaultWindowSeconds is the quota window (15 minutes).
	DefaultWindowSeconds = 900
)

// RateLimiter enforces the search quota with a sliding window of request
// timestamps, plus a token bucket that spreads requests across the window
// instead of burning the whole budget in a burst.
type RateLimiter struct {
	mu         sync.Mutex
	maxRequest int
	window     time.Duration
	timestamps []time.Time
	bucket     *rate.Limiter
}

func NewRateLimiter(maxRequests, windowSeconds int) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = DefaultSearchLimit
	}
	if windowSeconds <= 0 {
		windowSeconds = DefaultWindowSeconds
	}
	window := time.Duration(windowSeconds) * time.Second
	perSecond := float64(maxRequests) / window.Seconds()
	return &RateLimiter{
		maxRequest: maxRequests,
		window:     window,
		bucket:     rate.NewLimiter(rate.Limit(perSecond), maxRequests/10+1),
	}
}

// pruneLocked drops timestamps that fell out of the window. Callers hold mu.
func (r *RateLimiter) pruneLocked(now time.Time) {
	cutoff := now.Add(-r.window)
	kept := r.timestamps[:0]
	for _, ts := range r.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.timestamps = kept
}

// Remaining returns how many requests are left in the current window.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(time.Now())
	if n := r.maxRequest - len(r.timestamps); n > 0 {
		return n
	}
	return 0
}

// Max returns the window quota.
func (r *RateLimiter) Max() int {
	return r.maxRequest
}

// CanRequest reports whether a request can be made right now.
func (r *RateLimiter) CanRequest() bool {
	return r.Remaining() > 0
}

// Wait blocks until a request slot is available or the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	for {
		r.mu.Lock()
		now := time.Now()
		r.pruneLocked(now)
		if len(r.timestamps) < r.maxRequest {
			r.mu.Unlock()
			return nil
		}
		// The window frees a slot when its oldest timestamp expires.
		oldest := r.timestamps[0]
		r.mu.Unlock()

		wait := time.Until(oldest.Add(r.window))
		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Record registers a completed request against the window.
func (r *RateLimiter) Record() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timestamps = append(r.timestamps, time.Now())
}
