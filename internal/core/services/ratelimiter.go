package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/repotree/internal/core/ports/driven"
	"github.com/custodia-labs/repotree/internal/logger"
)

var _ driven.RateObserver = (*RateLimiter)(nil)

const (
	// Unlimited is returned by Remaining when limiting is disabled.
	Unlimited = -1

	// DefaultMinBuffer is the host-reported remaining count below which
	// acquisitions wait for the host's reset time.
	DefaultMinBuffer = 10

	// maxPrealloc caps the grant slice reserved up front; it grows on demand past that.
	maxPrealloc = 1024
)

// Clock abstracts time for the rate limiter.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RateLimiter bounds API calls to limit per sliding window.
//
// Three strategies are layered:
//  1. Optional pacing with a token bucket (requests per second).
//  2. Host feedback: when the host reports fewer than minBuffer requests
//     remaining, callers wait for the host's reset time.
//  3. A sliding-window log that is the hard ceiling.
//
// A limit of zero or less disables the ceiling.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time // ascending grant times inside the window
	clock  Clock
	pacer  *rate.Limiter

	minBuffer     int
	hostKnown     bool
	hostRemaining int
	hostReset     time.Time
}

// RateLimiterOption configures a RateLimiter.
type RateLimiterOption func(*RateLimiter)

// WithPacing spreads requests at rps with the given burst. rps <= 0 disables pacing.
func WithPacing(rps float64, burst int) RateLimiterOption {
	return func(r *RateLimiter) {
		if rps <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		r.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithClock replaces the wall clock. Used by tests.
func WithClock(c Clock) RateLimiterOption {
	return func(r *RateLimiter) {
		r.clock = c
	}
}

// WithMinBuffer sets the host-reported reserve.
func WithMinBuffer(n int) RateLimiterOption {
	return func(r *RateLimiter) {
		r.minBuffer = n
	}
}

// NewRateLimiter creates a limiter allowing limit acquisitions per window.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	r := &RateLimiter{
		limit:     limit,
		window:    window,
		clock:     realClock{},
		minBuffer: DefaultMinBuffer,
	}
	for _, opt := range opts {
		opt(r)
	}
	if limit <= 0 {
		logger.Warn("API rate limiting disabled")
	} else {
		r.stamps = make([]time.Time, 0, min(limit, maxPrealloc))
	}
	return r
}

// Acquire blocks until a request may be issued.
// It only returns an error when ctx is done.
func (r *RateLimiter) Acquire(ctx context.Context) error {
	if r.pacer != nil {
		if err := r.pacer.Wait(ctx); err != nil {
			return err
		}
	}
	if err := r.waitForHost(ctx); err != nil {
		return err
	}
	if r.limit <= 0 {
		return ctx.Err()
	}

	for {
		r.mu.Lock()
		now := r.clock.Now()
		r.evict(now)
		if len(r.stamps) < r.limit {
			r.stamps = append(r.stamps, now)
			r.mu.Unlock()
			return nil
		}
		wait := r.stamps[0].Add(r.window).Sub(now)
		r.mu.Unlock()

		logger.Debug("Rate limit reached (%d per %s), waiting %s", r.limit, r.window, wait.Round(time.Millisecond))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(wait):
		}
	}
}

// evict drops grants that left the window. Caller holds mu.
func (r *RateLimiter) evict(now time.Time) {
	i := 0
	for i < len(r.stamps) && !r.stamps[i].Add(r.window).After(now) {
		i++
	}
	if i > 0 {
		r.stamps = append(r.stamps[:0], r.stamps[i:]...)
	}
}

func (r *RateLimiter) waitForHost(ctx context.Context) error {
	r.mu.Lock()
	known, remaining, reset := r.hostKnown, r.hostRemaining, r.hostReset
	now := r.clock.Now()
	r.mu.Unlock()

	if !known || remaining >= r.minBuffer || !now.Before(reset) {
		return nil
	}

	wait := reset.Sub(now)
	logger.Warn("Host reports %d API requests remaining, waiting %s for reset", remaining, wait.Round(time.Second))
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.clock.After(wait):
	}

	r.mu.Lock()
	if !r.hostReset.After(reset) {
		r.hostKnown = false
	}
	r.mu.Unlock()
	return nil
}

// Observe records the host's own view of the quota, typically parsed from
// RateLimit-Remaining and RateLimit-Reset response headers.
func (r *RateLimiter) Observe(remaining int, reset time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostKnown = true
	r.hostRemaining = remaining
	r.hostReset = reset
}

// Remaining returns an approximate count of requests that can be issued
// without waiting, or Unlimited.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.limit <= 0 {
		if r.hostKnown {
			return r.hostRemaining
		}
		return Unlimited
	}
	r.evict(r.clock.Now())
	left := r.limit - len(r.stamps)
	if r.hostKnown && r.hostRemaining < left {
		left = r.hostRemaining
	}
	return left
}

// Limit returns the configured ceiling per window.
func (r *RateLimiter) Limit() int {
	return r.limit
}
