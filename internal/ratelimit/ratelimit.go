// Package ratelimit provides the admission controls shared by every
// outbound caller: a per-key token bucket and a per-run call budget.
package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter hands out one token bucket per key (hostname, provider name).
// All callers targeting the same backend share the same bucket.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// New creates a limiter allowing reqPerSec sustained requests per key
// with the given burst.
func New(reqPerSec float64, burst int) *Limiter {
	return &Limiter{
		m:     make(map[string]*rate.Limiter),
		limit: rate.Limit(reqPerSec),
		burst: burst,
	}
}

func (l *Limiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.m[key]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.m[key] = lim
	return lim
}

// Wait blocks until the bucket for key releases a token, or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if err := l.limiterFor(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", key, err)
	}
	return nil
}

// WaitURL rate-limits by the hostname of raw. Unparseable URLs share a
// single fallback bucket.
func (l *Limiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return l.Wait(ctx, "_")
	}
	return l.Wait(ctx, u.Host)
}

// Budget caps the number of paid external calls in one run. Once
// exhausted, callers degrade to fallback behavior instead of calling out.
type Budget struct {
	mu        sync.Mutex
	remaining int
}

// NewBudget creates a budget of n calls. A negative n means unlimited.
func NewBudget(n int) *Budget {
	return &Budget{remaining: n}
}

// Allow consumes one call from the budget, reporting whether the caller
// may proceed.
func (b *Budget) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.remaining < 0 {
		return true
	}
	if b.remaining == 0 {
		return false
	}
	b.remaining--
	return true
}

// Remaining reports how many calls are left. Negative means unlimited.
func (b *Budget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}
