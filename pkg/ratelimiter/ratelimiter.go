// Package ratelimiter throttles the LLM-backed API routes. A token bucket is
// enough here: LLM calls are slow and expensive, bursts are fine, sustained
// hammering is not.
package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiter reports whether one more request may proceed.
type RateLimiter interface {
	Allow() bool
}

// TokenBucket refills at a fixed rate up to a burst capacity.
type TokenBucket struct {
	rate     float64
	capacity float64

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a full bucket refilling at rate tokens per second.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:     rate,
		capacity: float64(capacity),
		tokens:   float64(capacity),
		last:     time.Now(),
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	if elapsed := now.Sub(tb.last); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.last = now
	}

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

var _ RateLimiter = (*TokenBucket)(nil)
