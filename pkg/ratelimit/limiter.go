// Package ratelimit throttles record producers such as query and scan
// streams.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter is implemented by rate limiters.
type Limiter interface {
	// Allow takes a token if one is available.
	Allow() bool
	// Wait blocks until a token is available or ctx is done.
	Wait(ctx context.Context) error
	SetRate(rate float64)
	Stats() Stats
}

// Stats describes a limiter's state.
type Stats struct {
	Rate            float64       `json:"rate"`
	Burst           int           `json:"burst"`
	AllowedRequests int64         `json:"allowed_requests"`
	BlockedRequests int64         `json:"blocked_requests"`
	CurrentTokens   float64       `json:"current_tokens"`
	AverageWaitTime time.Duration `json:"average_wait_time"`
}

// New returns a limiter for perSecond records per second. A rate of zero or
// less disables throttling.
func New(perSecond int) Limiter {
	if perSecond <= 0 {
		return Unlimited{}
	}
	return NewTokenBucket(float64(perSecond), perSecond)
}

// TokenBucket adds tokens at a constant rate up to burst.
type TokenBucket struct {
	rate     float64
	burst    int
	tokens   float64
	lastTime time.Time
	now      func() time.Time

	allowedRequests int64
	blockedRequests int64
	totalWaitTime   int64

	mu sync.Mutex
}

// NewTokenBucket starts with a full bucket.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		rate:     rate,
		burst:    burst,
		tokens:   float64(burst),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

// Allow takes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens >= 1.0 {
		tb.tokens--
		atomic.AddInt64(&tb.allowedRequests, 1)
		return true
	}

	atomic.AddInt64(&tb.blockedRequests, 1)
	return false
}

// Wait blocks until a token is available.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	start := tb.now()

	for {
		tb.mu.Lock()
		tb.refill()

		if tb.tokens >= 1.0 {
			tb.tokens--
			atomic.AddInt64(&tb.allowedRequests, 1)
			atomic.AddInt64(&tb.totalWaitTime, tb.now().Sub(start).Nanoseconds())
			tb.mu.Unlock()
			return nil
		}

		deficit := 1.0 - tb.tokens
		waitTime := time.Duration(deficit / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		timer := time.NewTimer(waitTime)
		select {
		case <-timer.C:
			continue
		case <-ctx.Done():
			timer.Stop()
			atomic.AddInt64(&tb.blockedRequests, 1)
			return ctx.Err()
		}
	}
}

func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastTime).Seconds()

	tb.tokens += elapsed * tb.rate
	if tb.tokens > float64(tb.burst) {
		tb.tokens = float64(tb.burst)
	}

	tb.lastTime = now
}

// SetRate changes the refill rate.
func (tb *TokenBucket) SetRate(rate float64) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill()
	tb.rate = rate
}

// Stats returns the limiter's counters.
func (tb *TokenBucket) Stats() Stats {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	allowed := atomic.LoadInt64(&tb.allowedRequests)
	var avgWait time.Duration
	if allowed > 0 {
		avgWait = time.Duration(atomic.LoadInt64(&tb.totalWaitTime) / allowed)
	}

	return Stats{
		Rate:            tb.rate,
		Burst:           tb.burst,
		AllowedRequests: allowed,
		BlockedRequests: atomic.LoadInt64(&tb.blockedRequests),
		CurrentTokens:   tb.tokens,
		AverageWaitTime: avgWait,
	}
}

// Unlimited never throttles.
type Unlimited struct{}

func (Unlimited) Allow() bool                    { return true }
func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
func (Unlimited) SetRate(float64)                {}
func (Unlimited) Stats() Stats                   { return Stats{} }
