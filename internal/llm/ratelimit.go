package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// rateLimiter implements a simple token bucket refilled once per minute.
type rateLimiter struct {
	lastRefill time.Time
	tokens     int
	capacity   int
	mu         sync.Mutex
}

// newRateLimiter creates a rate limiter allowing requestsPerMinute requests.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &rateLimiter{
		tokens:     requestsPerMinute,
		capacity:   requestsPerMinute,
		lastRefill: time.Now(),
	}
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// tryAcquire attempts to acquire a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if elapsed := time.Since(rl.lastRefill); elapsed >= time.Minute {
		rl.tokens = rl.capacity
		rl.lastRefill = time.Now()
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}
	return false
}

// limitedCompleter wraps a Completer with request rate limiting.
type limitedCompleter struct {
	client  Completer
	limiter *rateLimiter
}

func (l *limitedCompleter) Complete(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.wait(ctx); err != nil {
		return "", err
	}
	return l.client.Complete(ctx, req)
}
