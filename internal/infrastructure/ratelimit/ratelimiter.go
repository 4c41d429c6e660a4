// Package ratelimit keeps per-key request budgets in Redis so every instance
// sharing the store enforces one limit.
package ratelimit

import (
	"context"
	"time"
)

type RateLimiter interface {
	// Allow records a request for key and reports whether it fits in limit
	// requests per window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Remaining reports how many more requests key may make in the current window.
	Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}
