package ratelimit

import (
	"context"
	"time"
)

// Result describes the limiter's decision for a single request.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Store tracks request counts per key within a window. IncrementAndGet must be
// atomic: concurrent callers on the same key must observe distinct counts.
type Store interface {
	// IncrementAndGet increments the counter for key and returns the new
	// count together with the window's expiry. The window starts (and the
	// TTL is set) on the first increment.
	IncrementAndGet(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
	// Delete removes the counter for key.
	Delete(ctx context.Context, key string) error
}
