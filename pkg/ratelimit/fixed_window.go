package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FixedWindowLimiter counts requests per key in fixed time windows. The first
// request in a window starts it; once max requests have been counted, further
// requests are rejected until the window expires.
type FixedWindowLimiter struct {
	store  Store
	window time.Duration
	max    int
}

// NewFixedWindow creates a fixed-window limiter.
func NewFixedWindow(store Store, window time.Duration, max int) (*FixedWindowLimiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive", ErrInvalidConfig)
	}
	if max <= 0 {
		return nil, fmt.Errorf("%w: max must be positive", ErrInvalidConfig)
	}

	return &FixedWindowLimiter{
		store:  store,
		window: window,
		max:    max,
	}, nil
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	count, resetAt, err := l.store.IncrementAndGet(ctx, key, l.window)
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	remaining := l.max - int(count)
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   count <= int64(l.max),
		Limit:     l.max,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !result.Allowed {
		result.RetryAfter = time.Until(resetAt)
		if result.RetryAfter < 0 {
			result.RetryAfter = 0
		}
	}

	return result, nil
}
