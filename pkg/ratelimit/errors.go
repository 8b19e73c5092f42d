package ratelimit

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid rate limit configuration")
	ErrStoreFailure  = errors.New("rate limit store failure")
)
