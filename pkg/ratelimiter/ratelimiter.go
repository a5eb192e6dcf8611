package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config defines the token bucket parameters shared by all stores.
type Config struct {
	// Capacity is the maximum number of tokens in the bucket.
	Capacity int
	// RefillRate is how many tokens are added per refill interval.
	RefillRate int
	// RefillInterval is how often tokens are added.
	RefillInterval time.Duration
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.Capacity <= 0 || c.RefillRate <= 0 || c.RefillInterval <= 0 {
		return fmt.Errorf("%w: capacity, refill rate, and interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result describes the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter returns how long the caller should wait before retrying.
func (r *Result) RetryAfter() time.Duration {
	return time.Until(r.ResetAt)
}

// Store persists bucket state. Implementations must be safe for
// concurrent use.
type Store interface {
	// ConsumeTokens removes tokens from the key's bucket and reports
	// the remaining balance, which is negative when the bucket is
	// overdrawn.
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	// Reset clears the bucket for key.
	Reset(ctx context.Context, key string) error
}

// RateLimiter applies a token bucket policy over a Store.
type RateLimiter struct {
	store  Store
	config Config
}

// New creates a rate limiter from a store and configuration.
func New(store Store, config Config) (*RateLimiter, error) {
	if store == nil {
		return nil, ErrStoreUnavailable
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RateLimiter{store: store, config: config}, nil
}

// Allow consumes one token for key and reports whether the request is
// within limits.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	remaining, resetAt, err := rl.store.ConsumeTokens(ctx, key, 1, rl.config)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Allowed:   remaining >= 0,
		Remaining: max(remaining, 0),
		ResetAt:   resetAt,
	}
	return res, nil
}

// Limit returns the configured bucket capacity.
func (rl *RateLimiter) Limit() int {
	return rl.config.Capacity
}

// Reset clears the bucket for key.
func (rl *RateLimiter) Reset(ctx context.Context, key string) error {
	return rl.store.Reset(ctx, key)
}
