// Package ratelimiter provides token bucket rate limiting with
// pluggable storage backends: an in-memory store for single-process
// deployments and a Redis store for shared limits across processes.
//
//	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       100,
//		RefillRate:     100,
//		RefillInterval: time.Minute,
//	})
//
//	res, err := limiter.Allow(ctx, clientIP)
//	if err == nil && !res.Allowed {
//		// reject with Retry-After: res.RetryAfter()
//	}
package ratelimiter
