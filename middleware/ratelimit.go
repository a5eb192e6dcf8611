package middleware

import (
	"net/http"
	"strconv"

	"github.com/relayhttp/relay/core/handler"
	"github.com/relayhttp/relay/core/response"
	"github.com/relayhttp/relay/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx handler.Context) bool
	// Limiter is the rate limiting implementation to use (required)
	Limiter *ratelimiter.RateLimiter
	// KeyExtractor defines how to extract the rate limiting key from
	// requests (default: client address)
	KeyExtractor func(ctx handler.Context) string
	// SetHeaders determines whether to include rate limit information
	// in response headers
	SetHeaders bool
}

// RateLimit creates a rate limiting middleware with the provided
// configuration. Requests over the limit receive a 429 with the
// canonical JSON error body. Panics if no limiter is provided.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("middleware: rate limit requires a limiter")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx handler.Context) string {
			return ctx.Request().RemoteAddr
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			res, err := cfg.Limiter.Allow(ctx, cfg.KeyExtractor(ctx))
			if err != nil {
				// A broken store must not take the API down with it.
				return next(ctx)
			}

			if cfg.SetHeaders {
				h := ctx.ResponseWriter().Header()
				h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limiter.Limit()))
				h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
				h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
			}

			if !res.Allowed {
				ctx.ResponseWriter().Header().Set("Retry-After",
					strconv.Itoa(int(res.RetryAfter().Seconds())+1))
				return response.Error(response.ErrTooManyRequests.
					WithHint("retry after " + res.ResetAt.Format(http.TimeFormat)))
			}

			return next(ctx)
		}
	}
}
