package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhttp/relay/core/handler"
	"github.com/relayhttp/relay/core/response"
	"github.com/relayhttp/relay/core/router"
	"github.com/relayhttp/relay/middleware"
	"github.com/relayhttp/relay/pkg/ratelimiter"
)

func newLimitedRouter(t *testing.T, capacity int, cfg middleware.RateLimitConfig) router.Router[*router.Context] {
	t.Helper()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)
	cfg.Limiter = limiter

	r := router.New[*router.Context]()
	r.Use(middleware.RateLimit[*router.Context](cfg))
	r.Get("/x", func(ctx *router.Context) handler.Response {
		return response.String("ok")
	})
	return r
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	t.Run("allows within capacity then rejects", func(t *testing.T) {
		t.Parallel()

		r := newLimitedRouter(t, 2, middleware.RateLimitConfig{})

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"too_many_requests"`)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		r := newLimitedRouter(t, 1, middleware.RateLimitConfig{
			KeyExtractor: func(ctx handler.Context) string {
				return ctx.Request().Header.Get("X-API-Key")
			},
		})

		send := func(key string) int {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-API-Key", key)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			return rec.Code
		}

		assert.Equal(t, http.StatusOK, send("alice"))
		assert.Equal(t, http.StatusTooManyRequests, send("alice"))
		assert.Equal(t, http.StatusOK, send("bob"))
	})

	t.Run("sets informational headers when enabled", func(t *testing.T) {
		t.Parallel()

		r := newLimitedRouter(t, 3, middleware.RateLimitConfig{SetHeaders: true})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("skip bypasses the limiter", func(t *testing.T) {
		t.Parallel()

		r := newLimitedRouter(t, 1, middleware.RateLimitConfig{
			Skip: func(ctx handler.Context) bool { return true },
		})

		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("store failure fails open", func(t *testing.T) {
		t.Parallel()

		limiter, err := ratelimiter.New(failingStore{}, ratelimiter.Config{
			Capacity:       1,
			RefillRate:     1,
			RefillInterval: time.Minute,
		})
		require.NoError(t, err)

		r := router.New[*router.Context]()
		r.Use(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{Limiter: limiter}))
		r.Get("/x", func(ctx *router.Context) handler.Response {
			return response.String("ok")
		})

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("nil limiter panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			middleware.RateLimit[*router.Context](middleware.RateLimitConfig{})
		})
	})
}

type failingStore struct{}

func (failingStore) ConsumeTokens(ctx context.Context, key string, tokens int, config ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("store down")
}

func (failingStore) Reset(ctx context.Context, key string) error {
	return errors.New("store down")
}
