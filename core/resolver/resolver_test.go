package resolver_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayhttp/relay/core/resolver"
)

func TestCacheStatic(t *testing.T) {
	t.Parallel()

	t.Run("returns the registered value", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Static("greeting", "hello"))

		v, err := c.Get(context.Background(), "greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})

	t.Run("function values are plain values", func(t *testing.T) {
		t.Parallel()

		fn := func() string { return "not invoked" }
		c := resolver.New()
		c.Add(resolver.Static("fn", fn))

		v, err := c.Get(context.Background(), "fn")
		require.NoError(t, err)
		_, ok := v.(func() string)
		assert.True(t, ok)
	})

	t.Run("unknown key is nil without error", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		v, err := c.Get(context.Background(), "missing")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}

func TestCacheLazy(t *testing.T) {
	t.Parallel()

	t.Run("produces once and caches", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		c := resolver.New()
		c.Add(resolver.Lazy("db", func(ctx context.Context) (any, error) {
			calls.Add(1)
			return "conn", nil
		}))

		for i := 0; i < 3; i++ {
			v, err := c.Get(context.Background(), "db")
			require.NoError(t, err)
			assert.Equal(t, "conn", v)
		}
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("producer error is returned and not cached", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("connect refused")
		var calls atomic.Int32
		c := resolver.New()
		c.Add(resolver.Lazy("db", func(ctx context.Context) (any, error) {
			if calls.Add(1) == 1 {
				return nil, sentinel
			}
			return "conn", nil
		}))

		_, err := c.Get(context.Background(), "db")
		assert.ErrorIs(t, err, sentinel)

		v, err := c.Get(context.Background(), "db")
		require.NoError(t, err)
		assert.Equal(t, "conn", v)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("lazy without producer resolves to nil", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Lazy("empty", nil))

		v, err := c.Get(context.Background(), "empty")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("adapter wraps the produced value once", func(t *testing.T) {
		t.Parallel()

		var adapted atomic.Int32
		c := resolver.New()
		c.Add(resolver.Lazy("svc", func(ctx context.Context) (any, error) {
			return "raw", nil
		}, resolver.WithAdapter(func(v any) any {
			adapted.Add(1)
			return "adapted:" + v.(string)
		})))

		for i := 0; i < 2; i++ {
			v, err := c.Get(context.Background(), "svc")
			require.NoError(t, err)
			assert.Equal(t, "adapted:raw", v)
		}
		assert.Equal(t, int32(1), adapted.Load())
	})

	t.Run("adapter skipped on producer error", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Lazy("svc", func(ctx context.Context) (any, error) {
			return nil, errors.New("nope")
		}, resolver.WithAdapter(func(v any) any {
			t.Fatal("adapter must not run on error")
			return v
		})))

		_, err := c.Get(context.Background(), "svc")
		assert.Error(t, err)
	})
}

func TestCachePurge(t *testing.T) {
	t.Parallel()

	t.Run("stale value triggers a reload", func(t *testing.T) {
		t.Parallel()

		var gen atomic.Int32
		stale := true
		c := resolver.New()
		c.Add(resolver.Lazy("cfg", func(ctx context.Context) (any, error) {
			return int(gen.Add(1)), nil
		}, resolver.WithPurge(func(v any) bool {
			return stale
		})))

		v, err := c.Get(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		// Still stale: every access reproduces.
		v, err = c.Get(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		stale = false
		v, err = c.Get(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("purge applies to static entries with a producer", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		e := resolver.Static("token", "old", resolver.WithPurge(func(v any) bool {
			return v == "old"
		}))
		e.Producer = func(ctx context.Context) (any, error) {
			return "fresh", nil
		}
		c.Add(e)

		v, err := c.Get(context.Background(), "token")
		require.NoError(t, err)
		assert.Equal(t, "fresh", v)
	})
}

func TestCacheReload(t *testing.T) {
	t.Parallel()

	t.Run("forces a fresh production", func(t *testing.T) {
		t.Parallel()

		var gen atomic.Int32
		c := resolver.New()
		c.Add(resolver.Lazy("cfg", func(ctx context.Context) (any, error) {
			return int(gen.Add(1)), nil
		}))

		v, err := c.Get(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		v, err = c.Reload(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 2, v)

		v, err = c.Get(context.Background(), "cfg")
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	})

	t.Run("without a producer returns the current value", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Static("greeting", "hello"))

		v, err := c.Reload(context.Background(), "greeting")
		require.NoError(t, err)
		assert.Equal(t, "hello", v)
	})
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()

	t.Run("concurrent gets share one production", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		started := make(chan struct{})
		release := make(chan struct{})

		c := resolver.New()
		c.Add(resolver.Lazy("slow", func(ctx context.Context) (any, error) {
			calls.Add(1)
			close(started)
			<-release
			return "done", nil
		}))

		const n = 8
		results := make([]any, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				v, err := c.Get(context.Background(), "slow")
				assert.NoError(t, err)
				results[i] = v
			}()
		}

		<-started
		// Give the remaining goroutines a moment to pile onto the
		// pending load before releasing the producer.
		time.Sleep(10 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
		for _, v := range results {
			assert.Equal(t, "done", v)
		}
	})

	t.Run("waiter honors context cancellation", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})
		defer close(release)

		c := resolver.New()
		c.Add(resolver.Lazy("slow", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "done", nil
		}))

		go c.Get(context.Background(), "slow") //nolint:errcheck
		<-started

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Get(ctx, "slow")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("delete during load abandons caching", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		started := make(chan struct{})
		release := make(chan struct{})

		c := resolver.New()
		c.Add(resolver.Lazy("svc", func(ctx context.Context) (any, error) {
			calls.Add(1)
			close(started)
			<-release
			return "stale", nil
		}))

		done := make(chan any)
		go func() {
			v, _ := c.Get(context.Background(), "svc")
			done <- v
		}()

		<-started
		c.Delete("svc")
		close(release)

		// The in-flight caller still receives its value.
		assert.Equal(t, "stale", <-done)

		// But nothing was cached for the deleted key.
		v, err := c.Get(context.Background(), "svc")
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("replacement during load wins over the stale result", func(t *testing.T) {
		t.Parallel()

		started := make(chan struct{})
		release := make(chan struct{})

		c := resolver.New()
		c.Add(resolver.Lazy("svc", func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "old", nil
		}))

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Get(context.Background(), "svc") //nolint:errcheck
		}()

		<-started
		c.Add(resolver.Static("svc", "new"))
		close(release)
		<-done

		v, err := c.Get(context.Background(), "svc")
		require.NoError(t, err)
		assert.Equal(t, "new", v)
	})
}

func TestCacheManagement(t *testing.T) {
	t.Parallel()

	t.Run("keys lists registrations", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Static("a", 1))
		c.Add(resolver.Lazy("b", func(ctx context.Context) (any, error) { return 2, nil }))

		assert.ElementsMatch(t, []string{"a", "b"}, c.Keys())
	})

	t.Run("add replaces an existing entry", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Static("a", "first"))
		c.Add(resolver.Static("a", "second"))

		v, err := c.Get(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "second", v)
		assert.Len(t, c.Keys(), 1)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		t.Parallel()

		c := resolver.New()
		c.Add(resolver.Static("a", 1))
		c.Add(resolver.Static("b", 2))
		c.Clear()

		assert.Empty(t, c.Keys())
		v, err := c.Get(context.Background(), "a")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}
