package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on top of a Redis instance, letting
// multiple processes share one bucket space. It uses a fixed-window
// counter per refill interval: simpler than a distributed token bucket
// and accurate enough for per-client API limits.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the Redis key namespace (default "ratelimit").
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store from an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreUnavailable
	}

	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit",
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs, nil
}

// consumeScript atomically increments the window counter and sets its
// expiry on first use. Returns the counter value and remaining TTL in
// milliseconds.
var consumeScript = redis.NewScript(`
local count = redis.call("INCRBY", KEYS[1], ARGV[1])
if count == tonumber(ARGV[1]) then
	redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// ConsumeTokens counts tokens against the current fixed window.
func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error) {
	redisKey := rs.key(key)
	window := config.RefillInterval

	res, err := consumeScript.Run(ctx, rs.client, []string{redisKey},
		tokens, window.Milliseconds()).Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	count, _ := res[0].(int64)
	ttlMs, _ := res[1].(int64)
	if ttlMs < 0 {
		ttlMs = window.Milliseconds()
	}

	remaining = config.Capacity - int(count)
	resetAt = time.Now().Add(time.Duration(ttlMs) * time.Millisecond)
	return remaining, resetAt, nil
}

// Reset clears the bucket for key.
func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) key(key string) string {
	return rs.keyPrefix + ":" + key
}
