package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "rl:"

// RedisStore keeps fixed-window counters in Redis so several instances
// share one ceiling. INCR is atomic per key, which gives the same
// serialized read-check-increment guarantee as the memory store; the
// key TTL is the window and Redis expiry handles both reset and
// eviction.
type RedisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client *redis.Client, cfg Config) *RedisStore {
	return &RedisStore{client: client, cfg: cfg.withDefaults()}
}

// Take counts one request against key.
func (s *RedisStore) Take(ctx context.Context, key string) (Decision, error) {
	rkey := redisKeyPrefix + key

	count, err := s.client.Incr(ctx, rkey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: incr %s: %w", rkey, err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, rkey, s.cfg.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: expire %s: %w", rkey, err)
		}
	}

	d := Decision{
		Limit:  s.cfg.Limit,
		Window: s.cfg.Window,
	}

	ttl, err := s.client.PTTL(ctx, rkey).Result()
	if err != nil || ttl < 0 {
		ttl = s.cfg.Window
	}
	d.Reset = time.Now().Add(ttl)

	if count > int64(s.cfg.Limit) {
		d.RetryAfter = ttl
		return d, nil
	}

	d.Allowed = true
	d.Remaining = s.cfg.Limit - int(count)
	return d, nil
}
