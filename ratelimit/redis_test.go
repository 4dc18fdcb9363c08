package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisTestStore(t *testing.T, cfg Config) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, cfg)
}

func TestRedisStoreCeiling(t *testing.T) {
	s := newRedisTestStore(t, Config{Window: 15 * time.Minute, Limit: 5})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		d, err := s.Take(ctx, "credentials:1.2.3.4")
		if err != nil {
			t.Fatalf("Take #%d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request #%d denied below ceiling", i)
		}
	}

	d, err := s.Take(ctx, "credentials:1.2.3.4")
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if d.Allowed {
		t.Error("request over ceiling allowed")
	}
	if d.RetryAfter <= 0 {
		t.Errorf("expected positive retry-after, got %v", d.RetryAfter)
	}

	if d, _ := s.Take(ctx, "credentials:5.6.7.8"); !d.Allowed {
		t.Error("separate key denied")
	}
}

func TestRedisStoreWindowExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := NewRedisStore(client, Config{Window: time.Minute, Limit: 1})

	ctx := context.Background()
	if d, _ := s.Take(ctx, "k"); !d.Allowed {
		t.Fatal("first request denied")
	}
	if d, _ := s.Take(ctx, "k"); d.Allowed {
		t.Fatal("second request allowed over ceiling")
	}

	// Window elapses; the key expires and counting starts over.
	mr.FastForward(time.Minute)
	if d, _ := s.Take(ctx, "k"); !d.Allowed {
		t.Error("request denied after window expiry")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	s := NewRedisStore(client, Config{})

	mr.Close()

	if _, err := s.Take(context.Background(), "k"); err == nil {
		t.Error("expected error when redis is down")
	}
}
