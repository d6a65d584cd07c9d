package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	c := NewRedisCacheFromClient(goredis.NewClient(&goredis.Options{Addr: m.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, m
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestRedis(t)

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v, want clean miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get() = %q, %v, %v, want value hit", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, m := newTestRedis(t)

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if ttl := m.TTL("key"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	m.FastForward(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired key should miss")
	}
}

func TestRedisCacheCloseTwice(t *testing.T) {
	c, _ := newTestRedis(t)
	if err := c.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close error: %v", err)
	}
}

func TestNewRedisCache(t *testing.T) {
	ctx := context.Background()
	m := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, "redis://"+m.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if _, err := NewRedisCache(ctx, "http://nope"); err == nil {
		t.Error("NewRedisCache should reject non-redis URLs")
	}
}
