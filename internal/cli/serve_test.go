package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/stackorder/pkg/cache"
)

func TestServeCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	m := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		opts  serveOpts
		check func(cache.Cache) bool
	}{
		{"disabled", serveOpts{noCache: true, redisURL: "redis://" + m.Addr()}, func(c cache.Cache) bool {
			_, ok := c.(cache.NullCache)
			return ok
		}},
		{"redis", serveOpts{redisURL: "redis://" + m.Addr() + "/0"}, func(c cache.Cache) bool {
			_, ok := c.(*cache.RedisCache)
			return ok
		}},
		{"file", serveOpts{}, func(c cache.Cache) bool {
			_, ok := c.(*cache.FileCache)
			return ok
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := serveCache(ctx, &tt.opts)
			if err != nil {
				t.Fatalf("serveCache() error: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("serveCache() = %T", c)
			}
		})
	}
}

func TestServeCache_BadURL(t *testing.T) {
	if _, err := serveCache(context.Background(), &serveOpts{redisURL: "http://nope"}); err == nil {
		t.Error("serveCache() with a non-redis URL succeeded")
	}
}
