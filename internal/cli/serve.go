package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackorder/pkg/cache"
	"github.com/matzehuels/stackorder/pkg/pipeline"
	"github.com/matzehuels/stackorder/pkg/server"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	redisURL  string        // Redis cache; the file cache is used when empty
	namespace string        // key prefix for a shared Redis instance
	cacheTTL  time.Duration // lifetime of cached schedules
	noCache   bool
	timeout   time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:     server.DefaultAddr,
		cacheTTL: pipeline.DefaultTTL,
		timeout:  server.DefaultTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API over HTTP",
		Example: `  stackorder serve --addr :9000
  stackorder serve --redis-url redis://localhost:6379/0 --cache-ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the schedule cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().StringVar(&opts.namespace, "namespace", "", "prefix for cache keys")
	cmd.Flags().DurationVar(&opts.cacheTTL, "cache-ttl", opts.cacheTTL, "how long schedules stay cached")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the schedule cache")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	backend, err := serveCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.namespace != "" {
		keyer = cache.NewScopedKeyer(nil, opts.namespace+":")
	}
	runner := pipeline.NewRunner(backend, keyer, logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:     opts.addr,
		Timeout:  opts.timeout,
		CacheTTL: opts.cacheTTL,
	}, runner, logger)
	return srv.ListenAndServe(ctx)
}

func serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	logger := loggerFromContext(ctx)
	switch {
	case opts.noCache:
		logger.Info("schedule cache disabled")
		return cache.NewNullCache(), nil
	case opts.redisURL != "":
		rc, err := cache.NewRedisCache(ctx, opts.redisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis cache", "ttl", opts.cacheTTL)
		return rc, nil
	default:
		c, err := newCache(false)
		if err != nil {
			return nil, err
		}
		if fc, ok := c.(*cache.FileCache); ok {
			logger.Info("using file cache", "dir", fc.Dir(), "ttl", opts.cacheTTL)
		}
		return c, nil
	}
}
