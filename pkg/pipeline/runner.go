package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackorder/pkg/cache"
	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/observability"
	"github.com/matzehuels/stackorder/pkg/plan"
	"github.com/matzehuels/stackorder/pkg/render"
)

const keyTypeSchedule = "schedule"

// Runner executes the pipeline with caching.
//
// A Runner holds no per-run state; multiple goroutines may share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// A nil keyer selects the DefaultKeyer, a nil cache disables caching and a
// nil logger uses the charmbracelet default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run schedules p and renders every requested format.
func (r *Runner) Run(ctx context.Context, p *plan.Plan, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte, len(opts.Formats))}

	sortStart := time.Now()
	sched, hash, hit, err := r.schedule(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.Schedule = sched
	result.PlanHash = hash
	result.CacheHit = hit
	result.Stats = Stats{
		Steps:    sched.StepCount(),
		Batches:  len(sched.Batches),
		Broken:   len(sched.Broken),
		SortTime: time.Since(sortStart),
	}

	r.Logger.Info("scheduled plan",
		"plan", p.String(),
		"steps", result.Stats.Steps,
		"batches", result.Stats.Batches,
		"cached", hit,
		"duration", result.Stats.SortTime)

	renderStart := time.Now()
	for _, format := range opts.Formats {
		out, err := render.Render(ctx, p, sched, format)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = out
	}
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Schedule orders p with caching and reports whether the cache was hit.
func (r *Runner) Schedule(ctx context.Context, p *plan.Plan, opts Options) (*plan.Schedule, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	sched, _, hit, err := r.schedule(ctx, p, opts)
	return sched, hit, err
}

func (r *Runner) schedule(ctx context.Context, p *plan.Plan, opts Options) (*plan.Schedule, string, bool, error) {
	if err := p.Validate(); err != nil {
		return nil, "", false, err
	}
	hash, err := PlanHash(p)
	if err != nil {
		return nil, "", false, err
	}
	key := r.Keyer.ScheduleKey(hash, opts.ScheduleKeyOpts())

	if !opts.Refresh {
		if s, ok := r.lookup(ctx, key); ok {
			observability.Cache().OnCacheHit(ctx, keyTypeSchedule)
			return s, hash, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeSchedule)
	}

	hooks := observability.Scheduler()
	hooks.OnSortStart(ctx, p.String(), len(p.Steps))
	start := time.Now()
	sched, err := plan.Build(p, opts.ScheduleOptions())
	if err != nil {
		hooks.OnSortComplete(ctx, p.String(), 0, time.Since(start), err)
		return nil, hash, false, err
	}
	hooks.OnSortComplete(ctx, p.String(), len(sched.Batches), time.Since(start), nil)
	for _, l := range sched.Broken {
		hooks.OnEdgeBroken(ctx, p.String(), l.From, l.To)
		r.Logger.Warn("dropped weak dependency", "from", l.From, "to", l.To, "reasons", l.Reasons)
	}

	r.store(ctx, key, sched, opts.TTL)
	return sched, hash, false, nil
}

// lookup returns a cached schedule. Unreadable entries count as misses.
func (r *Runner) lookup(ctx context.Context, key string) (*plan.Schedule, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var s plan.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		r.Logger.Debug("discarding unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &s, true
}

func (r *Runner) store(ctx context.Context, key string, s *plan.Schedule, ttl time.Duration) {
	data, err := json.Marshal(s)
	if err != nil {
		r.Logger.Warn("cache encode failed", "error", errors.Wrap(errors.ErrCodeInternal, err, "encode schedule"))
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyTypeSchedule, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
