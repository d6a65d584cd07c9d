// Package pipeline runs the schedule → render pipeline shared by the CLI and
// the HTTP server.
//
// A [Runner] wraps a cache: it hashes the plan and options into a key,
// returns a cached schedule when one exists and otherwise sorts the plan,
// stores the result and renders the requested formats.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Run(ctx, p, pipeline.Options{
//	    Batching: true,
//	    Formats:  []string{"text", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/stackorder/pkg/cache"
	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/plan"
	"github.com/matzehuels/stackorder/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTTL is how long computed schedules stay cached.
	DefaultTTL = 7 * 24 * time.Hour

	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = render.FormatText
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. It supports JSON for API requests.
type Options struct {
	// Batching splits the schedule at boundary dependencies.
	Batching bool `json:"batching,omitempty"`

	// BreakWeak drops weak dependencies that close a cycle.
	BreakWeak bool `json:"break_weak,omitempty"`

	// Formats lists the outputs to render. Defaults to text.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// TTL overrides DefaultTTL for the cached schedule.
	TTL time.Duration `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the formats and fills in defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	o.validated = true
	return nil
}

// ScheduleOptions returns the options passed to [plan.Build].
func (o *Options) ScheduleOptions() plan.Options {
	return plan.Options{Batching: o.Batching, BreakWeak: o.BreakWeak}
}

// ScheduleKeyOpts returns the cache key options for the schedule.
func (o *Options) ScheduleKeyOpts() cache.ScheduleKeyOpts {
	return cache.ScheduleKeyOpts{Batching: o.Batching, BreakWeak: o.BreakWeak}
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Schedule *plan.Schedule

	// PlanHash is the content hash of the plan.
	PlanHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	// CacheHit is true when the schedule came from the cache.
	CacheHit bool

	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Steps      int
	Batches    int
	Broken     int
	SortTime   time.Duration
	RenderTime time.Duration
}

// PlanHash returns the content hash of p. Two plans with the same steps and
// dependencies in the same order hash equally.
func PlanHash(p *plan.Plan) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash plan %s", p)
	}
	return cache.Hash(data), nil
}
