// Package pkg holds the libraries behind stackorder.
//
// Stackorder orders the steps of a plan so that every step runs after the
// steps it needs, grouping steps that can run together into batches.
//
//   - [dag] is the generic dependency multigraph and its batching
//     topological sort.
//   - [plan] loads TOML and JSON plans and turns them into schedules.
//   - [render] writes schedules as text, JSON, DOT, SVG or PNG.
//   - [cache] stores schedules in files or Redis.
//   - [pipeline] ties loading, scheduling, caching and rendering together.
//   - [server] exposes the pipeline over HTTP.
//   - [observability] lets callers hook into scheduling, caching and
//     request handling.
//   - [errors] defines coded errors shared by all packages.
//
// A plan is scheduled in a few lines:
//
//	p, err := plan.Load("release.toml")
//	if err != nil {
//	    return err
//	}
//	s, err := plan.Build(p, plan.Options{Batching: true})
//	if err != nil {
//	    return err
//	}
//	render.WriteText(os.Stdout, p, s)
//
// [dag]: github.com/matzehuels/stackorder/pkg/dag
// [plan]: github.com/matzehuels/stackorder/pkg/plan
// [render]: github.com/matzehuels/stackorder/pkg/render
// [cache]: github.com/matzehuels/stackorder/pkg/cache
// [pipeline]: github.com/matzehuels/stackorder/pkg/pipeline
// [server]: github.com/matzehuels/stackorder/pkg/server
// [observability]: github.com/matzehuels/stackorder/pkg/observability
// [errors]: github.com/matzehuels/stackorder/pkg/errors
package pkg
