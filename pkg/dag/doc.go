// Package dag provides a directed multigraph that orders interdependent
// units of work into batches.
//
// # Overview
//
// Stackorder schedules steps that depend on each other: database
// migrations, deploy commands, build actions. Each step is a vertex and
// each dependency is a directed edge from the step that must run first to
// the step that waits on it. [Graph.Sort] returns the steps grouped into
// batches that can be handed to an executor in order.
//
// # Basic Usage
//
// Create a graph with [New], register vertices with [Graph.AddVertex] and
// connect them with [Graph.AddEdge]. Both endpoints must be registered
// before an edge is added:
//
//	g := dag.New[string, Reason](nil)
//	g.AddVertices("schema", "data", "index")
//	_ = g.AddEdge(dag.Edge[string, Reason]{From: "schema", To: "data"})
//	_ = g.AddEdge(dag.Edge[string, Reason]{From: "data", To: "index"})
//
//	order, err := g.Order() // [schema data index]
//
// # Edges
//
// An [Edge] carries an optional payload pointer and a
// RequiresBatchingBoundary flag. [Edge.Carries] compares the value the
// payload points to, not the pointer. Several edges may connect the same pair; they are kept in insertion
// order and returned together by [Graph.Edges]. [Graph.RemoveEdge] always
// removes the whole list for a pair.
//
// The graph keeps a successor map and a predecessor map side by side and
// updates both on every mutation.
//
// # Batching
//
// With [SortOptions].Batching set, an edge flagged RequiresBatchingBoundary
// pushes its target into a later batch than its source. Without batching,
// the flags are kept on the edges but the result is a single batch.
//
// # Determinism
//
// Vertices iterate in insertion order and neighbors in link order, so a
// sort of the same graph always returns the same result. A [Comparator]
// passed to [New] additionally orders vertices that become ready together.
//
// # Cycles
//
// A cycle fails the sort with a [*CycleError] that matches
// [ErrCircularDependency]. Callers can supply an [EdgeBreaker] to remove
// dependencies that are allowed to be dropped; removed edges stay removed
// after the call returns.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Sort mutates the graph
// when it breaks edges, so even concurrent sorts must be serialized.
package dag
