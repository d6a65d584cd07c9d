package dag

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownVertex is matched by every error AddEdge returns for an
	// endpoint that was never registered with [Graph.AddVertex].
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrUnknownSource is returned by [Graph.AddEdge] when the From vertex
	// does not exist. It matches [ErrUnknownVertex] with errors.Is.
	ErrUnknownSource = fmt.Errorf("source: %w", ErrUnknownVertex)

	// ErrUnknownTarget is returned by [Graph.AddEdge] when the To vertex
	// does not exist. It matches [ErrUnknownVertex] with errors.Is.
	ErrUnknownTarget = fmt.Errorf("target: %w", ErrUnknownVertex)
)

// Comparator orders two vertices. It returns a negative number when a sorts
// before b, zero when they tie, and a positive number otherwise.
type Comparator[V comparable] func(a, b V) int

// Edge is a directed dependency between two vertices. Several edges may
// connect the same ordered pair; each keeps its own payload and flag.
//
// Payload is borrowed: the graph stores the pointer as given and never
// copies what it refers to. A nil Payload means the edge carries none.
type Edge[V comparable, P comparable] struct {
	From    V
	To      V
	Payload *P

	// RequiresBatchingBoundary forces To into a later batch than From when
	// the sort runs with batching enabled.
	RequiresBatchingBoundary bool
}

// HasPayload reports whether the edge carries a payload.
func (e Edge[V, P]) HasPayload() bool {
	return e.Payload != nil
}

// Carries reports whether the payload the edge points to equals p. An edge
// without a payload carries nothing, so it is unequal to every p.
func (e Edge[V, P]) Carries(p P) bool {
	return e.Payload != nil && *e.Payload == p
}

// neighbors maps a neighbor vertex to the edges shared with it. Keys keep
// the order in which they were first linked.
type neighbors[V comparable, P comparable] struct {
	order []V
	edges map[V][]Edge[V, P]
}

func newNeighbors[V comparable, P comparable]() *neighbors[V, P] {
	return &neighbors[V, P]{edges: make(map[V][]Edge[V, P])}
}

func (n *neighbors[V, P]) add(v V, e Edge[V, P]) {
	if _, ok := n.edges[v]; !ok {
		n.order = append(n.order, v)
	}
	n.edges[v] = append(n.edges[v], e)
}

func (n *neighbors[V, P]) remove(v V) int {
	removed := len(n.edges[v])
	if removed == 0 {
		return 0
	}
	delete(n.edges, v)
	n.order = slices.DeleteFunc(n.order, func(u V) bool { return u == v })
	return removed
}

func (n *neighbors[V, P]) len() int {
	if n == nil {
		return 0
	}
	return len(n.order)
}

// Graph is a directed multigraph that orders its vertices into batches.
//
// Every edge is stored twice: once under its source in the successor map
// and once under its target in the predecessor map. Both maps are updated
// together on every mutation, so neighbor lookups are O(1) in either
// direction.
//
// The zero value is not usable - use [New] to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph[V comparable, P comparable] struct {
	vertices []V
	set      map[V]struct{}
	outgoing map[V]*neighbors[V, P] // from -> {to -> edges}
	incoming map[V]*neighbors[V, P] // to -> {from -> edges}
	compare  Comparator[V]
}

// New creates an empty graph. The comparator is optional: when non-nil it
// breaks ties between vertices that become ready at the same time, making
// the sort order independent of insertion order. Pass nil to keep
// encounter order.
func New[V comparable, P comparable](compare Comparator[V]) *Graph[V, P] {
	return &Graph[V, P]{
		set:      make(map[V]struct{}),
		outgoing: make(map[V]*neighbors[V, P]),
		incoming: make(map[V]*neighbors[V, P]),
		compare:  compare,
	}
}

// AddVertex registers v. Adding a vertex that already exists is a no-op.
func (g *Graph[V, P]) AddVertex(v V) {
	if _, ok := g.set[v]; ok {
		return
	}
	g.set[v] = struct{}{}
	g.vertices = append(g.vertices, v)
}

// AddVertices registers each vertex in vs, skipping those already present.
func (g *Graph[V, P]) AddVertices(vs ...V) {
	for _, v := range vs {
		g.AddVertex(v)
	}
}

// HasVertex reports whether v is registered.
func (g *Graph[V, P]) HasVertex(v V) bool {
	_, ok := g.set[v]
	return ok
}

// RemoveVertex deletes v together with every edge list that touches it.
// Removing an unknown vertex is a no-op.
func (g *Graph[V, P]) RemoveVertex(v V) {
	if !g.HasVertex(v) {
		return
	}
	if out := g.outgoing[v]; out != nil {
		for _, to := range slices.Clone(out.order) {
			g.RemoveEdge(v, to)
		}
	}
	if in := g.incoming[v]; in != nil {
		for _, from := range slices.Clone(in.order) {
			g.RemoveEdge(from, v)
		}
	}
	delete(g.set, v)
	g.vertices = slices.DeleteFunc(g.vertices, func(u V) bool { return u == v })
}

// AddEdge appends e to the edge list for (e.From, e.To), creating the list
// if needed. Returns [ErrUnknownSource] or [ErrUnknownTarget] if an endpoint
// was never registered; both indicate a caller bug rather than bad data.
func (g *Graph[V, P]) AddEdge(e Edge[V, P]) error {
	if !g.HasVertex(e.From) {
		return ErrUnknownSource
	}
	if !g.HasVertex(e.To) {
		return ErrUnknownTarget
	}

	out, ok := g.outgoing[e.From]
	if !ok {
		out = newNeighbors[V, P]()
		g.outgoing[e.From] = out
	}
	out.add(e.To, e)

	in, ok := g.incoming[e.To]
	if !ok {
		in = newNeighbors[V, P]()
		g.incoming[e.To] = in
	}
	in.add(e.From, e)
	return nil
}

// RemoveEdge removes every edge from→to in one step and returns how many
// were dropped. Other neighbors of from and to are left untouched.
func (g *Graph[V, P]) RemoveEdge(from, to V) int {
	removed := 0
	if out := g.outgoing[from]; out != nil {
		removed = out.remove(to)
		if out.len() == 0 {
			delete(g.outgoing, from)
		}
	}
	if in := g.incoming[to]; in != nil {
		in.remove(from)
		if in.len() == 0 {
			delete(g.incoming, to)
		}
	}
	return removed
}

// Edges returns a copy of the edges from→to in insertion order.
// Returns nil if the pair is not linked.
func (g *Graph[V, P]) Edges(from, to V) []Edge[V, P] {
	out := g.outgoing[from]
	if out == nil {
		return nil
	}
	return slices.Clone(out.edges[to])
}

// AllEdges returns every edge in the graph, grouped by source vertex in
// vertex order and by target in link order.
func (g *Graph[V, P]) AllEdges() []Edge[V, P] {
	var all []Edge[V, P]
	for _, v := range g.vertices {
		out := g.outgoing[v]
		if out == nil {
			continue
		}
		for _, to := range out.order {
			all = append(all, out.edges[to]...)
		}
	}
	return all
}

// Clear removes all vertices and edges. The comparator is kept.
func (g *Graph[V, P]) Clear() {
	g.vertices = nil
	g.set = make(map[V]struct{})
	g.outgoing = make(map[V]*neighbors[V, P])
	g.incoming = make(map[V]*neighbors[V, P])
}

// Vertices returns a copy of the vertex set in insertion order.
func (g *Graph[V, P]) Vertices() []V { return slices.Clone(g.vertices) }

// VertexCount returns the number of vertices in the graph.
func (g *Graph[V, P]) VertexCount() int { return len(g.vertices) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph[V, P]) EdgeCount() int {
	n := 0
	for _, out := range g.outgoing {
		for _, es := range out.edges {
			n += len(es)
		}
	}
	return n
}

// Successors returns the vertices v has edges to, in link order.
// Returns nil if v has no outgoing edges or doesn't exist.
func (g *Graph[V, P]) Successors(v V) []V {
	if out := g.outgoing[v]; out != nil {
		return slices.Clone(out.order)
	}
	return nil
}

// Predecessors returns the vertices that have edges to v, in link order.
// Returns nil if v has no incoming edges or doesn't exist.
func (g *Graph[V, P]) Predecessors(v V) []V {
	if in := g.incoming[v]; in != nil {
		return slices.Clone(in.order)
	}
	return nil
}

// InDegree returns the number of distinct vertices with edges into v.
func (g *Graph[V, P]) InDegree(v V) int { return g.incoming[v].len() }

// OutDegree returns the number of distinct vertices v has edges to.
func (g *Graph[V, P]) OutDegree(v V) int { return g.outgoing[v].len() }

// outgoingNeighbors is the internal, non-copying form of Successors.
func (g *Graph[V, P]) outgoingNeighbors(v V) []V {
	if out := g.outgoing[v]; out != nil {
		return out.order
	}
	return nil
}

// incomingNeighbors is the internal, non-copying form of Predecessors.
func (g *Graph[V, P]) incomingNeighbors(v V) []V {
	if in := g.incoming[v]; in != nil {
		return in.order
	}
	return nil
}

// edgesBetween returns the live edge list from→to without copying.
func (g *Graph[V, P]) edgesBetween(from, to V) []Edge[V, P] {
	if out := g.outgoing[from]; out != nil {
		return out.edges[to]
	}
	return nil
}
