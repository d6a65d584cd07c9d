package dag

import "slices"

// EdgeBreaker decides whether the edges from→to may be removed to resolve
// a circular dependency. Returning true removes the whole edge list for the
// pair from the graph; the removal outlives the sort call.
type EdgeBreaker[V comparable, P comparable] func(from, to V, edges []Edge[V, P]) bool

// CycleFormatter builds a human-readable description of a cycle that could
// not be broken. It receives one link per consecutive pair of the cycle.
type CycleFormatter[V comparable, P comparable] func(links []CycleLink[V, P]) string

// SortOptions controls a single [Graph.Sort] call. The zero value sorts into
// one batch and fails on the first cycle.
type SortOptions[V comparable, P comparable] struct {
	// Batching enables batch splitting on edges flagged with
	// RequiresBatchingBoundary. Without it the result is a single batch.
	Batching bool

	// BreakEdge, if set, is offered edges that close a cycle.
	BreakEdge EdgeBreaker[V, P]

	// FormatCycle, if set, fills CycleError.Description.
	FormatCycle CycleFormatter[V, P]

	// OnBreak, if set, is called after BreakEdge approved a link and the
	// edges were removed.
	OnBreak func(from, to V, removed int)
}

// TopologicalSort orders the graph into a single batch. It never removes
// edges: any cycle fails the call with a [*CycleError].
func (g *Graph[V, P]) TopologicalSort() (Result[V], error) {
	return g.Sort(SortOptions[V, P]{})
}

// TopologicalSortBreaking orders the graph into a single batch, resolving
// cycles by removing the edge lists that breaker approves. Cycles it
// declines fail the call with a [*CycleError].
func (g *Graph[V, P]) TopologicalSortBreaking(breaker EdgeBreaker[V, P]) (Result[V], error) {
	return g.Sort(SortOptions[V, P]{BreakEdge: breaker})
}

// Order is TopologicalSort flattened into a single slice.
func (g *Graph[V, P]) Order() ([]V, error) {
	r, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	return r.Flatten(), nil
}

// Sort orders the vertices into batches using Kahn's algorithm.
//
// # Algorithm
//
// Each vertex starts with a count of its distinct predecessors. Vertices
// with a count of zero form the first set of roots. Roots are emitted in
// passes: within a pass they are sorted by the graph comparator (if any),
// appended to the current batch, and every successor has its count
// decremented. Successors reaching zero become the roots of the next pass.
//
// With Batching enabled, a successor that becomes ready while one of its
// predecessors sits in the current batch behind a RequiresBatchingBoundary
// edge closes the batch: the next pass starts a fresh one.
//
// When no roots remain but vertices are left, the rest of the graph is
// cyclic. Stuck vertices are scanned in vertex order and the link from
// their first stuck predecessor is offered to BreakEdge. The first approved
// link is removed and sorting resumes. If nothing can be broken, the cycle
// is traced and returned as a [*CycleError].
//
// # Result
//
// Every vertex appears exactly once, in a batch no earlier than the batch
// of any predecessor. The result always holds at least one batch, which is
// empty for an empty graph.
//
// # Performance
//
// Time complexity is O(V log V + E) without cycles. Each broken cycle
// restarts the candidate scan, adding O(V) per removed link.
func (g *Graph[V, P]) Sort(opts SortOptions[V, P]) (Result[V], error) {
	s := &sorter[V, P]{
		g:            g,
		opts:         opts,
		predecessors: make(map[V]int, len(g.incoming)),
		inBatch:      make(map[V]struct{}),
		result:       Result[V]{Batch[V]{}},
	}
	return s.run()
}

// sorter holds the working state of one Sort call.
type sorter[V comparable, P comparable] struct {
	g    *Graph[V, P]
	opts SortOptions[V, P]

	// predecessors holds residual predecessor counts. Vertices without
	// incoming edges have no entry and count as zero.
	predecessors map[V]int

	roots     []V
	next      []V
	result    Result[V]
	inBatch   map[V]struct{}
	boundary  bool
	processed int
}

func (s *sorter[V, P]) run() (Result[V], error) {
	for _, v := range s.g.vertices {
		if n := s.g.InDegree(v); n > 0 {
			s.predecessors[v] = n
		} else {
			s.roots = append(s.roots, v)
		}
	}

	total := len(s.g.vertices)
	for s.processed < total {
		s.drainRoots()
		if s.processed == total {
			break
		}
		if s.breakCycle() {
			continue
		}
		return nil, s.cycleError()
	}
	return s.result, nil
}

// drainRoots emits root passes until no vertex is ready.
func (s *sorter[V, P]) drainRoots() {
	for len(s.roots) > 0 {
		if s.g.compare != nil {
			slices.SortStableFunc(s.roots, s.g.compare)
		}

		if s.boundary {
			s.result = append(s.result, Batch[V]{})
			clear(s.inBatch)
			s.boundary = false
		}

		cur := len(s.result) - 1
		for _, root := range s.roots {
			s.result[cur] = append(s.result[cur], root)
			s.inBatch[root] = struct{}{}
			s.processed++

			for _, succ := range s.g.outgoingNeighbors(root) {
				s.predecessors[succ]--
				if s.predecessors[succ] == 0 {
					s.next = append(s.next, succ)
					s.checkBoundary(succ)
				}
			}
		}

		s.roots, s.next = s.next, s.roots[:0]
	}
}

// checkBoundary flags a batch split when v depends on a vertex of the
// current batch through an edge that requires a boundary.
func (s *sorter[V, P]) checkBoundary(v V) {
	if !s.opts.Batching || s.boundary {
		return
	}
	for _, pred := range s.g.incomingNeighbors(v) {
		if _, ok := s.inBatch[pred]; !ok {
			continue
		}
		for _, e := range s.g.edgesBetween(pred, v) {
			if e.RequiresBatchingBoundary {
				s.boundary = true
				return
			}
		}
	}
}

// stuck reports whether v still waits on unprocessed predecessors.
func (s *sorter[V, P]) stuck(v V) bool {
	return s.predecessors[v] > 0
}

// stuckPredecessor returns the first predecessor of v that is itself stuck.
func (s *sorter[V, P]) stuckPredecessor(v V) (V, bool) {
	for _, pred := range s.g.incomingNeighbors(v) {
		if s.stuck(pred) {
			return pred, true
		}
	}
	var zero V
	return zero, false
}

// breakCycle removes the first link BreakEdge approves and reports whether
// sorting can resume.
func (s *sorter[V, P]) breakCycle() bool {
	if s.opts.BreakEdge == nil {
		return false
	}
	for _, v := range s.g.vertices {
		if !s.stuck(v) {
			continue
		}
		from, ok := s.stuckPredecessor(v)
		if !ok {
			continue
		}
		if !s.opts.BreakEdge(from, v, s.g.Edges(from, v)) {
			continue
		}

		removed := s.g.RemoveEdge(from, v)
		if s.opts.OnBreak != nil {
			s.opts.OnBreak(from, v, removed)
		}
		s.predecessors[v]--
		if s.predecessors[v] == 0 {
			s.roots = append(s.roots, v)
			s.checkBoundary(v)
		}
		return true
	}
	return false
}
