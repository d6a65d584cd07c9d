package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrCircularDependency is matched by every [*CycleError] with errors.Is.
var ErrCircularDependency = errors.New("circular dependency")

// CycleLink is one hop of a reported cycle together with the edges that
// form it.
type CycleLink[V comparable, P comparable] struct {
	From  V
	To    V
	Edges []Edge[V, P]
}

// CycleError reports a cycle that the sort could not resolve.
//
// Cycle lists the vertices in edge direction and is closed: the first and
// last elements are the same vertex, so A→B→A is reported as [A B A].
type CycleError[V comparable] struct {
	Cycle       []V
	Description string
}

// Error implements the error interface.
func (e *CycleError[V]) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s", ErrCircularDependency, e.Description)
	}
	parts := make([]string, len(e.Cycle))
	for i, v := range e.Cycle {
		parts[i] = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s: %s", ErrCircularDependency, strings.Join(parts, " -> "))
}

// Is reports whether target is [ErrCircularDependency].
func (e *CycleError[V]) Is(target error) bool {
	return target == ErrCircularDependency
}

// cycleError traces a cycle through the stuck part of the graph.
//
// Starting at the first stuck vertex, it repeatedly steps to a stuck
// predecessor until it reaches a vertex it has already left. The walk runs
// against edge direction, so the path is reversed and everything after the
// closing repetition is cut off.
func (s *sorter[V, P]) cycleError() error {
	start, ok := s.firstStuck()
	if !ok {
		return &CycleError[V]{}
	}

	cycle := []V{start}
	visited := make(map[V]struct{})
	for cur := start; ; {
		pred, ok := s.stuckPredecessor(cur)
		if !ok {
			break
		}
		visited[cur] = struct{}{}
		cur = pred
		cycle = append(cycle, cur)
		if _, seen := visited[cur]; seen {
			break
		}
	}

	slices.Reverse(cycle)
	first := cycle[0]
	for i := len(cycle) - 1; i > 0; i-- {
		if cycle[i] == first {
			cycle = cycle[:i+1]
			break
		}
	}

	err := &CycleError[V]{Cycle: cycle}
	if s.opts.FormatCycle != nil {
		err.Description = s.opts.FormatCycle(s.links(cycle))
	}
	return err
}

func (s *sorter[V, P]) firstStuck() (V, bool) {
	for _, v := range s.g.vertices {
		if s.stuck(v) {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// links pairs consecutive cycle vertices with the edges between them.
func (s *sorter[V, P]) links(cycle []V) []CycleLink[V, P] {
	if len(cycle) < 2 {
		return nil
	}
	links := make([]CycleLink[V, P], 0, len(cycle)-1)
	for i := 0; i+1 < len(cycle); i++ {
		links = append(links, CycleLink[V, P]{
			From:  cycle[i],
			To:    cycle[i+1],
			Edges: s.g.Edges(cycle[i], cycle[i+1]),
		})
	}
	return links
}
