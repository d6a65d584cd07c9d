package plan

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/stackorder/pkg/dag"
	"github.com/matzehuels/stackorder/pkg/errors"
)

// Options configures how a plan is scheduled.
type Options struct {
	// Batching splits batches at dependencies marked boundary. Without it
	// the schedule is a single batch.
	Batching bool `json:"batching"`

	// BreakWeak lets the scheduler drop weak dependencies that close a
	// cycle. A link is only dropped when every dependency on it is weak.
	BreakWeak bool `json:"break_weak"`
}

// BrokenLink records a dependency the scheduler dropped to resolve a cycle.
type BrokenLink struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Reasons []string `json:"reasons,omitempty"`
}

// Schedule is the ordered result of scheduling a plan.
type Schedule struct {
	ID      string       `json:"id"`
	Plan    string       `json:"plan"`
	Options Options      `json:"options"`
	Batches [][]string   `json:"batches"`
	Broken  []BrokenLink `json:"broken,omitempty"`
}

// StepCount returns the number of steps across all batches.
func (s *Schedule) StepCount() int {
	n := 0
	for _, b := range s.Batches {
		n += len(b)
	}
	return n
}

// Order returns all steps in execution order.
func (s *Schedule) Order() []string {
	order := make([]string, 0, s.StepCount())
	for _, b := range s.Batches {
		order = append(order, b...)
	}
	return order
}

// Build orders the steps of p into batches.
//
// A cycle that cannot be resolved yields an error with code
// CIRCULAR_DEPENDENCY wrapping a [*dag.CycleError] whose description names
// the steps and reasons along the cycle, e.g.
//
//	migrate -> seed (needs tables) -> migrate
func Build(p *Plan, opts Options) (*Schedule, error) {
	g, err := p.Graph()
	if err != nil {
		return nil, err
	}

	sched := &Schedule{
		ID:      uuid.NewString(),
		Plan:    p.Name,
		Options: opts,
	}

	sortOpts := dag.SortOptions[string, Need]{
		Batching:    opts.Batching,
		FormatCycle: DescribeCycle,
	}
	if opts.BreakWeak {
		sortOpts.BreakEdge = func(from, to string, edges []dag.Edge[string, Need]) bool {
			if !allWeak(edges) {
				return false
			}
			sched.Broken = append(sched.Broken, BrokenLink{From: from, To: to, Reasons: reasons(edges)})
			return true
		}
	}

	r, err := g.Sort(sortOpts)
	if err != nil {
		if stderrors.Is(err, dag.ErrCircularDependency) {
			return nil, errors.Wrap(errors.ErrCodeCircularDependency, err, "plan %s cannot be ordered", p)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "schedule plan %s", p)
	}

	sched.Batches = make([][]string, len(r))
	for i, b := range r {
		sched.Batches[i] = []string(b)
	}
	return sched, nil
}

// Cycle extracts the step cycle from an error returned by [Build].
func Cycle(err error) ([]string, bool) {
	var cerr *dag.CycleError[string]
	if stderrors.As(err, &cerr) {
		return cerr.Cycle, true
	}
	return nil, false
}

// DescribeCycle renders a cycle as "a -> b (reason) -> a", attaching the
// reasons of the dependencies that form each hop.
func DescribeCycle(links []dag.CycleLink[string, Need]) string {
	var b strings.Builder
	for i, l := range links {
		if i == 0 {
			b.WriteString(l.From)
		}
		b.WriteString(" -> ")
		b.WriteString(l.To)
		if r := reasons(l.Edges); len(r) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(r, "; "))
		}
	}
	return b.String()
}

func allWeak(edges []dag.Edge[string, Need]) bool {
	if len(edges) == 0 {
		return false
	}
	for _, e := range edges {
		if e.Payload == nil || !e.Payload.Weak {
			return false
		}
	}
	return true
}

func reasons(edges []dag.Edge[string, Need]) []string {
	var out []string
	for _, e := range edges {
		if e.Payload != nil && e.Payload.Reason != "" {
			out = append(out, e.Payload.Reason)
		}
	}
	return out
}
