package plan

import (
	"cmp"
	"fmt"

	"github.com/matzehuels/stackorder/pkg/dag"
	"github.com/matzehuels/stackorder/pkg/errors"
)

// Plan is a named set of steps and the dependencies between them.
type Plan struct {
	Name  string `toml:"name" json:"name"`
	Steps []Step `toml:"steps" json:"steps"`
}

// Step is a unit of work. A step runs after every step listed in Needs
// and After.
type Step struct {
	ID          string `toml:"id" json:"id"`
	Description string `toml:"description,omitempty" json:"description,omitempty"`
	Command     string `toml:"command,omitempty" json:"command,omitempty"`

	// Priority orders steps that become ready together; higher runs first.
	Priority int `toml:"priority,omitempty" json:"priority,omitempty"`

	// After is shorthand for plain Needs without flags or reason.
	After []string `toml:"after,omitempty" json:"after,omitempty"`
	Needs []Need   `toml:"needs,omitempty" json:"needs,omitempty"`
}

// Need is a dependency of a step on another step.
type Need struct {
	// Step is the ID of the step that must run first.
	Step string `toml:"step" json:"step"`

	// Boundary places the dependent step in a later batch than Step when
	// scheduling with batching.
	Boundary bool `toml:"boundary,omitempty" json:"boundary,omitempty"`

	// Weak marks a dependency the scheduler may drop to resolve a cycle.
	Weak bool `toml:"weak,omitempty" json:"weak,omitempty"`

	Reason string `toml:"reason,omitempty" json:"reason,omitempty"`
}

// Step returns the step with the given ID.
func (p *Plan) Step(id string) (*Step, bool) {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i], true
		}
	}
	return nil, false
}

// Validate checks that step IDs are well-formed and unique and that every
// dependency names a known step. Returns an *errors.Error with code
// INVALID_STEP, INVALID_PLAN or UNKNOWN_STEP.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if err := errors.ValidateStepID(s.ID); err != nil {
			return err
		}
		if seen[s.ID] {
			return errors.New(errors.ErrCodeInvalidPlan, "duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
	}
	for _, s := range p.Steps {
		for _, dep := range s.After {
			if !seen[dep] {
				return errors.New(errors.ErrCodeUnknownStep, "step %q runs after unknown step %q", s.ID, dep)
			}
		}
		for _, n := range s.Needs {
			if !seen[n.Step] {
				return errors.New(errors.ErrCodeUnknownStep, "step %q needs unknown step %q", s.ID, n.Step)
			}
		}
	}
	return nil
}

// Graph builds the dependency graph of the plan. Each dependency becomes an
// edge from the needed step to the dependent step, carrying a pointer to
// its Need; After entries carry no payload. The graph orders ready steps
// by descending Priority, then by ID.
//
// Payloads point into p, so p must not be modified while the graph is in
// use.
func (p *Plan) Graph() (*dag.Graph[string, Need], error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	priority := make(map[string]int, len(p.Steps))
	for _, s := range p.Steps {
		priority[s.ID] = s.Priority
	}
	g := dag.New[string, Need](func(a, b string) int {
		if c := cmp.Compare(priority[b], priority[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	for _, s := range p.Steps {
		g.AddVertex(s.ID)
	}
	for i := range p.Steps {
		s := &p.Steps[i]
		for _, dep := range s.After {
			if err := g.AddEdge(dag.Edge[string, Need]{From: dep, To: s.ID}); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "link %s -> %s", dep, s.ID)
			}
		}
		for j := range s.Needs {
			n := &s.Needs[j]
			e := dag.Edge[string, Need]{
				From:                     n.Step,
				To:                       s.ID,
				Payload:                  n,
				RequiresBatchingBoundary: n.Boundary,
			}
			if err := g.AddEdge(e); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "link %s -> %s", n.Step, s.ID)
			}
		}
	}
	return g, nil
}

// String returns the plan name, or a placeholder for unnamed plans.
func (p *Plan) String() string {
	if p.Name == "" {
		return fmt.Sprintf("<unnamed plan, %d steps>", len(p.Steps))
	}
	return p.Name
}
