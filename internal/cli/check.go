package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackorder/pkg/plan"
)

func (c *CLI) checkCommand() *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "check <plan>",
		Short: "Validate a plan and report dependency cycles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runCheck(ctx context.Context, w io.Writer, path string, flags scheduleFlags) error {
	logger := loggerFromContext(ctx)

	p, err := plan.Load(path)
	if err != nil {
		printError(w, "%s is not a valid plan", path)
		return err
	}

	sched, err := plan.Build(p, flags.planOptions())
	if err != nil {
		printError(w, "Plan %s cannot be ordered", StyleHighlight.Render(p.String()))
		if cycle, ok := plan.Cycle(err); ok {
			printCycle(w, cycle)
			if hasWeakNeed(p, cycle) && !flags.breakWeak {
				printNextStep(w, "Drop weak dependencies", appName+" sort --break-weak "+path)
			}
		}
		return err
	}
	logger.Debug("plan ordered", "plan", p.String(), "batches", len(sched.Batches))

	printSuccess(w, "Plan %s is valid", StyleHighlight.Render(p.String()))
	printStats(w, sched.StepCount(), len(sched.Batches), len(sched.Broken), false)
	for _, l := range sched.Broken {
		printWarning(w, "dropped %s %s %s", l.From, iconArrow, l.To)
	}
	return nil
}

// hasWeakNeed reports whether any hop of cycle is a weak dependency.
func hasWeakNeed(p *plan.Plan, cycle []string) bool {
	for i := 0; i+1 < len(cycle); i++ {
		to, ok := p.Step(cycle[i+1])
		if !ok {
			continue
		}
		for _, n := range to.Needs {
			if n.Step == cycle[i] && n.Weak {
				return true
			}
		}
	}
	return false
}
