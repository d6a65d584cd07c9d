package cli

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/plan"
)

func (c *CLI) browseCommand() *cobra.Command {
	var flags scheduleFlags

	cmd := &cobra.Command{
		Use:   "browse <plan>",
		Short: "Browse the batches of a plan interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runBrowse(ctx context.Context, in io.Reader, out io.Writer, path string, flags scheduleFlags) error {
	p, err := plan.Load(path)
	if err != nil {
		return err
	}
	sched, err := plan.Build(p, flags.planOptions())
	if err != nil {
		reportCycle(out, err)
		return err
	}

	prog := tea.NewProgram(NewBatchModel(p, sched),
		tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run browser")
	}

	if m, ok := final.(BatchModel); ok && m.Selected != "" {
		if s, ok := p.Step(m.Selected); ok {
			printInfo(out, "%s", StyleHighlight.Render(s.ID))
			if s.Description != "" {
				printDetail(out, "%s", s.Description)
			}
			if s.Command != "" {
				printNextStep(out, "Command", s.Command)
			}
		}
	}
	return nil
}
