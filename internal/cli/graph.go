package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/plan"
	"github.com/matzehuels/stackorder/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	scheduleFlags
	format string // dot, svg or png
	output string // output file; stdout when empty
}

func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: render.FormatDOT}

	cmd := &cobra.Command{
		Use:   "graph <plan>",
		Short: "Draw the dependency graph of a plan",
		Long: `Draw the dependency graph of a plan with one cluster per batch. Boundary
dependencies are dashed, weak dependencies dotted and dropped dependencies red.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func runGraph(ctx context.Context, stdout, stderr io.Writer, path string, opts *graphOpts) error {
	if err := errors.ValidateFormat(opts.format, render.FormatDOT, render.FormatSVG, render.FormatPNG); err != nil {
		return err
	}
	p, err := plan.Load(path)
	if err != nil {
		return err
	}
	sched, err := plan.Build(p, opts.planOptions())
	if err != nil {
		reportCycle(stderr, err)
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	out, err := render.Render(ctx, p, sched, opts.format)
	if err != nil {
		return err
	}
	prog.done("Rendered " + opts.format)

	if opts.output == "" {
		_, err := stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", opts.output)
	}
	printFile(stderr, opts.output)
	return nil
}
