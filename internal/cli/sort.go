package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackorder/pkg/errors"
	"github.com/matzehuels/stackorder/pkg/pipeline"
	"github.com/matzehuels/stackorder/pkg/plan"
	"github.com/matzehuels/stackorder/pkg/render"
)

// sortOpts holds the command-line flags for the sort command.
type sortOpts struct {
	scheduleFlags
	formats string // comma-separated output formats
	output  string // output file, or base path when several formats are requested
	noCache bool   // skip the schedule cache entirely
	refresh bool   // recompute even when a cached schedule exists
}

func (c *CLI) sortCommand() *cobra.Command {
	var opts sortOpts

	cmd := &cobra.Command{
		Use:   "sort <plan>",
		Short: "Order the steps of a plan into batches",
		Long: `Order the steps of a plan file (TOML or JSON) so that every step comes after
the steps it needs. Results are cached per plan contents and options.`,
		Example: `  stackorder sort release.toml
  stackorder sort --batching release.toml
  stackorder sort -f json,svg -o out/release release.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSort(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): "+strings.Join(render.Formats, ", ")+" (comma-separated, default text)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple formats)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the schedule cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached schedules")

	return cmd
}

func (c *CLI) runSort(ctx context.Context, stdout, stderr io.Writer, path string, opts *sortOpts) error {
	logger := loggerFromContext(ctx)
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	if len(formats) > 1 && opts.output == "" {
		return errors.New(errors.ErrCodeInvalidInput, "writing %d formats requires --output", len(formats))
	}

	p, err := plan.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded plan", "plan", p.String(), "steps", len(p.Steps))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	var spin *Spinner
	if slices.Contains(formats, render.FormatSVG) || slices.Contains(formats, render.FormatPNG) {
		spin = newSpinner(ctx, stderr, "Rendering "+p.String()+"...")
		spin.Start()
	}
	res, err := runner.Run(ctx, p, pipeline.Options{
		Batching:  opts.batching,
		BreakWeak: opts.breakWeak,
		Formats:   formats,
		Refresh:   opts.refresh,
	})
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		reportCycle(stderr, err)
		return err
	}
	prog.done(fmt.Sprintf("Scheduled %d steps in %d batches", res.Stats.Steps, res.Stats.Batches))

	for _, l := range res.Schedule.Broken {
		printWarning(stderr, "dropped %s %s %s", l.From, iconArrow, l.To)
	}

	if opts.output == "" {
		_, err := stdout.Write(res.Artifacts[formats[0]])
		return err
	}

	paths, err := writeArtifacts(opts.output, formats, res.Artifacts)
	if err != nil {
		return err
	}
	printSuccess(stderr, "Scheduled %s", StyleHighlight.Render(p.String()))
	printStats(stderr, res.Stats.Steps, res.Stats.Batches, res.Stats.Broken, res.CacheHit)
	for _, path := range paths {
		printFile(stderr, path)
	}
	return nil
}

// writeArtifacts writes one file per format. A single format is written to
// output as given; several formats share output as a base name with the
// format as extension.
func writeArtifacts(output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}

	var paths []string
	base := strings.TrimSuffix(output, filepath.Ext(output))
	for _, f := range formats {
		path := output
		if len(formats) > 1 {
			path = base + "." + f
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// reportCycle prints the steps of a cycle when err carries one.
func reportCycle(w io.Writer, err error) {
	cycle, ok := plan.Cycle(err)
	if !ok {
		return
	}
	printError(w, "dependency cycle")
	printCycle(w, cycle)
}
