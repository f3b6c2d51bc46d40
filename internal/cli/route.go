package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/pipeline"
)

// routeCommand creates the route command: run a job and write its layout.
func (c *CLI) routeCommand() *cobra.Command {
	var (
		flags   backendFlags
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "route <job.toml>",
		Short: "Run every routing pass of a job",
		Long: `Run IO placement, supply routing and moat exits as configured in the job
file, then write the resulting layout as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			job, err := pipeline.LoadJob(args[0])
			if err != nil {
				return err
			}

			runner, finish, err := c.newRunner(ctx, flags)
			if err != nil {
				return err
			}
			runner.Refresh = refresh

			prog := newProgress(c.Logger)
			res, err := runner.Execute(ctx, job)
			if ferr := finish(); ferr != nil {
				c.Logger.Warn("closing backends", "err", ferr)
			}
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Routed %s", job.Name))

			if output == "" {
				output = job.Name + ".layout.json"
			}
			if err := layout.WriteFile(res.Layout, output); err != nil {
				return err
			}
			printResult(job.Name, res)
			printFile(output)
			if flags.metricsFile != "" {
				printFile(flags.metricsFile)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "layout output file (default <job>.layout.json)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")

	return cmd
}
