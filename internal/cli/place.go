package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/macroroute/pkg/pipeline"
)

// placeCommand creates the place command: IO placement only.
func (c *CLI) placeCommand() *cobra.Command {
	var connect bool

	cmd := &cobra.Command{
		Use:   "place <job.toml>",
		Short: "Place the IO pins of a job on the perimeter",
		Long: `Run only the IO placement pass of a job and list where each pin landed.
Supply and moat sections of the job are ignored and nothing is cached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := pipeline.LoadJob(args[0])
			if err != nil {
				return err
			}
			if len(job.IOPins) == 0 {
				printInfo("%s has no io_pins", job.Name)
				return nil
			}
			job.Supply, job.Moat = nil, nil
			job.ConnectIO = connect

			res, err := pipeline.NewRunner(nil, nil, c.Logger).Execute(cmd.Context(), job)
			if err != nil {
				return err
			}
			printSuccess("placed %d of %d io pins", len(res.Placements), len(job.IOPins))
			fmt.Print(formatPlacements(res.Placements))
			for _, name := range res.Unclassified {
				printWarning("no placement rule for %s", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&connect, "connect", false, "also wire each pin to its placeholder")
	return cmd
}
