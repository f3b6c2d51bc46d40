package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/macroroute/pkg/blockage"
	"github.com/matzehuels/macroroute/pkg/diag"
	"github.com/matzehuels/macroroute/pkg/errors"
	"github.com/matzehuels/macroroute/pkg/geom"
	"github.com/matzehuels/macroroute/pkg/layout"
	"github.com/matzehuels/macroroute/pkg/pipeline"
	"github.com/matzehuels/macroroute/pkg/router"
	"github.com/matzehuels/macroroute/pkg/supply"
)

// mstCommand creates the mst command: show the connection topology of one
// supply net without routing it.
func (c *CLI) mstCommand() *cobra.Command {
	var (
		net string
		out string
	)

	cmd := &cobra.Command{
		Use:   "mst <job.toml>",
		Short: "Print the spanning-tree pairs of a supply net",
		Long: `Compute the pairs the supply pass would route for one net: its minimum
spanning tree and, if the job gives the net a ring, the ring matches. Use
--out to write the graph as DOT, or as SVG when the file ends in .svg.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := pipeline.LoadJob(args[0])
			if err != nil {
				return err
			}
			pins, pairs, isFake, err := mstPairs(job, net)
			if err != nil {
				return err
			}

			printSuccess("%s: %d pins, %d pairs", styleTitle.Render(net), len(pins), len(pairs))
			var total float64
			for _, p := range pairs {
				total += p.Length()
				printDetail("%s %s %s  %.3f", p.Source.Center(), iconArrow, p.Target.Center(), geom.Round3(p.Length()))
			}
			printKeyValue("length", fmt.Sprintf("%.3f", geom.Round3(total)))

			if out == "" {
				return nil
			}
			data := []byte(diag.ToDOT(diag.Dump{Net: net, Pins: pins, Pairs: pairs, IsFake: isFake}))
			if filepath.Ext(out) == ".svg" {
				if data, err = diag.RenderSVG(string(data)); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			printFile(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&net, "net", "", "supply net name")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the graph to this .dot or .svg file")
	_ = cmd.MarkFlagRequired("net")
	return cmd
}

// mstPairs computes the pairs of net as the supply pass would, drawing the
// ring (if any) into a scratch layout.
func mstPairs(job pipeline.Job, net string) ([]geom.Shape, []supply.Pair, func(geom.Shape) bool, error) {
	box, err := job.Box()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg := router.SupplyNet{Net: net}
	for _, n := range job.Supply {
		if n.Net == net {
			cfg = n
		}
	}

	var pins []geom.Shape
	for _, p := range job.Pins {
		if p.Name == net && box.Contains(p.Center()) {
			pins = append(pins, p)
		}
	}
	if len(pins) == 0 {
		return nil, nil, nil, errors.New(errors.ErrCodePinNotFound, "no pins of %s inside the box", net)
	}
	if !cfg.Ring {
		pairs, err := supply.MSTPairs(pins, nil)
		return pins, pairs, nil, err
	}

	b := supply.Builder{Box: box, Config: job.Tech, Layout: layout.NewMemory(), Blockages: blockage.New()}
	ring, err := b.RingPin(net, cfg.Inner)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.Taps {
		isFake := supply.FakeSet(ring.Taps)
		all := append(append([]geom.Shape(nil), pins...), ring.Taps...)
		pairs, err := supply.MSTPairs(all, isFake)
		return all, pairs, isFake, err
	}
	pairs, err := supply.MSTWithRing(pins, ring.Segments(), cfg.Policy(), nil)
	return append(pins, ring.Segments()...), pairs, nil, err
}
