package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/apriori"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/report"

	"github.com/spf13/cobra"
)

func newSweepCmd(g *globalFlags) *cobra.Command {
	var levels []float64
	cmd := &cobra.Command{
		Use:   "sweep [dataset]",
		Short: "Run one independent mining pass per support threshold",
		Long: `Run one independent mining pass per support threshold over the same
dataset and print the number of frequent itemsets found at every level.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.resolve(cmd, args)
			if err != nil {
				return err
			}
			pcts := s.cfg.Mining.Sweep
			if cmd.Flags().Changed("levels") {
				pcts = levels
			}
			if len(pcts) == 0 {
				return fmt.Errorf("no support levels to sweep")
			}

			out := cmd.OutOrStdout()
			_, err = apriori.Sweep(cmd.Context(), s.store, pcts, s.options(0), apriori.SweepOptions{
				RunContext: s.runContext,
				OnResult: func(res *apriori.Result) error {
					if err := report.WriteSummary(out, res); err != nil {
						return fmt.Errorf("write result: %w", err)
					}
					if res.Truncated {
						fmt.Fprintln(out, "(truncated)")
					}
					return nil
				},
			})
			if err != nil {
				return err
			}
			return s.writeMetrics(g.metricsFile)
		},
	}
	cmd.Flags().Float64SliceVar(&levels, "levels", nil, "support percentages to sweep, e.g. 30,40,50")
	return cmd
}
