package cli

import (
	"fmt"

	internal "github.com/ZanzyTHEbar/frequent-itemsets/fim"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/apriori"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/report"

	"github.com/spf13/cobra"
)

func newMineCmd(g *globalFlags) *cobra.Command {
	var (
		support float64
		output  string
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "mine [dataset]",
		Short: "Mine all frequent itemsets at one support threshold",
		Long: `Mine all frequent itemsets at one support threshold and print them as
"k<TAB>support<TAB>items" lines, grouped by itemset size.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.resolve(cmd, args)
			if err != nil {
				return err
			}
			pct := s.cfg.Mining.SupportPercentage
			if cmd.Flags().Changed("support") {
				pct = support
			}

			m, err := apriori.New(s.store, s.options(pct))
			if err != nil {
				return err
			}
			ctx, cancel := s.runContext(cmd.Context())
			defer cancel()
			res, err := m.Run(ctx)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if summary {
				err = report.WriteSummary(w, res)
			} else {
				err = report.WriteListing(w, res, s.dict)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			return s.writeMetrics(g.metricsFile)
		},
	}
	cmd.Flags().Float64VarP(&support, "support", "s", internal.DefaultSupportPercentage, "minimum support percentage in (0, 100]")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the listing to this file instead of stdout")
	cmd.Flags().BoolVar(&summary, "summary", false, "print only per-level counts")
	return cmd
}
