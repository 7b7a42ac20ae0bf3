// Package report renders mining results and progress.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/apriori"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"

	"github.com/rs/zerolog"
)

// Labeler renders an itemset for display. *encoding.Dictionary satisfies it.
type Labeler interface {
	Format(s itemset.Itemset) string
}

type numericLabeler struct{}

func (numericLabeler) Format(s itemset.Itemset) string {
	parts := make([]string, len(s))
	for i, it := range s {
		parts[i] = fmt.Sprint(it)
	}
	return strings.Join(parts, " ")
}

// WriteListing writes a header line for the run followed by one
// "k<TAB>support<TAB>items" line per frequent itemset, level by level.
// A nil labeler prints item numbers.
func WriteListing(w io.Writer, res *apriori.Result, labels Labeler) error {
	if labels == nil {
		labels = numericLabeler{}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# support %v%% (min count %d of %d transactions)", res.SupportPercentage, res.MinSupportCount, res.Transactions)
	if res.Truncated {
		bw.WriteString(" truncated")
	}
	bw.WriteByte('\n')
	for _, lvl := range res.Levels {
		for _, e := range lvl.Entries {
			fmt.Fprintf(bw, "%d\t%d\t%s\n", lvl.K, e.Support, labels.Format(e.Itemset))
		}
	}
	return bw.Flush()
}

// WriteSummary writes the per-level counts of a run in the
// "Number of length-k frequent itemsets: n" form.
func WriteSummary(w io.Writer, res *apriori.Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Support is set to be %v%%\n", res.SupportPercentage)
	for _, lvl := range res.Levels {
		fmt.Fprintf(bw, "Number of length-%d frequent itemsets: %d\n", lvl.K, lvl.Len())
	}
	return bw.Flush()
}

// ProgressObserver logs one event per level that produced frequent itemsets.
func ProgressObserver(logger zerolog.Logger) apriori.Observer {
	return func(r apriori.LevelReport) {
		if r.Frequent == 0 {
			logger.Debug().
				Str("run_id", r.RunID).
				Int("k", r.K).
				Int("candidates", r.Counted).
				Msg("no more frequent itemsets")
			return
		}
		logger.Info().
			Str("run_id", r.RunID).
			Int("k", r.K).
			Int("frequent", r.Frequent).
			Int("pruned", r.Pruned).
			Dur("took", r.Duration).
			Msgf("Number of length-%d frequent itemsets: %d", r.K, r.Frequent)
	}
}
