package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	internal "github.com/ZanzyTHEbar/frequent-itemsets/fim"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/apriori"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/config"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/counting"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/encoding"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/metrics"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/report"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	counter     string
	workers     int
	maxLevel    int
	timeout     time.Duration
	delimiter   string
	label       string
	metricsFile string
}

// NewRootCmd builds the command tree. A fresh tree per call keeps flag state
// out of package globals.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   internal.DefaultAppName,
		Short: "Mine frequent itemsets from delimited datasets with Apriori",
		Long: `fim reads a delimited dataset, encodes every (column, value) pair as an
item and mines all itemsets whose support meets a threshold, level by level.

Examples:
  # Mine at 40% support and print every frequent itemset
  fim mine --support 40 data.txt

  # Sweep several thresholds and print per-level counts
  fim sweep --levels 30,40,50,60,70 data.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default: ./config.yaml or ~/.config/fim/config.yaml)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "", "log format (json, console)")
	pf.StringVar(&g.counter, "counter", "", "support counting strategy (auto, naive, indexed)")
	pf.IntVar(&g.workers, "workers", 0, "parallel workers per level (0 = one per CPU)")
	pf.IntVar(&g.maxLevel, "max-level", 0, "stop after itemsets of this size (0 = no limit)")
	pf.DurationVar(&g.timeout, "timeout", 0, "deadline for each run; partial results are marked truncated")
	pf.StringVar(&g.delimiter, "delimiter", "", "column delimiter (a character, tab, comma or space)")
	pf.StringVar(&g.label, "label", "", "label column left unprefixed (last, none)")
	pf.StringVar(&g.metricsFile, "metrics-file", "", "write prometheus metrics in text format to this file")

	root.SuggestionsMinimumDistance = 2
	root.AddCommand(newMineCmd(g))
	root.AddCommand(newSweepCmd(g))
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// session is everything a subcommand needs after configuration is resolved.
type session struct {
	cfg     *config.Config
	logger  zerolog.Logger
	store   *store.Store
	dict    *encoding.Dictionary
	counter counting.Counter
	metrics *metrics.Collector
	reg     *prometheus.Registry
	timeout time.Duration
}

// resolve loads configuration, applies flags that were set explicitly and
// loads the dataset named by args or dataset.path.
func (g *globalFlags) resolve(cmd *cobra.Command, args []string) (*session, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = g.logFormat
	}
	if flags.Changed("counter") {
		cfg.Mining.Counter = g.counter
	}
	if flags.Changed("workers") {
		cfg.Mining.Workers = g.workers
	}
	if flags.Changed("max-level") {
		cfg.Mining.MaxLevel = g.maxLevel
	}
	if flags.Changed("delimiter") {
		cfg.Dataset.Delimiter = g.delimiter
	}
	if flags.Changed("label") {
		cfg.Dataset.LabelColumn = g.label
	}
	if len(args) > 0 {
		cfg.Dataset.Path = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Dataset.Path == "" {
		return nil, fmt.Errorf("no dataset given: pass a file argument or set dataset.path")
	}

	logger, err := internal.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("logging.level: %w", err)
	}

	encOpts, err := cfg.Dataset.EncodingOptions()
	if err != nil {
		return nil, err
	}
	st, dict, err := loadDataset(cfg.Dataset.Path, encOpts)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("path", cfg.Dataset.Path).
		Int("transactions", st.Len()).
		Int("items", st.NumItems()).
		Float64("density", st.Density()).
		Msg("dataset loaded")

	counter, err := counting.ForName(cfg.Mining.Counter, cfg.Mining.Workers)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	col, err := metrics.NewCollector(reg)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Mining.TimeoutSeconds) * time.Second
	if flags.Changed("timeout") {
		timeout = g.timeout
	}

	return &session{
		timeout: timeout,
		cfg:     cfg,
		logger:  logger,
		store:   st,
		dict:    dict,
		counter: counter,
		metrics: col,
		reg:     reg,
	}, nil
}

func loadDataset(path string, opts encoding.Options) (*store.Store, *encoding.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	st, dict, err := encoding.Load(f, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return st, dict, nil
}

// options builds miner options for one support percentage.
func (s *session) options(pct float64) apriori.Options {
	return apriori.Options{
		SupportPercentage: pct,
		Counter:           s.counter,
		Workers:           s.cfg.Mining.Workers,
		MaxLevel:          s.cfg.Mining.MaxLevel,
		Observer:          report.ProgressObserver(s.logger),
		Logger:            &s.logger,
		Metrics:           s.metrics,
	}
}

// runContext applies the configured per-run deadline.
func (s *session) runContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(parent, s.timeout)
	}
	return context.WithCancel(parent)
}

func (s *session) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, s.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
