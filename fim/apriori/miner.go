// Package apriori drives level-wise frequent itemset mining.
//
// A Miner owns one support threshold over one immutable store. Level 1 is
// counted directly from the store; every later level runs join, prune, count
// and threshold filter against the completed level before it, so levels never
// overlap. Work inside a level is partitioned across a bounded worker pool.
package apriori

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ZanzyTHEbar/frequent-itemsets/fim/candidates"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/counting"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/itemset"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/metrics"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/parallel"
	"github.com/ZanzyTHEbar/frequent-itemsets/fim/store"

	"github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidSupport is returned for a support percentage outside (0, 100].
	ErrInvalidSupport = errors.New("support percentage must be in (0, 100]")
	// ErrEmptyDataset is returned when no store is given.
	ErrEmptyDataset = store.ErrEmptyDataset
)

// Options configures a Miner. Only SupportPercentage is required.
type Options struct {
	SupportPercentage float64
	// Counter defaults to counting.Auto with Workers parallelism.
	Counter counting.Counter
	// Workers bounds per-level parallelism; 0 means one per CPU, 1 is sequential.
	Workers int
	// MaxLevel stops after this itemset size; 0 means no limit.
	MaxLevel      int
	Observer      Observer
	Logger        *zerolog.Logger
	Metrics       *metrics.Collector
	AssertHandler *assert.AssertHandler
}

// Miner mines one store at one support threshold. It holds no state between
// runs, so Run may be called repeatedly and yields identical results.
type Miner struct {
	store      *store.Store
	opts       Options
	minSupport int
	workers    int
	counter    counting.Counter
	generator  *candidates.Generator
	logger     zerolog.Logger
}

// MinSupportCount converts a support percentage into a transaction count:
// floor(pct * transactions / 100), never less than one.
func MinSupportCount(pct float64, transactions int) int {
	return max(int(math.Floor(pct*float64(transactions)/100)), 1)
}

// New validates the configuration and fixes the minimum support count for all
// runs of the returned Miner. No mining work happens here.
func New(st *store.Store, opts Options) (*Miner, error) {
	if st == nil || st.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if !(opts.SupportPercentage > 0 && opts.SupportPercentage <= 100) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSupport, opts.SupportPercentage)
	}
	if opts.MaxLevel < 0 {
		return nil, fmt.Errorf("max level must not be negative: got %d", opts.MaxLevel)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = parallel.DefaultWorkers()
	}
	counter := opts.Counter
	if counter == nil {
		counter = counting.NewAuto(workers)
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Miner{
		store:      st,
		opts:       opts,
		minSupport: MinSupportCount(opts.SupportPercentage, st.Len()),
		workers:    workers,
		counter:    counter,
		generator:  candidates.NewGenerator(opts.AssertHandler),
		logger:     logger,
	}, nil
}

// MinSupport returns the minimum support count fixed at construction.
func (m *Miner) MinSupport() int { return m.minSupport }

// Run mines every level until one has no frequent itemsets. When ctx ends
// first, Run returns the completed levels with Truncated set and a nil error;
// a level interrupted mid-way is discarded.
func (m *Miner) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:             uuid.NewString(),
		SupportPercentage: m.opts.SupportPercentage,
		MinSupportCount:   m.minSupport,
		Transactions:      m.store.Len(),
	}
	log := m.logger.With().Str("run_id", res.RunID).Logger()
	log.Info().
		Float64("support_pct", res.SupportPercentage).
		Int("min_support", m.minSupport).
		Int("transactions", res.Transactions).
		Str("counter", m.counter.Name()).
		Int("workers", m.workers).
		Msg("mining started")

	var prev Level
	for k := 1; ; k++ {
		if err := ctx.Err(); err != nil {
			res.Truncated = true
			log.Warn().Err(err).Int("k", k).Msg("mining truncated before level")
			break
		}

		start := time.Now()
		var (
			lvl    Level
			report LevelReport
			err    error
		)
		if k == 1 {
			lvl, report = m.levelOne()
		} else {
			lvl, report, err = m.nextLevel(ctx, prev)
		}
		if err != nil {
			if ctx.Err() != nil {
				res.Truncated = true
				log.Warn().Err(err).Int("k", k).Msg("mining truncated inside level")
				break
			}
			m.opts.Metrics.ObserveRun(m.minSupport, metrics.OutcomeFailed)
			return nil, fmt.Errorf("mining level %d: %w", k, err)
		}

		report.RunID = res.RunID
		report.MinSupport = m.minSupport
		report.Duration = time.Since(start)
		m.finishLevel(log, report)

		if lvl.Len() == 0 {
			break
		}
		res.Levels = append(res.Levels, lvl)
		if m.opts.MaxLevel > 0 && k >= m.opts.MaxLevel {
			break
		}
		prev = lvl
	}

	outcome := metrics.OutcomeComplete
	if res.Truncated {
		outcome = metrics.OutcomeTruncated
	}
	m.opts.Metrics.ObserveRun(m.minSupport, outcome)
	log.Info().
		Int("levels", len(res.Levels)).
		Int("itemsets", res.Len()).
		Bool("truncated", res.Truncated).
		Msg("mining finished")
	return res, nil
}

func (m *Miner) finishLevel(log zerolog.Logger, r LevelReport) {
	log.Debug().
		Int("k", r.K).
		Int("generated", r.Generated).
		Int("pruned", r.Pruned).
		Int("counted", r.Counted).
		Int("frequent", r.Frequent).
		Dur("took", r.Duration).
		Msg("level complete")
	m.opts.Metrics.ObserveLevel(r.Generated, r.Pruned, r.Counted, r.Frequent, r.Duration)
	if m.opts.Observer != nil {
		m.opts.Observer(r)
	}
}

// levelOne reads single item supports straight from the posting index.
func (m *Miner) levelOne() (Level, LevelReport) {
	items := m.store.Items()
	lvl := Level{K: 1}
	for _, it := range items {
		if sup := m.store.ItemSupport(it); sup >= m.minSupport {
			lvl.Entries = append(lvl.Entries, Entry{Itemset: itemset.Itemset{it}, Support: sup})
		}
	}
	return lvl, LevelReport{
		K:         1,
		Generated: len(items),
		Counted:   len(items),
		Frequent:  lvl.Len(),
	}
}

// nextLevel derives level prev.K+1 from the completed level prev.
func (m *Miner) nextLevel(ctx context.Context, prev Level) (Level, LevelReport, error) {
	k := prev.K + 1
	report := LevelReport{K: k}
	frequent := prev.Itemsets()

	cands := m.generator.Generate(ctx, frequent)
	report.Generated = len(cands)

	kept, err := candidates.PruneParallel(ctx, cands, candidates.NewKeySet(frequent), m.workers)
	if err != nil {
		return Level{}, report, fmt.Errorf("prune: %w", err)
	}
	report.Pruned = len(cands) - len(kept)
	report.Counted = len(kept)

	counts, err := m.counter.Count(ctx, m.store, kept)
	if err != nil {
		return Level{}, report, fmt.Errorf("count with %s: %w", m.counter.Name(), err)
	}

	lvl := Level{K: k}
	for i, cand := range kept {
		if counts[i] >= m.minSupport {
			lvl.Entries = append(lvl.Entries, Entry{Itemset: cand, Support: counts[i]})
		}
	}
	report.Frequent = lvl.Len()
	return lvl, report, nil
}
