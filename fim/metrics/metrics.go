package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Candidate pipeline stages.
const (
	StageGenerated = "generated"
	StagePruned    = "pruned"
	StageCounted   = "counted"
	StageFrequent  = "frequent"
)

// Run outcomes.
const (
	OutcomeComplete  = "complete"
	OutcomeTruncated = "truncated"
	OutcomeFailed    = "failed"
)

// Collector groups the prometheus collectors updated by the miner.
type Collector struct {
	Candidates    *prometheus.CounterVec
	LevelDuration prometheus.Histogram
	MinSupport    prometheus.Gauge
	Runs          *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is convenient in tests.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fim",
			Name:      "candidates_total",
			Help:      "Itemsets seen at each stage of the level pipeline.",
		}, []string{"stage"}),
		LevelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fim",
			Name:      "level_duration_seconds",
			Help:      "Wall time spent mining one level.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
		MinSupport: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fim",
			Name:      "min_support_count",
			Help:      "Minimum support count of the most recent run.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fim",
			Name:      "runs_total",
			Help:      "Mining runs by outcome.",
		}, []string{"outcome"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.Candidates, c.LevelDuration, c.MinSupport, c.Runs} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveLevel records the statistics of one completed level.
func (c *Collector) ObserveLevel(generated, pruned, counted, frequent int, took time.Duration) {
	if c == nil {
		return
	}
	c.Candidates.WithLabelValues(StageGenerated).Add(float64(generated))
	c.Candidates.WithLabelValues(StagePruned).Add(float64(pruned))
	c.Candidates.WithLabelValues(StageCounted).Add(float64(counted))
	c.Candidates.WithLabelValues(StageFrequent).Add(float64(frequent))
	c.LevelDuration.Observe(took.Seconds())
}

// ObserveRun records the start parameters and the outcome of a run.
func (c *Collector) ObserveRun(minSupport int, outcome string) {
	if c == nil {
		return
	}
	c.MinSupport.Set(float64(minSupport))
	c.Runs.WithLabelValues(outcome).Inc()
}
