package sim

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/teller-sim/teller-sim/sim/trace"
)

// Series is one metric observed once per run.
type Series struct {
	Values []float64 // per-run values in run order
	Mean   float64
	StdDev float64 // sample standard deviation; 0 with fewer than two runs
	CI95   float64 // half-width of the 95% Student-t confidence interval of the mean
	Min    float64
	Max    float64
	P50    float64
}

// NewSeries summarizes values. Returns a zero Series for empty input.
func NewSeries(values []float64) Series {
	if len(values) == 0 {
		return Series{}
	}
	s := Series{
		Values: values,
		Mean:   stat.Mean(values, nil),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	s.P50 = stat.Quantile(0.5, stat.LinInterp, sorted, nil)

	n := float64(len(values))
	if len(values) > 1 {
		s.StdDev = stat.StdDev(values, nil)
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}
		s.CI95 = t.Quantile(0.975) * stat.StdErr(s.StdDev, n)
	}
	return s
}

// AggregateStatistics collects the per-run metrics of an aggregation and
// their cross-run summaries.
type AggregateStatistics struct {
	Config Config
	Runs   []RunResult

	Throughput         Series // served customers per time unit
	AverageWait        Series // mean wait of served customers
	AverageQueueLength Series // mean of the line-length samples
	Utilization        Series // busy teller time over capacity × horizon
	Served             Series
	Balked             Series
	Reneged            Series
}

// Aggregate performs cfg.NumRuns independent runs in sequence and summarizes
// them. All runs draw from the one rng, which is never reseeded, so the whole
// aggregation is reproducible from rng's key.
func Aggregate(cfg Config, rng *PartitionedRNG) (*AggregateStatistics, error) {
	return AggregateWithTrace(cfg, rng, nil)
}

// AggregateWithTrace is Aggregate that also records every customer reaching a
// terminal outcome into st when st is enabled. A nil st records nothing.
func AggregateWithTrace(cfg Config, rng *PartitionedRNG, st *trace.SimulationTrace) (*AggregateStatistics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rho := cfg.OfferedLoad(); rho >= 1 {
		logrus.Warnf("Offered load %.2f >= 1: %d tellers cannot keep up with arrivals; expect balking and reneging to dominate", rho, cfg.NumTellers)
	}

	runs := make([]RunResult, 0, cfg.NumRuns)
	for i := 0; i < cfg.NumRuns; i++ {
		r, err := newRun(cfg, rng)
		if err != nil {
			return nil, err
		}
		if st.Enabled() {
			r.onCustomer = traceRecorder(st, i+1)
		}
		res, err := r.execute()
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i+1, err)
		}
		logrus.Debugf("Run %d: %s", i+1, res)
		runs = append(runs, res)
	}

	agg := NewAggregateStatistics(cfg, runs)
	logrus.Infof("Aggregated %d runs: throughput %.3f, wait %.3f, queue %.3f, utilization %.3f, balked %.2f, reneged %.2f",
		len(runs), agg.Throughput.Mean, agg.AverageWait.Mean, agg.AverageQueueLength.Mean,
		agg.Utilization.Mean, agg.Balked.Mean, agg.Reneged.Mean)
	return agg, nil
}

// NewAggregateStatistics summarizes already-completed runs.
func NewAggregateStatistics(cfg Config, runs []RunResult) *AggregateStatistics {
	n := len(runs)
	throughput := make([]float64, n)
	wait := make([]float64, n)
	queue := make([]float64, n)
	util := make([]float64, n)
	served := make([]float64, n)
	balked := make([]float64, n)
	reneged := make([]float64, n)
	for i, r := range runs {
		throughput[i] = r.Throughput()
		wait[i] = r.AverageWait()
		queue[i] = r.AverageQueueLength()
		util[i] = r.Utilization()
		served[i] = float64(r.Served)
		balked[i] = float64(r.Balked)
		reneged[i] = float64(r.Reneged)
	}
	return &AggregateStatistics{
		Config:             cfg,
		Runs:               runs,
		Throughput:         NewSeries(throughput),
		AverageWait:        NewSeries(wait),
		AverageQueueLength: NewSeries(queue),
		Utilization:        NewSeries(util),
		Served:             NewSeries(served),
		Balked:             NewSeries(balked),
		Reneged:            NewSeries(reneged),
	}
}
