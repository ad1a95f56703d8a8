package report

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/teller-sim/teller-sim/sim"
)

// Collector exposes the cross-run summary of an aggregation to Prometheus.
type Collector struct {
	stats *sim.AggregateStatistics

	runsDesc        *prometheus.Desc
	offeredLoadDesc *prometheus.Desc
	metricDescs     []metricDesc
}

type metricDesc struct {
	desc   *prometheus.Desc
	series func(*sim.AggregateStatistics) sim.Series
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a new collector for the given aggregation.
// Metric names are prefixed with the given namespace and subsystem,
// i.e "{namespace}_{subsystem}_{metric}". Every metric carries a constant
// "tellers" label so the collectors of a sweep can share one registry.
// Supported metrics:
// - runs
// - offered_load
// - throughput, average_wait, average_queue_length, utilization,
// served, balked, reneged (labelled stat="mean"|"stddev"|"ci95")
func NewCollector(namespace, subsystem string, stats *sim.AggregateStatistics) *Collector {
	labels := prometheus.Labels{"tellers": strconv.Itoa(stats.Config.NumTellers)}
	desc := func(name, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, variable, labels)
	}

	return &Collector{
		stats:           stats,
		runsDesc:        desc("runs", "Number of aggregated simulation runs."),
		offeredLoadDesc: desc("offered_load", "Mean service time over tellers times mean inter-arrival time."),
		metricDescs: []metricDesc{
			{desc("throughput", "Served customers per time unit.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.Throughput }},
			{desc("average_wait", "Mean wait of served customers.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.AverageWait }},
			{desc("average_queue_length", "Mean sampled line length.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.AverageQueueLength }},
			{desc("utilization", "Fraction of teller time spent serving.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.Utilization }},
			{desc("served", "Customers whose service finished per run.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.Served }},
			{desc("balked", "Customers turned away by the line length per run.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.Balked }},
			{desc("reneged", "Customers that ran out of patience per run.", "stat"), func(a *sim.AggregateStatistics) sim.Series { return a.Reneged }},
		},
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.runsDesc
	descs <- c.offeredLoadDesc
	for _, m := range c.metricDescs {
		descs <- m.desc
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(
		c.runsDesc, prometheus.GaugeValue, float64(len(c.stats.Runs)),
	)
	metrics <- prometheus.MustNewConstMetric(
		c.offeredLoadDesc, prometheus.GaugeValue, c.stats.Config.OfferedLoad(),
	)
	for _, m := range c.metricDescs {
		s := m.series(c.stats)
		metrics <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, s.Mean, "mean")
		metrics <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, s.StdDev, "stddev")
		metrics <- prometheus.MustNewConstMetric(m.desc, prometheus.GaugeValue, s.CI95, "ci95")
	}
}

// Textfile writes collectors to a node-exporter textfile.
type Textfile struct {
	path       string
	collectors []prometheus.Collector
}

func NewTextfile(path string, collectors ...prometheus.Collector) *Textfile {
	return &Textfile{
		path:       path,
		collectors: collectors,
	}
}

func (t *Textfile) Report() error {
	if t == nil {
		return nil
	}
	return WriteTextfile(t.path, t.collectors...)
}

// WriteTextfile registers collectors in a fresh registry and writes it to path
// in the Prometheus text format.
func WriteTextfile(path string, collectors ...prometheus.Collector) error {
	reg := prometheus.NewRegistry()
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register collector: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
