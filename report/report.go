// Package report renders aggregated bank simulation results: a console
// table, an HTML page of line charts, and a Prometheus textfile.
package report

import (
	"io"

	"github.com/teller-sim/teller-sim/sim"
)

type reporter interface {
	Report() error
}

type Reporter struct {
	reporters []reporter
}

// Options selects the optional outputs. Empty paths disable them.
type Options struct {
	ChartPath   string // HTML page of per-run charts
	MetricsPath string // Prometheus textfile
}

// NewReporter builds a reporter that always prints the table to w and adds
// the chart page and metrics file when their paths are set.
func NewReporter(w io.Writer, stats *sim.AggregateStatistics, o Options) *Reporter {
	reporters := []reporter{NewTable(w, stats)}
	if o.ChartPath != "" {
		reporters = append(reporters, NewChart(o.ChartPath, stats))
	}
	if o.MetricsPath != "" {
		reporters = append(reporters, NewTextfile(o.MetricsPath, NewCollector("teller_sim", "", stats)))
	}
	return &Reporter{reporters: reporters}
}

func (r *Reporter) Report() error {
	if r == nil {
		return nil
	}

	for _, rep := range r.reporters {
		if err := rep.Report(); err != nil {
			return err
		}
	}
	return nil
}
