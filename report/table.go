package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/teller-sim/teller-sim/sim"
)

var tableHeader = []string{"Run", "Served", "Balked", "Reneged", "Avg wait", "Avg queue", "Utilization", "Throughput"}

// Table prints one row per run followed by the cross-run mean and the 95%
// confidence half-width of every metric.
type Table struct {
	w     io.Writer
	stats *sim.AggregateStatistics
}

func NewTable(w io.Writer, stats *sim.AggregateStatistics) *Table {
	return &Table{
		w:     w,
		stats: stats,
	}
}

func (t *Table) Report() error {
	if t == nil || t.stats == nil {
		return nil
	}

	w := tablewriter.NewWriter(t.w).Options(tablewriter.WithRendition(tw.Rendition{
		Borders: tw.Border{
			Left:   tw.On,
			Top:    tw.Off,
			Right:  tw.On,
			Bottom: tw.Off,
		},
	}), tablewriter.WithHeader(tableHeader))

	for i, r := range t.stats.Runs {
		if err := w.Append(
			strconv.Itoa(i+1),
			strconv.Itoa(r.Served),
			strconv.Itoa(r.Balked),
			strconv.Itoa(r.Reneged),
			fmt.Sprintf("%0.2f", r.AverageWait()),
			fmt.Sprintf("%0.2f", r.AverageQueueLength()),
			fmt.Sprintf("%0.2f", r.Utilization()),
			fmt.Sprintf("%0.2f", r.Throughput()),
		); err != nil {
			return err
		}
	}

	s := t.stats
	series := []sim.Series{s.Served, s.Balked, s.Reneged, s.AverageWait, s.AverageQueueLength, s.Utilization, s.Throughput}
	mean := []any{"mean"}
	ci := []any{"±95%"}
	for _, m := range series {
		mean = append(mean, fmt.Sprintf("%0.2f", m.Mean))
		ci = append(ci, fmt.Sprintf("%0.2f", m.CI95))
	}
	if err := w.Append(mean...); err != nil {
		return err
	}
	if err := w.Append(ci...); err != nil {
		return err
	}
	return w.Render()
}

var sweepHeader = []string{"Tellers", "Offered load", "Served", "Balked", "Reneged", "Avg wait", "Avg queue", "Utilization", "Throughput"}

// SweepTable prints one row of cross-run means per aggregation, one
// aggregation per teller count.
type SweepTable struct {
	w      io.Writer
	points []*sim.AggregateStatistics
}

func NewSweepTable(w io.Writer, points []*sim.AggregateStatistics) *SweepTable {
	return &SweepTable{
		w:      w,
		points: points,
	}
}

func (t *SweepTable) Report() error {
	if t == nil || len(t.points) == 0 {
		return nil
	}

	w := tablewriter.NewTable(t.w, tablewriter.WithHeader(sweepHeader))
	for _, p := range t.points {
		if err := w.Append(
			strconv.Itoa(p.Config.NumTellers),
			fmt.Sprintf("%0.2f", p.Config.OfferedLoad()),
			fmt.Sprintf("%0.2f", p.Served.Mean),
			fmt.Sprintf("%0.2f", p.Balked.Mean),
			fmt.Sprintf("%0.2f", p.Reneged.Mean),
			fmt.Sprintf("%0.2f ± %0.2f", p.AverageWait.Mean, p.AverageWait.CI95),
			fmt.Sprintf("%0.2f", p.AverageQueueLength.Mean),
			fmt.Sprintf("%0.2f", p.Utilization.Mean),
			fmt.Sprintf("%0.2f", p.Throughput.Mean),
		); err != nil {
			return err
		}
	}
	return w.Render()
}
