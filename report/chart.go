package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/teller-sim/teller-sim/sim"
)

// Chart writes an HTML page with one line chart per metric over the run
// number, plus an overlay of served, balked and reneged customers.
type Chart struct {
	path  string
	stats *sim.AggregateStatistics
}

func NewChart(path string, stats *sim.AggregateStatistics) *Chart {
	return &Chart{
		path:  path,
		stats: stats,
	}
}

func (c *Chart) Report() error {
	if c == nil || c.stats == nil {
		return nil
	}

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := c.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("save chart: %w", err)
	}
	return f.Close()
}

// Render writes the chart page to w.
func (c *Chart) Render(w io.Writer) error {
	s := c.stats
	page := components.NewPage()
	page.SetPageTitle("Bank teller simulation")
	page.AddCharts(
		c.line("Throughput over multiple runs", "customers per minute", series{"Throughput", s.Throughput.Values}),
		c.line("Average Waiting Time over multiple runs", "minutes", series{"Waiting time", s.AverageWait.Values}),
		c.line("Average Queue Length over multiple runs", "customers", series{"Queue length", s.AverageQueueLength.Values}),
		c.line("Server Utilization over multiple runs", "utilization", series{"Utilization", s.Utilization.Values}),
		c.line("Balking over multiple runs", "balked customers", series{"Balked", s.Balked.Values}),
		c.line("Reneging over multiple runs", "reneged customers", series{"Reneged", s.Reneged.Values}),
		c.line("Customers Served, Balked, and Reneged over Multiple Runs", "customers",
			series{"Served", s.Served.Values},
			series{"Balked", s.Balked.Values},
			series{"Reneged", s.Reneged.Values},
		),
	)
	return page.Render(w)
}

type series struct {
	name   string
	values []float64
}

func (c *Chart) line(title, yName string, ss ...series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithXAxisOpts(opts.XAxis{
			Name: "run",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yName,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:  opts.Bool(len(ss) > 1),
			Right: "0%",
			Top:   "10%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithAnimation(false),
	)

	runs := make([]int, 0, len(c.stats.Runs))
	for i := range c.stats.Runs {
		runs = append(runs, i+1)
	}
	line = line.SetXAxis(runs)
	for _, s := range ss {
		lineData := make([]opts.LineData, 0, len(s.values))
		for _, v := range s.values {
			lineData = append(lineData, opts.LineData{
				Value: v,
			})
		}
		line = line.AddSeries(s.name, lineData)
	}

	line.SetSeriesOptions(charts.WithLineChartOpts(
		opts.LineChart{
			Smooth:     opts.Bool(true),
			ShowSymbol: opts.Bool(true),
		}),
	)
	return line
}
