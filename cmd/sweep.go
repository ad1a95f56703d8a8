package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/teller-sim/teller-sim/report"
	"github.com/teller-sim/teller-sim/sim"
)

var (
	sweepTellers     []int // Teller counts compared by the sweep
	sweepParallelism int   // Maximum concurrent sweep points
)

// sweepCmd runs the same scenario for several teller counts side by side.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare aggregated statistics across teller counts",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if err := runSweep(cmd.Context(), cmd.OutOrStdout(), cfg, sweepTellers, sweepParallelism, metricsPath); err != nil {
			logrus.Fatalf("Sweep failed: %v", err)
		}
	},
}

// runSweep aggregates cfg once per teller count. Points run concurrently; each
// owns its PartitionedRNG, simulator and pool, and all start from cfg.Seed so
// the points see the same arrival stream.
func runSweep(ctx context.Context, w io.Writer, cfg sim.Config, tellers []int, parallelism int, metricsFile string) error {
	if len(tellers) == 0 {
		return fmt.Errorf("sweep needs at least one teller count")
	}
	seen := make(map[int]bool, len(tellers))
	for _, c := range tellers {
		if seen[c] {
			return fmt.Errorf("teller count %d listed twice", c)
		}
		seen[c] = true
	}
	if ctx == nil {
		ctx = context.Background()
	}

	points := make([]*sim.AggregateStatistics, len(tellers))
	eg, ctx := errgroup.WithContext(ctx)
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	eg.SetLimit(parallelism)
	for i, c := range tellers {
		pointCfg := cfg
		pointCfg.NumTellers = c
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stats, err := sim.Aggregate(pointCfg, sim.NewPartitionedRNG(sim.NewSimulationKey(pointCfg.Seed)))
			if err != nil {
				return fmt.Errorf("%d tellers: %w", c, err)
			}
			points[i] = stats
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	if err := report.NewSweepTable(w, points).Report(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if metricsFile != "" {
		collectors := make([]prometheus.Collector, 0, len(points))
		for _, p := range points {
			collectors = append(collectors, report.NewCollector("teller_sim", "", p))
		}
		if err := report.NewTextfile(metricsFile, collectors...).Report(); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", metricsFile)
	}
	return nil
}
