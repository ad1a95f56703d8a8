package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teller-sim/teller-sim/report"
	"github.com/teller-sim/teller-sim/sim"
	"github.com/teller-sim/teller-sim/sim/trace"
)

var (
	// CLI flags for the bank model
	configPath          string  // YAML or TOML file with a full or partial Config
	numTellers          int     // Number of tellers
	meanInterArrival    float64 // Mean time between customer arrivals
	meanServiceTime     float64 // Mean teller service time
	maxQueueLength      int     // Customers balk when the line is at least this long
	maxPatience         float64 // Customers renege after waiting this long
	horizon             float64 // Simulated duration of each run
	numRuns             int     // Number of independent runs
	seed                int64   // Master seed
	monitorInterval     float64 // Spacing of line-length samples
	arrivalDistribution string  // Inter-arrival distribution
	arrivalCV           float64 // Inter-arrival coefficient of variation (gamma, weibull)
	serviceDistribution string  // Service time distribution
	serviceCV           float64 // Service coefficient of variation (gamma, weibull)

	// CLI flags for output
	logLevel    string // Log verbosity level
	chartPath   string // HTML chart output path
	metricsPath string // Prometheus textfile output path
	traceLevel  string // Customer trace verbosity
	traceFile   string // YAML customer trace output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "teller-sim",
	Short: "Discrete-event simulator for a bank with balking and reneging customers",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bank simulation and print per-run and summary statistics",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		if traceFile != "" && trace.TraceLevel(traceLevel) != trace.TraceLevelCustomers {
			logrus.Warnf("--trace-file has no effect unless --trace-level=customers")
		}
		st := trace.NewSimulationTrace(trace.TraceLevel(traceLevel))
		o := report.Options{ChartPath: chartPath, MetricsPath: metricsPath}
		if err := runAggregate(cmd.OutOrStdout(), cfg, o, st, traceFile); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runAggregate performs cfg.NumRuns runs and reports them to w. When st is
// enabled a trace summary follows the table and, if tracePath is set, the
// full trace is written there as YAML.
func runAggregate(w io.Writer, cfg sim.Config, o report.Options, st *trace.SimulationTrace, tracePath string) error {
	logrus.Infof("Starting %d runs: %d tellers, mean inter-arrival %.2f, mean service %.2f, horizon %.1f, seed %d",
		cfg.NumRuns, cfg.NumTellers, cfg.MeanInterArrival, cfg.MeanServiceTime, cfg.Horizon, cfg.Seed)

	stats, err := sim.AggregateWithTrace(cfg, sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed)), st)
	if err != nil {
		return err
	}
	if err := report.NewReporter(w, stats, o).Report(); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	if o.ChartPath != "" {
		logrus.Infof("Charts written to %s", o.ChartPath)
	}
	if o.MetricsPath != "" {
		logrus.Infof("Metrics written to %s", o.MetricsPath)
	}
	if !st.Enabled() {
		return nil
	}

	ts := trace.Summarize(st)
	fmt.Fprintf(w, "\nTrace: %d customers over %d runs (served %d, balked %d, reneged %d); served wait mean %.3f max %.3f; reneged after %.3f\n",
		ts.TotalCustomers, ts.RunCount, ts.ServedCount, ts.BalkedCount, ts.RenegedCount,
		ts.MeanServedWait, ts.MaxServedWait, ts.MeanRenegeWait)
	if tracePath != "" {
		if err := writeTrace(tracePath, st); err != nil {
			return err
		}
		logrus.Infof("Trace written to %s", tracePath)
	}
	return nil
}

func writeTrace(path string, st *trace.SimulationTrace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("trace: %w", err)
	}
	return f.Close()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addConfigFlags registers one flag per Config field on c.
func addConfigFlags(c *cobra.Command) {
	d := sim.DefaultConfig()
	c.Flags().StringVar(&configPath, "config", "", "YAML or TOML config file; flags override its values")
	c.Flags().IntVar(&numTellers, "tellers", d.NumTellers, "Number of tellers")
	c.Flags().Float64Var(&meanInterArrival, "inter-arrival", d.MeanInterArrival, "Mean time between customer arrivals")
	c.Flags().Float64Var(&meanServiceTime, "service-time", d.MeanServiceTime, "Mean teller service time")
	c.Flags().IntVar(&maxQueueLength, "max-queue", d.MaxQueueLength, "Customers balk when the line is at least this long")
	c.Flags().Float64Var(&maxPatience, "patience", d.MaxPatience, "Customers renege after waiting this long")
	c.Flags().Float64Var(&horizon, "horizon", d.Horizon, "Simulated duration of each run")
	c.Flags().IntVar(&numRuns, "runs", d.NumRuns, "Number of independent runs")
	c.Flags().Int64Var(&seed, "seed", d.Seed, "Master seed for arrival and service draws")
	c.Flags().Float64Var(&monitorInterval, "monitor-interval", d.MonitorInterval, "Spacing of line-length samples")
	c.Flags().StringVar(&arrivalDistribution, "arrival-dist", d.ArrivalDistribution, "Inter-arrival distribution (exponential, constant, gamma, weibull)")
	c.Flags().Float64Var(&arrivalCV, "arrival-cv", d.ArrivalCV, "Inter-arrival coefficient of variation (gamma, weibull)")
	c.Flags().StringVar(&serviceDistribution, "service-dist", d.ServiceDistribution, "Service time distribution (exponential, constant, gamma, weibull)")
	c.Flags().Float64Var(&serviceCV, "service-cv", d.ServiceCV, "Service time coefficient of variation (gamma, weibull)")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&metricsPath, "metrics-file", "", "Write summary metrics as a Prometheus textfile")
}

func init() {
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&chartPath, "chart", "", "Write per-run charts to this HTML file")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Customer trace verbosity (none, customers)")
	runCmd.Flags().StringVar(&traceFile, "trace-file", "", "Write the customer trace to this YAML file (requires --trace-level=customers)")

	addConfigFlags(sweepCmd)
	sweepCmd.Flags().IntSliceVar(&sweepTellers, "teller-counts", []int{1, 2, 3, 4}, "Comma-separated teller counts to compare")
	sweepCmd.Flags().IntVar(&sweepParallelism, "parallelism", 0, "Maximum concurrent sweep points (0 = one per CPU)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(defaultsCmd)
}
