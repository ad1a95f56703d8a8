package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teller-sim/teller-sim/sim"
)

// defaultsCmd prints the built-in configuration as a YAML file that --config accepts.
var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the default configuration as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		data, err := sim.DefaultConfig().YAML()
		if err != nil {
			logrus.Fatalf("Failed to render default config: %v", err)
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			logrus.Fatalf("Failed to write default config: %v", err)
		}
	},
}

// resolveConfig starts from the defaults, applies --config if given, then
// applies only the flags the user set explicitly, and validates the result.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
		logrus.Infof("Loaded configuration from %s", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("tellers") {
		cfg.NumTellers = numTellers
	}
	if flags.Changed("inter-arrival") {
		cfg.MeanInterArrival = meanInterArrival
	}
	if flags.Changed("service-time") {
		cfg.MeanServiceTime = meanServiceTime
	}
	if flags.Changed("max-queue") {
		cfg.MaxQueueLength = maxQueueLength
	}
	if flags.Changed("patience") {
		cfg.MaxPatience = maxPatience
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("runs") {
		cfg.NumRuns = numRuns
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("monitor-interval") {
		cfg.MonitorInterval = monitorInterval
	}
	if flags.Changed("arrival-dist") {
		cfg.ArrivalDistribution = arrivalDistribution
	}
	if flags.Changed("arrival-cv") {
		cfg.ArrivalCV = arrivalCV
	}
	if flags.Changed("service-dist") {
		cfg.ServiceDistribution = serviceDistribution
	}
	if flags.Changed("service-cv") {
		cfg.ServiceCV = serviceCV
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
