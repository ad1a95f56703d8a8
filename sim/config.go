package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teller-sim/teller-sim/sim/workload"
)

// Config groups every parameter of a bank simulation.
// Durations are in simulated time units (minutes in the reports).
type Config struct {
	NumTellers       int     `yaml:"num_tellers" toml:"num_tellers"`               // teller capacity (must be > 0)
	MeanInterArrival float64 `yaml:"mean_inter_arrival" toml:"mean_inter_arrival"` // mean time between arrivals
	MeanServiceTime  float64 `yaml:"mean_service_time" toml:"mean_service_time"`   // mean teller service duration
	MaxQueueLength   int     `yaml:"max_queue_length" toml:"max_queue_length"`     // balk when the line is at least this long
	MaxPatience      float64 `yaml:"max_patience" toml:"max_patience"`             // renege after waiting this long
	Horizon          float64 `yaml:"horizon" toml:"horizon"`                       // simulated duration of each run
	NumRuns          int     `yaml:"num_runs" toml:"num_runs"`                     // independent runs to aggregate
	Seed             int64   `yaml:"seed" toml:"seed"`                             // master seed for the PartitionedRNG
	MonitorInterval  float64 `yaml:"monitor_interval" toml:"monitor_interval"`     // spacing of queue-length samples

	ArrivalDistribution string  `yaml:"arrival_distribution" toml:"arrival_distribution"` // "exponential" (default), "constant", "gamma", "weibull"
	ArrivalCV           float64 `yaml:"arrival_cv" toml:"arrival_cv"`                     // only read by gamma and weibull
	ServiceDistribution string  `yaml:"service_distribution" toml:"service_distribution"`
	ServiceCV           float64 `yaml:"service_cv" toml:"service_cv"`
}

// DefaultConfig returns the configuration of the reference bank scenario:
// two tellers, heavy load, a short line and little patience.
func DefaultConfig() Config {
	return Config{
		NumTellers:          2,
		MeanInterArrival:    2,
		MeanServiceTime:     5,
		MaxQueueLength:      3,
		MaxPatience:         6,
		Horizon:             100,
		NumRuns:             10,
		Seed:                10,
		MonitorInterval:     1,
		ArrivalDistribution: workload.Exponential,
		ServiceDistribution: workload.Exponential,
	}
}

// Validate checks every field and returns a *ConfigError for the first invalid one.
func (c Config) Validate() error {
	switch {
	case c.NumTellers <= 0:
		return &ConfigError{Field: "num_tellers", Reason: fmt.Sprintf("must be positive, got %d", c.NumTellers)}
	case !positiveFinite(c.MeanInterArrival):
		return &ConfigError{Field: "mean_inter_arrival", Reason: fmt.Sprintf("must be a positive finite number, got %v", c.MeanInterArrival)}
	case !positiveFinite(c.MeanServiceTime):
		return &ConfigError{Field: "mean_service_time", Reason: fmt.Sprintf("must be a positive finite number, got %v", c.MeanServiceTime)}
	case c.MaxQueueLength < 0:
		return &ConfigError{Field: "max_queue_length", Reason: fmt.Sprintf("must be non-negative, got %d", c.MaxQueueLength)}
	case c.MaxPatience < 0 || math.IsNaN(c.MaxPatience):
		return &ConfigError{Field: "max_patience", Reason: fmt.Sprintf("must be non-negative, got %v", c.MaxPatience)}
	case c.Horizon < 0 || math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0):
		return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be a non-negative finite number, got %v", c.Horizon)}
	case c.NumRuns <= 0:
		return &ConfigError{Field: "num_runs", Reason: fmt.Sprintf("must be positive, got %d", c.NumRuns)}
	case !positiveFinite(c.MonitorInterval):
		return &ConfigError{Field: "monitor_interval", Reason: fmt.Sprintf("must be a positive finite number, got %v", c.MonitorInterval)}
	case !workload.ValidDistributions[c.ArrivalDistribution]:
		return &ConfigError{Field: "arrival_distribution", Reason: fmt.Sprintf("unknown distribution %q", c.ArrivalDistribution)}
	case !workload.ValidDistributions[c.ServiceDistribution]:
		return &ConfigError{Field: "service_distribution", Reason: fmt.Sprintf("unknown distribution %q", c.ServiceDistribution)}
	case c.ArrivalCV < 0 || math.IsNaN(c.ArrivalCV):
		return &ConfigError{Field: "arrival_cv", Reason: fmt.Sprintf("must be non-negative, got %v", c.ArrivalCV)}
	case c.ServiceCV < 0 || math.IsNaN(c.ServiceCV):
		return &ConfigError{Field: "service_cv", Reason: fmt.Sprintf("must be non-negative, got %v", c.ServiceCV)}
	}
	return nil
}

// OfferedLoad returns ρ = S / (C·IA), the fraction of teller capacity the
// arrival stream would consume if nobody balked or reneged.
func (c Config) OfferedLoad() float64 {
	if c.NumTellers <= 0 || c.MeanInterArrival <= 0 {
		return math.Inf(1)
	}
	return c.MeanServiceTime / (float64(c.NumTellers) * c.MeanInterArrival)
}

// LoadConfig reads a YAML or TOML config file, chosen by extension.
// Fields missing from the file keep their DefaultConfig values.
// Unknown fields are rejected so typos cause errors.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("parsing TOML config %s: unknown field %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml", "":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// an empty file is a valid document that keeps every default
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// YAML renders c as a document LoadConfig accepts.
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
