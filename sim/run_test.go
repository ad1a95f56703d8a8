package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teller-sim/teller-sim/sim/internal/testutil"
)

func TestRunOnce_InvariantsHoldAfterEveryEvent(t *testing.T) {
	for _, seed := range []int64{1, 10, 42, 2024} {
		cfg := DefaultConfig()
		cfg.Seed = seed
		rng := NewPartitionedRNG(NewSimulationKey(seed))

		r, err := newRun(cfg, rng)
		require.NoError(t, err)

		lastClock := 0.0
		r.sim.AfterEvent(func(ev *Event) {
			held := r.pool.Held()
			require.GreaterOrEqual(t, held, 0)
			require.LessOrEqual(t, held, cfg.NumTellers, "held tellers exceed capacity after %s", ev)
			require.LessOrEqual(t, r.inService, held)
			require.LessOrEqual(t, r.pool.WaitLength(), cfg.MaxQueueLength)
			require.GreaterOrEqual(t, r.sim.Clock, lastClock)
			lastClock = r.sim.Clock

			// every outstanding request is in exactly one place: held or waiting
			granted, waiting := 0, 0
			r.outstanding.Iter(func(_ uint64, req *Request) bool {
				switch req.Status() {
				case RequestGranted:
					granted++
				case RequestWaiting:
					waiting++
				default:
					t.Errorf("outstanding request %d is %s", req.ID(), req.Status())
				}
				return false
			})
			require.Equal(t, held, granted)
			require.Equal(t, r.pool.WaitLength(), waiting)
		})

		res, err := r.execute()
		require.NoError(t, err)

		assert.Equal(t, res.Arrivals, res.Served+res.Balked+res.Reneged+res.WaitingAtHorizon+res.InServiceAtHorizon, "seed %d", seed)
		assert.Len(t, res.WaitTimes, res.Served+res.InServiceAtHorizon)
		for _, w := range res.WaitTimes {
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, cfg.MaxPatience)
		}
	}
}

func TestRunOnce_ReferenceScenario(t *testing.T) {
	// GIVEN two tellers, arrivals every 2, service 5, line limit 3, patience 6, horizon 100
	cfg := DefaultConfig()
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))

	res, err := RunOnce(cfg, rng)
	require.NoError(t, err)

	// THEN the derived metrics are well formed
	testutil.AssertInRange(t, "Utilization", res.Utilization(), 0, 1)
	testutil.AssertFloat64Equal(t, "Throughput", float64(res.Served)/100, res.Throughput(), 1e-12)
	assert.Greater(t, res.Arrivals, 0)
	assert.Len(t, res.QueueSamples, 101)
	for _, q := range res.QueueSamples {
		assert.GreaterOrEqual(t, q, 0)
		assert.LessOrEqual(t, q, cfg.MaxQueueLength)
	}
	assert.Equal(t, 100.0, res.Horizon)
	assert.Equal(t, 2, res.Capacity)
}

func TestRunOnce_SameSeedSameResult(t *testing.T) {
	cfg := DefaultConfig()
	a, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(7)))
	require.NoError(t, err)
	b, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(7)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestRunOnce_SharedRNGIsNotReseeded(t *testing.T) {
	// GIVEN one generator shared by consecutive runs
	cfg := DefaultConfig()
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	first, err := RunOnce(cfg, rng)
	require.NoError(t, err)
	second, err := RunOnce(cfg, rng)
	require.NoError(t, err)

	// THEN the second run continues the streams instead of repeating the first
	assert.NotEqual(t, first.Fingerprint(), second.Fingerprint())
}

func TestRunOnce_ZeroHorizon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Horizon = 0

	res, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(cfg.Seed)))
	require.NoError(t, err)

	assert.Zero(t, res.Arrivals)
	assert.Zero(t, res.Served)
	assert.Zero(t, res.Balked)
	assert.Zero(t, res.Reneged)
	assert.Zero(t, res.Throughput())
	assert.Zero(t, res.Utilization())
	assert.Zero(t, res.AverageWait())
	assert.Equal(t, []int{0}, res.QueueSamples, "the monitor still samples at t=0")
}

func TestRunOnce_MonitorSampleCount(t *testing.T) {
	tests := []struct {
		horizon  float64
		interval float64
		want     int
	}{
		{100, 1, 101},
		{100, 2.5, 41},
		{10.5, 1, 11},
		{3, 5, 1},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Horizon = tt.horizon
		cfg.MonitorInterval = tt.interval
		res, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(1)))
		require.NoError(t, err)
		assert.Len(t, res.QueueSamples, tt.want, "horizon %v interval %v", tt.horizon, tt.interval)
		assert.Equal(t, tt.want, int(math.Floor(tt.horizon/tt.interval))+1)
	}
}

func TestRunOnce_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumTellers = 0

	_, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(1)))

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "num_tellers", cfgErr.Field)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRunOnce_HeavyTailedServiceStaysConsistent(t *testing.T) {
	// GIVEN gamma service with CV=3 and weibull arrivals
	cfg := DefaultConfig()
	cfg.ServiceDistribution = "gamma"
	cfg.ServiceCV = 3
	cfg.ArrivalDistribution = "weibull"
	cfg.ArrivalCV = 0.5

	res, err := RunOnce(cfg, NewPartitionedRNG(NewSimulationKey(99)))
	require.NoError(t, err)

	assert.Equal(t, res.Arrivals, res.Served+res.Balked+res.Reneged+res.WaitingAtHorizon+res.InServiceAtHorizon)
	testutil.AssertInRange(t, "Utilization", res.Utilization(), 0, 1)
}
