package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teller-sim/teller-sim/sim/internal/testutil"
	"github.com/teller-sim/teller-sim/sim/workload"
)

// deterministicConfig returns a config with constant arrivals every time unit
// and constant service, so outcomes can be traced by hand.
func deterministicConfig(tellers int, service float64, maxQueue int, patience, horizon float64) Config {
	cfg := DefaultConfig()
	cfg.NumTellers = tellers
	cfg.MeanInterArrival = 1
	cfg.MeanServiceTime = service
	cfg.MaxQueueLength = maxQueue
	cfg.MaxPatience = patience
	cfg.Horizon = horizon
	cfg.ArrivalDistribution = workload.Constant
	cfg.ServiceDistribution = workload.Constant
	return cfg
}

func runWithCustomers(t *testing.T, cfg Config) (RunResult, []Customer) {
	t.Helper()
	r, err := newRun(cfg, NewPartitionedRNG(NewSimulationKey(cfg.Seed)))
	require.NoError(t, err)
	var customers []Customer
	r.onCustomer = func(c Customer) { customers = append(customers, c) }
	res, err := r.execute()
	require.NoError(t, err)
	return res, customers
}

func TestCustomer_BalksAtQueueThreshold(t *testing.T) {
	// GIVEN one teller busy for 10 units from t=1, a line limit of 2 and endless patience
	cfg := deterministicConfig(1, 10, 2, 100, 10.5)

	// WHEN customers arrive at t=1..10
	res, customers := runWithCustomers(t, cfg)

	// THEN the first reaches the teller, the next two queue, and everyone after balks
	assert.Equal(t, 10, res.Arrivals)
	assert.Equal(t, 0, res.Served, "service runs past the horizon")
	assert.Equal(t, 7, res.Balked)
	assert.Equal(t, 0, res.Reneged)
	assert.Equal(t, 2, res.WaitingAtHorizon)
	assert.Equal(t, 1, res.InServiceAtHorizon)
	assert.Equal(t, []float64{0}, res.WaitTimes)

	// busy time is clipped at the horizon: served from t=1 to 10.5
	testutil.AssertFloat64Equal(t, "BusyTime", 9.5, res.BusyTime, 1e-12)
	testutil.AssertFloat64Equal(t, "Utilization", 9.5/10.5, res.Utilization(), 1e-12)

	// the monitor samples before same-time arrivals join the line
	assert.Equal(t, []int{0, 0, 0, 1, 2, 2, 2, 2, 2, 2, 2}, res.QueueSamples)

	require.Len(t, customers, 7, "served-but-unfinished and waiting customers never report")
	for _, c := range customers {
		assert.Equal(t, OutcomeBalked, c.Outcome)
		assert.Zero(t, c.WaitTime)
	}
}

func TestCustomer_RenegesWhenPatienceExpires(t *testing.T) {
	// GIVEN one teller busy until t=11 and patience 2.5
	cfg := deterministicConfig(1, 10, 5, 2.5, 8)

	res, customers := runWithCustomers(t, cfg)

	// THEN customers arriving at t=2..5 give up at t=4.5..7.5; t=6..8 are still waiting
	assert.Equal(t, 8, res.Arrivals)
	assert.Equal(t, 0, res.Served)
	assert.Equal(t, 1, res.InServiceAtHorizon)
	assert.Equal(t, 0, res.Balked)
	assert.Equal(t, 4, res.Reneged)
	assert.Equal(t, 3, res.WaitingAtHorizon)

	var reneged []Customer
	for _, c := range customers {
		if c.Outcome == OutcomeReneged {
			reneged = append(reneged, c)
		}
	}
	require.Len(t, reneged, 4)
	for i, c := range reneged {
		assert.Equal(t, float64(i+2), c.ArrivalTime)
		assert.Equal(t, c.ArrivalTime+2.5, c.PatienceDeadline)
	}
}

func TestCustomer_ServedAfterWaiting(t *testing.T) {
	// GIVEN one teller, service 3, arrivals every 1, endless patience
	cfg := deterministicConfig(1, 3, 10, 100, 12)

	res, customers := runWithCustomers(t, cfg)

	// THEN nobody balks or reneges and the n-th customer waits 2n time units
	assert.Equal(t, 0, res.Balked)
	assert.Equal(t, 0, res.Reneged)
	require.Len(t, res.WaitTimes, 4)
	for i := 0; i < 4; i++ {
		assert.Equal(t, float64(2*i), res.WaitTimes[i])
	}
	require.Len(t, customers, 3)
	for _, c := range customers {
		require.Equal(t, OutcomeServed, c.Outcome)
		assert.Equal(t, 3.0, c.ServiceTime)
	}
	assert.Equal(t, 3, res.Served)
	assert.Equal(t, 1, res.InServiceAtHorizon)
	testutil.AssertFloat64Equal(t, "Throughput", 3.0/12, res.Throughput(), 1e-12)
}

func TestCustomer_UnfinishedServiceIsNotServed(t *testing.T) {
	// GIVEN one teller, arrivals every 3, service 50 and a horizon of 10
	cfg := deterministicConfig(1, 50, 5, 100, 10)
	cfg.MeanInterArrival = 3

	res, customers := runWithCustomers(t, cfg)

	// THEN the customer at the teller is still in service, not served
	assert.Equal(t, 3, res.Arrivals)
	assert.Zero(t, res.Served)
	assert.Zero(t, res.Throughput())
	assert.Equal(t, 1, res.InServiceAtHorizon)
	assert.Equal(t, 2, res.WaitingAtHorizon)
	assert.Equal(t, []float64{0}, res.WaitTimes, "the wait is recorded at the grant")
	assert.Empty(t, customers)
}

func TestCustomer_ZeroQueueLimitBalksEveryone(t *testing.T) {
	// GIVEN a line limit of zero, even an empty line is too long
	cfg := deterministicConfig(1, 2.5, 0, 10, 30)

	res, _ := runWithCustomers(t, cfg)

	assert.Equal(t, 30, res.Arrivals)
	assert.Equal(t, res.Arrivals, res.Balked)
	assert.Zero(t, res.Served)
	assert.Zero(t, res.BusyTime)
}

func TestCustomer_String(t *testing.T) {
	c := Customer{ID: 3, Outcome: OutcomeServed, ArrivalTime: 1, WaitTime: 2, ServiceTime: 4}
	assert.Equal(t, "customer-3", c.Name())
	assert.Contains(t, c.String(), `"served"`)
}
