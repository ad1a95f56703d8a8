package sim

import (
	"fmt"
	"math/rand"

	"github.com/dolthub/swiss"
	"github.com/sirupsen/logrus"

	"github.com/teller-sim/teller-sim/sim/workload"
)

// run holds the state of one simulation run: a fresh simulator and teller
// pool, the samplers, and the counters that become the RunResult.
type run struct {
	cfg  Config
	sim  *Simulator
	pool *ResourcePool

	arrivals   workload.Sampler
	service    workload.Sampler
	arrivalRNG *rand.Rand
	serviceRNG *rand.Rand

	// outstanding holds requests that are waiting or granted, keyed by request ID
	outstanding  *swiss.Map[uint64, *Request]
	inService    int
	nextCustomer uint64
	result       RunResult

	// onCustomer, if set, observes every customer that reaches a terminal outcome.
	onCustomer func(Customer)
}

func newRun(cfg Config, rng *PartitionedRNG) (*run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	arrivals, err := workload.NewSampler(cfg.ArrivalDistribution, cfg.MeanInterArrival, cfg.ArrivalCV)
	if err != nil {
		return nil, fmt.Errorf("arrival sampler: %w", err)
	}
	service, err := workload.NewSampler(cfg.ServiceDistribution, cfg.MeanServiceTime, cfg.ServiceCV)
	if err != nil {
		return nil, fmt.Errorf("service sampler: %w", err)
	}

	sim := NewSimulator()
	return &run{
		cfg:         cfg,
		sim:         sim,
		pool:        NewResourcePool(sim, cfg.NumTellers),
		arrivals:    arrivals,
		service:     service,
		arrivalRNG:  rng.ForSubsystem(SubsystemArrivals),
		serviceRNG:  rng.ForSubsystem(SubsystemService),
		outstanding: swiss.NewMap[uint64, *Request](uint32(cfg.NumTellers + cfg.MaxQueueLength + 1)),
		result: RunResult{
			Horizon:  cfg.Horizon,
			Capacity: cfg.NumTellers,
		},
	}, nil
}

// RunOnce simulates one run of cfg.Horizon time units and returns its result.
// The run draws from rng without reseeding it, so consecutive calls with the
// same rng produce different but reproducible runs.
func RunOnce(cfg Config, rng *PartitionedRNG) (RunResult, error) {
	r, err := newRun(cfg, rng)
	if err != nil {
		return RunResult{}, err
	}
	return r.execute()
}

// execute starts the arrival generator and the queue monitor, drives the
// event loop to the horizon, and collects the result.
func (r *run) execute() (RunResult, error) {
	if _, err := r.sim.Spawn("arrivals", r.generate); err != nil {
		return RunResult{}, err
	}
	if _, err := r.sim.Spawn("monitor", r.monitor); err != nil {
		return RunResult{}, err
	}

	if err := r.sim.RunUntil(r.cfg.Horizon); err != nil {
		return RunResult{}, fmt.Errorf("run aborted at t=%.3f: %w", r.sim.Clock, err)
	}

	r.result.WaitingAtHorizon = r.pool.WaitLength()
	r.result.InServiceAtHorizon = r.inService
	logrus.Infof("Run finished at t=%.3f: %d arrivals, %d served, %d balked, %d reneged, %d still waiting",
		r.sim.Clock, r.result.Arrivals, r.result.Served, r.result.Balked, r.result.Reneged, r.result.WaitingAtHorizon)
	return r.result, nil
}

// generate is the arrival generator: wait an inter-arrival time, let a
// customer in, repeat. It never finishes; the horizon abandons it.
func (r *run) generate(p *Process) {
	delay := r.arrivals.Sample(r.arrivalRNG)
	err := p.Wait(delay, func() {
		if err := r.arrive(); err != nil {
			r.sim.Fail(err)
			return
		}
		r.generate(p)
	})
	if err != nil {
		r.sim.Fail(fmt.Errorf("arrival generator: %w", err))
	}
}

// monitor samples the line length at t=0 and every MonitorInterval after.
func (r *run) monitor(p *Process) {
	r.result.QueueSamples = append(r.result.QueueSamples, r.pool.WaitLength())
	if err := p.Wait(r.cfg.MonitorInterval, func() { r.monitor(p) }); err != nil {
		r.sim.Fail(fmt.Errorf("queue monitor: %w", err))
	}
}
