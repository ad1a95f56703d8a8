// Defines the Customer struct and the process body that carries one customer
// from arrival to balking, reneging, or service.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/teller-sim/teller-sim/sim/trace"
)

// CustomerOutcome is the terminal state of a customer visit.
type CustomerOutcome string

const (
	OutcomePending CustomerOutcome = ""        // still in line at the horizon
	OutcomeBalked  CustomerOutcome = "balked"  // turned away by the length of the line
	OutcomeServed  CustomerOutcome = "served"  // finished service and left the teller
	OutcomeReneged CustomerOutcome = "reneged" // gave up after MaxPatience
)

// Customer models a single visit to the bank.
// A customer is mutated only by its own process.
type Customer struct {
	ID               uint64
	ArrivalTime      float64         // Simulated time the customer walked in
	PatienceDeadline float64         // ArrivalTime + MaxPatience
	Outcome          CustomerOutcome // balked, served, reneged, or pending
	WaitTime         float64         // Time from arrival to grant; only set when served
	ServiceTime      float64         // Drawn service duration; only set when served
}

// Name returns the label used for the customer's process and in trace logs.
func (c *Customer) Name() string {
	return fmt.Sprintf("customer-%d", c.ID)
}

func (c Customer) String() string {
	return fmt.Sprintf("Customer: (ID: %d, Outcome: %q, ArrivalTime: %.3f, WaitTime: %.3f, ServiceTime: %.3f)",
		c.ID, c.Outcome, c.ArrivalTime, c.WaitTime, c.ServiceTime)
}

// arrive creates the next customer and spawns its process at the current time.
func (r *run) arrive() error {
	c := &Customer{
		ID:               r.nextCustomer,
		ArrivalTime:      r.sim.Clock,
		PatienceDeadline: r.sim.Clock + r.cfg.MaxPatience,
	}
	r.nextCustomer++
	_, err := r.sim.Spawn(c.Name(), func(p *Process) { r.visit(p, c) })
	return err
}

// visit is the customer process body.
func (r *run) visit(p *Process, c *Customer) {
	r.result.Arrivals++

	if r.pool.WaitLength() >= r.cfg.MaxQueueLength {
		c.Outcome = OutcomeBalked
		r.result.Balked++
		logrus.Debugf("[t=%010.3f] %s balked (waiting=%d)", p.Now(), c.Name(), r.pool.WaitLength())
		r.done(p, c)
		return
	}

	req := r.pool.Request(p)
	r.outstanding.Put(req.ID(), req)
	err := p.Race(req, r.cfg.MaxPatience, func(outcome RaceOutcome) {
		switch outcome {
		case Granted:
			r.serve(p, c, req)
		case Expired:
			r.outstanding.Delete(req.ID())
			c.Outcome = OutcomeReneged
			r.result.Reneged++
			r.done(p, c)
		}
	})
	if err != nil {
		r.sim.Fail(fmt.Errorf("%s racing for a teller: %w", c.Name(), err))
	}
}

// serve runs once the customer holds a teller. The wait is recorded at the
// grant; the customer counts as served only after handing the teller back.
func (r *run) serve(p *Process, c *Customer, req *Request) {
	now := p.Now()
	c.Outcome = OutcomeServed
	c.WaitTime = now - c.ArrivalTime
	r.result.WaitTimes = append(r.result.WaitTimes, c.WaitTime)
	r.inService++

	c.ServiceTime = r.service.Sample(r.serviceRNG)
	// busy time only counts the part of the service inside the horizon
	r.result.BusyTime += math.Min(c.ServiceTime, r.cfg.Horizon-now)
	logrus.Debugf("[t=%010.3f] %s served after waiting %.3f, service %.3f", now, c.Name(), c.WaitTime, c.ServiceTime)

	err := p.Wait(c.ServiceTime, func() {
		r.inService--
		r.outstanding.Delete(req.ID())
		if err := r.pool.Release(req); err != nil {
			r.sim.Fail(fmt.Errorf("%s leaving teller: %w", c.Name(), err))
			return
		}
		r.result.Served++
		r.done(p, c)
	})
	if err != nil {
		r.sim.Fail(fmt.Errorf("%s starting service: %w", c.Name(), err))
	}
}

func (r *run) done(p *Process, c *Customer) {
	p.Finish()
	if r.onCustomer != nil {
		r.onCustomer(*c)
	}
}

// traceRecorder returns an onCustomer hook that appends each customer to st
// tagged with the run index.
func traceRecorder(st *trace.SimulationTrace, runIndex int) func(Customer) {
	return func(c Customer) {
		wait := c.WaitTime
		if c.Outcome == OutcomeReneged {
			wait = c.PatienceDeadline - c.ArrivalTime
		}
		st.RecordCustomer(trace.CustomerRecord{
			Run:              runIndex,
			CustomerID:       c.ID,
			Outcome:          string(c.Outcome),
			ArrivalTime:      c.ArrivalTime,
			PatienceDeadline: c.PatienceDeadline,
			WaitTime:         wait,
			ServiceTime:      c.ServiceTime,
		})
	}
}
