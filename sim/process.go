package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ProcessState represents where a process is suspended, if anywhere.
type ProcessState int

const (
	ProcessRunning ProcessState = iota
	ProcessWaitingOnTimeout
	ProcessWaitingOnResource
	ProcessFinished
)

func (s ProcessState) String() string {
	switch s {
	case ProcessRunning:
		return "running"
	case ProcessWaitingOnTimeout:
		return "waiting-on-timeout"
	case ProcessWaitingOnResource:
		return "waiting-on-resource"
	case ProcessFinished:
		return "finished"
	default:
		return fmt.Sprintf("ProcessState(%d)", int(s))
	}
}

// RaceOutcome tells a process resumed from Race which side won.
type RaceOutcome int

const (
	Granted RaceOutcome = iota + 1 // the resource request was granted first
	Expired                        // the timeout elapsed first; the request was withdrawn
)

func (o RaceOutcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("RaceOutcome(%d)", int(o))
	}
}

// Process is a suspendable unit of execution written in continuation-passing style.
// Each suspension primitive takes the continuation to run when the process resumes;
// the Simulator's event loop is the only caller of those continuations.
type Process struct {
	ID   uint64
	Name string

	state ProcessState
	sim   *Simulator
}

// Spawn creates a process whose body starts at the current simulated time.
func (sim *Simulator) Spawn(name string, body func(p *Process)) (*Process, error) {
	p := &Process{
		ID:    sim.nextPID,
		Name:  name,
		state: ProcessWaitingOnTimeout,
		sim:   sim,
	}
	if _, err := sim.Schedule(0, name+" start", func() {
		p.state = ProcessRunning
		body(p)
	}); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", name, err)
	}
	sim.nextPID++
	sim.register(p)
	return p, nil
}

// State returns the current suspension state of the process.
func (p *Process) State() ProcessState {
	return p.state
}

// Now returns the simulated time seen by the process.
func (p *Process) Now() float64 {
	return p.sim.Clock
}

// Simulator returns the simulator driving this process.
func (p *Process) Simulator() *Simulator {
	return p.sim
}

// Wait suspends the process for duration and then runs next unconditionally.
func (p *Process) Wait(duration float64, next func()) error {
	p.mustBeRunning("Wait")
	if _, err := p.sim.Schedule(duration, p.Name+" wake", func() {
		p.state = ProcessRunning
		next()
	}); err != nil {
		return err
	}
	p.state = ProcessWaitingOnTimeout
	return nil
}

// Race suspends the process until either req is granted or timeout elapses,
// whichever happens first, and resumes next with the winning side.
// The losing side is withdrawn: a grant cancels the timeout event, an expiry
// removes req from its pool's wait list. A request that is already granted
// resumes with Granted at the current instant.
func (p *Process) Race(req *Request, timeout float64, next func(RaceOutcome)) error {
	p.mustBeRunning("Race")
	if req.owner != p {
		panic(fmt.Sprintf("Race: request %d is owned by %s, not %s", req.id, req.owner.Name, p.Name))
	}

	switch req.status {
	case RequestGranted:
		if _, err := p.sim.Schedule(0, p.Name+" granted", func() {
			p.state = ProcessRunning
			next(Granted)
		}); err != nil {
			return err
		}
	case RequestWaiting:
		r := &race{p: p, req: req, next: next}
		timer, err := p.sim.Schedule(timeout, p.Name+" patience expired", r.expire)
		if err != nil {
			return err
		}
		r.timer = timer
		req.onGrant = r.grant
	default:
		return fmt.Errorf("race on %s request %d", req.status, req.id)
	}
	p.state = ProcessWaitingOnResource
	return nil
}

// Finish marks the process as done and drops it from the live-process table.
func (p *Process) Finish() {
	p.state = ProcessFinished
	p.sim.unregister(p)
}

func (p *Process) mustBeRunning(op string) {
	if p.state != ProcessRunning {
		panic(fmt.Sprintf("%s: process %s is %s, not running", op, p.Name, p.state))
	}
}

// race is the single-winner completion token shared by a pending grant and
// its timeout event.
type race struct {
	p        *Process
	req      *Request
	timer    *Event
	next     func(RaceOutcome)
	resolved bool
}

func (r *race) settle() {
	if r.resolved {
		panic(fmt.Sprintf("race for %s resolved twice", r.p.Name))
	}
	r.resolved = true
	r.req.onGrant = nil
}

// grant runs synchronously inside ResourcePool.Release, at the instant the
// teller frees up. The owner resumes at the same simulated time.
func (r *race) grant() {
	r.settle()
	sim := r.p.sim
	if !sim.Cancel(r.timer) {
		sim.Fail(fmt.Errorf("grant for %s found its timeout already gone", r.p.Name))
		return
	}
	if _, err := sim.Schedule(0, r.p.Name+" granted", func() {
		r.p.state = ProcessRunning
		r.next(Granted)
	}); err != nil {
		sim.Fail(err)
	}
}

// expire is the timeout event's continuation.
func (r *race) expire() {
	r.settle()
	if err := r.req.pool.Withdraw(r.req); err != nil {
		r.p.sim.Fail(err)
		return
	}
	logrus.Debugf("[t=%010.3f] %s gave up waiting", r.p.sim.Clock, r.p.Name)
	r.p.state = ProcessRunning
	r.next(Expired)
}
