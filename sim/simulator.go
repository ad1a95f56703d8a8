// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/dolthub/swiss"
	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the event loop,
// and the table of live processes.
//
// Thread-safety: NOT thread-safe. A Simulator is driven from a single goroutine;
// processes cooperate by suspending only at Wait and Race points.
type Simulator struct {
	Clock float64
	// EventQueue has all pending continuations, ordered by (time, insertion order)
	EventQueue EventQueue
	// Dispatched counts events executed so far
	Dispatched int

	processes *swiss.Map[uint64, *Process]
	nextSeq   uint64
	nextPID   uint64
	halted    bool
	err       error
	hooks     []func(*Event)
}

// NewSimulator returns a simulator with the clock at zero and an empty timeline.
func NewSimulator() *Simulator {
	return &Simulator{
		Clock:      0,
		EventQueue: make(EventQueue, 0),
		processes:  swiss.NewMap[uint64, *Process](64),
	}
}

// Schedule inserts fn into the timeline at Clock+delay.
// Returns ErrInvalidDelay for negative or NaN delays.
// Note, scheduling never runs fn synchronously, even with a zero delay.
func (sim *Simulator) Schedule(delay float64, name string, fn func()) (*Event, error) {
	if delay < 0 || math.IsNaN(delay) {
		return nil, fmt.Errorf("scheduling %s at t=%.3f with delay %v: %w", name, sim.Clock, delay, ErrInvalidDelay)
	}
	ev := &Event{
		time: sim.Clock + delay,
		seq:  sim.nextSeq,
		name: name,
		fn:   fn,
	}
	sim.nextSeq++
	heap.Push(&sim.EventQueue, ev)
	return ev, nil
}

// Cancel withdraws a pending event so it never fires.
// Returns false if the event already fired or was already cancelled.
func (sim *Simulator) Cancel(ev *Event) bool {
	if ev == nil || ev.index < 0 {
		return false
	}
	heap.Remove(&sim.EventQueue, ev.index)
	logrus.Debugf("[t=%010.3f] Cancelled %s", sim.Clock, ev.name)
	return true
}

// AfterEvent registers a hook invoked after every dispatched event.
func (sim *Simulator) AfterEvent(hook func(*Event)) {
	sim.hooks = append(sim.hooks, hook)
}

// RunUntil dispatches events in timestamp order until no event due at or before
// horizon remains, or Halt/Fail is called. Events due after the horizon are left
// unprocessed. Returns the first error passed to Fail, if any.
func (sim *Simulator) RunUntil(horizon float64) error {
	for !sim.halted {
		ev := sim.EventQueue.Peek()
		if ev == nil || ev.time > horizon {
			break
		}
		heap.Pop(&sim.EventQueue)
		// advance the clock
		sim.Clock = ev.time
		logrus.Debugf("[t=%010.3f] Executing %s", sim.Clock, ev.name)
		ev.fn()
		sim.Dispatched++
		for _, hook := range sim.hooks {
			hook(ev)
		}
	}
	if !sim.halted && sim.Clock < horizon && !math.IsInf(horizon, 1) {
		sim.Clock = horizon
	}
	logrus.Debugf("[t=%010.3f] Simulation ended after %d events, %d pending", sim.Clock, sim.Dispatched, len(sim.EventQueue))
	return sim.err
}

// Halt stops the event loop after the currently executing event.
func (sim *Simulator) Halt() {
	sim.halted = true
}

// Halted reports whether Halt or Fail has been called.
func (sim *Simulator) Halted() bool {
	return sim.halted
}

// Fail records err and halts the loop. Only the first error is kept.
func (sim *Simulator) Fail(err error) {
	if err == nil {
		return
	}
	if sim.err == nil {
		logrus.Errorf("[t=%010.3f] Simulation failed: %v", sim.Clock, err)
		sim.err = err
	}
	sim.Halt()
}

// Err returns the error recorded by Fail, or nil.
func (sim *Simulator) Err() error {
	return sim.err
}

// LiveProcesses returns the number of spawned processes that have not finished.
func (sim *Simulator) LiveProcesses() int {
	return sim.processes.Count()
}

// CountProcesses returns how many live processes are in the given state.
func (sim *Simulator) CountProcesses(state ProcessState) int {
	n := 0
	sim.processes.Iter(func(_ uint64, p *Process) bool {
		if p.state == state {
			n++
		}
		return false
	})
	return n
}

func (sim *Simulator) register(p *Process) {
	sim.processes.Put(p.ID, p)
}

func (sim *Simulator) unregister(p *Process) {
	sim.processes.Delete(p.ID)
}
