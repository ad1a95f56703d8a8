package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RequestStatus tracks a teller request from issue to release.
type RequestStatus string

const (
	RequestWaiting   RequestStatus = "waiting"   // in the pool's wait list
	RequestGranted   RequestStatus = "granted"   // holding a teller
	RequestWithdrawn RequestStatus = "withdrawn" // removed from the wait list after its timeout won
	RequestReleased  RequestStatus = "released"  // teller handed back
)

// Request is a pending or held claim on one teller. It belongs to exactly one
// process. Once withdrawn it can never be granted, and once granted it can
// never be withdrawn.
type Request struct {
	id     uint64
	owner  *Process
	pool   *ResourcePool
	status RequestStatus

	// onGrant is set by Race while the owner is suspended on this request.
	onGrant func()
}

// ID returns the pool-local identifier of the request.
func (r *Request) ID() uint64 { return r.id }

// Status returns the current status of the request.
func (r *Request) Status() RequestStatus { return r.status }

// ResourcePool models the tellers: a fixed capacity, a count of held units,
// and a FIFO line of waiting requests.
//
// Invariant: 0 <= held <= capacity, and a request is held, waiting, or
// withdrawn, never more than one of those.
type ResourcePool struct {
	sim      *Simulator
	capacity int
	held     int
	waitQ    WaitQueue
	nextID   uint64
}

// NewResourcePool creates a pool with the given number of tellers.
// Capacity must be positive; Config.Validate rejects anything else first.
func NewResourcePool(sim *Simulator, capacity int) *ResourcePool {
	if capacity <= 0 {
		panic(fmt.Sprintf("NewResourcePool: capacity must be positive, got %d", capacity))
	}
	return &ResourcePool{sim: sim, capacity: capacity}
}

// Capacity returns the number of tellers.
func (rp *ResourcePool) Capacity() int { return rp.capacity }

// Held returns the number of tellers currently serving.
func (rp *ResourcePool) Held() int { return rp.held }

// WaitLength returns the number of requests waiting for a teller.
func (rp *ResourcePool) WaitLength() int { return rp.waitQ.Len() }

// Request issues a teller request for owner. If a teller is free the request
// is granted immediately; otherwise it joins the back of the wait list and the
// owner is expected to suspend on it with Race.
func (rp *ResourcePool) Request(owner *Process) *Request {
	req := &Request{id: rp.nextID, owner: owner, pool: rp}
	rp.nextID++
	if rp.held < rp.capacity {
		rp.held++
		req.status = RequestGranted
		logrus.Debugf("[t=%010.3f] %s granted teller immediately (held=%d/%d)", rp.sim.Clock, owner.Name, rp.held, rp.capacity)
		return req
	}
	req.status = RequestWaiting
	rp.waitQ.Enqueue(req)
	logrus.Debugf("[t=%010.3f] %s joined line (waiting=%d)", rp.sim.Clock, owner.Name, rp.waitQ.Len())
	return req
}

// Release hands the teller held by req back to the pool. If anyone is waiting,
// the earliest waiter is granted the teller at the current instant.
func (rp *ResourcePool) Release(req *Request) error {
	if rp.held == 0 || req.status != RequestGranted || req.pool != rp {
		return fmt.Errorf("releasing %s request %d with %d held: %w", req.status, req.id, rp.held, ErrReleaseWithoutHold)
	}
	req.status = RequestReleased
	rp.held--

	next := rp.waitQ.Dequeue()
	if next == nil {
		return nil
	}
	rp.held++
	next.status = RequestGranted
	logrus.Debugf("[t=%010.3f] %s granted teller after waiting (held=%d/%d, waiting=%d)", rp.sim.Clock, next.owner.Name, rp.held, rp.capacity, rp.waitQ.Len())
	if next.onGrant != nil {
		next.onGrant()
	}
	return nil
}

// Withdraw removes a waiting request from the wait list. A withdrawn request
// is never granted afterwards.
func (rp *ResourcePool) Withdraw(req *Request) error {
	if req.status != RequestWaiting || !rp.waitQ.Remove(req) {
		return fmt.Errorf("withdrawing %s request %d: not in wait list", req.status, req.id)
	}
	req.status = RequestWithdrawn
	return nil
}

func (rp *ResourcePool) String() string {
	return fmt.Sprintf("ResourcePool(held=%d/%d, waiting=%s)", rp.held, rp.capacity, rp.waitQ.String())
}
