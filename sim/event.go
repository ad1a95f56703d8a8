package sim

import "fmt"

// Event is a pending continuation in the simulator's timeline.
// Events are created by Simulator.Schedule and are owned by the EventQueue
// until they fire or are cancelled.
type Event struct {
	time  float64 // Simulated time at which the continuation runs
	seq   uint64  // Insertion order, breaks ties between events due at the same time
	name  string  // Short label used in trace logs
	fn    func()  // Continuation to resume
	index int     // Position in the heap; -1 once popped or cancelled
}

// Timestamp returns the simulated time at which the event is due.
func (e *Event) Timestamp() float64 {
	return e.time
}

// Seq returns the insertion sequence number of the event.
func (e *Event) Seq() uint64 {
	return e.seq
}

// Pending reports whether the event is still waiting in the queue.
func (e *Event) Pending() bool {
	return e.index >= 0
}

func (e *Event) String() string {
	return fmt.Sprintf("Event(%s @ %.3f #%d)", e.name, e.time, e.seq)
}

// EventQueue implements heap.Interface and orders events by timestamp,
// then by insertion sequence so same-time events run first-scheduled first.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-PriorityQueue
type EventQueue []*Event

func (eq EventQueue) Len() int { return len(eq) }

func (eq EventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}

func (eq EventQueue) Swap(i, j int) {
	eq[i], eq[j] = eq[j], eq[i]
	eq[i].index = i
	eq[j].index = j
}

func (eq *EventQueue) Push(x any) {
	ev := x.(*Event)
	ev.index = len(*eq)
	*eq = append(*eq, ev)
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*eq = old[0 : n-1]
	return item
}

// Peek returns the next event without removing it, or nil if the queue is empty.
func (eq EventQueue) Peek() *Event {
	if len(eq) == 0 {
		return nil
	}
	return eq[0]
}
