// Implements the WaitQueue, which holds teller requests that could not be
// granted on arrival. Requests are enqueued in request order.

package sim

import (
	"fmt"
	"strings"

	"github.com/gammazero/deque"
)

// WaitQueue is the FIFO line of requests waiting for a teller.
// The first request enqueued is the first granted when a teller frees up;
// requests withdrawn by an expired patience timer are removed in place.
type WaitQueue struct {
	queue deque.Deque[*Request]
}

// Enqueue adds a request to the back of the wait queue.
func (wq *WaitQueue) Enqueue(r *Request) {
	if r == nil {
		panic("Enqueue: request must not be nil")
	}
	wq.queue.PushBack(r)
}

// Len returns the number of requests in the queue.
func (wq *WaitQueue) Len() int {
	return wq.queue.Len()
}

// Peek returns the request at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *Request {
	if wq.queue.Len() == 0 {
		return nil
	}
	return wq.queue.Front()
}

// Dequeue removes and returns the request at the front of the queue.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Dequeue() *Request {
	if wq.queue.Len() == 0 {
		return nil
	}
	return wq.queue.PopFront()
}

// Remove deletes r from wherever it sits in the queue, preserving the order
// of the remaining requests. Returns false if r is not queued.
func (wq *WaitQueue) Remove(r *Request) bool {
	i := wq.queue.Index(func(q *Request) bool { return q == r })
	if i < 0 {
		return false
	}
	wq.queue.Remove(i)
	return true
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < wq.queue.Len(); i++ {
		sb.WriteString(fmt.Sprint(wq.queue.At(i).id))
		if i < wq.queue.Len()-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
