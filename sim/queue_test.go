package sim

import (
	"testing"
)

func TestWaitQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with requests [A, B]
	wq := &WaitQueue{}
	reqA := &Request{id: 1}
	reqB := &Request{id: 2}
	wq.Enqueue(reqA)
	wq.Enqueue(reqB)

	// WHEN Peek() is called
	got := wq.Peek()

	// THEN it returns the front element without removing it
	if got != reqA {
		t.Errorf("Peek: got request %v, want %v", got.id, reqA.id)
	}
	if wq.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", wq.Len())
	}
}

func TestWaitQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	wq := &WaitQueue{}
	if got := wq.Peek(); got != nil {
		t.Errorf("Peek on empty queue: got %v, want nil", got)
	}
	if got := wq.Dequeue(); got != nil {
		t.Errorf("Dequeue on empty queue: got %v, want nil", got)
	}
}

func TestWaitQueue_Dequeue_FIFO(t *testing.T) {
	wq := &WaitQueue{}
	for i := uint64(0); i < 5; i++ {
		wq.Enqueue(&Request{id: i})
	}
	for i := uint64(0); i < 5; i++ {
		if got := wq.Dequeue(); got.id != i {
			t.Errorf("Dequeue %d: got request %d", i, got.id)
		}
	}
}

func TestWaitQueue_Remove_KeepsOrder(t *testing.T) {
	// GIVEN a queue [0 1 2 3]
	wq := &WaitQueue{}
	reqs := make([]*Request, 4)
	for i := range reqs {
		reqs[i] = &Request{id: uint64(i)}
		wq.Enqueue(reqs[i])
	}

	// WHEN request 2 is removed
	if !wq.Remove(reqs[2]) {
		t.Fatal("Remove returned false for a queued request")
	}

	// THEN the remaining order is unchanged
	if got := wq.String(); got != "[0 1 3]" {
		t.Errorf("String after Remove: got %s, want [0 1 3]", got)
	}
	if wq.Remove(reqs[2]) {
		t.Error("Remove of an absent request returned true")
	}
}

func TestWaitQueue_Enqueue_Nil_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Enqueue(nil) did not panic")
		}
	}()
	(&WaitQueue{}).Enqueue(nil)
}
