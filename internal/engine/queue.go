package engine

import "container/heap"

// action is one unit of scheduled work.
//
// Ordering key is (due, seq): seq is assigned at schedule time from a
// monotonic counter, so actions due at the same frame run in FIFO order.
type action struct {
	due   int64
	seq   int64
	work  func()
	index int // position in the heap, -1 once removed
}

// actionQueue is a min-heap of pending actions keyed by (due, seq).
//
// It is owned by exactly one VirtualClock and is not safe for concurrent use.
type actionQueue struct {
	items []*action
}

func newActionQueue() *actionQueue {
	return &actionQueue{items: make([]*action, 0, 64)}
}

// heap.Interface

func (q *actionQueue) Len() int { return len(q.items) }

func (q *actionQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.due != b.due {
		return a.due < b.due
	}
	return a.seq < b.seq
}

func (q *actionQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *actionQueue) Push(x any) {
	a := x.(*action)
	a.index = len(q.items)
	q.items = append(q.items, a)
}

func (q *actionQueue) Pop() any {
	n := len(q.items)
	a := q.items[n-1]
	// Nil out the slot so the popped action's closure can be collected.
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	a.index = -1
	return a
}

// enqueue inserts a.
func (q *actionQueue) enqueue(a *action) {
	heap.Push(q, a)
}

// peek returns the minimum action without removing it.
func (q *actionQueue) peek() (*action, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

// dequeue removes and returns the minimum action.
func (q *actionQueue) dequeue() (*action, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return heap.Pop(q).(*action), true
}

// remove deletes a from the queue if it is still pending.
// Returns false if a already ran or was removed.
func (q *actionQueue) remove(a *action) bool {
	if a.index < 0 || a.index >= len(q.items) || q.items[a.index] != a {
		return false
	}
	heap.Remove(q, a.index)
	return true
}
