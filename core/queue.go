package core

import (
	"sync"
	"time"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// =============================================================================
// fifo: unsynchronized FIFO storage shared by the executors
// =============================================================================

// fifo is a slice-backed FIFO that periodically compacts its backing array.
// Callers provide their own locking.
type fifo[T any] struct {
	items []T
}

func newFIFO[T any]() fifo[T] {
	return fifo[T]{items: make([]T, 0, defaultQueueCap)}
}

func (q *fifo[T]) push(v T) {
	q.items = append(q.items, v)
}

func (q *fifo[T]) pop() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	v := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = zero
	q.items = q.items[1:]
	q.maybeCompact()

	return v, true
}

func (q *fifo[T]) len() int { return len(q.items) }

// drain removes and returns every queued element.
func (q *fifo[T]) drain() []T {
	out := q.items
	q.items = make([]T, 0, defaultQueueCap)
	return out
}

func (q *fifo[T]) maybeCompact() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]T, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]T, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

// =============================================================================
// Queue: blocking thread-safe FIFO
// =============================================================================

// Queue is an unbounded thread-safe FIFO. Blocking pops wait on a
// ConditionVariable; Clear shuts the queue and releases every blocked
// popper.
type Queue[T any] struct {
	mu       sync.Mutex
	cv       ConditionVariable
	items    fifo[T]
	shutdown bool
}

// NewQueue creates an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{items: newFIFO[T]()}
}

// Push appends v and wakes one blocked popper.
func (q *Queue[T]) Push(v T) {
	q.mu.Lock()
	q.items.push(v)
	q.mu.Unlock()
	q.cv.NotifyOne()
}

// TryPop removes the front element without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.pop()
}

// PopWithTimeout waits up to timeout for an element.
func (q *Queue[T]) PopWithTimeout(timeout time.Duration) (T, bool) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.len() == 0 && !q.shutdown {
		remaining := time.Until(deadline)
		if remaining <= 0 || !q.cv.WaitFor(&q.mu, remaining) {
			break
		}
	}
	return q.items.pop()
}

// WaitAndPop blocks until an element is available. It returns false if the
// queue was cleared while waiting.
func (q *Queue[T]) WaitAndPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.len() == 0 && !q.shutdown {
		q.cv.Wait(&q.mu)
	}
	return q.items.pop()
}

// Empty reports whether the queue holds no elements.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

// Clear discards every element, marks the queue shut down and wakes all
// blocked poppers. Pushes after Clear are still accepted, but blocking pops
// no longer wait for them.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.shutdown = true
	q.items.drain()
	q.mu.Unlock()
	q.cv.NotifyAll()
}
