package core

import (
	"fmt"
	"sync/atomic"
)

// Barrier is a reusable rendezvous point for a fixed number of parties.
// Each round (generation) completes when every party has called
// ArriveAndWait; the last arrival releases the others and starts the next
// round.
type Barrier struct {
	mu         Mutex
	cv         ConditionVariable
	count      int
	remaining  int
	generation atomic.Uint64
}

// NewBarrier creates a barrier for count parties.
func NewBarrier(count int) (*Barrier, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: barrier party count %d", ErrInvalidCount, count)
	}
	return &Barrier{count: count, remaining: count}, nil
}

// ArriveAndWait blocks until all parties of the caller's round have arrived.
func (b *Barrier) ArriveAndWait() {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.generation.Load()
	b.remaining--
	if b.remaining == 0 {
		b.remaining = b.count
		b.generation.Add(1)
		b.cv.NotifyAll()
		return
	}
	for b.generation.Load() == gen {
		b.cv.Wait(&b.mu)
	}
}

// IsComplete reports whether at least one round has completed.
func (b *Barrier) IsComplete() bool {
	return b.generation.Load() > 0
}

// Generation returns the number of completed rounds.
func (b *Barrier) Generation() uint64 {
	return b.generation.Load()
}

// Parties returns the number of parties per round.
func (b *Barrier) Parties() int {
	return b.count
}
