package core

import (
	"context"
	"fmt"
	"time"
)

// Semaphore is a counting semaphore. The count never drops below zero:
// Acquire blocks until it is positive and then takes one unit.
type Semaphore struct {
	mu    Mutex
	cv    ConditionVariable
	count int
}

// NewSemaphore creates a semaphore holding initial units.
func NewSemaphore(initial int) (*Semaphore, error) {
	if initial < 0 {
		return nil, fmt.Errorf("%w: semaphore initial count %d", ErrInvalidCount, initial)
	}
	return &Semaphore{count: initial}, nil
}

// Acquire blocks until a unit is available and takes it.
func (s *Semaphore) Acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		s.cv.Wait(&s.mu)
	}
	s.count--
}

// TryAcquire is Acquire bounded by timeout. It reports whether a unit was
// taken; the count is left unchanged on failure.
func (s *Semaphore) TryAcquire(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		s.cv.WaitFor(&s.mu, remaining)
	}
	s.count--
	return true
}

// AcquireContext is Acquire that gives up when ctx is done.
func (s *Semaphore) AcquireContext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.count == 0 {
		if err := s.cv.WaitContext(ctx, &s.mu); err != nil {
			return err
		}
	}
	s.count--
	return nil
}

// Release returns n units and wakes up to n waiters. n <= 0 is a no-op.
func (s *Semaphore) Release(n int) {
	if n <= 0 {
		return
	}

	s.mu.Lock()
	s.count += n
	s.mu.Unlock()

	for range n {
		s.cv.NotifyOne()
	}
}

// Count returns the number of available units.
func (s *Semaphore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
