package core

import (
	"context"
	"sync"
	"time"
)

// ConditionVariable lets goroutines wait for a predicate protected by a
// lock. Unlike sync.Cond it supports timed and cancellable waits, and the
// lock is an explicit argument of each wait. The zero value is ready to use.
//
// As with every Mesa-style condition variable, waits must sit in a loop that
// re-tests the predicate:
//
//	mu.Lock()
//	for !ready {
//		cv.Wait(&mu)
//	}
//	mu.Unlock()
//
// Waiters are woken in arrival order.
type ConditionVariable struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

// Wait atomically releases l and suspends the caller until notified, then
// reacquires l before returning.
func (c *ConditionVariable) Wait(l sync.Locker) {
	ch := c.enqueue()
	l.Unlock()
	<-ch
	l.Lock()
}

// WaitFor is Wait bounded by timeout. It reports true if the caller was
// notified and false if the timeout elapsed first. l is held on return in
// both cases.
func (c *ConditionVariable) WaitFor(l sync.Locker, timeout time.Duration) bool {
	ch := c.enqueue()
	l.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	notified := true
	select {
	case <-ch:
	case <-timer.C:
		// A notifier that already dequeued us has sent on ch; keep it.
		notified = !c.remove(ch)
	}

	l.Lock()
	return notified
}

// WaitContext is Wait that gives up when ctx is done, returning ctx.Err().
// l is held on return in both cases.
func (c *ConditionVariable) WaitContext(ctx context.Context, l sync.Locker) error {
	ch := c.enqueue()
	l.Unlock()

	var err error
	select {
	case <-ch:
	case <-ctx.Done():
		if c.remove(ch) {
			err = ctx.Err()
		}
	}

	l.Lock()
	return err
}

// NotifyOne wakes the longest waiting caller, if any.
func (c *ConditionVariable) NotifyOne() {
	c.mu.Lock()
	var ch chan struct{}
	if len(c.waiters) > 0 {
		ch = c.waiters[0]
		c.waiters[0] = nil
		c.waiters = c.waiters[1:]
	}
	c.mu.Unlock()

	if ch != nil {
		ch <- struct{}{}
	}
}

// NotifyAll wakes every waiting caller.
func (c *ConditionVariable) NotifyAll() {
	c.mu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- struct{}{}
	}
}

func (c *ConditionVariable) enqueue() chan struct{} {
	// Buffered so notifiers never block on a waiter that timed out.
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// remove dequeues ch, reporting false if a notifier got to it first.
func (c *ConditionVariable) remove(ch chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, w := range c.waiters {
		if w == ch {
			c.waiters = append(c.waiters[:i], c.waiters[i+1:]...)
			return true
		}
	}
	return false
}
