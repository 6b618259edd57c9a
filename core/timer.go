package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer runs a callback after a delay or at a fixed interval on its own
// background thread.
//
// Starting a new schedule cancels the previous one. Stop only requests
// termination; a callback already executing runs to completion and callers
// that need to know when it has finished must synchronize on their own.
type Timer struct {
	mu      sync.Mutex
	name    string
	current *timerSchedule
}

// timerSchedule is one background context. Each schedule carries its own
// stop state so a superseded schedule stays stopped regardless of what the
// Timer does afterwards.
type timerSchedule struct {
	active   atomic.Bool
	stopped  atomic.Bool
	wake     chan struct{}
	stopOnce sync.Once
}

// NewTimer creates an idle timer.
func NewTimer() *Timer {
	return &Timer{}
}

// NewNamedTimer creates an idle timer whose background thread carries name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name}
}

// StartOneShot invokes cb once after delay unless stopped first.
func (t *Timer) StartOneShot(delay time.Duration, cb func()) {
	t.start(delay, cb, false)
}

// StartPeriodic invokes cb every interval until stopped.
func (t *Timer) StartPeriodic(interval time.Duration, cb func()) {
	t.start(interval, cb, true)
}

// Stop cancels the current schedule without waiting for it to exit.
func (t *Timer) Stop() {
	t.mu.Lock()
	s := t.current
	t.mu.Unlock()

	if s != nil {
		s.stop()
	}
}

// IsActive reports whether a schedule is pending or running.
func (t *Timer) IsActive() bool {
	t.mu.Lock()
	s := t.current
	t.mu.Unlock()

	return s != nil && s.active.Load()
}

func (t *Timer) start(d time.Duration, cb func(), periodic bool) {
	s := &timerSchedule{wake: make(chan struct{})}
	s.active.Store(true)

	t.mu.Lock()
	prev := t.current
	t.current = s
	name := t.name
	t.mu.Unlock()

	if prev != nil {
		prev.stop()
	}

	th := NewNamedThread(name)
	th.Start(func() { s.run(d, cb, periodic) })
	th.Detach()
}

func (s *timerSchedule) stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		s.active.Store(false)
		close(s.wake)
	})
}

func (s *timerSchedule) run(d time.Duration, cb func(), periodic bool) {
	defer s.active.Store(false)

	timer := time.NewTimer(d)
	defer timer.Stop()

	for {
		if s.stopped.Load() {
			return
		}

		select {
		case <-s.wake:
			return
		case <-timer.C:
		}

		if s.stopped.Load() {
			return
		}
		if cb != nil {
			cb()
		}
		if !periodic {
			return
		}
		timer.Reset(d)
	}
}
