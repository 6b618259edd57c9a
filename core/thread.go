package core

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-threadkit/internal/native"
)

// =============================================================================
// Priority: abstract thread priority
// =============================================================================

// Priority is a platform-independent thread priority. The zero value
// leaves the platform default untouched.
type Priority int

const (
	PriorityIdle Priority = iota + 1
	PriorityLowest
	PriorityBelowNormal
	PriorityNormal
	PriorityAboveNormal
	PriorityHighest
	PriorityTimeCritical
)

func (p Priority) String() string {
	switch p {
	case 0:
		return "Default"
	case PriorityIdle:
		return "Idle"
	case PriorityLowest:
		return "Lowest"
	case PriorityBelowNormal:
		return "BelowNormal"
	case PriorityNormal:
		return "Normal"
	case PriorityAboveNormal:
		return "AboveNormal"
	case PriorityHighest:
		return "Highest"
	case PriorityTimeCritical:
		return "TimeCritical"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// level converts p to the backend's 0-based scale.
func (p Priority) level() int { return int(p) - 1 }

// =============================================================================
// Thread
// =============================================================================

// Thread owns one goroutine pinned to its own OS thread for the whole
// lifetime of its function. The OS thread is discarded when the function
// returns, so names and priorities set on it never leak to other goroutines.
//
// Dropping the last reference to a running Thread does not stop or wait for
// it; the function keeps running as if detached.
type Thread struct {
	mu       sync.Mutex
	done     chan struct{} // non-nil while joinable, closed on exit
	live     chan struct{} // latest context, kept across Detach
	name     string
	priority Priority

	running atomic.Bool
	tid     atomic.Uint64
}

// NewThread creates a thread that has not been started.
func NewThread() *Thread {
	return &Thread{}
}

// NewNamedThread creates an unstarted thread carrying a diagnostic name.
func NewNamedThread(name string) *Thread {
	return &Thread{name: name}
}

// NewThreadWithFunc creates a thread and starts fn on it.
func NewThreadWithFunc(fn func()) *Thread {
	t := NewThread()
	t.Start(fn)
	return t
}

// Start runs fn on a new OS thread. It is a no-op while a previously
// started function has not returned, whether or not it was detached. A
// finished but unjoined context is released (as if detached) before the
// new one starts.
func (t *Thread) Start(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.live != nil && !isClosed(t.live) {
		return
	}

	done := make(chan struct{})
	t.done = done
	t.live = done
	t.tid.Store(0)

	go t.run(fn, done)
}

func (t *Thread) run(fn func(), done chan struct{}) {
	// Deliberately never unlocked, see the type documentation.
	runtime.LockOSThread()
	defer close(done)

	tid := native.CurrentThreadID()

	t.mu.Lock()
	t.tid.Store(tid)
	name, priority := t.name, t.priority
	t.mu.Unlock()

	if name != "" {
		applyThreadName(tid, name)
	}
	if priority != 0 {
		applyThreadPriority(tid, priority)
	}

	getLogger().Debug().
		Str("thread", name).
		Uint64("tid", tid).
		Log("thread started")

	t.running.Store(true)
	defer t.running.Store(false)

	if fn != nil {
		fn()
	}
}

// Join blocks until the thread's function returns. It returns at once if
// the thread is not joinable.
func (t *Thread) Join() {
	done := t.joinHandle()
	if done == nil {
		return
	}
	<-done
	t.release(done)
}

// TryJoin waits up to timeout for the thread's function to return. It
// reports true if nothing is joinable or the function finished in time, in
// which case the thread is no longer joinable.
func (t *Thread) TryJoin(timeout time.Duration) bool {
	done := t.joinHandle()
	if done == nil {
		return true
	}

	if !isClosed(done) {
		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			return false
		}
	}

	t.release(done)
	return true
}

// Detach gives up ownership of the running function without waiting.
func (t *Thread) Detach() {
	t.mu.Lock()
	t.done = nil
	t.mu.Unlock()
}

// IsRunning reports whether the thread's function is currently executing.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}

// Joinable reports whether there is a started context that has been
// neither joined nor detached.
func (t *Thread) Joinable() bool {
	return t.joinHandle() != nil
}

// NativeID returns the OS thread id of the most recently started context,
// or 0 if it has not begun executing.
func (t *Thread) NativeID() uint64 {
	return t.tid.Load()
}

// Name returns the diagnostic name.
func (t *Thread) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// SetName sets the diagnostic name. It is applied to the OS thread now if
// running, else when the thread starts. Failures are ignored.
func (t *Thread) SetName(name string) {
	t.mu.Lock()
	t.name = name
	tid, live := t.liveTID()
	t.mu.Unlock()

	if live {
		applyThreadName(tid, name)
	}
}

// Priority returns the requested priority.
func (t *Thread) Priority() Priority {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.priority
}

// SetPriority requests a scheduling priority. It is applied to the OS
// thread now if running, else when the thread starts. Failures, such as
// lacking the privilege to raise priority, are ignored.
func (t *Thread) SetPriority(p Priority) {
	t.mu.Lock()
	t.priority = p
	tid, live := t.liveTID()
	t.mu.Unlock()

	if live && p != 0 {
		applyThreadPriority(tid, p)
	}
}

// liveTID must be called with t.mu held.
func (t *Thread) liveTID() (uint64, bool) {
	tid := t.tid.Load()
	return tid, tid != 0 && t.live != nil && !isClosed(t.live)
}

func (t *Thread) joinHandle() chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Thread) release(done chan struct{}) {
	t.mu.Lock()
	if t.done == done {
		t.done = nil
	}
	t.mu.Unlock()
}

func applyThreadName(tid uint64, name string) {
	if err := native.SetThreadName(tid, name); err != nil {
		getLogger().Debug().
			Str("thread", name).
			Uint64("tid", tid).
			Err(err).
			Log("thread name not applied")
	}
}

func applyThreadPriority(tid uint64, p Priority) {
	if err := native.SetThreadPriority(tid, p.level()); err != nil {
		getLogger().Debug().
			Stringer("priority", p).
			Uint64("tid", tid).
			Err(err).
			Log("thread priority not applied")
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
