package core

import (
	"runtime"
	"sync"
	"time"

	"github.com/Swind/go-threadkit/internal/native"
)

// Backend names the compiled platform backend ("linux", "windows" or
// "portable").
func Backend() string {
	return native.Name()
}

// CurrentThreadID returns the OS thread id of the caller. Unless the caller
// is pinned to its thread (inside a Thread, or after SetMainThreadID) the
// value can change between calls.
func CurrentThreadID() uint64 {
	return native.CurrentThreadID()
}

// HardwareConcurrency returns the number of logical CPUs available to the
// process, at least 1.
func HardwareConcurrency() int {
	if n := native.HardwareConcurrency(); n > 0 {
		return n
	}
	return 1
}

// Sleep blocks the caller for at least d.
func Sleep(d time.Duration) {
	time.Sleep(d)
}

// Yield lets other runnable work proceed.
func Yield() {
	native.Yield()
}

// SetCurrentThreadName names the caller's OS thread. Best-effort; only
// meaningful from a pinned thread.
func SetCurrentThreadName(name string) {
	applyThreadName(native.CurrentThreadID(), name)
}

// =============================================================================
// MainThread: designated main thread cell
// =============================================================================

// MainThread remembers which OS thread was designated as the main one.
// The zero value has no designation.
type MainThread struct {
	mu  sync.Mutex
	tid uint64
	set bool
}

// SetID designates the caller's thread as main and pins the calling
// goroutine to it. Only the first call has an effect.
func (m *MainThread) SetID() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.set {
		return
	}
	runtime.LockOSThread()
	m.tid = native.CurrentThreadID()
	m.set = true
}

// ID returns the designated thread id, if any.
func (m *MainThread) ID() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tid, m.set
}

// IsCurrent reports whether the caller runs on the designated thread.
// Always false before SetID.
func (m *MainThread) IsCurrent() bool {
	tid, ok := m.ID()
	return ok && tid == native.CurrentThreadID()
}

// Reset clears the designation. The previously designated goroutine stays
// pinned to its thread.
func (m *MainThread) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tid = 0
	m.set = false
}

var mainThread MainThread

// SetMainThreadID designates the caller's thread as the process main
// thread. Later calls are ignored.
func SetMainThreadID() {
	mainThread.SetID()
}

// IsMainThread reports whether the caller runs on the designated main
// thread.
func IsMainThread() bool {
	return mainThread.IsCurrent()
}

// MainThreadID returns the designated main thread id, if any.
func MainThreadID() (uint64, bool) {
	return mainThread.ID()
}

// ResetMainThreadID clears the process-wide designation. Intended for tests.
func ResetMainThreadID() {
	mainThread.Reset()
}
