package core

import (
	"sync"

	"github.com/Swind/go-threadkit/internal/goid"
)

// Mutex is a non-reentrant mutual-exclusion lock. The zero value is an
// unlocked mutex. A Mutex satisfies sync.Locker and can be passed to
// ConditionVariable waits.
type Mutex struct {
	mu sync.Mutex
}

// Lock acquires m, blocking while it is held elsewhere.
func (m *Mutex) Lock() { m.mu.Lock() }

// TryLock acquires m if it is free and reports whether it did.
func (m *Mutex) TryLock() bool { return m.mu.TryLock() }

// Unlock releases m. It must be held by the caller.
func (m *Mutex) Unlock() { m.mu.Unlock() }

// RecursiveMutex is a mutex that the owning goroutine may acquire again
// without deadlocking. Each Lock must be balanced by an Unlock; the mutex is
// released to other goroutines when the depth returns to zero.
//
// Ownership is tracked per goroutine, not per OS thread.
type RecursiveMutex struct {
	mu    sync.Mutex
	cv    ConditionVariable
	owner int64
	depth int
}

// Lock acquires m, or deepens the hold if the caller already owns it.
func (m *RecursiveMutex) Lock() {
	id := goid.Get()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.depth > 0 && m.owner == id {
		m.depth++
		return
	}
	for m.depth > 0 {
		m.cv.Wait(&m.mu)
	}
	m.owner = id
	m.depth = 1
}

// TryLock is Lock without blocking; it reports whether m is now held by
// the caller.
func (m *RecursiveMutex) TryLock() bool {
	id := goid.Get()

	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.depth == 0:
		m.owner = id
		m.depth = 1
		return true
	case m.owner == id:
		m.depth++
		return true
	default:
		return false
	}
}

// Unlock releases one level of the caller's hold on m.
func (m *RecursiveMutex) Unlock() {
	m.mu.Lock()
	if m.depth == 0 {
		m.mu.Unlock()
		panic("threadkit: unlock of unlocked RecursiveMutex")
	}
	m.depth--
	release := m.depth == 0
	if release {
		m.owner = 0
	}
	m.mu.Unlock()

	if release {
		m.cv.NotifyOne()
	}
}

// ReadWriteLock allows any number of concurrent readers or a single
// writer. A blocked LockWrite stops new readers from acquiring the lock, so
// writers are not starved. The zero value is unlocked.
type ReadWriteLock struct {
	rw sync.RWMutex
}

// LockRead acquires shared access.
func (l *ReadWriteLock) LockRead() { l.rw.RLock() }

// TryLockRead acquires shared access if no writer holds or awaits the lock.
func (l *ReadWriteLock) TryLockRead() bool { return l.rw.TryRLock() }

// UnlockRead releases shared access.
func (l *ReadWriteLock) UnlockRead() { l.rw.RUnlock() }

// LockWrite acquires exclusive access, waiting for current readers to leave.
func (l *ReadWriteLock) LockWrite() { l.rw.Lock() }

// TryLockWrite acquires exclusive access if the lock is entirely free.
func (l *ReadWriteLock) TryLockWrite() bool { return l.rw.TryLock() }

// UnlockWrite releases exclusive access.
func (l *ReadWriteLock) UnlockWrite() { l.rw.Unlock() }

// RLocker returns a sync.Locker whose Lock and Unlock take the read side.
func (l *ReadWriteLock) RLocker() sync.Locker { return l.rw.RLocker() }

// Locker returns a sync.Locker over the write side.
func (l *ReadWriteLock) Locker() sync.Locker { return &l.rw }
