//go:build !linux && !windows

package native

import (
	"runtime"

	"github.com/Swind/go-threadkit/internal/goid"
)

// Name returns the backend name.
func Name() string { return "portable" }

// CurrentThreadID has no portable OS equivalent without cgo, so the
// goroutine id stands in. Callers pinned with runtime.LockOSThread see a
// stable value for the lifetime of the goroutine.
func CurrentThreadID() uint64 {
	return uint64(goid.Get())
}

// SetThreadName is unsupported.
func SetThreadName(uint64, string) error { return ErrUnsupported }

// SetThreadPriority is unsupported.
func SetThreadPriority(uint64, int) error { return ErrUnsupported }

// PriorityValue returns level unchanged.
func PriorityValue(level int) int { return level }

// HardwareConcurrency returns the logical processor count.
func HardwareConcurrency() int {
	return max(runtime.NumCPU(), 1)
}
