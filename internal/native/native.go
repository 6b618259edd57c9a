// Package native is the per-platform thread backend.
//
// Exactly one of native_linux.go, native_windows.go or native_other.go is
// compiled into a binary. Each provides the same set of package-level
// functions:
//
//	Name() string
//	CurrentThreadID() uint64
//	SetThreadName(tid uint64, name string) error
//	SetThreadPriority(tid uint64, level int) error
//	PriorityValue(level int) int
//	HardwareConcurrency() int
//	Yield()
//
// Priority levels are the abstract 0 (idle) through 6 (time critical)
// scale; the backend maps them onto its native range. Naming and priority
// are best-effort, callers are expected to ignore the returned errors
// other than for diagnostics.
package native

import (
	"errors"
	"runtime"
)

// Abstract priority levels, mirrored by core.Priority.
const (
	LevelIdle = iota
	LevelLowest
	LevelBelowNormal
	LevelNormal
	LevelAboveNormal
	LevelHighest
	LevelTimeCritical
)

// ErrUnsupported is returned when the host cannot perform an operation.
var ErrUnsupported = errors.New("native: operation not supported on this platform")

// Yield relinquishes the processor to other runnable work.
func Yield() {
	runtime.Gosched()
}

// scaledPriority maps level onto the inclusive range [lowest, highest],
// where lowest is the least favoured native value. Intermediate levels are
// placed at quarter steps.
func scaledPriority(level, lowest, highest int) int {
	span := highest - lowest
	switch level {
	case LevelIdle, LevelLowest:
		return lowest
	case LevelBelowNormal:
		return lowest + span/4
	case LevelNormal:
		return lowest + 2*span/4
	case LevelAboveNormal:
		return lowest + 3*span/4
	case LevelHighest, LevelTimeCritical:
		return highest
	default:
		return lowest + 2*span/4
	}
}
