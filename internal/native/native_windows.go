//go:build windows

package native

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	threadSetInformation        = 0x0020
	threadSetLimitedInformation = 0x0400

	threadPriorityIdle         = -15
	threadPriorityLowest       = -2
	threadPriorityBelowNormal  = -1
	threadPriorityNormal       = 0
	threadPriorityAboveNormal  = 1
	threadPriorityHighest      = 2
	threadPriorityTimeCritical = 15
)

// x/sys/windows has no bindings for these two.
var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetThreadPriority    = kernel32.NewProc("SetThreadPriority")
	procSetThreadDescription = kernel32.NewProc("SetThreadDescription") // Windows 10 1607+
)

// Name returns the backend name.
func Name() string { return "windows" }

// CurrentThreadID returns the Win32 thread id of the caller.
func CurrentThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}

// SetThreadName sets the thread description of tid, where supported.
func SetThreadName(tid uint64, name string) error {
	if procSetThreadDescription.Find() != nil {
		return ErrUnsupported
	}
	desc, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return err
	}
	h, err := openThread(threadSetLimitedInformation, tid)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	// SetThreadDescription returns an HRESULT; negative means failure.
	r, _, callErr := procSetThreadDescription.Call(uintptr(h), uintptr(unsafe.Pointer(desc)))
	if int32(r) < 0 {
		return callErr
	}
	return nil
}

// SetThreadPriority applies the Win32 priority for level to thread tid.
func SetThreadPriority(tid uint64, level int) error {
	h, err := openThread(threadSetInformation, tid)
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)

	prio := PriorityValue(level)
	r, _, callErr := procSetThreadPriority.Call(uintptr(h), uintptr(int32(prio)))
	if r == 0 {
		return callErr
	}
	return nil
}

// PriorityValue returns the THREAD_PRIORITY_* constant used for level.
func PriorityValue(level int) int {
	switch level {
	case LevelIdle:
		return threadPriorityIdle
	case LevelLowest:
		return threadPriorityLowest
	case LevelBelowNormal:
		return threadPriorityBelowNormal
	case LevelAboveNormal:
		return threadPriorityAboveNormal
	case LevelHighest:
		return threadPriorityHighest
	case LevelTimeCritical:
		return threadPriorityTimeCritical
	default:
		return threadPriorityNormal
	}
}

// HardwareConcurrency returns the logical processor count.
func HardwareConcurrency() int {
	return max(runtime.NumCPU(), 1)
}

func openThread(access uint32, tid uint64) (windows.Handle, error) {
	return windows.OpenThread(access, false, uint32(tid))
}
