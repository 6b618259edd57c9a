//go:build linux

package native

import (
	"os"
	"runtime"
	"strconv"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Nice values bound the native range for SCHED_OTHER threads.
const (
	niceLeastFavoured = 19
	niceMostFavoured  = -20

	// TASK_COMM_LEN minus the terminating NUL.
	maxNameLen = 15
)

// Name returns the backend name.
func Name() string { return "linux" }

// CurrentThreadID returns the kernel thread id of the caller.
func CurrentThreadID() uint64 {
	return uint64(unix.Gettid())
}

// SetThreadName labels the thread tid. The calling thread is renamed with
// prctl; any other thread of this process through its comm file.
func SetThreadName(tid uint64, name string) error {
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if tid == CurrentThreadID() {
		p, err := unix.BytePtrFromString(name)
		if err != nil {
			return err
		}
		return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(p)), 0, 0, 0)
	}
	path := "/proc/self/task/" + strconv.FormatUint(tid, 10) + "/comm"
	return os.WriteFile(path, []byte(name), 0)
}

// SetThreadPriority applies the nice value for level to thread tid.
// Raising priority above the default usually needs CAP_SYS_NICE.
func SetThreadPriority(tid uint64, level int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(tid), PriorityValue(level))
}

// PriorityValue returns the nice value used for level.
func PriorityValue(level int) int {
	return scaledPriority(level, niceLeastFavoured, niceMostFavoured)
}

// HardwareConcurrency returns the number of CPUs this process may run on.
func HardwareConcurrency() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		if n := set.Count(); n > 0 {
			return n
		}
	}
	return max(runtime.NumCPU(), 1)
}
