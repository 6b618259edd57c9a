//go:build linux

package native

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPriorityValue_NiceMapping(t *testing.T) {
	got := make([]int, 0, 7)
	for level := LevelIdle; level <= LevelTimeCritical; level++ {
		got = append(got, PriorityValue(level))
	}
	assert.Equal(t, []int{19, 19, 10, 0, -10, -20, -20}, got)
}

func readComm(t *testing.T, tid uint64) string {
	t.Helper()
	b, err := os.ReadFile("/proc/self/task/" + strconv.FormatUint(tid, 10) + "/comm")
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}

func TestSetThreadName_Self(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		// Leave the thread locked so the renamed thread exits with us.
		runtime.LockOSThread()

		tid := CurrentThreadID()
		assert.NoError(t, SetThreadName(tid, "tk-self"))
		assert.Equal(t, "tk-self", readComm(t, tid))

		assert.NoError(t, SetThreadName(tid, "a-very-long-thread-name"))
		assert.Equal(t, "a-very-long-thr", readComm(t, tid))
	}()
	<-done
}

func TestSetThreadName_OtherThread(t *testing.T) {
	tidCh := make(chan uint64)
	release := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		tidCh <- CurrentThreadID()
		<-release
	}()
	defer close(release)

	tid := <-tidCh
	require.NoError(t, SetThreadName(tid, "tk-other"))
	assert.Equal(t, "tk-other", readComm(t, tid))
}

func TestSetThreadPriority_Lowering(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		runtime.LockOSThread()

		tid := CurrentThreadID()
		// Lowering priority never needs privileges.
		require.NoError(t, SetThreadPriority(tid, LevelLowest))
		prio, err := unix.Getpriority(unix.PRIO_PROCESS, int(tid))
		require.NoError(t, err)
		// Depending on the wrapper the result is either the nice value
		// or the raw syscall's 20 - nice.
		assert.Contains(t, []int{19, 20 - 19}, prio)
	}()
	<-done
}
