package core

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestThread_StartJoin verifies the basic lifecycle
// Given: A thread started with a function that blocks on a channel
// When: The function is released and Join is called
// Then: IsRunning is true only while the function runs and Join returns
func TestThread_StartJoin(t *testing.T) {
	th := NewThread()
	assert.False(t, th.Joinable())
	assert.Zero(t, th.NativeID())

	entered := make(chan struct{})
	release := make(chan struct{})
	th.Start(func() {
		close(entered)
		<-release
	})

	<-entered
	assert.True(t, th.IsRunning())
	assert.True(t, th.Joinable())
	assert.NotZero(t, th.NativeID())

	close(release)
	th.Join()

	assert.False(t, th.IsRunning())
	assert.False(t, th.Joinable())
}

// TestThread_StartWhileRunning verifies a second Start is ignored
func TestThread_StartWhileRunning(t *testing.T) {
	var runs atomic.Int32
	release := make(chan struct{})

	th := NewThreadWithFunc(func() {
		runs.Add(1)
		<-release
	})
	th.Start(func() { runs.Add(100) })

	close(release)
	th.Join()
	assert.Equal(t, int32(1), runs.Load())

	// Once finished the thread can run again.
	th.Start(func() { runs.Add(1) })
	th.Join()
	assert.Equal(t, int32(2), runs.Load())
}

// TestThread_TryJoin verifies bounded joins
// Given: A running thread that sleeps 80ms
// When: TryJoin is called with 10ms and then with 2s
// Then: The first times out leaving the thread joinable, the second succeeds
func TestThread_TryJoin(t *testing.T) {
	th := NewThreadWithFunc(func() { time.Sleep(80 * time.Millisecond) })

	assert.False(t, th.TryJoin(10*time.Millisecond))
	assert.True(t, th.Joinable())

	assert.True(t, th.TryJoin(2*time.Second))
	assert.False(t, th.Joinable())
	assert.False(t, th.IsRunning())
}

// TestThread_TryJoinNotJoinable verifies immediate success with nothing to join
func TestThread_TryJoinNotJoinable(t *testing.T) {
	th := NewThread()
	start := time.Now()
	assert.True(t, th.TryJoin(time.Second))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

// TestThread_Detach verifies the function keeps running after Detach
func TestThread_Detach(t *testing.T) {
	finished := make(chan struct{})
	release := make(chan struct{})

	th := NewThreadWithFunc(func() {
		<-release
		close(finished)
	})
	th.Detach()
	assert.False(t, th.Joinable())

	// Join on a detached thread does not wait.
	th.Join()

	close(release)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("detached function did not finish")
	}
}

// TestThread_StartAfterDetachWhileRunning verifies Detach does not reopen Start
// Given: A started thread that is detached while its function still runs
// When: Start is called again before that function returns
// Then: No second context starts and IsRunning tracks the first one
func TestThread_StartAfterDetachWhileRunning(t *testing.T) {
	var started atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	th := NewThread()
	th.Start(func() {
		started.Add(1)
		close(entered)
		<-release
		close(finished)
	})
	<-entered
	require.True(t, th.IsRunning())

	th.Detach()
	th.Start(func() {
		started.Add(1)
		<-release
	})

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), started.Load())
	assert.True(t, th.IsRunning())
	assert.False(t, th.Joinable())

	close(release)
	<-finished
	assert.Eventually(t, func() bool { return !th.IsRunning() }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), started.Load())
}

// TestThread_NativeIDMatchesInside verifies the recorded id is the thread's own
func TestThread_NativeIDMatchesInside(t *testing.T) {
	inside := make(chan uint64, 1)
	th := NewThreadWithFunc(func() { inside <- CurrentThreadID() })
	th.Join()

	id := <-inside
	assert.Equal(t, id, th.NativeID())
}

// TestThread_DistinctThreads verifies concurrent threads never share an OS thread
func TestThread_DistinctThreads(t *testing.T) {
	const n = 4
	ids := make(chan uint64, n)
	release := make(chan struct{})

	threads := make([]*Thread, n)
	for i := range threads {
		threads[i] = NewThreadWithFunc(func() {
			ids <- CurrentThreadID()
			<-release
		})
	}

	seen := map[uint64]bool{}
	for range n {
		id := <-ids
		assert.False(t, seen[id], "thread id %d reused while still pinned", id)
		seen[id] = true
	}

	close(release)
	for _, th := range threads {
		th.Join()
	}
}

// TestThread_NameAndPriority verifies attributes are stored before start
func TestThread_NameAndPriority(t *testing.T) {
	th := NewNamedThread("io-reader")
	assert.Equal(t, "io-reader", th.Name())

	th.SetName("io-writer")
	th.SetPriority(PriorityBelowNormal)
	assert.Equal(t, "io-writer", th.Name())
	assert.Equal(t, PriorityBelowNormal, th.Priority())

	// Best-effort application on start must not disturb the function.
	done := make(chan struct{})
	th.Start(func() { close(done) })
	<-done
	th.Join()
}

// TestThread_SetWhileRunning verifies changing attributes of a live thread
func TestThread_SetWhileRunning(t *testing.T) {
	release := make(chan struct{})
	th := NewThreadWithFunc(func() { <-release })

	require.Eventually(t, th.IsRunning, time.Second, time.Millisecond)
	th.SetName("renamed")
	th.SetPriority(PriorityLowest)

	close(release)
	th.Join()
	assert.Equal(t, "renamed", th.Name())
}

// TestPriority_String verifies every level has a readable name
func TestPriority_String(t *testing.T) {
	cases := map[Priority]string{
		0:                    "Default",
		PriorityIdle:         "Idle",
		PriorityLowest:       "Lowest",
		PriorityBelowNormal:  "BelowNormal",
		PriorityNormal:       "Normal",
		PriorityAboveNormal:  "AboveNormal",
		PriorityHighest:      "Highest",
		PriorityTimeCritical: "TimeCritical",
		Priority(42):         "Priority(42)",
	}
	for p, want := range cases {
		assert.Equal(t, want, p.String())
	}
}

// TestPriority_Level verifies the mapping onto the backend's 0-based scale
func TestPriority_Level(t *testing.T) {
	assert.Equal(t, 0, PriorityIdle.level())
	assert.Equal(t, 3, PriorityNormal.level())
	assert.Equal(t, 6, PriorityTimeCritical.level())
}
