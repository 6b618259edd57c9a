package core

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWorkerThread_FIFO verifies tasks posted before Start run in order once each
// Given: Tasks T1, T2, T3 posted to an unstarted worker
// When: The worker starts and drains
// Then: They execute in posting order, exactly once each
func TestWorkerThread_FIFO(t *testing.T) {
	w := NewWorkerThread("fifo")

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		w.PostTask(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	assert.False(t, w.IsRunning())
	assert.False(t, w.IsIdle())

	w.Start()
	assert.True(t, w.IsRunning())
	w.WaitForIdle()
	w.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
	assert.False(t, w.IsRunning())
}

// TestWorkerThread_SameThread verifies every task runs on the worker's own thread
func TestWorkerThread_SameThread(t *testing.T) {
	w := NewWorkerThread("affinity")
	w.Start()
	defer w.Stop()

	ids := make(chan uint64, 20)
	for range 20 {
		w.PostTask(func() { ids <- CurrentThreadID() })
	}
	require.NoError(t, w.WaitForIdleContext(context.Background()))

	first := <-ids
	for range 19 {
		assert.Equal(t, first, <-ids)
	}
}

// TestWorkerThread_StopIsGraceful verifies the in-flight task finishes and queued ones do not start
// Given: T1 blocked mid-execution and T2 queued behind it
// When: Stop is called and T1 is then released
// Then: T1 completes, T2 never runs and waiting for idle reports the discard
func TestWorkerThread_StopIsGraceful(t *testing.T) {
	w := NewWorkerThread("graceful")
	w.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	var t1Done, t2Ran atomic.Bool

	w.PostTask(func() {
		close(entered)
		<-release
		t1Done.Store(true)
	})
	w.PostTask(func() { t2Ran.Store(true) })
	<-entered

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before the in-flight task finished")
	case <-time.After(30 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop never returned")
	}

	assert.True(t, t1Done.Load())
	assert.False(t, t2Ran.Load())
	assert.ErrorIs(t, w.WaitForIdleContext(context.Background()), ErrWorkerStopped)
}

// TestWorkerThread_PostAfterStop verifies late tasks are rejected
func TestWorkerThread_PostAfterStop(t *testing.T) {
	metrics := NewTestMetrics()
	cfg := DefaultWorkerThreadConfig()
	cfg.Name = "late"
	cfg.Metrics = metrics

	w := NewWorkerThreadWithConfig(cfg)
	w.Start()
	w.Stop()

	var ran atomic.Bool
	w.PostTask(func() { ran.Store(true) })
	w.PostDelayedTask(func() { ran.Store(true) }, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.False(t, ran.Load())
	assert.Equal(t, int64(2), w.Stats().Rejected)
	assert.True(t, w.Stats().Closed)

	rejections := metrics.GetTaskRejections()
	require.Len(t, rejections, 2)
	assert.Equal(t, TaskRejectionMetric{RunnerName: "late", Reason: RejectStopped}, rejections[0])

	// Stopping is terminal.
	w.Start()
	assert.False(t, w.IsRunning())
}

// TestWorkerThread_StopFromTask verifies a task may stop its own worker
func TestWorkerThread_StopFromTask(t *testing.T) {
	w := NewWorkerThread("self-stop")
	w.Start()

	returned := make(chan struct{})
	w.PostTask(func() {
		w.Stop()
		close(returned)
	})

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop called from a task deadlocked")
	}
	require.Eventually(t, func() bool { return !w.IsRunning() }, 2*time.Second, time.Millisecond)

	// An outside Stop afterwards still returns.
	w.Stop()
}

// TestWorkerThread_StopNow verifies StopNow does not wait for the in-flight task
func TestWorkerThread_StopNow(t *testing.T) {
	w := NewWorkerThread("stop-now")
	w.Start()

	entered := make(chan struct{})
	release := make(chan struct{})
	w.PostTask(func() {
		close(entered)
		<-release
	})
	<-entered

	start := time.Now()
	w.StopNow()
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.True(t, w.IsClosed())

	close(release)
	require.Eventually(t, func() bool { return !w.IsRunning() }, 2*time.Second, time.Millisecond)
}

// TestWorkerThread_PostFromTask verifies reentrant posting does not deadlock
func TestWorkerThread_PostFromTask(t *testing.T) {
	w := NewWorkerThread("reentrant")
	w.Start()
	defer w.Stop()

	done := make(chan struct{})
	w.PostTask(func() {
		w.PostTask(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task posted from a task never ran")
	}
}

// TestWorkerThread_PostDelayedTask verifies the delay is honoured
func TestWorkerThread_PostDelayedTask(t *testing.T) {
	w := NewWorkerThread("delayed")
	w.Start()
	defer w.Stop()

	ran := make(chan time.Time, 1)
	start := time.Now()
	w.PostDelayedTask(func() { ran <- time.Now() }, 40*time.Millisecond)

	select {
	case at := <-ran:
		assert.GreaterOrEqual(t, at.Sub(start), 35*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed task never ran")
	}
}

// TestWorkerThread_IdleMeansQueueEmpty verifies an executing task does not count as queued
func TestWorkerThread_IdleMeansQueueEmpty(t *testing.T) {
	w := NewWorkerThread("idle")
	w.Start()
	defer w.Stop()

	entered := make(chan struct{})
	release := make(chan struct{})
	w.PostTask(func() {
		close(entered)
		<-release
	})
	<-entered

	assert.True(t, w.IsIdle())
	assert.Equal(t, 1, w.Stats().Running)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.WaitForIdleContext(ctx))

	close(release)
}

// TestWorkerThread_WaitForIdleContextCancelled verifies the wait honours ctx
func TestWorkerThread_WaitForIdleContextCancelled(t *testing.T) {
	w := NewWorkerThread("never-started")
	w.PostTask(func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.WaitForIdleContext(ctx), context.DeadlineExceeded)

	w.Stop()
	assert.ErrorIs(t, w.WaitForIdleContext(context.Background()), ErrWorkerStopped)
	assert.True(t, w.IsIdle())
}

func namedWorkerTask() {}

// TestWorkerThread_StatsAndHistory verifies observability snapshots
func TestWorkerThread_StatsAndHistory(t *testing.T) {
	metrics := NewTestMetrics()
	cfg := DefaultWorkerThreadConfig()
	cfg.Name = "observed"
	cfg.Metrics = metrics
	cfg.HistoryCapacity = 2

	w := NewWorkerThreadWithConfig(cfg)
	w.Start()

	w.PostTask(func() {})
	w.PostTask(func() {})
	w.PostTask(namedWorkerTask)
	w.WaitForIdle()
	w.Stop()

	recent := w.RecentTasks(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "core.namedWorkerTask", recent[0].Name)
	assert.Equal(t, "observed", recent[0].RunnerName)
	assert.Equal(t, "WorkerThread", recent[0].RunnerType)
	assert.NotZero(t, recent[0].ThreadID)
	assert.False(t, recent[0].FinishedAt.Before(recent[0].StartedAt))

	stats := w.Stats()
	assert.Equal(t, "observed", stats.Name)
	assert.Equal(t, "WorkerThread", stats.Type)
	assert.Zero(t, stats.Pending)
	assert.Equal(t, "core.namedWorkerTask", stats.LastTaskName)

	assert.Len(t, metrics.GetTaskDurations(), 3)
	assert.NotEmpty(t, metrics.GetQueueDepths())
}
