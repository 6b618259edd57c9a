package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const workerThreadType = "WorkerThread"

// WorkerThread runs posted tasks one at a time, in posting order, on a
// single dedicated OS thread.
//
// Lifecycle: NotStarted -> Start -> Running -> Stop/StopNow -> Stopped.
// Tasks may be posted before Start; they run once the worker starts.
// Stopping is terminal: the in-flight task finishes, queued tasks are
// discarded and later posts are rejected.
//
// "Idle" means the queue is empty. A task that is still executing when the
// last queued task is taken does not keep the worker busy.
type WorkerThread struct {
	name    string
	metrics Metrics
	history *executionHistory
	thread  *Thread

	mu        sync.Mutex
	taskReady ConditionVariable // queue non-empty or stop requested
	idle      ConditionVariable // queue drained or discarded
	queue     fifo[Task]
	started   bool
	stopping  bool
	finished  bool
	discarded int
	exited    chan struct{}

	executing atomic.Int32
	rejected  atomic.Int64
}

// NewWorkerThread creates a stopped worker with default settings.
func NewWorkerThread(name string) *WorkerThread {
	cfg := DefaultWorkerThreadConfig()
	if name != "" {
		cfg.Name = name
	}
	return NewWorkerThreadWithConfig(cfg)
}

// NewWorkerThreadWithConfig creates a stopped worker. A nil config uses
// the defaults.
func NewWorkerThreadWithConfig(cfg *WorkerThreadConfig) *WorkerThread {
	if cfg == nil {
		cfg = DefaultWorkerThreadConfig()
	}

	name := cfg.Name
	if name == "" {
		name = workerThreadType
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &NilMetrics{}
	}

	thread := NewNamedThread(name)
	thread.SetPriority(cfg.Priority)

	return &WorkerThread{
		name:    name,
		metrics: metrics,
		history: newExecutionHistory(cfg.HistoryCapacity),
		thread:  thread,
		queue:   newFIFO[Task](),
		exited:  make(chan struct{}),
	}
}

// Name returns the worker name.
func (w *WorkerThread) Name() string {
	return w.name
}

// Start launches the worker thread. It is a no-op if the worker is already
// running or has been stopped.
func (w *WorkerThread) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopping {
		return
	}
	w.started = true
	w.thread.Start(w.loop)

	getLogger().Info().
		Str("worker", w.name).
		Int("queued", w.queue.len()).
		Log("worker thread started")
}

// PostTask appends task to the queue. Tasks posted after a stop request
// are rejected and never run.
func (w *WorkerThread) PostTask(task Task) {
	if task == nil {
		return
	}

	w.mu.Lock()
	if w.stopping {
		w.mu.Unlock()
		w.reject()
		return
	}
	w.queue.push(task)
	depth := w.queue.len()
	w.mu.Unlock()

	w.metrics.RecordQueueDepth(w.name, depth)
	w.taskReady.NotifyOne()
}

// PostDelayedTask posts task once delay has elapsed. A worker stopped in
// the meantime rejects it.
func (w *WorkerThread) PostDelayedTask(task Task, delay time.Duration) {
	if w.IsClosed() {
		w.reject()
		return
	}

	// time.AfterFunc fires on its own goroutine; the task itself still runs
	// on the worker thread through PostTask.
	time.AfterFunc(delay, func() {
		w.PostTask(task)
	})
}

// Stop requests termination and blocks until the worker thread has exited.
// The in-flight task, if any, runs to completion. Calling Stop from a task
// running on this worker returns without waiting; the worker exits once
// that task returns.
func (w *WorkerThread) Stop() {
	w.requestStop()

	if w.onWorkerThread() {
		return
	}
	<-w.exited
	w.thread.Join()
}

// StopNow requests termination without waiting for the worker to exit.
func (w *WorkerThread) StopNow() {
	w.requestStop()
	w.thread.Detach()
}

// IsRunning reports whether the worker has started and not yet exited.
func (w *WorkerThread) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started && !w.finished
}

// IsClosed reports whether a stop has been requested.
func (w *WorkerThread) IsClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopping
}

// IsIdle reports whether the queue is empty.
func (w *WorkerThread) IsIdle() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.queue.len() == 0
}

// WaitForIdle blocks until the queue is empty. Calling it from a task on
// this worker while other tasks are queued never returns.
func (w *WorkerThread) WaitForIdle() {
	_ = w.WaitForIdleContext(context.Background())
}

// WaitForIdleContext blocks until the queue is empty or ctx is done. It
// returns an error wrapping ErrWorkerStopped if the queue emptied because a
// stop discarded pending tasks.
func (w *WorkerThread) WaitForIdleContext(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.queue.len() > 0 {
		if err := w.idle.WaitContext(ctx, &w.mu); err != nil {
			return err
		}
	}

	if w.discarded > 0 {
		return fmt.Errorf("%w: %d queued tasks discarded", ErrWorkerStopped, w.discarded)
	}
	return nil
}

// Stats returns a snapshot of the worker state.
func (w *WorkerThread) Stats() RunnerStats {
	w.mu.Lock()
	stats := RunnerStats{
		Name:    w.name,
		Type:    workerThreadType,
		Pending: w.queue.len(),
		Closed:  w.stopping,
	}
	w.mu.Unlock()

	stats.Running = int(w.executing.Load())
	stats.Rejected = w.rejected.Load()
	if last, ok := w.history.last(); ok {
		stats.LastTaskName = last.Name
		stats.LastTaskAt = last.FinishedAt
	}
	return stats
}

// RecentTasks returns up to limit of the most recent executions, newest
// first. limit <= 0 returns the whole history.
func (w *WorkerThread) RecentTasks(limit int) []TaskExecutionRecord {
	return w.history.recent(limit)
}

func (w *WorkerThread) loop() {
	defer close(w.exited)

	for {
		w.mu.Lock()
		for w.queue.len() == 0 && !w.stopping {
			w.taskReady.Wait(&w.mu)
		}

		if w.stopping {
			dropped := w.discardLocked()
			w.finished = true
			w.mu.Unlock()

			w.idle.NotifyAll()
			getLogger().Info().
				Str("worker", w.name).
				Int("discarded", dropped).
				Log("worker thread stopped")
			return
		}

		task, _ := w.queue.pop()
		depth := w.queue.len()
		w.executing.Add(1)
		w.mu.Unlock()

		if depth == 0 {
			w.idle.NotifyAll()
		}
		w.metrics.RecordQueueDepth(w.name, depth)

		executeObserved(task, w.name, workerThreadType, w.history, w.metrics)
		w.executing.Add(-1)
	}
}

func (w *WorkerThread) requestStop() {
	w.mu.Lock()
	if w.stopping {
		w.mu.Unlock()
		return
	}
	w.stopping = true

	neverStarted := !w.started
	if neverStarted {
		w.discardLocked()
		w.finished = true
		close(w.exited)
	}
	w.mu.Unlock()

	w.taskReady.NotifyAll()
	if neverStarted {
		w.idle.NotifyAll()
	}
}

// discardLocked must be called with w.mu held.
func (w *WorkerThread) discardLocked() int {
	n := len(w.queue.drain())
	w.discarded += n
	return n
}

func (w *WorkerThread) onWorkerThread() bool {
	tid := w.thread.NativeID()
	return tid != 0 && w.thread.IsRunning() && tid == CurrentThreadID()
}

func (w *WorkerThread) reject() {
	w.rejected.Add(1)
	w.metrics.RecordTaskRejected(w.name, RejectStopped)
	logRejected("worker", w.name, RejectStopped)
}
