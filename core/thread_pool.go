package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

const threadPoolType = "ThreadPool"

// poolTask is a queued unit of work. cancel, when set, is invoked instead
// of run if the task is discarded by ShutdownNow.
type poolTask struct {
	run    Task
	cancel func()
}

// ThreadPool is a fixed set of OS threads fed from one shared FIFO queue.
//
// All threads start at construction. Shutdown stops intake, lets the
// threads drain what is already queued and waits for them to exit;
// ShutdownNow stops intake, discards the queue and returns at once.
type ThreadPool struct {
	id       string
	metrics  Metrics
	history  *executionHistory
	threads  []*Thread
	delay    *DelayManager
	pending  *semaphore.Weighted // nil when unbounded
	shutOnce sync.Once

	mu        sync.Mutex
	taskReady ConditionVariable
	queue     fifo[poolTask]
	shutdown  bool

	active    atomic.Int32
	completed atomic.Int64
	rejected  atomic.Int64
}

// NewThreadPool starts a pool of n threads; n <= 0 means one per logical
// CPU.
func NewThreadPool(n int) *ThreadPool {
	cfg := DefaultThreadPoolConfig()
	cfg.Workers = n
	return NewThreadPoolWithConfig(cfg)
}

// NewThreadPoolWithConfig starts a pool from cfg. A nil config uses the
// defaults.
func NewThreadPoolWithConfig(cfg *ThreadPoolConfig) *ThreadPool {
	if cfg == nil {
		cfg = DefaultThreadPoolConfig()
	}

	id := cfg.ID
	if id == "" {
		id = "pool"
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = HardwareConcurrency()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &NilMetrics{}
	}

	p := &ThreadPool{
		id:      id,
		metrics: metrics,
		history: newExecutionHistory(defaultTaskHistoryCapacity),
		threads: make([]*Thread, workers),
		delay:   NewDelayManager(id + "-delay"),
		queue:   newFIFO[poolTask](),
	}
	if cfg.MaxPending > 0 {
		p.pending = semaphore.NewWeighted(int64(cfg.MaxPending))
	}

	for i := range p.threads {
		th := NewNamedThread(fmt.Sprintf("%s-%d", id, i))
		th.SetPriority(cfg.Priority)
		th.Start(p.worker)
		p.threads[i] = th
	}

	getLogger().Info().
		Str("pool", id).
		Int("workers", workers).
		Int("max_pending", cfg.MaxPending).
		Log("thread pool started")

	return p
}

// ID returns the pool identifier.
func (p *ThreadPool) ID() string {
	return p.id
}

// Size returns the number of pool threads.
func (p *ThreadPool) Size() int {
	return len(p.threads)
}

// IsActive reports whether the pool still accepts tasks.
func (p *ThreadPool) IsActive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.shutdown
}

// PostTask queues task, waiting for room if the pool is bounded and full.
// Tasks posted after shutdown are dropped.
func (p *ThreadPool) PostTask(task Task) {
	if task == nil {
		return
	}
	_ = p.enqueue(context.Background(), poolTask{run: task}, true)
}

// PostDelayedTask queues task once delay has elapsed.
func (p *ThreadPool) PostDelayedTask(task Task, delay time.Duration) {
	if task == nil {
		return
	}
	if !p.IsActive() {
		p.reject(RejectShutdown)
		return
	}
	p.delay.AddDelayedTask(task, delay, p)
}

// TrySubmit queues task without blocking. It reports false if the pool is
// shut down or full.
func (p *ThreadPool) TrySubmit(task Task) bool {
	if task == nil {
		return false
	}
	return p.enqueue(context.Background(), poolTask{run: task}, false) == nil
}

// SubmitContext queues task, waiting for room until ctx is done. It returns
// ErrPoolShutdown after shutdown and ctx.Err() if ctx ends first.
func (p *ThreadPool) SubmitContext(ctx context.Context, task Task) error {
	if task == nil {
		return nil
	}
	return p.enqueue(ctx, poolTask{run: task}, true)
}

// Submit queues fn on pool and returns a Future for its result. A pool
// that is shut down before fn runs resolves the Future with
// ErrPoolShutdown. A nil fn is rejected with ErrNilTask.
func Submit[T any](pool *ThreadPool, fn func() (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	f := newFuture[T]()
	t := poolTask{
		run: func() {
			v, err := fn()
			f.resolve(v, err)
		},
		cancel: func() {
			var zero T
			f.resolve(zero, ErrPoolShutdown)
		},
	}
	if err := pool.enqueue(context.Background(), t, true); err != nil {
		return nil, err
	}
	return f, nil
}

// Shutdown stops intake and blocks until every queued task has run and all
// threads have exited. Called from a pool task it does not wait for the
// calling thread.
//
// Tasks from PostDelayedTask whose delay has not yet elapsed are discarded,
// not drained.
func (p *ThreadPool) Shutdown() {
	p.beginShutdown(false)

	self := CurrentThreadID()
	for _, th := range p.threads {
		if th.IsRunning() && th.NativeID() == self {
			continue
		}
		th.Join()
	}
}

// ShutdownNow stops intake, discards queued tasks and returns without
// waiting for the threads. Tasks already running finish on their own.
func (p *ThreadPool) ShutdownNow() {
	dropped := p.beginShutdown(true)

	for _, t := range dropped {
		if p.pending != nil {
			p.pending.Release(1)
		}
		if t.cancel != nil {
			t.cancel()
		}
	}
	for _, th := range p.threads {
		th.Detach()
	}

	if len(dropped) > 0 {
		getLogger().Info().
			Str("pool", p.id).
			Int("discarded", len(dropped)).
			Log("thread pool discarded queued tasks")
	}
}

// Stats returns a snapshot of the pool state.
func (p *ThreadPool) Stats() PoolStats {
	p.mu.Lock()
	stats := PoolStats{
		ID:      p.id,
		Workers: len(p.threads),
		Queued:  p.queue.len(),
		Running: !p.shutdown,
	}
	p.mu.Unlock()

	stats.Active = int(p.active.Load())
	stats.Delayed = p.delay.TaskCount()
	stats.Completed = p.completed.Load()
	stats.Rejected = p.rejected.Load()
	return stats
}

// RecentTasks returns up to limit of the most recent executions, newest
// first.
func (p *ThreadPool) RecentTasks(limit int) []TaskExecutionRecord {
	return p.history.recent(limit)
}

// beginShutdown closes intake. With discard set the queue is emptied in the
// same critical section, so no thread can pop a task once shutdown is
// visible, and the removed tasks are returned.
func (p *ThreadPool) beginShutdown(discard bool) []poolTask {
	p.mu.Lock()
	p.shutdown = true
	queued := p.queue.len()
	var dropped []poolTask
	if discard {
		dropped = p.queue.drain()
	}
	p.mu.Unlock()

	p.shutOnce.Do(func() {
		p.taskReady.NotifyAll()
		p.delay.Stop()

		getLogger().Info().
			Str("pool", p.id).
			Int("queued", queued).
			Log("thread pool shutting down")
	})
	return dropped
}

func (p *ThreadPool) enqueue(ctx context.Context, t poolTask, wait bool) error {
	if !p.IsActive() {
		p.reject(RejectShutdown)
		return ErrPoolShutdown
	}

	if p.pending != nil {
		if wait {
			if err := p.pending.Acquire(ctx, 1); err != nil {
				return err
			}
		} else if !p.pending.TryAcquire(1) {
			p.reject(RejectFull)
			return ErrPoolFull
		}
	}

	p.mu.Lock()
	if p.shutdown {
		p.mu.Unlock()
		if p.pending != nil {
			p.pending.Release(1)
		}
		p.reject(RejectShutdown)
		return ErrPoolShutdown
	}
	p.queue.push(t)
	depth := p.queue.len()
	p.mu.Unlock()

	p.metrics.RecordQueueDepth(p.id, depth)
	p.taskReady.NotifyOne()
	return nil
}

func (p *ThreadPool) worker() {
	for {
		p.mu.Lock()
		for p.queue.len() == 0 && !p.shutdown {
			p.taskReady.Wait(&p.mu)
		}
		t, ok := p.queue.pop()
		if !ok {
			// Shut down and drained.
			p.mu.Unlock()
			return
		}
		depth := p.queue.len()
		p.active.Add(1)
		p.mu.Unlock()

		if p.pending != nil {
			p.pending.Release(1)
		}
		p.metrics.RecordQueueDepth(p.id, depth)

		executeObserved(t.run, p.id, threadPoolType, p.history, p.metrics)
		p.active.Add(-1)
		p.completed.Add(1)
	}
}

func (p *ThreadPool) reject(reason string) {
	p.rejected.Add(1)
	p.metrics.RecordTaskRejected(p.id, reason)
	logRejected("pool", p.id, reason)
}
