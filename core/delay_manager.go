package core

import (
	"container/heap"
	"sync"
	"time"
)

// DelayedTask is a task waiting for its run time before being posted to
// its target runner.
type DelayedTask struct {
	RunAt  time.Time
	Task   Task
	Target TaskRunner
	index  int // for heap interface
}

// DelayedTaskHeap implements heap.Interface ordered by RunAt.
type DelayedTaskHeap []*DelayedTask

func (h DelayedTaskHeap) Len() int           { return len(h) }
func (h DelayedTaskHeap) Less(i, j int) bool { return h[i].RunAt.Before(h[j].RunAt) }
func (h DelayedTaskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *DelayedTaskHeap) Push(x any) {
	n := len(*h)
	item := x.(*DelayedTask)
	item.index = n
	*h = append(*h, item)
}

func (h *DelayedTaskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *DelayedTaskHeap) Peek() *DelayedTask {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// DelayManager holds delayed tasks in a min-heap served by one background
// thread, instead of one runtime timer per task. Due tasks are handed to
// their target's PostTask on that thread.
type DelayManager struct {
	mu       sync.Mutex
	pq       DelayedTaskHeap
	wakeup   chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	thread   *Thread
}

// NewDelayManager starts a DelayManager whose background thread is named
// name.
func NewDelayManager(name string) *DelayManager {
	dm := &DelayManager{
		pq:      make(DelayedTaskHeap, 0),
		wakeup:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
		thread:  NewNamedThread(name),
	}
	dm.thread.Start(dm.loop)
	return dm
}

// AddDelayedTask schedules task to be posted to target after delay. Tasks
// added after Stop are dropped.
func (dm *DelayManager) AddDelayedTask(task Task, delay time.Duration, target TaskRunner) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if isClosed(dm.stopped) {
		return
	}

	item := &DelayedTask{
		RunAt:  time.Now().Add(delay),
		Task:   task,
		Target: target,
	}
	heap.Push(&dm.pq, item)

	// Only a new earliest deadline changes how long the loop should sleep.
	if item.index == 0 {
		select {
		case dm.wakeup <- struct{}{}:
		default:
		}
	}
}

func (dm *DelayManager) loop() {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		// A nil channel blocks forever: nothing is scheduled.
		var due <-chan time.Time
		if wait, pending := dm.nextWait(); pending {
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			due = timer.C
		}

		select {
		case <-dm.stopped:
			return
		case <-due:
			dm.dispatchDue()
		case <-dm.wakeup:
		}
	}
}

// nextWait returns how long until the earliest task is due (zero or less if
// already due), and false if nothing is scheduled.
func (dm *DelayManager) nextWait() (time.Duration, bool) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	item := dm.pq.Peek()
	if item == nil {
		return 0, false
	}
	return time.Until(item.RunAt), true
}

// dispatchDue pops every due task and posts it outside the lock.
func (dm *DelayManager) dispatchDue() {
	now := time.Now()
	var due []*DelayedTask

	dm.mu.Lock()
	for item := dm.pq.Peek(); item != nil && !item.RunAt.After(now); item = dm.pq.Peek() {
		heap.Pop(&dm.pq)
		due = append(due, item)
	}
	dm.mu.Unlock()

	for _, item := range due {
		item.Target.PostTask(item.Task)
	}
}

// Stop halts the background thread and drops every pending task. It does
// not wait for the thread to exit. Repeated calls are no-ops.
func (dm *DelayManager) Stop() {
	dm.stopOnce.Do(func() {
		dm.mu.Lock()
		close(dm.stopped)
		// Release the targets held by pending tasks.
		dm.pq = make(DelayedTaskHeap, 0)
		dm.mu.Unlock()

		dm.thread.Detach()
	})
}

// TaskCount returns the number of pending delayed tasks.
func (dm *DelayManager) TaskCount() int {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return len(dm.pq)
}
