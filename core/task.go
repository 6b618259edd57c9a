package core

import "time"

// Task is the unit of work (closure) executed by a WorkerThread or a
// ThreadPool. It runs on the executor's own thread; nothing is marshalled
// back to the poster.
type Task func()

// =============================================================================
// TaskRunner: task submission interface
// =============================================================================

// TaskRunner is implemented by every executor in this package.
type TaskRunner interface {
	PostTask(task Task)
	PostDelayedTask(task Task, delay time.Duration)
}
