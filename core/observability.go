package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	Name       string
	RunnerName string
	RunnerType string
	ThreadID   uint64
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// RunnerStats represents runtime observability state for a WorkerThread.
type RunnerStats struct {
	Name         string
	Type         string
	Pending      int
	Running      int
	Rejected     int64
	Closed       bool
	LastTaskName string
	LastTaskAt   time.Time
}

// PoolStats represents runtime observability state for a thread pool.
type PoolStats struct {
	ID        string
	Workers   int
	Queued    int
	Active    int
	Delayed   int
	Completed int64
	Rejected  int64
	Running   bool
}
