package core

import "time"

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on the executing thread and should be non-blocking and
// fast to avoid impacting task execution.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(runnerName string, duration time.Duration)

	// RecordQueueDepth records the current queue depth.
	// It is called whenever a task is queued or dequeued.
	RecordQueueDepth(runnerName string, depth int)

	// RecordTaskRejected records that a task was rejected, e.g. because the
	// executor was stopped or its queue was full.
	RecordTaskRejected(runnerName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(runnerName string, duration time.Duration) {
}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(runnerName string, depth int) {
}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(runnerName string, reason string) {
}

// Rejection reasons passed to Metrics.RecordTaskRejected.
const (
	RejectStopped  = "stopped"
	RejectShutdown = "shutdown"
	RejectFull     = "full"
)

// =============================================================================
// Configuration
// =============================================================================

// WorkerThreadConfig holds configuration options for a WorkerThread.
// Zero-valued fields fall back to the defaults.
type WorkerThreadConfig struct {
	// Name labels the worker and its OS thread. Defaults to "WorkerThread".
	Name string

	// Priority is applied to the worker's thread when it starts.
	Priority Priority

	// Metrics records execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// HistoryCapacity bounds the execution history kept for RecentTasks.
	HistoryCapacity int
}

// DefaultWorkerThreadConfig returns a config with default settings.
func DefaultWorkerThreadConfig() *WorkerThreadConfig {
	return &WorkerThreadConfig{
		Name:            "WorkerThread",
		Priority:        PriorityNormal,
		Metrics:         &NilMetrics{},
		HistoryCapacity: defaultTaskHistoryCapacity,
	}
}

// ThreadPoolConfig holds configuration options for a ThreadPool.
type ThreadPoolConfig struct {
	// ID labels the pool; its threads are named "<ID>-<index>".
	ID string

	// Workers is the fixed thread count. Zero means HardwareConcurrency().
	Workers int

	// Priority is applied to every pool thread when it starts.
	Priority Priority

	// MaxPending bounds queued (not yet running) tasks. Zero means unbounded.
	MaxPending int

	// Metrics records execution metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// DefaultThreadPoolConfig returns a config with default settings.
func DefaultThreadPoolConfig() *ThreadPoolConfig {
	return &ThreadPoolConfig{
		ID:       "pool",
		Priority: PriorityNormal,
		Metrics:  &NilMetrics{},
	}
}
