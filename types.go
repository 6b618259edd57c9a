package threadkit

import "github.com/Swind/go-threadkit/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the threadkit package for most use cases.

// Task is the unit of work posted to an executor
type Task = core.Task

// TaskRunner is the interface for posting tasks
type TaskRunner = core.TaskRunner

// Priority is the abstract thread priority
type Priority = core.Priority

// Priority constants
const (
	PriorityIdle         = core.PriorityIdle
	PriorityLowest       = core.PriorityLowest
	PriorityBelowNormal  = core.PriorityBelowNormal
	PriorityNormal       = core.PriorityNormal
	PriorityAboveNormal  = core.PriorityAboveNormal
	PriorityHighest      = core.PriorityHighest
	PriorityTimeCritical = core.PriorityTimeCritical
)

type (
	Thread            = core.Thread
	Mutex             = core.Mutex
	RecursiveMutex    = core.RecursiveMutex
	ReadWriteLock     = core.ReadWriteLock
	ConditionVariable = core.ConditionVariable
	Semaphore         = core.Semaphore
	Barrier           = core.Barrier
	Timer             = core.Timer
	WorkerThread      = core.WorkerThread
	ThreadPool        = core.ThreadPool
	OnceFlag          = core.OnceFlag
	MainThread        = core.MainThread
	DelayManager      = core.DelayManager

	WorkerThreadConfig = core.WorkerThreadConfig
	ThreadPoolConfig   = core.ThreadPoolConfig
	Metrics            = core.Metrics
	RunnerStats        = core.RunnerStats
	PoolStats          = core.PoolStats

	TaskExecutionRecord = core.TaskExecutionRecord
)

// Future is the pending result of a function submitted to a ThreadPool
type Future[T any] = core.Future[T]

// Queue is an unbounded thread-safe FIFO
type Queue[T any] = core.Queue[T]

// Errors
var (
	ErrInvalidCount  = core.ErrInvalidCount
	ErrPoolShutdown  = core.ErrPoolShutdown
	ErrPoolFull      = core.ErrPoolFull
	ErrNilTask       = core.ErrNilTask
	ErrWorkerStopped = core.ErrWorkerStopped
)

// Constructors
var (
	NewThread                 = core.NewThread
	NewNamedThread            = core.NewNamedThread
	NewThreadWithFunc         = core.NewThreadWithFunc
	NewSemaphore              = core.NewSemaphore
	NewBarrier                = core.NewBarrier
	NewTimer                  = core.NewTimer
	NewNamedTimer             = core.NewNamedTimer
	NewWorkerThread           = core.NewWorkerThread
	NewWorkerThreadWithConfig = core.NewWorkerThreadWithConfig
	NewThreadPool             = core.NewThreadPool
	NewThreadPoolWithConfig   = core.NewThreadPoolWithConfig
	DefaultWorkerThreadConfig = core.DefaultWorkerThreadConfig
	DefaultThreadPoolConfig   = core.DefaultThreadPoolConfig
	CallOnce                  = core.CallOnce
	SetLogger                 = core.SetLogger
	NewLogger                 = core.NewLogger
)

// Thread utilities
var (
	CurrentThreadID      = core.CurrentThreadID
	HardwareConcurrency  = core.HardwareConcurrency
	Sleep                = core.Sleep
	Yield                = core.Yield
	SetCurrentThreadName = core.SetCurrentThreadName
	SetMainThreadID      = core.SetMainThreadID
	IsMainThread         = core.IsMainThread
	MainThreadID         = core.MainThreadID
	Backend              = core.Backend
)

// NewQueue creates an empty Queue.
func NewQueue[T any]() *Queue[T] {
	return core.NewQueue[T]()
}

// Submit queues fn on pool and returns a Future for its result.
func Submit[T any](pool *ThreadPool, fn func() (T, error)) (*Future[T], error) {
	return core.Submit(pool, fn)
}
