package core

import "errors"

var (
	// ErrInvalidCount is returned when a primitive is constructed with a
	// count it cannot honour, e.g. a negative semaphore count.
	ErrInvalidCount = errors.New("threadkit: invalid count")

	// ErrPoolShutdown is returned for work submitted to, or abandoned by, a
	// ThreadPool that has been shut down.
	ErrPoolShutdown = errors.New("threadkit: thread pool is shut down")

	// ErrNilTask is returned when a nil function is submitted for a
	// result.
	ErrNilTask = errors.New("threadkit: nil task")

	// ErrPoolFull is returned by a bounded ThreadPool that cannot accept
	// more pending tasks.
	ErrPoolFull = errors.New("threadkit: thread pool queue is full")

	// ErrWorkerStopped is returned when waiting for a WorkerThread whose
	// queue was discarded by Stop or StopNow instead of draining.
	ErrWorkerStopped = errors.New("threadkit: worker thread is stopped")
)
