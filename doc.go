// Package threadkit provides portable OS-thread and synchronization
// primitives for Go.
//
// Goroutines are multiplexed over OS threads by the runtime, which is
// usually what you want. Some work is not: thread-affine C libraries, code
// that must run with a particular scheduling priority, and subsystems that
// expect a long-lived named thread visible to debuggers and profilers. This
// library gives such code real threads with a small, familiar API.
//
// # Quick Start
//
// Run work on a dedicated OS thread:
//
//	worker := threadkit.NewWorkerThread("io")
//	worker.Start()
//	defer worker.Stop()
//
//	worker.PostTask(func() {
//		// Always runs on the same OS thread, in posting order.
//	})
//
// Fan work out over a fixed set of threads and collect a result:
//
//	threadkit.InitGlobalThreadPool(4)
//	defer threadkit.ShutdownGlobalThreadPool()
//
//	f, err := threadkit.Submit(threadkit.GetGlobalThreadPool(), func() (int, error) {
//		return 42, nil
//	})
//
// # Key Concepts
//
// Thread: one goroutine pinned to its own OS thread for the lifetime of its
// function, with best-effort naming and priority.
//
// WorkerThread: a Thread draining a FIFO task queue; the canonical
// single-thread executor.
//
// ThreadPool: a fixed set of Threads fed from one shared queue, with
// optional backpressure and Futures for results.
//
// Timer: one-shot and periodic callbacks on a background Thread.
//
// Synchronization: Mutex, RecursiveMutex, ReadWriteLock, ConditionVariable
// with timed waits, Semaphore, cyclic Barrier and OnceFlag.
//
// # Platform Support
//
// Linux and Windows have native backends for thread ids, names and
// priorities. Other platforms fall back to a portable backend in which
// naming and priorities are ignored.
package threadkit
