package threadkit

import (
	"sync"

	"github.com/Swind/go-threadkit/core"
)

// =============================================================================
// Global Thread Pool Helper (Singleton)
// =============================================================================

var (
	globalThreadPool *ThreadPool
	globalMu         sync.Mutex
)

// InitGlobalThreadPool starts the global thread pool with the given number
// of threads (zero means one per logical CPU). Later calls are no-ops until
// ShutdownGlobalThreadPool.
func InitGlobalThreadPool(workers int) {
	cfg := core.DefaultThreadPoolConfig()
	cfg.ID = "global-pool"
	cfg.Workers = workers
	InitGlobalThreadPoolWithConfig(cfg)
}

// InitGlobalThreadPoolWithConfig is InitGlobalThreadPool with full control
// over the pool configuration.
func InitGlobalThreadPoolWithConfig(cfg *ThreadPoolConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool != nil {
		return // Already initialized
	}

	globalThreadPool = core.NewThreadPoolWithConfig(cfg)
}

// GetGlobalThreadPool returns the global thread pool instance.
// It panics if InitGlobalThreadPool has not been called.
func GetGlobalThreadPool() *ThreadPool {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool == nil {
		panic("GlobalThreadPool not initialized. Call InitGlobalThreadPool() first.")
	}
	return globalThreadPool
}

// GlobalThreadPool returns the global thread pool, or nil if it has not
// been initialized.
func GlobalThreadPool() *ThreadPool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalThreadPool
}

// ShutdownGlobalThreadPool drains and stops the global thread pool.
func ShutdownGlobalThreadPool() {
	globalMu.Lock()
	pool := globalThreadPool
	globalThreadPool = nil
	globalMu.Unlock()

	if pool != nil {
		pool.Shutdown()
	}
}

// PostTask queues task on the global thread pool.
// It panics if InitGlobalThreadPool has not been called.
func PostTask(task Task) {
	GetGlobalThreadPool().PostTask(task)
}
