package taskpool

import (
	"sync"

	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
)

// NewWorkerPool creates a stopped WorkerPool. cfg may be nil.
func NewWorkerPool(name string, cfg *PoolConfig) *WorkerPool {
	return core.NewWorkerPool(name, cfg)
}

// NewLoggerContext creates a LoggerContext with the built-in hooks selected by opts.
func NewLoggerContext(opts LogOptions) (*LoggerContext, error) {
	return logpipe.New(opts)
}

// =============================================================================
// Global Worker Pool Helper (Singleton)
// =============================================================================

var (
	globalPool *WorkerPool
	globalMu   sync.Mutex
)

// InitGlobalPool initializes the global pool with the specified number of
// workers and starts it. threads == 0 picks core.DefaultThreadCount.
func InitGlobalPool(threads int) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool != nil {
		return // Already initialized
	}

	globalPool = core.NewWorkerPool("global-pool", nil)
	globalPool.Start(threads)
}

// GetGlobalPool returns the global pool instance.
// It panics if InitGlobalPool has not been called.
func GetGlobalPool() *WorkerPool {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool == nil {
		panic("GlobalPool not initialized. Call InitGlobalPool() first.")
	}
	return globalPool
}

// ShutdownGlobalPool closes the global pool. Queued tasks get a second to
// finish; whatever is left is discarded.
func ShutdownGlobalPool() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalPool != nil {
		globalPool.Close()
		globalPool = nil
	}
}

// Submit posts task to the global pool.
func Submit(task Task) *Handle {
	return GetGlobalPool().Submit(task)
}
