// Package taskpool provides a resizable worker pool and an asynchronous,
// hook-based log pipeline that can be drained on that pool.
//
// # Quick Start
//
// Initialize the global pool at application startup:
//
//	taskpool.InitGlobalPool(4) // 4 workers
//	defer taskpool.ShutdownGlobalPool()
//
// Submit work and wait for it:
//
//	h := taskpool.Submit(func() {
//		// Your code here
//	})
//	if err := h.Wait(); err != nil {
//		// the task panicked or was discarded
//	}
//
// # Key Concepts
//
// WorkerPool: A named set of worker goroutines consuming a single FIFO queue.
// Pools start stopped; tasks submitted while stopped wait for Start. Stop
// discards whatever is still queued and reports it once. PushThread and
// PopThread resize a running pool one worker at a time.
//
// Handle: Returned by Submit. It resolves once, when the task has run, has
// panicked (*PanicError), or has been discarded (ErrTaskAbandoned).
//
// LoggerContext: An explicit log pipeline instance. Every Log call enqueues a
// record and triggers a drain, either inline or as a task on a WorkerPool,
// and the drain hands records to hooks in FIFO order.
//
// # Example
//
//	import (
//		taskpool "github.com/Swind/go-task-pool"
//	)
//
//	func main() {
//		pool := taskpool.NewWorkerPool("io", nil)
//		pool.Start(2)
//		defer pool.Close()
//
//		opts := taskpool.DefaultLogOptions()
//		opts.Pool = pool
//		logs, err := taskpool.NewLoggerContext(opts)
//		if err != nil {
//			panic(err)
//		}
//		defer logs.Close()
//		pool.SetLogger(logs.PoolLogger())
//
//		logs.Info("pool {} has {} workers", pool.Name(), pool.NumThreads())
//	}
//
// For more details, see https://github.com/Swind/go-task-pool
package taskpool
