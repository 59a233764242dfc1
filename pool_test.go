package taskpool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Swind/go-task-pool/core"
	"github.com/Swind/go-task-pool/logpipe"
)

// Ensure WorkerPool can drive a log pipeline
var _ logpipe.Dispatcher = (*WorkerPool)(nil)

func TestGlobalPool_Lifecycle(t *testing.T) {
	InitGlobalPool(2)
	defer ShutdownGlobalPool()

	pool := GetGlobalPool()
	if !pool.IsRunning() {
		t.Error("global pool should be running after InitGlobalPool()")
	}
	if pool.NumThreads() != 2 {
		t.Errorf("expected 2 workers, got %d", pool.NumThreads())
	}

	// A second init is ignored.
	InitGlobalPool(5)
	if GetGlobalPool() != pool {
		t.Error("InitGlobalPool replaced an existing pool")
	}
}

func TestGlobalPool_Submit(t *testing.T) {
	InitGlobalPool(4)
	defer ShutdownGlobalPool()

	var counter atomic.Int32
	handles := make([]*Handle, 10)
	for i := range handles {
		handles[i] = Submit(func() { counter.Add(1) })
	}
	for _, h := range handles {
		if err := h.Wait(); err != nil {
			t.Fatalf("task error = %v", err)
		}
	}

	if counter.Load() != 10 {
		t.Errorf("expected 10 tasks executed, got %d", counter.Load())
	}
}

func TestGetGlobalPool_PanicsWhenUninitialised(t *testing.T) {
	ShutdownGlobalPool()
	defer func() {
		if recover() == nil {
			t.Error("GetGlobalPool() did not panic before InitGlobalPool()")
		}
	}()
	GetGlobalPool()
}

func TestShutdownGlobalPool_DiscardsLeftovers(t *testing.T) {
	InitGlobalPool(1)
	pool := GetGlobalPool()
	pool.SetLogger(core.NewNoOpLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	Submit(func() {
		close(started)
		<-release
	})
	<-started
	queued := Submit(func() {})

	go func() {
		time.Sleep(1500 * time.Millisecond)
		close(release)
	}()
	ShutdownGlobalPool()

	if err := queued.Wait(); !errors.Is(err, ErrTaskAbandoned) {
		t.Errorf("queued task error = %v, want %v", err, ErrTaskAbandoned)
	}
	if pool.IsRunning() {
		t.Error("pool still running after ShutdownGlobalPool()")
	}
}

func TestNewLoggerContext_OnPool(t *testing.T) {
	pool := NewWorkerPool("log", &PoolConfig{Logger: core.NewNoOpLogger()})
	pool.Start(2)
	defer pool.Stop(true)

	var delivered atomic.Int32
	logs, err := NewLoggerContext(LogOptions{Pool: pool})
	if err != nil {
		t.Fatalf("NewLoggerContext() error = %v", err)
	}
	logs.RegisterHook("count", func(Record, *string) { delivered.Add(1) })

	for i := 0; i < 5; i++ {
		logs.Info("record {}", i)
	}
	if err := logs.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if logpipe.Enabled && delivered.Load() != 5 {
		t.Errorf("delivered = %d, want 5", delivered.Load())
	}
}
