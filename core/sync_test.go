package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WaitIdle Tests
// =============================================================================

// TestWorkerPool_WaitIdleContext tests WaitIdleContext on a busy pool
// Given: a pool with 5 submitted tasks
// When: WaitIdleContext is called with a timeout context
// Then: all tasks complete and WaitIdleContext returns nil with counter = 5
func TestWorkerPool_WaitIdleContext(t *testing.T) {
	// Arrange
	p, _, _ := newTestPool(t, PoolConfig{})
	p.Start(2)
	var counter atomic.Int32

	// Act
	for i := 0; i < 5; i++ {
		p.Submit(func() {
			time.Sleep(10 * time.Millisecond)
			counter.Add(1)
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := p.WaitIdleContext(ctx)

	// Assert
	if err != nil {
		t.Fatalf("WaitIdleContext() error = %v", err)
	}
	if got := counter.Load(); got != 5 {
		t.Errorf("counter = %d, want 5", got)
	}
}

// TestWorkerPool_WaitIdleContextCancelled tests cancellation while tasks are pending
// Given: a stopped pool holding one queued task
// When: WaitIdleContext is called with a short timeout
// Then: it returns context.DeadlineExceeded
func TestWorkerPool_WaitIdleContextCancelled(t *testing.T) {
	p, _, _ := newTestPool(t, PoolConfig{})
	p.Submit(func() {})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.WaitIdleContext(ctx)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitIdleContext() = %v, want %v", err, context.DeadlineExceeded)
	}
}

// TestWorkerPool_WaitIdleAfterRestart tests idleness tracking across a restart
// Given: a pool that goes idle, is stopped and is restarted
// When: new tasks are submitted and WaitIdle is called
// Then: WaitIdle blocks until the new tasks are done
func TestWorkerPool_WaitIdleAfterRestart(t *testing.T) {
	p, _, _ := newTestPool(t, PoolConfig{})
	p.Start(1)
	p.Submit(func() {})
	p.WaitIdle(time.Second)
	p.Stop(true)

	p.Start(2)
	var counter atomic.Int32
	for i := 0; i < 3; i++ {
		p.Submit(func() {
			time.Sleep(5 * time.Millisecond)
			counter.Add(1)
		})
	}
	p.WaitIdle(0)

	if got := counter.Load(); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}
}
