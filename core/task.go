package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Task is the unit of work (Closure)
type Task func()

var (
	// ErrTaskAbandoned resolves handles of tasks discarded by Stop or Close.
	ErrTaskAbandoned = errors.New("task abandoned: pool stopped before execution")

	// ErrTaskDropped resolves handles of tasks evicted by OverflowDropOldest.
	ErrTaskDropped = errors.New("task dropped: queue overflow")

	// ErrQueueFull resolves handles of tasks refused by OverflowReject.
	ErrQueueFull = errors.New("queue full")

	// ErrNilTask resolves handles of nil submissions.
	ErrNilTask = errors.New("nil task")
)

// PanicError carries a panic recovered from a task body.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// Handle is the submitter's side of a task's completion signal.
// It is resolved exactly once, by the worker that ran the task or by the pool
// when the task is discarded.
type Handle struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

func resolvedHandle(err error) *Handle {
	h := newHandle()
	h.resolve(err)
	return h
}

func (h *Handle) resolve(err error) {
	h.once.Do(func() {
		h.err = err
		close(h.done)
	})
}

// Done is closed once the task has finished or been discarded.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task is resolved and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// WaitContext is Wait bounded by ctx.
func (h *Handle) WaitContext(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the task's error, or nil while it is still pending.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// taskItem is what the pool's queue owns between Submit and dequeue.
type taskItem struct {
	fn     func() error
	handle *Handle
}
