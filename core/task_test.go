package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestHandle_ResolveOnce verifies only the first resolution sticks
// Given: A pending handle
// When: It is resolved twice with different errors
// Then: Err and Wait report the first error and Done is closed
func TestHandle_ResolveOnce(t *testing.T) {
	h := newHandle()
	if err := h.Err(); err != nil {
		t.Fatalf("Err() on pending handle = %v, want nil", err)
	}

	h.resolve(ErrTaskAbandoned)
	h.resolve(ErrTaskDropped)

	select {
	case <-h.Done():
	default:
		t.Fatal("Done() not closed after resolve")
	}
	if err := h.Wait(); !errors.Is(err, ErrTaskAbandoned) {
		t.Errorf("Wait() = %v, want %v", err, ErrTaskAbandoned)
	}
}

// TestHandle_WaitContext verifies a pending handle honours cancellation
func TestHandle_WaitContext(t *testing.T) {
	h := newHandle()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := h.WaitContext(ctx)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitContext() = %v, want %v", err, context.DeadlineExceeded)
	}
}

// TestRunTask_RecoversPanic verifies a panicking body becomes a PanicError
func TestRunTask_RecoversPanic(t *testing.T) {
	err := runTask(func() error { panic("boom") })

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("runTask error = %v, want *PanicError", err)
	}
	if pe.Value != "boom" {
		t.Errorf("PanicError.Value = %v, want boom", pe.Value)
	}
	if len(pe.Stack) == 0 {
		t.Error("PanicError.Stack is empty")
	}
}
