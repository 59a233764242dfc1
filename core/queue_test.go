package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestQueue_FIFO verifies insertion order is preserved
// Given: An unbounded queue with 5 elements
// When: Elements are popped
// Then: They come out oldest first and the queue ends empty
func TestQueue_FIFO(t *testing.T) {
	// Arrange
	q := NewQueue[int](0, OverflowBlock)
	for i := 1; i <= 5; i++ {
		if _, _, err := q.Push(i); err != nil {
			t.Fatalf("Push(%d) error = %v", i, err)
		}
	}

	// Act
	var got []int
	for {
		v, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, v)
	}

	// Assert
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5}, got); diff != "" {
		t.Errorf("pop order mismatch (-want +got):\n%s", diff)
	}
	if !q.IsEmpty() {
		t.Errorf("IsEmpty() = false, want true")
	}
}

// TestQueue_PeekDoesNotRemove verifies Peek leaves the front in place
func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewQueue[string](0, OverflowBlock)
	if _, ok := q.Peek(); ok {
		t.Fatal("Peek() on empty queue ok = true, want false")
	}
	q.Push("a")
	q.Push("b")

	v, ok := q.Peek()

	if !ok || v != "a" {
		t.Errorf("Peek() = (%q, %v), want (a, true)", v, ok)
	}
	if q.Len() != 2 {
		t.Errorf("Len() = %d, want 2", q.Len())
	}
}

// TestQueue_OverflowPolicies verifies each policy at capacity
// Given: A queue of capacity 2 holding 1 and 2
// When: 3 is pushed
// Then: drop_oldest evicts 1, reject returns ErrQueueFull, block reports Full
func TestQueue_OverflowPolicies(t *testing.T) {
	tests := []struct {
		name        string
		policy      OverflowPolicy
		wantErr     error
		wantDropped bool
		wantItems   []int
	}{
		{name: "drop_oldest", policy: OverflowDropOldest, wantDropped: true, wantItems: []int{2, 3}},
		{name: "reject", policy: OverflowReject, wantErr: ErrQueueFull, wantItems: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue[int](2, tt.policy)
			q.Push(1)
			q.Push(2)
			if !q.Full() {
				t.Fatal("Full() = false, want true")
			}

			evicted, dropped, err := q.Push(3)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Push error = %v, want %v", err, tt.wantErr)
			}
			if dropped != tt.wantDropped {
				t.Errorf("dropped = %v, want %v", dropped, tt.wantDropped)
			}
			if dropped && evicted != 1 {
				t.Errorf("evicted = %d, want 1", evicted)
			}
			if diff := cmp.Diff(tt.wantItems, q.DrainAll()); diff != "" {
				t.Errorf("contents mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestQueue_MoveTo verifies a transfer preserves order and empties the source
func TestQueue_MoveTo(t *testing.T) {
	src := NewQueue[int](0, OverflowBlock)
	dst := NewQueue[int](0, OverflowBlock)
	dst.Push(0)
	for i := 1; i <= 3; i++ {
		src.Push(i)
	}

	n := src.MoveTo(dst)

	if n != 3 {
		t.Errorf("MoveTo = %d, want 3", n)
	}
	if !src.IsEmpty() {
		t.Errorf("source Len() = %d, want 0", src.Len())
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, dst.DrainAll()); diff != "" {
		t.Errorf("destination mismatch (-want +got):\n%s", diff)
	}
}

// TestParseOverflowPolicy verifies config strings round-trip through String
func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{OverflowBlock, OverflowDropOldest, OverflowReject} {
		got, err := ParseOverflowPolicy(p.String())
		if err != nil {
			t.Fatalf("ParseOverflowPolicy(%q) error = %v", p.String(), err)
		}
		if got != p {
			t.Errorf("ParseOverflowPolicy(%q) = %v, want %v", p.String(), got, p)
		}
	}
	if got, _ := ParseOverflowPolicy(""); got != OverflowBlock {
		t.Errorf("ParseOverflowPolicy(\"\") = %v, want block", got)
	}
	if _, err := ParseOverflowPolicy("sometimes"); err == nil {
		t.Error("ParseOverflowPolicy(\"sometimes\") error = nil, want error")
	}
}
