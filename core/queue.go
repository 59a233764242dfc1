package core

import (
	"fmt"
	"strings"

	"github.com/eapache/queue"
)

// OverflowPolicy decides what a bounded queue does when it is full.
type OverflowPolicy int

const (
	// OverflowBlock makes the producer wait until there is space.
	OverflowBlock OverflowPolicy = iota

	// OverflowDropOldest evicts the front element to make room.
	OverflowDropOldest

	// OverflowReject refuses the new element.
	OverflowReject
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowBlock:
		return "block"
	case OverflowDropOldest:
		return "drop_oldest"
	case OverflowReject:
		return "reject"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy maps a config string onto an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return OverflowBlock, nil
	case "drop_oldest", "drop-oldest":
		return OverflowDropOldest, nil
	case "reject":
		return OverflowReject, nil
	default:
		return OverflowBlock, fmt.Errorf("unknown overflow policy %q", s)
	}
}

// Queue is a FIFO ring buffer with an optional capacity bound.
// It is not safe for concurrent use; owners guard it with their own lock so
// that queue state and owner state change atomically together.
type Queue[T any] struct {
	items    *queue.Queue
	capacity int
	policy   OverflowPolicy
}

// NewQueue creates a queue. capacity <= 0 means unbounded.
func NewQueue[T any](capacity int, policy OverflowPolicy) *Queue[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue[T]{
		items:    queue.New(),
		capacity: capacity,
		policy:   policy,
	}
}

// Capacity returns the bound, 0 when unbounded.
func (q *Queue[T]) Capacity() int { return q.capacity }

// Policy returns the overflow policy.
func (q *Queue[T]) Policy() OverflowPolicy { return q.policy }

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int { return q.items.Length() }

// IsEmpty reports whether the queue holds nothing.
func (q *Queue[T]) IsEmpty() bool { return q.items.Length() == 0 }

// Full reports whether a bounded queue has reached capacity.
func (q *Queue[T]) Full() bool {
	return q.capacity > 0 && q.items.Length() >= q.capacity
}

// Push appends v. When the queue is full the policy applies:
// OverflowDropOldest returns the evicted front element with dropped=true,
// OverflowReject returns ErrQueueFull and leaves the queue unchanged.
// OverflowBlock never fails here; callers wait on Full() before pushing.
func (q *Queue[T]) Push(v T) (evicted T, dropped bool, err error) {
	if q.Full() {
		switch q.policy {
		case OverflowDropOldest:
			evicted = q.items.Remove().(T)
			dropped = true
		case OverflowReject:
			return evicted, false, ErrQueueFull
		}
	}
	q.items.Add(v)
	return evicted, dropped, nil
}

// Pop removes and returns the front element.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.items.Length() == 0 {
		return zero, false
	}
	return q.items.Remove().(T), true
}

// Peek returns the front element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.items.Length() == 0 {
		return zero, false
	}
	return q.items.Peek().(T), true
}

// DrainAll removes every element, oldest first.
func (q *Queue[T]) DrainAll() []T {
	n := q.items.Length()
	if n == 0 {
		return nil
	}
	out := make([]T, 0, n)
	for q.items.Length() > 0 {
		out = append(out, q.items.Remove().(T))
	}
	return out
}

// MoveTo appends every element of q onto dst in order and empties q.
// dst's capacity is ignored for moved elements.
func (q *Queue[T]) MoveTo(dst *Queue[T]) int {
	n := 0
	for q.items.Length() > 0 {
		dst.items.Add(q.items.Remove())
		n++
	}
	return n
}
