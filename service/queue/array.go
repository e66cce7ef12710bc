package queue

import "sync"

// Array is an insertion-ordered slice scanned linearly on every dequeue.
type Array[T any] struct {
	items      []*T
	capacity   int
	priorityOf func(*T) int
	mu         sync.Mutex
}

// IsEmpty returns true when the queue holds nothing; a nil queue is empty.
func (q *Array[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Size returns the number of held items
func (q *Array[T]) Size() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Cap returns the capacity
func (q *Array[T]) Cap() int {
	if q == nil {
		return 0
	}
	return q.capacity
}

// Enqueue appends t at the tail.
func (q *Array[T]) Enqueue(t *T) error {
	if q == nil || t == nil {
		return ErrInvalidArgument
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, t)
	return nil
}

// Dequeue removes the item with the smallest priority.  The comparison is
// strict so the first occurrence of the minimum wins; the rest keep order.
func (q *Array[T]) Dequeue() (*T, bool) {
	if q == nil {
		return nil, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	selected := 0
	for i := 1; i < len(q.items); i++ {
		if q.priorityOf(q.items[i]) < q.priorityOf(q.items[selected]) {
			selected = i
		}
	}
	ret := q.items[selected]
	copy(q.items[selected:], q.items[selected+1:])
	q.items[len(q.items)-1] = nil
	q.items = q.items[:len(q.items)-1]
	return ret, true
}

// NewArray creates an array queue; priorityOf extracts the priority value.
// A nil priorityOf gives every item the same priority, i.e. FIFO order.
func NewArray[T any](capacity int, priorityOf func(*T) int) *Array[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if priorityOf == nil {
		priorityOf = func(*T) int { return 0 }
	}
	return &Array[T]{
		items:      make([]*T, 0, capacity),
		capacity:   capacity,
		priorityOf: priorityOf,
	}
}

var _ Queue[any] = (*Array[any])(nil)
