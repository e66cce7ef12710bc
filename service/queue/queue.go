// Package queue provides the bounded ready queues used by the scheduler.
// Every implementation returns the held item with the numerically lowest
// priority; among equal priorities the earliest inserted item wins.
package queue

import "errors"

var (
	// ErrQueueFull is returned when an enqueue would exceed the capacity.
	ErrQueueFull = errors.New("queue: full")

	// ErrInvalidArgument is returned for a nil queue or a nil item.
	ErrInvalidArgument = errors.New("queue: invalid argument")
)

// Queue represents a bounded priority ready queue.
type Queue[T any] interface {
	// IsEmpty reports whether the queue holds no items
	IsEmpty() bool

	// Enqueue appends t; a rejected enqueue leaves the queue unchanged
	Enqueue(t *T) error

	// Dequeue removes the lowest priority value, earliest inserted item
	Dequeue() (*T, bool)

	// Size returns the number of held items
	Size() int

	// Cap returns the capacity
	Cap() int
}

// DefaultCapacity mirrors the fixed queue size of the simulated kernel.
const DefaultCapacity = 10
