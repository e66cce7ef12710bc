package allocator

import "errors"

var (
	// ErrOutOfMemory is returned when no free block can satisfy a request.
	ErrOutOfMemory = errors.New("allocator: out of memory")

	// ErrInvalidSize is returned for non-positive allocation requests.
	ErrInvalidSize = errors.New("allocator: invalid size")

	// ErrInvalidCapacity is returned when the arena cannot hold a single
	// block header.
	ErrInvalidCapacity = errors.New("allocator: invalid capacity")

	// ErrInvalidPointer is returned when a pointer does not address the
	// payload of any block.
	ErrInvalidPointer = errors.New("allocator: invalid pointer")

	// ErrDoubleFree is returned when the block is already free.
	ErrDoubleFree = errors.New("allocator: double free")

	// ErrNotInitialised is returned when the heap is used before Init.
	ErrNotInitialised = errors.New("allocator: heap not initialised")
)
