package allocator

import (
	"fmt"
	"io"
	"sort"
	"sync"
)

// HeaderSize is the per-block bookkeeping overhead charged against the arena.
const HeaderSize = 24

// DefaultCapacity is the arena size used by the simulator (1 MiB).
const DefaultCapacity = 1024 * 1024

// Pointer addresses the first payload byte of an allocated block.
type Pointer int

// block is one address-ordered partition of the arena; blocks[i+1] is the
// successor of blocks[i].
type block struct {
	offset int
	size   int
	free   bool
}

func (b *block) payload() Pointer {
	return Pointer(b.offset + HeaderSize)
}

// Heap is a first-fit free-list allocator over a fixed arena.
type Heap struct {
	capacity int
	blocks   []*block
	mu       sync.Mutex
}

// Stats is a usage snapshot of the heap.
type Stats struct {
	Total      int `json:"total" yaml:"total"`
	Free       int `json:"free" yaml:"free"`
	FreeBlocks int `json:"freeBlocks" yaml:"freeBlocks"`
}

// WriteTo writes the three line heap statistics report.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w, "Total heap size: %d\nFree space: %d\nFragmented blocks: %d\n", s.Total, s.Free, s.FreeBlocks)
	return int64(n), err
}

// Init carves a single free block spanning the whole arena.
func (h *Heap) Init(capacity int) error {
	if capacity <= HeaderSize {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.capacity = capacity
	h.blocks = []*block{{offset: 0, size: capacity - HeaderSize, free: true}}
	return nil
}

// Capacity returns the arena size.
func (h *Heap) Capacity() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.capacity
}

// Allocate returns the payload pointer of the first free block large enough
// for size.  The block is split when the remainder exceeds HeaderSize.
func (h *Heap) Allocate(size int) (Pointer, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.blocks == nil {
		return 0, ErrNotInitialised
	}
	for i, current := range h.blocks {
		if !current.free || current.size < size {
			continue
		}
		if current.size > size+HeaderSize {
			remainder := &block{
				offset: current.offset + HeaderSize + size,
				size:   current.size - size - HeaderSize,
				free:   true,
			}
			current.size = size
			h.blocks = append(h.blocks, nil)
			copy(h.blocks[i+2:], h.blocks[i+1:])
			h.blocks[i+1] = remainder
		}
		current.free = false
		return current.payload(), nil
	}
	return 0, fmt.Errorf("%w: requested %d bytes", ErrOutOfMemory, size)
}

// Free releases the block addressed by p and merges it with its immediate
// successor when that one is free.  A free predecessor is left alone.
func (h *Heap) Free(p Pointer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.blocks == nil {
		return ErrNotInitialised
	}
	i := h.indexOf(p)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPointer, p)
	}
	current := h.blocks[i]
	if current.free {
		return fmt.Errorf("%w: %d", ErrDoubleFree, p)
	}
	current.free = true
	if i+1 < len(h.blocks) && h.blocks[i+1].free {
		next := h.blocks[i+1]
		current.size += next.size + HeaderSize
		h.blocks = append(h.blocks[:i+1], h.blocks[i+2:]...)
	}
	return nil
}

// Stats returns the current usage snapshot.  Free counts the arena bytes
// covered by free blocks, headers included, less the header of the initial
// block: a fresh arena reports its capacity minus one header and an arena
// without free blocks reports zero.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	ret := Stats{Total: h.capacity}
	for _, b := range h.blocks {
		if b.free {
			ret.Free += b.size + HeaderSize
			ret.FreeBlocks++
		}
	}
	if ret.FreeBlocks > 0 {
		ret.Free -= HeaderSize
	}
	return ret
}

func (h *Heap) indexOf(p Pointer) int {
	offset := int(p) - HeaderSize
	i := sort.Search(len(h.blocks), func(i int) bool {
		return h.blocks[i].offset >= offset
	})
	if i < len(h.blocks) && h.blocks[i].offset == offset {
		return i
	}
	return -1
}

// New creates an uninitialised heap; call Init before use.
func New() *Heap {
	return &Heap{}
}
