package queue

import "sync"

type entry[T any] struct {
	item     *T
	priority int
	seq      uint64
}

// Banded shards items into one sub-queue per priority band.  A global
// insertion sequence keeps cross-band selection identical to Array: lowest
// priority value first, then earliest insertion.
type Banded[T any] struct {
	bands      [][]entry[T]
	size       int
	capacity   int
	seq        uint64
	priorityOf func(*T) int
	bandOf     func(priority int) int
	mu         sync.Mutex
}

// IsEmpty returns true when no band holds an item
func (q *Banded[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Size returns the number of held items across all bands
func (q *Banded[T]) Size() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the total capacity
func (q *Banded[T]) Cap() int {
	if q == nil {
		return 0
	}
	return q.capacity
}

// Bands returns the number of bands
func (q *Banded[T]) Bands() int {
	if q == nil {
		return 0
	}
	return len(q.bands)
}

// Enqueue appends t to the tail of its band.
func (q *Banded[T]) Enqueue(t *T) error {
	if q == nil || t == nil {
		return ErrInvalidArgument
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size >= q.capacity {
		return ErrQueueFull
	}
	priority := q.priorityOf(t)
	band := q.band(priority)
	q.seq++
	q.bands[band] = append(q.bands[band], entry[T]{item: t, priority: priority, seq: q.seq})
	q.size++
	return nil
}

// Dequeue removes the lowest priority, earliest inserted item of any band.
func (q *Banded[T]) Dequeue() (*T, bool) {
	if q == nil {
		return nil, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return nil, false
	}
	selectedBand, selectedIdx := -1, -1
	var best entry[T]
	for b, band := range q.bands {
		for i, candidate := range band {
			if selectedBand == -1 || candidate.priority < best.priority ||
				(candidate.priority == best.priority && candidate.seq < best.seq) {
				selectedBand, selectedIdx, best = b, i, candidate
			}
		}
	}
	band := q.bands[selectedBand]
	copy(band[selectedIdx:], band[selectedIdx+1:])
	band[len(band)-1] = entry[T]{}
	q.bands[selectedBand] = band[:len(band)-1]
	q.size--
	return best.item, true
}

func (q *Banded[T]) band(priority int) int {
	band := q.bandOf(priority)
	if band < 0 {
		return 0
	}
	if band >= len(q.bands) {
		return len(q.bands) - 1
	}
	return band
}

// NewBanded creates a banded queue with the supplied number of bands;
// bandOf maps a priority to its band and out of range bands are clamped.
// A nil priorityOf places every item in band 0 in FIFO order.
func NewBanded[T any](capacity, bands int, priorityOf func(*T) int, bandOf func(priority int) int) *Banded[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if bands <= 0 {
		bands = 1
	}
	if priorityOf == nil {
		priorityOf = func(*T) int { return 0 }
	}
	if bandOf == nil {
		bandOf = func(priority int) int { return priority }
	}
	return &Banded[T]{
		bands:      make([][]entry[T], bands),
		capacity:   capacity,
		priorityOf: priorityOf,
		bandOf:     bandOf,
	}
}

var _ Queue[any] = (*Banded[any])(nil)
