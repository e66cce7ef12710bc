// Package progress provides a lightweight tracker that keeps the termination
// counters for a single simulation run.  The tracker instance lives in the
// run context so every component that receives the context can report a
// retired process without a global registry.

package progress

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrOverflow is returned when more processes finish than were declared
var ErrOverflow = errors.New("finished count exceeds total")

// Progress is a read-only copy of the tracker counters
type Progress struct {
	Total    int  `json:"total"`
	Finished int  `json:"finished"`
	Done     bool `json:"done"`
}

// Tracker counts retired processes and carries the loader done flag.  It is
// safe for concurrent use.
type Tracker struct {
	total    int
	finished int
	done     atomic.Bool
	mu       sync.Mutex
	onChange func(Progress)
}

// Finish records one retired process and returns the updated count.
func (t *Tracker) Finish() (int, error) {
	t.mu.Lock()
	if t.finished >= t.total {
		t.mu.Unlock()
		return t.finished, ErrOverflow
	}
	t.finished++
	finished := t.finished
	snapshot := t.snapshot()
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return finished, nil
}

// Finished returns the number of retired processes
func (t *Tracker) Finished() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Total returns the number of processes declared by the configuration
func (t *Tracker) Total() int {
	return t.total
}

// AllFinished reports whether every declared process has retired
func (t *Tracker) AllFinished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished == t.total
}

// MarkDone records that the loader has admitted every process.  Once set the
// flag never clears.
func (t *Tracker) MarkDone() {
	if t.done.Swap(true) {
		return
	}
	t.mu.Lock()
	snapshot := t.snapshot()
	cb := t.onChange
	t.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// IsDone reports whether the loader has finished admitting processes
func (t *Tracker) IsDone() bool {
	return t.done.Load()
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (t *Tracker) Snapshot() Progress {
	if t == nil {
		return Progress{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) snapshot() Progress {
	return Progress{Total: t.total, Finished: t.finished, Done: t.done.Load()}
}

// OnChange registers a callback invoked outside the critical section after
// every Finish and the first MarkDone.  Passing nil disables the callback.
func (t *Tracker) OnChange(cb func(Progress)) {
	t.mu.Lock()
	t.onChange = cb
	t.mu.Unlock()
}

// NewTracker creates a tracker expecting total processes
func NewTracker(total int) *Tracker {
	if total < 0 {
		total = 0
	}
	return &Tracker{total: total}
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds tracker in a derived context
func WithTracker(ctx context.Context, tracker *Tracker) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.  The second return value is
// false when the context carries no tracker.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Tracker)
	return tr, ok && tr != nil
}
