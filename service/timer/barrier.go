package timer

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrStopped is returned by Advance once the barrier has been stopped.
	ErrStopped = errors.New("timer: stopped")

	// ErrUnknownParticipant is returned for nil or unregistered handles.
	ErrUnknownParticipant = errors.New("timer: unknown participant")
)

// Participant is a handle returned by Register.
type Participant struct {
	id      int
	arrived bool
	barrier *Barrier
}

// ID returns the participant id
func (p *Participant) ID() int {
	return p.id
}

// Barrier is the tick counter with its arrival bookkeeping.
type Barrier struct {
	tick         uint64
	nextID       int
	participants map[int]*Participant
	arrived      int
	started      bool
	stopped      bool
	listeners    []func(tick uint64)
	mu           sync.Mutex
	cond         *sync.Cond
	cancel       context.CancelFunc
}

// Register adds a participant that must advance every tick from now on.
func (b *Barrier) Register() *Participant {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := &Participant{id: b.nextID, barrier: b}
	b.participants[p.id] = p
	return p
}

// Unregister removes p.  When every remaining participant has already
// arrived the current tick completes.  Unregistering twice is a no-op.
func (b *Barrier) Unregister(p *Participant) {
	if p == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.participants[p.id]; !ok {
		return
	}
	delete(b.participants, p.id)
	if p.arrived {
		p.arrived = false
		b.arrived--
	}
	if len(b.participants) > 0 && b.arrived == len(b.participants) {
		b.completeTick()
	}
}

// Advance blocks until every registered participant has called Advance for
// the current tick and returns the new tick.
func (b *Barrier) Advance(p *Participant) (uint64, error) {
	if p == nil {
		return 0, ErrUnknownParticipant
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return b.tick, ErrStopped
	}
	if _, ok := b.participants[p.id]; !ok {
		return b.tick, ErrUnknownParticipant
	}
	if p.arrived {
		panic("timer: participant advanced twice within one tick")
	}
	p.arrived = true
	b.arrived++
	tick := b.tick
	if b.arrived == len(b.participants) {
		b.completeTick()
		return b.tick, nil
	}
	for b.tick == tick && !b.stopped {
		b.cond.Wait()
	}
	if b.tick == tick {
		return b.tick, ErrStopped
	}
	return b.tick, nil
}

// completeTick must be called with mu held.
func (b *Barrier) completeTick() {
	for _, p := range b.participants {
		p.arrived = false
	}
	b.arrived = 0
	b.tick++
	for _, listener := range b.listeners {
		listener(b.tick)
	}
	b.cond.Broadcast()
}

// OnTick adds a listener called after every completed tick, before the
// participants blocked in Advance are released.  Work a listener does for
// tick T is therefore visible to every participant acting in tick T.
// Listeners run under the barrier lock and must not call back into it.
func (b *Barrier) OnTick(fn func(tick uint64)) {
	if fn == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}

// Current returns the current tick without blocking.
func (b *Barrier) Current() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tick
}

// Participants returns the number of registered participants
func (b *Barrier) Participants() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.participants)
}

// Start marks the beginning of the simulation.  Cancelling ctx stops the
// barrier and releases every blocked participant with ErrStopped.
func (b *Barrier) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	ctx, b.cancel = context.WithCancel(ctx)
	listeners := b.listeners
	tick := b.tick
	b.mu.Unlock()
	for _, listener := range listeners {
		listener(tick)
	}
	go func() {
		<-ctx.Done()
		b.Stop()
	}()
}

// Stop ends the simulation; pending and future Advance calls fail.
func (b *Barrier) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
	b.cond.Broadcast()
}

// Stopped reports whether Stop was called
func (b *Barrier) Stopped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stopped
}

// New creates a barrier at tick 0
func New(options ...Option) *Barrier {
	ret := &Barrier{participants: map[int]*Participant{}}
	ret.cond = sync.NewCond(&ret.mu)
	for _, option := range options {
		option(ret)
	}
	return ret
}
