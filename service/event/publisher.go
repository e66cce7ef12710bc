package event

import (
	"context"
	"sync"

	"github.com/viant/schedsim/internal/clock"
	"github.com/viant/schedsim/service/messaging"
)

// Publisher publishes events of one payload type and counts the ones not yet
// handled so that Flush can wait for them.
type Publisher[T any] struct {
	queue   messaging.Queue[Event[T]]
	pending int
	mu      sync.Mutex
	cond    *sync.Cond
}

// Publish enqueues event
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = clock.Now()
	}
	p.mu.Lock()
	p.pending++
	p.mu.Unlock()
	if err := p.queue.Publish(ctx, event); err != nil {
		p.done()
		return err
	}
	return nil
}

// Consume returns the next event
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

// Flush blocks until every published event has been handled
func (p *Publisher[T]) Flush() {
	p.mu.Lock()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

func (p *Publisher[T]) done() {
	p.mu.Lock()
	if p.pending > 0 {
		p.pending--
	}
	if p.pending == 0 {
		p.cond.Broadcast()
	}
	p.mu.Unlock()
}

// NewPublisher creates a publisher over queue
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	ret := &Publisher[T]{queue: queue}
	ret.cond = sync.NewCond(&ret.mu)
	return ret
}
