package event

import (
	"context"
	"errors"
	"log"
)

// Listener consumes events in publish order and hands each to handler
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	stopped   chan struct{}
}

// Stop terminates the listener; events still queued are not handled
func (l *Listener[T]) Stop() {
	l.cancel()
	<-l.stopped
}

// Start consumes events on a new goroutine
func (l *Listener[T]) Start() {
	go func() {
		defer close(l.stopped)
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || l.ctx.Err() != nil {
					return
				}
				log.Printf("error consuming event: %v", err)
				continue
			}
			if event != nil {
				l.handler(event)
			}
			l.publisher.done()
		}
	}()
}

// NewListener creates a listener; call Start to begin consuming
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		stopped:   make(chan struct{}),
	}
}
