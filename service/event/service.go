// Package event is the simulation journal.  Components publish typed events
// into in-memory queues; one listener per payload type consumes them in order.
package event

import (
	"reflect"
	"sync"

	"github.com/viant/schedsim/service/messaging"
	"github.com/viant/schedsim/service/messaging/memory"
)

type flusher interface {
	Flush()
}

type stopper interface {
	Stop()
}

// Service keeps one publisher and at most one listener per payload type
type Service struct {
	typedPublishers   map[reflect.Type]any
	typedListener     map[reflect.Type]any
	mux               *sync.RWMutex
	memNewQueueConfig func(name string) memory.Config
}

// Flush waits until every published event has been handled
func (s *Service) Flush() {
	s.mux.RLock()
	publishers := make([]flusher, 0, len(s.typedPublishers))
	for _, p := range s.typedPublishers {
		publishers = append(publishers, p.(flusher))
	}
	s.mux.RUnlock()
	for _, p := range publishers {
		p.Flush()
	}
}

// Close stops every listener
func (s *Service) Close() {
	s.mux.Lock()
	listeners := s.typedListener
	s.typedListener = make(map[reflect.Type]any)
	s.mux.Unlock()
	for _, l := range listeners {
		l.(stopper).Stop()
	}
}

// New creates an event service backed by memory queues
func New(opts ...Option) *Service {
	ret := &Service{
		typedPublishers: make(map[reflect.Type]any),
		typedListener:   make(map[reflect.Type]any),
		mux:             &sync.RWMutex{},
		memNewQueueConfig: func(name string) memory.Config {
			return memory.DefaultConfig()
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// QueueOf creates a queue for T
func QueueOf[T any](s *Service, name string) messaging.Queue[T] {
	return memory.NewQueue[T](s.memNewQueueConfig(name))
}

func keyOf[T any]() reflect.Type {
	rType := reflect.TypeOf((*T)(nil)).Elem()
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	return rType
}

// SetListenerOf replaces the listener for T and starts it
func SetListenerOf[T any](s *Service, handler func(*Event[T])) {
	key := keyOf[T]()
	publisher := PublisherOf[T](s)
	listener := NewListener[T](publisher, handler)
	s.mux.Lock()
	previous, ok := s.typedListener[key]
	s.typedListener[key] = listener
	s.mux.Unlock()
	if ok {
		previous.(*Listener[T]).Stop()
	}
	listener.Start()
}

// PublisherOf returns a publisher for the provided type
func PublisherOf[T any](s *Service) *Publisher[T] {
	key := keyOf[T]()
	s.mux.Lock()
	defer s.mux.Unlock()
	if ret, ok := s.typedPublishers[key]; ok {
		return ret.(*Publisher[T])
	}
	publisher := NewPublisher[T](QueueOf[Event[T]](s, key.String()))
	s.typedPublishers[key] = publisher
	return publisher
}
