package processor

import (
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/progress"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/service/executor"
	"github.com/viant/schedsim/service/queue"
	"github.com/viant/schedsim/service/timer"
)

// Option customises the processor service
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithCPUs sets the number of CPU workers
func WithCPUs(count int) Option {
	return func(s *Service) {
		s.config.CPUs = count
	}
}

// WithTimeSlot sets the quantum length in ticks
func WithTimeSlot(timeSlot int) Option {
	return func(s *Service) {
		s.config.TimeSlot = timeSlot
	}
}

// WithBarrier sets the virtual clock
func WithBarrier(barrier *timer.Barrier) Option {
	return func(s *Service) {
		s.barrier = barrier
	}
}

// WithQueue sets the shared ready queue
func WithQueue(queue queue.Queue[model.Process]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTracker sets the termination tracker; when unset the one carried by
// the Start context is used
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithExecutor sets the instruction executor
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithProcessDAO sets the process table updated on every state change
func WithProcessDAO(processDAO dao.Service[int, model.Process]) Option {
	return func(s *Service) {
		s.processDAO = processDAO
	}
}

// WithPublisher sets the event publisher
func WithPublisher(publisher *event.Publisher[event.Scheduling]) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithRunID sets the run identifier stamped on published events
func WithRunID(runID string) Option {
	return func(s *Service) {
		s.runID = runID
	}
}
