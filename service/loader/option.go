package loader

import (
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/policy"
	"github.com/viant/schedsim/progress"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/program"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/service/queue"
	"github.com/viant/schedsim/service/timer"
)

// Option customises the loader
type Option func(*Service)

// WithBarrier sets the virtual clock
func WithBarrier(barrier *timer.Barrier) Option {
	return func(s *Service) {
		s.barrier = barrier
	}
}

// WithQueue sets the ready queue processes are admitted into
func WithQueue(queue queue.Queue[model.Process]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithTracker sets the termination tracker
func WithTracker(tracker *progress.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithPolicy sets the scheduling policy deciding the priority source
func WithPolicy(policy policy.Policy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithPrograms sets the program loader
func WithPrograms(programs *program.Service) Option {
	return func(s *Service) {
		s.programs = programs
	}
}

// WithProcessDAO sets the process table admitted processes are saved to
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
