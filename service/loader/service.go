package loader

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/policy"
	"github.com/viant/schedsim/progress"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/program"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/service/queue"
	"github.com/viant/schedsim/service/timer"
	"github.com/viant/schedsim/tracing"
)

// Service admits processes described by a simulation
type Service struct {
	barrier    *timer.Barrier
	queue      queue.Queue[model.Process]
	tracker    *progress.Tracker
	policy     policy.Policy
	programs   *program.Service
	processDAO dao.Service[int, model.Process]
	publisher  *event.Publisher[event.Scheduling]
	runID      string

	participant *timer.Participant
	done        chan struct{}
	err         error
	mu          sync.Mutex

	ctx       context.Context
	arrivals  []*arrival
	next      int
	lastTick  uint64
	admitErr  error
	admission sync.Mutex
}

// arrival is a loaded process waiting for its start tick
type arrival struct {
	process   *model.Process
	startTick uint64
	loaded    bool
}

// Start loads every program, registers the loader with the barrier and
// admits the processes due at the current tick before returning.  Later
// arrivals are admitted when their tick completes, ahead of any participant
// acting in that tick.  A load failure is reported by Wait.
func (s *Service) Start(ctx context.Context, descriptors []*model.Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.participant != nil {
		return fmt.Errorf("loader already started")
	}
	s.ctx = ctx
	s.participant = s.barrier.Register()
	err := s.prepare(ctx, descriptors)
	tick := s.barrier.Current()
	if err == nil {
		s.barrier.OnTick(s.admitDue)
		s.admitDue(tick)
	}
	go func() {
		defer close(s.done)
		if err == nil {
			err = s.run(tick)
		} else {
			s.leave()
		}
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()
	return nil
}

// Wait blocks until the loader finished and returns its error
func (s *Service) Wait() error {
	<-s.done
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Service) prepare(ctx context.Context, descriptors []*model.Descriptor) error {
	arrivals := make([]*arrival, 0, len(descriptors))
	for i, descriptor := range descriptors {
		process, err := s.load(ctx, i+1, descriptor)
		if err != nil {
			return err
		}
		arrivals = append(arrivals, &arrival{process: process, startTick: descriptor.StartTick})
	}
	s.admission.Lock()
	s.arrivals = arrivals
	s.admission.Unlock()
	return nil
}

// run keeps the loader in lockstep until the last arrival was admitted and
// one more tick passed.
func (s *Service) run(tick uint64) error {
	defer s.leave()
	for {
		finished, err := s.admitted(tick)
		if err != nil || finished {
			return err
		}
		if tick, err = s.barrier.Advance(s.participant); err != nil {
			return fmt.Errorf("loader: %w", err)
		}
	}
}

func (s *Service) leave() {
	s.tracker.MarkDone()
	s.barrier.Unregister(s.participant)
}

func (s *Service) admitted(tick uint64) (bool, error) {
	s.admission.Lock()
	defer s.admission.Unlock()
	if s.admitErr != nil {
		return false, s.admitErr
	}
	if s.next < len(s.arrivals) {
		return false, nil
	}
	return s.next == 0 || tick > s.lastTick, nil
}

func (s *Service) load(ctx context.Context, pid int, descriptor *model.Descriptor) (*model.Process, error) {
	aProgram, err := s.programs.Load(ctx, descriptor.Path)
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", pid, err)
	}
	ret := model.NewProcess(pid, descriptor.Path, aProgram)
	if s.policy.ConfiguredPriority() && descriptor.Priority != nil {
		ret.Priority = *descriptor.Priority
	}
	return ret, nil
}

// admitDue enqueues at most one due arrival per tick.  It runs under the
// barrier lock and must not call back into the barrier.  A full queue leaves
// the arrival pending for the next tick.
func (s *Service) admitDue(tick uint64) {
	s.admission.Lock()
	defer s.admission.Unlock()
	if s.admitErr != nil || s.next >= len(s.arrivals) {
		return
	}
	if s.next > 0 && tick <= s.lastTick {
		return
	}
	candidate := s.arrivals[s.next]
	if tick < candidate.startTick {
		return
	}
	process := candidate.process
	if !candidate.loaded {
		s.arrive(process, tick)
		candidate.loaded = true
	}
	if err := s.queue.Enqueue(process); err != nil {
		if errors.Is(err, queue.ErrQueueFull) {
			log.Printf("loader: process %d deferred at tick %d: %v", process.PID, tick, err)
			return
		}
		tracing.EndSpan(process.Span, err)
		s.admitErr = fmt.Errorf("process %d: %w", process.PID, err)
		return
	}
	s.lastTick = tick
	s.next++
}

// arrive records the arrival.  The loader does not touch the process once it
// is enqueued.
func (s *Service) arrive(process *model.Process, tick uint64) {
	process.ArrivedAt = tick
	process.SetState(model.StateReady)
	_, span := tracing.StartSpan(s.ctx, "process.run "+process.Path, "INTERNAL")
	span.WithTick("tick.admitted", tick).WithAttributes(map[string]string{
		"process.pid":      strconv.Itoa(process.PID),
		"process.priority": strconv.Itoa(process.Priority),
	})
	process.Span = span
	if s.processDAO != nil {
		if err := s.processDAO.Save(s.ctx, process); err != nil {
			log.Printf("loader: failed to save process %d: %v", process.PID, err)
		}
	}
	event.Emit(s.ctx, s.publisher, s.runID, event.Scheduling{
		Kind: event.KindLoaded, Tick: tick, CPU: -1, PID: process.PID, Priority: process.Priority, Path: process.Path,
	})
}

// New creates a loader
func New(options ...Option) (*Service, error) {
	s := &Service{policy: policy.Priority{}, done: make(chan struct{})}
	for _, opt := range options {
		opt(s)
	}
	if s.barrier == nil {
		return nil, fmt.Errorf("barrier is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("ready queue is required")
	}
	if s.tracker == nil {
		return nil, fmt.Errorf("termination tracker is required")
	}
	if s.programs == nil {
		return nil, fmt.Errorf("program loader is required")
	}
	return s, nil
}
