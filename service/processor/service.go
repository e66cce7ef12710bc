package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/progress"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/service/executor"
	"github.com/viant/schedsim/service/queue"
	"github.com/viant/schedsim/service/timer"
	"github.com/viant/schedsim/tracing"
)

// Config represents processor configuration
type Config struct {
	// CPUs is the number of CPU workers
	CPUs int
	// TimeSlot is the quantum length in ticks
	TimeSlot int
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{CPUs: 1, TimeSlot: 1}
}

// Service runs the CPU workers
type Service struct {
	config     Config
	barrier    *timer.Barrier
	queue      queue.Queue[model.Process]
	tracker    *progress.Tracker
	executor   executor.Service
	processDAO dao.Service[int, model.Process]
	publisher  *event.Publisher[event.Scheduling]
	runID      string

	workers  []*worker
	workerWg sync.WaitGroup
	mu       sync.Mutex
	err      error
}

// Start registers one barrier participant per CPU and starts the workers.
// All participants are registered before Start returns.
func (s *Service) Start(ctx context.Context) error {
	if s.tracker == nil {
		tracker, ok := progress.FromContext(ctx)
		if !ok {
			return fmt.Errorf("termination tracker is required")
		}
		s.tracker = tracker
	}
	s.mu.Lock()
	if len(s.workers) > 0 {
		s.mu.Unlock()
		return fmt.Errorf("processor already started")
	}
	for i := 0; i < s.config.CPUs; i++ {
		s.workers = append(s.workers, &worker{
			id:          i,
			service:     s,
			participant: s.barrier.Register(),
			state:       StateNoProcess,
		})
	}
	workers := s.workers
	s.mu.Unlock()

	for _, w := range workers {
		s.workerWg.Add(1)
		go w.run(ctx)
	}
	return nil
}

// Wait blocks until every worker stopped and returns the first error any of
// them reported.
func (s *Service) Wait() error {
	s.workerWg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Shutdown stops the clock; workers leave at their next tick boundary.
func (s *Service) Shutdown() {
	s.barrier.Stop()
}

// States returns the current state of every worker, indexed by CPU
func (s *Service) States() []State {
	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()
	ret := make([]State, len(workers))
	for i, w := range workers {
		ret[i] = w.getState()
	}
	return ret
}

func (s *Service) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Service) emit(ctx context.Context, data event.Scheduling) {
	event.Emit(ctx, s.publisher, s.runID, data)
}

func (s *Service) save(ctx context.Context, process *model.Process) {
	if s.processDAO == nil {
		return
	}
	if err := s.processDAO.Save(ctx, process); err != nil {
		log.Printf("failed to save process %d: %v", process.PID, err)
	}
}

// worker is one simulated CPU
type worker struct {
	id          int
	service     *Service
	participant *timer.Participant
	process     *model.Process
	quantum     int
	state       State
	mu          sync.Mutex
}

func (w *worker) setState(state State) {
	w.mu.Lock()
	w.state = state
	w.mu.Unlock()
}

func (w *worker) getState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// run is the per tick scheduling loop
func (w *worker) run(ctx context.Context) {
	s := w.service
	defer s.workerWg.Done()
	defer s.barrier.Unregister(w.participant)

	for {
		switch {
		case w.process == nil:
			w.setState(StateNoProcess)
			w.process = w.dequeue()
			if w.process == nil {
				if s.tracker.Finished() >= s.tracker.Total() {
					s.tracker.MarkDone()
				} else {
					w.setState(StateStalled)
					if !w.advance() {
						return
					}
					continue
				}
			}
		case w.process.Finished():
			w.setState(StateRetiring)
			w.retire(ctx)
			w.process = w.dequeue()
			w.quantum = 0
		case w.quantum == 0:
			w.setState(StatePreempting)
			w.preempt(ctx)
		}

		if w.process == nil {
			if s.tracker.IsDone() {
				w.stop(ctx)
				return
			}
			w.setState(StateStalled)
			if !w.advance() {
				return
			}
			continue
		}
		if w.quantum == 0 {
			w.dispatch(ctx)
		}

		w.setState(StateRunning)
		w.execute(ctx)
		w.quantum--
		if w.quantum < 0 {
			panic(fmt.Sprintf("cpu %d: negative quantum %d for process %d", w.id, w.quantum, w.process.PID))
		}
		if !w.advance() {
			return
		}
	}
}

func (w *worker) dequeue() *model.Process {
	process, ok := w.service.queue.Dequeue()
	if !ok {
		return nil
	}
	return process
}

// advance waits for the next tick; false means the clock was stopped
func (w *worker) advance() bool {
	if _, err := w.service.barrier.Advance(w.participant); err != nil {
		if !errors.Is(err, timer.ErrStopped) {
			w.service.setErr(fmt.Errorf("cpu %d: %w", w.id, err))
			return false
		}
		w.service.setErr(fmt.Errorf("cpu %d: interrupted at tick %d: %w", w.id, w.service.barrier.Current(), err))
		w.setState(StateStopped)
		return false
	}
	return true
}

func (w *worker) tick() uint64 {
	return w.service.barrier.Current()
}

func (w *worker) dispatch(ctx context.Context) {
	s := w.service
	process := w.process
	tick := w.tick()
	s.emit(ctx, event.Scheduling{Kind: event.KindDispatched, Tick: tick, CPU: w.id, PID: process.PID, Priority: process.Priority})
	process.CPU = w.id
	process.SetState(model.StateRunning)
	process.Span.AddEvent("dispatched", tick, w.id)
	s.save(ctx, process)
	w.quantum = s.config.TimeSlot
}

func (w *worker) execute(ctx context.Context) {
	if err := w.service.executor.Execute(ctx, w.process); err != nil {
		log.Printf("cpu %d: process %d: %v", w.id, w.process.PID, err)
	}
}

// retire releases a finished process and counts it
func (w *worker) retire(ctx context.Context) {
	s := w.service
	process := w.process
	tick := w.tick()
	s.emit(ctx, event.Scheduling{Kind: event.KindFinished, Tick: tick, CPU: w.id, PID: process.PID, Priority: process.Priority})
	if _, err := s.tracker.Finish(); err != nil {
		panic(fmt.Sprintf("cpu %d: process %d retired: %v", w.id, process.PID, err))
	}
	s.executor.Release(process)
	process.FinishedAt = &tick
	process.SetState(model.StateFinished)
	s.save(ctx, process)
	process.Span.WithTick("tick.finished", tick).WithAttributes(map[string]string{"process.cpu": strconv.Itoa(w.id)})
	tracing.EndSpan(process.Span, nil)
	w.process = nil
}

// preempt puts the process back and takes the best ready one; when the queue
// is full the worker keeps its process and redispatches it.
func (w *worker) preempt(ctx context.Context) {
	s := w.service
	process := w.process
	tick := w.tick()
	process.SetState(model.StateReady)
	if err := s.queue.Enqueue(process); err != nil {
		log.Printf("cpu %d: process %d kept: %v", w.id, process.PID, err)
		return
	}
	s.emit(ctx, event.Scheduling{Kind: event.KindRequeued, Tick: tick, CPU: w.id, PID: process.PID, Priority: process.Priority})
	process.Span.AddEvent("requeued", tick, w.id)
	s.save(ctx, process)
	w.process = w.dequeue()
}

func (w *worker) stop(ctx context.Context) {
	w.setState(StateStopped)
	w.service.emit(ctx, event.Scheduling{Kind: event.KindStopped, Tick: w.tick(), CPU: w.id})
}

// New creates the processor service
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(s)
	}
	if s.barrier == nil {
		return nil, fmt.Errorf("barrier is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("ready queue is required")
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.config.CPUs <= 0 {
		return nil, fmt.Errorf("invalid number of cpus: %d", s.config.CPUs)
	}
	if s.config.TimeSlot <= 0 {
		return nil, fmt.Errorf("invalid time slot: %d", s.config.TimeSlot)
	}
	return s, nil
}
