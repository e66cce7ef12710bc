package schedsim

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sugawarayuuta/sonnet"
	"github.com/viant/afs/file"
	"github.com/viant/schedsim/internal/idgen"
	"github.com/viant/schedsim/internal/location"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/progress"
	"github.com/viant/schedsim/service/allocator"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/process"
	fsprocess "github.com/viant/schedsim/service/dao/process/fs"
	"github.com/viant/schedsim/service/dao/program"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/service/executor"
	"github.com/viant/schedsim/service/loader"
	"github.com/viant/schedsim/service/messaging/memory"
	"github.com/viant/schedsim/service/processor"
	"github.com/viant/schedsim/service/report"
	"github.com/viant/schedsim/service/timer"
	"github.com/viant/schedsim/tracing"
)

// Report summarises a finished simulation run
type Report struct {
	RunID    string `json:"runId" yaml:"runId"`
	Ticks    uint64 `json:"ticks" yaml:"ticks"`
	Total    int    `json:"total" yaml:"total"`
	Finished int    `json:"finished" yaml:"finished"`
	// Instructions counts executed instructions; Faults the ones that failed
	Instructions int64            `json:"instructions" yaml:"instructions"`
	Faults       int64            `json:"faults" yaml:"faults"`
	Stats        allocator.Stats  `json:"stats" yaml:"stats"`
	Segments     []report.Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// Runtime executes simulations.  Runs are serialised; the process table of
// the last run stays available through Processes.
type Runtime struct {
	service    *Service
	processDAO *process.Service
	mu         sync.Mutex
}

// run holds the components of one simulation run
type run struct {
	id        string
	heap      *allocator.Heap
	tracker   *progress.Tracker
	events    *event.Service
	publisher *event.Publisher[event.Scheduling]
	gantt     *report.Gantt
	barrier   *timer.Barrier
	loader    *loader.Service
	processor *processor.Service

	instructions atomic.Int64
	faults       atomic.Int64
}

// Run executes the simulation and blocks until every process finished.  On
// success the heap statistics are written to the configured stats URL.
func (r *Runtime) Run(ctx context.Context, sim *model.Simulation) (*Report, error) {
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := idgen.New()
	ctx, span := tracing.StartSpan(ctx, "simulation.run", "INTERNAL")
	span.WithAttributes(map[string]string{
		"simulation.run_id":    runID,
		"simulation.cpus":      strconv.Itoa(sim.CPUs),
		"simulation.time_slot": strconv.Itoa(sim.TimeSlot),
		"simulation.policy":    r.service.policy.Name(),
	})
	ret, err := r.run(ctx, runID, sim, span)
	tracing.EndSpan(span.WithTick("simulation.ticks", ticksOf(ret)), err)
	return ret, err
}

func (r *Runtime) run(ctx context.Context, runID string, sim *model.Simulation, span *tracing.Span) (*Report, error) {
	aRun, err := r.newRun(ctx, runID, sim)
	if err != nil {
		return nil, err
	}
	aRun.tracker.OnChange(func(p progress.Progress) {
		span.WithAttributes(map[string]string{
			"simulation.finished": strconv.Itoa(p.Finished),
			"simulation.admitted": strconv.FormatBool(p.Done),
		})
	})
	ctx = progress.WithTracker(ctx, aRun.tracker)
	if err = aRun.start(ctx, sim); err != nil {
		return nil, err
	}
	err = aRun.wait()
	counters := aRun.tracker.Snapshot()
	ret := &Report{
		RunID:        runID,
		Ticks:        aRun.barrier.Current(),
		Total:        counters.Total,
		Finished:     counters.Finished,
		Instructions: aRun.instructions.Load(),
		Faults:       aRun.faults.Load(),
		Stats:        aRun.heap.Stats(),
		Segments:     aRun.gantt.Segments(),
	}
	if err != nil {
		return ret, err
	}
	if err = r.writeReports(ctx, aRun, ret); err != nil {
		return ret, err
	}
	return ret, nil
}

func (r *Runtime) newRun(ctx context.Context, runID string, sim *model.Simulation) (*run, error) {
	config := r.service.config
	heap := allocator.New()
	if err := heap.Init(config.Heap.Capacity); err != nil {
		return nil, err
	}
	events := event.New(event.WithNewMemoryQueueConfig(func(string) memory.Config {
		return memory.Config{QueueBuffer: config.Journal.Buffer}
	}))
	ret := &run{
		id:      runID,
		heap:    heap,
		tracker: progress.NewTracker(len(sim.Processes)),
		events:  events,
		gantt:   report.NewGantt(),
	}
	ret.publisher = event.PublisherOf[event.Scheduling](ret.events)
	handlers := append([]func(*event.Event[event.Scheduling]){event.Console(r.service.output), ret.gantt.Handle}, r.service.handlers...)
	event.SetListenerOf[event.Scheduling](ret.events, event.Chain[event.Scheduling](handlers...))

	ret.barrier = timer.New(timer.WithTickListener(func(tick uint64) {
		event.Emit(ctx, ret.publisher, runID, event.Scheduling{Kind: event.KindTimeSlot, Tick: tick})
	}))
	readyQueue := r.service.policy.NewQueue(config.Scheduler.QueueCapacity)
	processDAO := process.New()
	r.processDAO = processDAO

	var err error
	if ret.loader, err = loader.New(
		loader.WithBarrier(ret.barrier),
		loader.WithQueue(readyQueue),
		loader.WithTracker(ret.tracker),
		loader.WithPolicy(r.service.policy),
		loader.WithPrograms(program.New(r.service.fs)),
		loader.WithProcessDAO(processDAO),
		loader.WithPublisher(ret.publisher),
		loader.WithRunID(runID),
	); err != nil {
		ret.events.Close()
		return nil, err
	}
	if ret.processor, err = processor.New(
		processor.WithConfig(processor.Config{CPUs: sim.CPUs, TimeSlot: sim.TimeSlot}),
		processor.WithBarrier(ret.barrier),
		processor.WithQueue(readyQueue),
		processor.WithTracker(ret.tracker),
		processor.WithExecutor(executor.NewService(heap, executor.WithListener(ret.count))),
		processor.WithProcessDAO(processDAO),
		processor.WithPublisher(ret.publisher),
		processor.WithRunID(runID),
	); err != nil {
		ret.events.Close()
		return nil, err
	}
	return ret, nil
}

func (r *run) count(_ *model.Process, _ *model.Instruction, err error) {
	r.instructions.Add(1)
	if err != nil {
		r.faults.Add(1)
	}
}

// start registers every participant before the first tick can complete: a
// gate participant holds tick 0 until loader and CPUs joined the barrier.
func (r *run) start(ctx context.Context, sim *model.Simulation) error {
	gate := r.barrier.Register()
	r.barrier.Start(ctx)
	if err := r.loader.Start(ctx, sim.Processes); err != nil {
		r.abort()
		return err
	}
	if err := r.processor.Start(ctx); err != nil {
		r.barrier.Stop()
		_ = r.loader.Wait()
		r.abort()
		return err
	}
	r.barrier.Unregister(gate)
	return nil
}

// wait blocks until the CPUs stopped; a failed loader stops the clock since
// the processes it never admitted cannot finish.
func (r *run) wait() error {
	loaderErr := r.loader.Wait()
	if loaderErr != nil {
		r.processor.Shutdown()
	}
	processorErr := r.processor.Wait()
	r.barrier.Stop()
	r.events.Flush()
	r.events.Close()
	if loaderErr != nil {
		return loaderErr
	}
	if processorErr != nil && !errors.Is(processorErr, timer.ErrStopped) {
		return processorErr
	}
	if !r.tracker.AllFinished() {
		if processorErr != nil {
			return processorErr
		}
		return fmt.Errorf("simulation stopped with %d of %d processes finished, cpu states: %v", r.tracker.Finished(), r.tracker.Total(), r.processor.States())
	}
	return nil
}

func (r *run) abort() {
	r.barrier.Stop()
	r.events.Flush()
	r.events.Close()
}

func (r *Runtime) writeReports(ctx context.Context, aRun *run, aReport *Report) error {
	storage := r.service.config.Storage
	fs := r.service.fs
	if storage.StatsURL != "" {
		buffer := &bytes.Buffer{}
		if _, err := aRun.heap.Stats().WriteTo(buffer); err != nil {
			return err
		}
		if err := fs.Upload(ctx, location.Resolve(storage.StatsURL), file.DefaultFileOsMode, buffer); err != nil {
			return fmt.Errorf("failed to write heap stats to %s: %w", storage.StatsURL, err)
		}
	}
	if storage.GanttURL != "" {
		buffer := &bytes.Buffer{}
		if err := aRun.gantt.Render(buffer); err != nil {
			return err
		}
		if err := fs.Upload(ctx, location.Resolve(storage.GanttURL), file.DefaultFileOsMode, buffer); err != nil {
			log.Printf("failed to write gantt chart to %s: %v", storage.GanttURL, err)
		}
	}
	if storage.ProcessURL != "" {
		if err := r.exportProcesses(ctx, storage.ProcessURL); err != nil {
			return err
		}
	}
	if storage.ReportURL != "" {
		data, err := sonnet.Marshal(aReport)
		if err != nil {
			return err
		}
		if err = fs.Upload(ctx, location.Resolve(storage.ReportURL), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			log.Printf("failed to write run report to %s: %v", storage.ReportURL, err)
		}
	}
	return nil
}

func (r *Runtime) exportProcesses(ctx context.Context, URL string) error {
	target, err := fsprocess.New(r.service.fs, URL)
	if err != nil {
		return err
	}
	processes, err := r.processDAO.List(ctx)
	if err != nil {
		return err
	}
	for _, aProcess := range processes {
		if err = target.Save(ctx, aProcess); err != nil {
			return err
		}
	}
	return nil
}

// Processes returns the process table of the last run
func (r *Runtime) Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	r.mu.Lock()
	processDAO := r.processDAO
	r.mu.Unlock()
	if processDAO == nil {
		return nil, nil
	}
	return processDAO.List(ctx, parameters...)
}

func ticksOf(aReport *Report) uint64 {
	if aReport == nil {
		return 0
	}
	return aReport.Ticks
}
