package schedsim

import (
	"context"
	"io"
	"os"

	"github.com/viant/afs"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/policy"
	"github.com/viant/schedsim/service/dao/simulation"
	"github.com/viant/schedsim/service/event"
	"github.com/viant/schedsim/tracing"
)

// Service is the simulator facade: it owns the configuration and builds a
// Runtime for every simulation run.
type Service struct {
	config     *Config
	fs         afs.Service
	policy     policy.Policy
	output     io.Writer
	handlers   []func(*event.Event[event.Scheduling])
	tracingErr error
	runtime    *Runtime
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.tracingErr != nil {
		return s.tracingErr
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	if s.output == nil {
		s.output = os.Stdout
	}
	if s.policy == nil {
		aPolicy, err := policy.Lookup(s.config.Scheduler.Policy)
		if err != nil {
			return err
		}
		s.policy = aPolicy
	}
	if tracingConfig := s.config.Tracing; tracingConfig.Enabled {
		if err := tracing.Init(tracingConfig.ServiceName, tracingConfig.ServiceVersion, tracingConfig.OutputFile); err != nil {
			return err
		}
	}
	s.runtime = &Runtime{service: s}
	return nil
}

// Runtime returns the runtime executing simulations
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Policy returns the scheduling policy in use
func (s *Service) Policy() policy.Policy {
	return s.policy
}

// LoadSimulation loads a simulation file; relative program paths are
// resolved against the configured program directory
func (s *Service) LoadSimulation(ctx context.Context, URL string) (*model.Simulation, error) {
	return s.simulations().Load(ctx, URL)
}

func (s *Service) simulations() *simulation.Service {
	return simulation.New(s.fs,
		simulation.WithProcDir(s.config.Storage.ProcDir),
		simulation.WithConfiguredPriority(s.policy.ConfiguredPriority()),
		simulation.WithPaging(s.config.Scheduler.Paging))
}

// New creates the simulator service
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
