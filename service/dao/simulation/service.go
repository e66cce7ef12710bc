// Package simulation loads the simulation configuration file:
//
//	<timeSlot> <numCPUs> <numProcesses>
//	[<ram> <swap0> <swap1> <swap2> <swap3>]     paging only
//	<startTick> <program> [<priority>]          numProcesses lines
//
// Program names are resolved against the process directory.
package simulation

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"github.com/viant/schedsim/internal/location"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/dao/scan"
)

// DefaultProcDir is where program files live by default
const DefaultProcDir = "input/proc"

// Service loads simulation configurations through afs
type Service struct {
	fs                 afs.Service
	procDir            string
	configuredPriority bool
	paging             bool
}

// Load reads, parses and validates the configuration at URL
func (s *Service) Load(ctx context.Context, URL string) (*model.Simulation, error) {
	data, err := s.fs.DownloadWithURL(ctx, location.Resolve(URL))
	if err != nil {
		return nil, fmt.Errorf("failed to load simulation from %s: %w", URL, err)
	}
	ret, err := s.Parse(URL, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse simulation from %s: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation %s: %w", URL, err)
	}
	return ret, nil
}

// Parse decodes a simulation configuration
func (s *Service) Parse(name string, data []byte) (*model.Simulation, error) {
	scanner := scan.New(name, data)
	ret := &model.Simulation{}
	var err error
	if ret.TimeSlot, err = scanner.Int(); err != nil {
		return nil, fmt.Errorf("time slot: %w", err)
	}
	if ret.CPUs, err = scanner.Int(); err != nil {
		return nil, fmt.Errorf("cpus: %w", err)
	}
	count, err := scanner.Uint()
	if err != nil {
		return nil, fmt.Errorf("process count: %w", err)
	}
	if s.paging {
		if ret.Memory, err = parseMemory(scanner); err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
	}
	ret.Processes = []*model.Descriptor{}
	for i := 0; i < count; i++ {
		descriptor, err := s.parseDescriptor(scanner)
		if err != nil {
			return nil, fmt.Errorf("process[%d]: %w", i, err)
		}
		ret.Processes = append(ret.Processes, descriptor)
	}
	return ret, nil
}

func parseMemory(scanner *scan.Scanner) (*model.Memory, error) {
	ram, err := scanner.Uint()
	if err != nil {
		return nil, err
	}
	ret := &model.Memory{RAM: ram, Swap: make([]int, model.MaxSwaps)}
	for i := range ret.Swap {
		if ret.Swap[i], err = scanner.Uint(); err != nil {
			return nil, fmt.Errorf("swap[%d]: %w", i, err)
		}
	}
	return ret, nil
}

func (s *Service) parseDescriptor(scanner *scan.Scanner) (*model.Descriptor, error) {
	start, err := scanner.Uint()
	if err != nil {
		return nil, fmt.Errorf("start tick: %w", err)
	}
	name, err := scanner.Word()
	if err != nil {
		return nil, fmt.Errorf("program: %w", err)
	}
	ret := &model.Descriptor{StartTick: uint64(start), Path: s.resolve(name)}
	if s.configuredPriority {
		priority, err := scanner.Int()
		if err != nil {
			return nil, fmt.Errorf("priority: %w", err)
		}
		ret.Priority = &priority
	}
	return ret, nil
}

func (s *Service) resolve(name string) string {
	if s.procDir == "" || !url.IsRelative(name) {
		return name
	}
	return url.Join(s.procDir, name)
}

// New creates a simulation loader
func New(fs afs.Service, options ...Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	ret := &Service{fs: fs, procDir: DefaultProcDir}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}
