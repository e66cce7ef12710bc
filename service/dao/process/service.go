// Package process keeps the process table: every admitted process keyed by PID.
package process

import (
	"context"
	"sort"

	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/criteria"
	"github.com/viant/schedsim/service/dao/store"
)

// Service implements an in-memory, thread-safe process table.  List works
// with copies so callers never race with running workers.
type Service struct {
	*store.MemoryStore[int, model.Process]
}

var _ dao.Service[int, model.Process] = (*Service)(nil)

// Save registers or replaces a process
func (s *Service) Save(ctx context.Context, p *model.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.PID < 0 {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, p)
}

// List returns copies of the matching processes ordered by PID.  Supported
// parameters are criteria.State and criteria.CPU.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	processes, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Process, 0, len(processes))
	for _, p := range processes {
		clone := p.Clone()
		if !criteria.FilterByState(clone.State, parameters) || !criteria.FilterByCPU(clone.CPU, parameters) {
			continue
		}
		out = append(out, clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// New creates an empty process table
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[int, model.Process](func(p *model.Process) int { return p.PID })}
}
