package model

import (
	"fmt"
	"sync"

	"github.com/viant/schedsim/tracing"
)

// Process state constants
const (
	StateNew      = "new"
	StateReady    = "ready"
	StateRunning  = "running"
	StateFinished = "finished"
)

// Registers is the number of general purpose registers per process
const Registers = 10

// Process is the process control block.  At any instant it is owned either
// by the ready queue or by exactly one CPU.
type Process struct {
	PID        int             `json:"pid"`
	Path       string          `json:"path"`
	Priority   int             `json:"priority"`
	PC         int             `json:"pc"`
	Program    *Program        `json:"program,omitempty"`
	Registers  [Registers]int  `json:"registers"`
	Allocated  [Registers]bool `json:"allocated"`
	State      string          `json:"state"`
	CPU        int             `json:"cpu"`
	ArrivedAt  uint64          `json:"arrivedAt"`
	FinishedAt *uint64         `json:"finishedAt,omitempty"`
	Span       *tracing.Span   `json:"-"`
	mu         sync.RWMutex
}

// Size returns the program size
func (p *Process) Size() int {
	return p.Program.Size()
}

// Finished reports whether the program counter reached the program size
func (p *Process) Finished() bool {
	return p.PC >= p.Program.Size()
}

// Current returns the instruction at the program counter
func (p *Process) Current() (*Instruction, error) {
	if p.Finished() {
		return nil, fmt.Errorf("process %d: program counter %d out of range", p.PID, p.PC)
	}
	return p.Program.Instructions[p.PC], nil
}

// SetState updates the process state
func (p *Process) SetState(state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.State = state
}

// GetState returns the process state
func (p *Process) GetState() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.State
}

// Clone returns a copy that is safe to hand out after the simulation
func (p *Process) Clone() *Process {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ret := &Process{
		PID:       p.PID,
		Path:      p.Path,
		Priority:  p.Priority,
		PC:        p.PC,
		Program:   p.Program,
		Registers: p.Registers,
		Allocated: p.Allocated,
		State:     p.State,
		CPU:       p.CPU,
		ArrivedAt: p.ArrivedAt,
	}
	if p.FinishedAt != nil {
		finishedAt := *p.FinishedAt
		ret.FinishedAt = &finishedAt
	}
	return ret
}

// PriorityOf returns the scheduling priority; used as the ready queue key
func PriorityOf(p *Process) int {
	return p.Priority
}

// NewProcess creates a process for the supplied program; the priority
// defaults to the program header priority.
func NewProcess(pid int, path string, program *Program) *Process {
	ret := &Process{
		PID:     pid,
		Path:    path,
		Program: program,
		State:   StateNew,
		CPU:     -1,
	}
	if program != nil {
		ret.Priority = program.Priority
	}
	return ret
}
