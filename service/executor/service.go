package executor

import (
	"context"
	"fmt"
	"log"

	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/allocator"
)

// Listener is invoked after every executed instruction, with the error the
// instruction produced, if any.
type Listener func(process *model.Process, instruction *model.Instruction, err error)

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener sets the listener invoked after every executed instruction.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Service represents an instruction executor.
type Service interface {
	// Execute runs the instruction at the program counter and advances it
	Execute(ctx context.Context, process *model.Process) error

	// Release frees every allocation the process still holds
	Release(process *model.Process)
}

type service struct {
	heap     *allocator.Heap
	listener Listener
}

// Execute executes the current instruction.  The program counter advances
// even when the instruction fails so that a faulty program still retires.
func (s *service) Execute(ctx context.Context, process *model.Process) error {
	instruction, err := process.Current()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProgramCompleted, err)
	}
	err = s.execute(ctx, process, instruction)
	process.PC++
	if s.listener != nil {
		s.listener(process, instruction, err)
	}
	return err
}

func (s *service) execute(_ context.Context, process *model.Process, instruction *model.Instruction) error {
	if arity := instruction.Opcode.Arity(); arity < 0 {
		return fmt.Errorf("%w: %v", ErrUnknownOpcode, instruction.Opcode)
	} else if len(instruction.Args) < arity {
		return fmt.Errorf("%v: expected %d arguments, got %d", instruction.Opcode, arity, len(instruction.Args))
	}
	switch instruction.Opcode {
	case model.OpAlloc:
		return s.alloc(process, instruction.Args[0], instruction.Args[1])
	case model.OpFree:
		return s.free(process, instruction.Args[0])
	}
	return nil
}

func (s *service) alloc(process *model.Process, size, reg int) error {
	if reg < 0 || reg >= model.Registers {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, reg)
	}
	if process.Allocated[reg] {
		if err := s.heap.Free(allocator.Pointer(process.Registers[reg])); err != nil {
			log.Printf("process %d: failed to release register %d: %v", process.PID, reg, err)
		}
		process.Allocated[reg] = false
	}
	pointer, err := s.heap.Allocate(size)
	if err != nil {
		return fmt.Errorf("process %d: alloc %d: %w", process.PID, size, err)
	}
	process.Registers[reg] = int(pointer)
	process.Allocated[reg] = true
	return nil
}

func (s *service) free(process *model.Process, reg int) error {
	if reg < 0 || reg >= model.Registers {
		return fmt.Errorf("%w: %d", ErrInvalidRegister, reg)
	}
	if !process.Allocated[reg] {
		return fmt.Errorf("process %d: %w: %d", process.PID, ErrNotAllocated, reg)
	}
	process.Allocated[reg] = false
	if err := s.heap.Free(allocator.Pointer(process.Registers[reg])); err != nil {
		return fmt.Errorf("process %d: free register %d: %w", process.PID, reg, err)
	}
	return nil
}

// Release frees every allocation the process still holds.
func (s *service) Release(process *model.Process) {
	for reg := range process.Allocated {
		if !process.Allocated[reg] {
			continue
		}
		process.Allocated[reg] = false
		if err := s.heap.Free(allocator.Pointer(process.Registers[reg])); err != nil {
			log.Printf("process %d: failed to release register %d: %v", process.PID, reg, err)
		}
	}
}

// NewService creates a new executor backed by heap.
func NewService(heap *allocator.Heap, opts ...Option) Service {
	s := &service{heap: heap}
	for _, o := range opts {
		o(s)
	}
	return s
}
