package executor

import "errors"

var (
	ErrProgramCompleted = errors.New("program already completed")
	ErrInvalidRegister  = errors.New("register out of range")
	ErrUnknownOpcode    = errors.New("unknown opcode")
	ErrNotAllocated     = errors.New("register holds no allocation")
)
