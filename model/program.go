package model

import (
	"fmt"
	"strings"
)

// Opcode identifies an instruction
type Opcode string

const (
	OpCalc  Opcode = "calc"
	OpAlloc Opcode = "alloc"
	OpFree  Opcode = "free"
	OpRead  Opcode = "read"
	OpWrite Opcode = "write"
)

// Arity returns the number of integer arguments the opcode takes, or -1 for
// an unknown opcode.
func (o Opcode) Arity() int {
	switch o {
	case OpCalc:
		return 0
	case OpFree:
		return 1
	case OpAlloc:
		return 2
	case OpRead, OpWrite:
		return 3
	}
	return -1
}

// Instruction is a single program step
type Instruction struct {
	Opcode Opcode `json:"opcode" yaml:"opcode"`
	Args   []int  `json:"args,omitempty" yaml:"args,omitempty"`
}

func (i *Instruction) String() string {
	if len(i.Args) == 0 {
		return string(i.Opcode)
	}
	args := make([]string, len(i.Args))
	for k, arg := range i.Args {
		args[k] = fmt.Sprint(arg)
	}
	return string(i.Opcode) + " " + strings.Join(args, " ")
}

// Program is the code a process runs
type Program struct {
	// Priority is the default priority declared in the program header
	Priority     int            `json:"priority" yaml:"priority"`
	Instructions []*Instruction `json:"instructions" yaml:"instructions"`
}

// Size returns the number of instructions
func (p *Program) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Instructions)
}

// NewProgram creates a program
func NewProgram(priority int, instructions ...*Instruction) *Program {
	return &Program{Priority: priority, Instructions: instructions}
}

// Calc returns a program of n calc instructions; handy for tests and demos.
func Calc(priority, n int) *Program {
	ret := &Program{Priority: priority, Instructions: make([]*Instruction, n)}
	for i := range ret.Instructions {
		ret.Instructions[i] = &Instruction{Opcode: OpCalc}
	}
	return ret
}
