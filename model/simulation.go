package model

import (
	"errors"
	"fmt"
)

// MaxSwaps is the number of swap devices a memory line may describe
const MaxSwaps = 4

// Descriptor describes one process to be admitted by the loader
type Descriptor struct {
	StartTick uint64 `json:"startTick" yaml:"startTick"`
	Path      string `json:"path" yaml:"path"`
	// Priority is only set when the configuration carries one
	Priority *int `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// Memory carries the optional memory sizes of a paging configuration
type Memory struct {
	RAM  int   `json:"ram" yaml:"ram"`
	Swap []int `json:"swap,omitempty" yaml:"swap,omitempty"`
}

// Simulation is the parsed configuration file
type Simulation struct {
	// TimeSlot is the quantum length in ticks
	TimeSlot  int           `json:"timeSlot" yaml:"timeSlot"`
	CPUs      int           `json:"cpus" yaml:"cpus"`
	Processes []*Descriptor `json:"processes" yaml:"processes"`
	Memory    *Memory       `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// Validate returns the first issue found, or nil
func (s *Simulation) Validate() error {
	if s == nil {
		return errors.New("simulation was nil")
	}
	if s.TimeSlot <= 0 {
		return fmt.Errorf("invalid time slot: %d", s.TimeSlot)
	}
	if s.CPUs <= 0 {
		return fmt.Errorf("invalid number of cpus: %d", s.CPUs)
	}
	for i, descriptor := range s.Processes {
		if descriptor == nil {
			return fmt.Errorf("process[%d] was nil", i)
		}
		if descriptor.Path == "" {
			return fmt.Errorf("process[%d]: path was empty", i)
		}
	}
	if s.Memory != nil && len(s.Memory.Swap) > MaxSwaps {
		return fmt.Errorf("too many swap devices: %d", len(s.Memory.Swap))
	}
	return nil
}
