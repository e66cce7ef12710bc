package event

import (
	"context"
	"fmt"
	"io"
	"log"
)

// Kind identifies a scheduling event
type Kind string

const (
	KindTimeSlot   Kind = "timeSlot"
	KindLoaded     Kind = "loaded"
	KindDispatched Kind = "dispatched"
	KindRequeued   Kind = "requeued"
	KindFinished   Kind = "finished"
	KindStopped    Kind = "stopped"
)

// Scheduling is the payload of every simulator event
type Scheduling struct {
	Kind     Kind   `json:"kind"`
	Tick     uint64 `json:"tick"`
	CPU      int    `json:"cpu"`
	PID      int    `json:"pid,omitempty"`
	Priority int    `json:"priority,omitempty"`
	Path     string `json:"path,omitempty"`
}

// Line returns the console line of the event
func (s *Scheduling) Line() string {
	switch s.Kind {
	case KindTimeSlot:
		return fmt.Sprintf("Time slot %3d", s.Tick)
	case KindLoaded:
		return fmt.Sprintf("\tLoaded a process at %s, PID: %d PRIO: %d", s.Path, s.PID, s.Priority)
	case KindDispatched:
		return fmt.Sprintf("\tCPU %d: Dispatched process %2d", s.CPU, s.PID)
	case KindRequeued:
		return fmt.Sprintf("\tCPU %d: Put process %2d to run queue", s.CPU, s.PID)
	case KindFinished:
		return fmt.Sprintf("\tCPU %d: Processed %2d has finished", s.CPU, s.PID)
	case KindStopped:
		return fmt.Sprintf("\tCPU %d stopped", s.CPU)
	}
	return ""
}

// Console returns a handler writing one console line per event to w
func Console(w io.Writer) func(*Event[Scheduling]) {
	return func(e *Event[Scheduling]) {
		line := e.Data.Line()
		if line == "" {
			return
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			log.Printf("failed to write event %v: %v", e.Data.Kind, err)
		}
	}
}

// Chain combines handlers; nil handlers are skipped
func Chain[T any](handlers ...func(*Event[T])) func(*Event[T]) {
	return func(e *Event[T]) {
		for _, handler := range handlers {
			if handler != nil {
				handler(e)
			}
		}
	}
}

// Emit publishes data as a scheduling event; a nil publisher discards it
func Emit(ctx context.Context, publisher *Publisher[Scheduling], runID string, data Scheduling) {
	if publisher == nil {
		return
	}
	anEvent := NewEvent(&Context{RunID: runID, EventType: string(data.Kind), Tick: data.Tick}, data)
	if err := publisher.Publish(ctx, anEvent); err != nil {
		log.Printf("failed to publish %v event: %v", data.Kind, err)
	}
}
