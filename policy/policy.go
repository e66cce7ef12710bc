package policy

import (
	"fmt"
	"strings"

	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/queue"
)

// Policy names recognised by Lookup.
const (
	NamePriority = "priority"
	NameMLQ      = "mlq"
)

// MaxPriority is the number of priority bands of the multi-level queue
const MaxPriority = 140

// Policy decides the ready queue layout and the priority source.
type Policy interface {
	// Name returns the configuration name
	Name() string

	// ConfiguredPriority reports whether the priority is read from the
	// simulation configuration rather than from the program header
	ConfiguredPriority() bool

	// NewQueue creates an empty ready queue holding at most capacity processes
	NewQueue(capacity int) queue.Queue[model.Process]
}

// Priority keeps the program header priority and uses a single array queue.
type Priority struct{}

// Name returns "priority"
func (Priority) Name() string { return NamePriority }

// ConfiguredPriority returns false
func (Priority) ConfiguredPriority() bool { return false }

// NewQueue returns an array backed queue
func (Priority) NewQueue(capacity int) queue.Queue[model.Process] {
	return queue.NewArray[model.Process](capacity, model.PriorityOf)
}

// MLQ reads the priority from the configuration and keeps one band per
// priority level.
type MLQ struct {
	// Bands defaults to MaxPriority
	Bands int
}

// Name returns "mlq"
func (MLQ) Name() string { return NameMLQ }

// ConfiguredPriority returns true
func (MLQ) ConfiguredPriority() bool { return true }

// NewQueue returns a banded queue; priorities outside the band range are
// clamped to the nearest band.
func (m MLQ) NewQueue(capacity int) queue.Queue[model.Process] {
	bands := m.Bands
	if bands <= 0 {
		bands = MaxPriority
	}
	return queue.NewBanded[model.Process](capacity, bands, model.PriorityOf, nil)
}

// Lookup returns the policy registered under name; an empty name selects
// the priority policy.
func Lookup(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NamePriority:
		return Priority{}, nil
	case NameMLQ:
		return MLQ{}, nil
	}
	return nil, fmt.Errorf("unknown scheduling policy: %q", name)
}
