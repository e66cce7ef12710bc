package event

import (
	"time"

	"github.com/viant/schedsim/internal/clock"
	"github.com/viant/schedsim/internal/idgen"
)

// Context identifies the run and virtual time an event belongs to
type Context struct {
	RunID     string `json:"runID"`
	EventType string `json:"eventType"`
	Tick      uint64 `json:"tick"`
}

// Event wraps a payload published through the journal
type Event[T any] struct {
	ID        string                 `json:"id"`
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		ID:        idgen.New(),
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
