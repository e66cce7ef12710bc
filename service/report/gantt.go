// Package report builds a Gantt chart of CPU occupancy from scheduling events.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/viant/schedsim/service/event"
)

// Segment is a run of consecutive ticks a process spent on a CPU; End is
// exclusive
type Segment struct {
	CPU   int    `json:"cpu" yaml:"cpu"`
	PID   int    `json:"pid" yaml:"pid"`
	Start uint64 `json:"start" yaml:"start"`
	End   uint64 `json:"end" yaml:"end"`
}

// Ticks returns the segment length
func (s *Segment) Ticks() uint64 {
	return s.End - s.Start
}

// Gantt collects segments; it is safe for concurrent use
type Gantt struct {
	open     map[int]*Segment
	closed   []*Segment
	lastTick uint64
	mu       sync.Mutex
}

// Handle consumes one scheduling event
func (g *Gantt) Handle(e *event.Event[event.Scheduling]) {
	data := e.Data
	g.mu.Lock()
	defer g.mu.Unlock()
	if data.Tick > g.lastTick {
		g.lastTick = data.Tick
	}
	switch data.Kind {
	case event.KindDispatched:
		g.close(data.CPU, data.Tick)
		g.open[data.CPU] = &Segment{CPU: data.CPU, PID: data.PID, Start: data.Tick}
	case event.KindRequeued, event.KindFinished, event.KindStopped:
		g.close(data.CPU, data.Tick)
	}
}

func (g *Gantt) close(cpu int, tick uint64) {
	segment, ok := g.open[cpu]
	if !ok {
		return
	}
	delete(g.open, cpu)
	segment.End = tick
	if segment.End > segment.Start {
		g.closed = append(g.closed, segment)
	}
}

// Segments returns closed segments ordered by CPU and start tick; segments
// still open end at the last observed tick
func (g *Gantt) Segments() []Segment {
	g.mu.Lock()
	defer g.mu.Unlock()
	ret := make([]Segment, 0, len(g.closed)+len(g.open))
	for _, segment := range g.closed {
		ret = append(ret, *segment)
	}
	for _, segment := range g.open {
		if g.lastTick > segment.Start {
			open := *segment
			open.End = g.lastTick
			ret = append(ret, open)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].CPU != ret[j].CPU {
			return ret[i].CPU < ret[j].CPU
		}
		return ret[i].Start < ret[j].Start
	})
	return ret
}

// Render writes one row per CPU with the PID running at every tick
func (g *Gantt) Render(w io.Writer) error {
	segments := g.Segments()
	if len(segments) == 0 {
		_, err := fmt.Fprintln(w, "no process was dispatched")
		return err
	}
	var span uint64
	cpus := 0
	for _, segment := range segments {
		if segment.End > span {
			span = segment.End
		}
		if segment.CPU+1 > cpus {
			cpus = segment.CPU + 1
		}
	}
	rows := make([][]string, cpus)
	for i := range rows {
		rows[i] = make([]string, span)
		for t := range rows[i] {
			rows[i][t] = "."
		}
	}
	for _, segment := range segments {
		for t := segment.Start; t < segment.End; t++ {
			rows[segment.CPU][t] = fmt.Sprint(segment.PID)
		}
	}

	builder := &strings.Builder{}
	builder.WriteString("Tick  |")
	for t := uint64(0); t < span; t++ {
		fmt.Fprintf(builder, "%3d", t)
	}
	builder.WriteString("\n")
	for cpu, row := range rows {
		fmt.Fprintf(builder, "CPU %d |", cpu)
		for _, cell := range row {
			fmt.Fprintf(builder, "%3s", cell)
		}
		builder.WriteString("\n")
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

// NewGantt creates an empty chart
func NewGantt() *Gantt {
	return &Gantt{open: map[int]*Segment{}}
}
