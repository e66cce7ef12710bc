package schedsim

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/schedsim/internal/location"
	"github.com/viant/schedsim/policy"
	"github.com/viant/schedsim/service/allocator"
	"github.com/viant/schedsim/service/messaging/memory"
	"github.com/viant/schedsim/service/queue"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the engine configuration.  The
// simulation itself (time slot, CPUs, processes) comes from the simulation
// file; Config covers everything around it.
type Config struct {
	Heap      HeapConfig      `json:"heap" yaml:"heap"`
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Storage   StorageConfig   `json:"storage" yaml:"storage"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
}

type HeapConfig struct {
	// Capacity is the arena size in bytes
	Capacity int `json:"capacity" yaml:"capacity"`
}

type SchedulerConfig struct {
	// Policy is "priority" or "mlq"
	Policy        string `json:"policy" yaml:"policy"`
	QueueCapacity int    `json:"queueCapacity" yaml:"queueCapacity"`
	// Paging expects a memory line in the simulation file
	Paging bool `json:"paging" yaml:"paging"`
}

type StorageConfig struct {
	InputDir   string `json:"inputDir" yaml:"inputDir"`
	ProcDir    string `json:"procDir" yaml:"procDir"`
	StatsURL   string `json:"statsURL" yaml:"statsURL"`
	// GanttURL is optional; when set the chart is written there
	GanttURL   string `json:"ganttURL,omitempty" yaml:"ganttURL,omitempty"`
	// ReportURL is optional; when set the run report is written there as JSON
	ReportURL  string `json:"reportURL,omitempty" yaml:"reportURL,omitempty"`
	// ProcessURL is optional; when set the process table is exported there
	// as one JSON file per PID
	ProcessURL string `json:"processURL,omitempty" yaml:"processURL,omitempty"`
}

type JournalConfig struct {
	// Buffer is the scheduling event queue capacity; the clock blocks on a
	// full queue until the handlers catch up
	Buffer int `json:"buffer" yaml:"buffer"`
}

type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	// OutputFile receives the spans; empty means stdout
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns the configuration of the classic simulator: a 1 MiB
// heap, the program priority policy and the input/output layout.
func DefaultConfig() *Config {
	return &Config{
		Heap: HeapConfig{Capacity: allocator.DefaultCapacity},
		Scheduler: SchedulerConfig{
			Policy:        policy.NamePriority,
			QueueCapacity: queue.DefaultCapacity,
		},
		Storage: StorageConfig{
			InputDir: "input",
			ProcDir:  "input/proc",
			StatsURL: "output/heap_stats.txt",
		},
		Journal: JournalConfig{Buffer: memory.DefaultConfig().QueueBuffer},
		Tracing: TracingConfig{ServiceName: "schedsim", ServiceVersion: "0.1.0"},
	}
}

// Validate returns the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Heap.Capacity <= allocator.HeaderSize {
		return fmt.Errorf("heap.capacity must be > %d", allocator.HeaderSize)
	}
	if c.Scheduler.QueueCapacity <= 0 {
		return fmt.Errorf("scheduler.queueCapacity must be > 0")
	}
	if c.Journal.Buffer <= 0 {
		return fmt.Errorf("journal.buffer must be > 0")
	}
	if _, err := policy.Lookup(c.Scheduler.Policy); err != nil {
		return fmt.Errorf("scheduler.policy: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML configuration on top of DefaultConfig; ${env.KEY}
// expressions are expanded first
func LoadConfig(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, location.Resolve(URL))
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal([]byte(location.ExpandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}
