package schedsim_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/schedsim"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/criteria"
	fsprocess "github.com/viant/schedsim/service/dao/process/fs"
	"github.com/viant/schedsim/service/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const baseURL = "mem://localhost/schedsim"

func upload(t *testing.T, fs afs.Service, files map[string]string) {
	for name, content := range files {
		require.NoError(t, fs.Upload(context.Background(), baseURL+"/"+name, file.DefaultFileOsMode, strings.NewReader(content)))
	}
}

func testConfig(policy string) *schedsim.Config {
	config := schedsim.DefaultConfig()
	config.Scheduler.Policy = policy
	config.Storage.InputDir = baseURL + "/input"
	config.Storage.ProcDir = baseURL + "/input/proc"
	config.Storage.StatsURL = baseURL + "/output/heap_stats.txt"
	config.Storage.GanttURL = baseURL + "/output/gantt.txt"
	config.Storage.ReportURL = baseURL + "/output/report.json"
	config.Storage.ProcessURL = baseURL + "/output/proc"
	return config
}

type recorder struct {
	mu     sync.Mutex
	events []event.Scheduling
}

func (r *recorder) handle(e *event.Event[event.Scheduling]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Data)
}

func (r *recorder) ticks(kind event.Kind) []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ret []uint64
	for _, e := range r.events {
		if e.Kind == kind {
			ret = append(ret, e.Tick)
		}
	}
	return ret
}

func TestRuntime_Run(t *testing.T) {
	testCases := []struct {
		description    string
		policy         string
		files          map[string]string
		simulation     string
		expectErr      bool
		expectLines    []string
		expectFinished int
		expectStats    string
		expectKinds    map[event.Kind]int
		expectTicks    map[event.Kind][]uint64
		journalBuffer  int
		// instructions and faults as counted by the executor
		expectCounts   []int64
	}{
		{
			description: "single process round robin",
			files: map[string]string{
				"input/proc/p0": "1 4\ncalc\ncalc\ncalc\ncalc\n",
			},
			simulation: "2 1 1\n0 p0\n",
			expectLines: []string{
				"Time slot   0",
				"\tLoaded a process at " + baseURL + "/input/proc/p0, PID: 1 PRIO: 1",
				"\tCPU 0: Dispatched process  1",
				"\tCPU 0: Put process  1 to run queue",
				"\tCPU 0: Processed  1 has finished",
				"\tCPU 0 stopped",
			},
			expectFinished: 1,
			expectStats:    "Total heap size: 1048576\nFree space: 1048552\nFragmented blocks: 1\n",
			expectTicks: map[event.Kind][]uint64{
				event.KindTimeSlot:   {0, 1, 2, 3, 4},
				event.KindLoaded:     {0},
				event.KindDispatched: {0, 2},
				event.KindRequeued:   {2},
				event.KindFinished:   {4},
				event.KindStopped:    {4},
			},
			expectCounts: []int64{4, 0},
		},
		{
			description: "allocations leave a fragmented heap",
			files: map[string]string{
				"input/proc/p0": "1 3\nalloc 100 0\nalloc 50 1\nfree 0\n",
			},
			simulation:     "4 1 1\n0 p0\n",
			expectLines:    []string{"\tCPU 0: Processed  1 has finished"},
			expectFinished: 1,
			expectStats:    "Total heap size: 1048576\nFree space: 1048552\nFragmented blocks: 2\n",
			expectCounts:   []int64{3, 0},
		},
		{
			description: "failing instruction still retires",
			files: map[string]string{
				"input/proc/p0": "1 2\nfree 3\ncalc\n",
			},
			simulation:     "2 1 1\n0 p0\n",
			expectLines:    []string{"\tCPU 0: Processed  1 has finished"},
			expectFinished: 1,
			expectStats:    "Total heap size: 1048576\nFree space: 1048552\nFragmented blocks: 1\n",
			expectCounts:   []int64{2, 1},
		},
		{
			description: "two cpus with staggered arrivals",
			files: map[string]string{
				"input/proc/p0": "2 3\ncalc\ncalc\ncalc\n",
				"input/proc/p1": "1 2\ncalc\ncalc\n",
				"input/proc/p2": "3 1\ncalc\n",
			},
			simulation:    "2 2 3\n0 p0\n1 p1\n4 p2\n",
			journalBuffer: 1,
			expectLines: []string{
				"\tCPU 0 stopped",
				"\tCPU 1 stopped",
			},
			expectFinished: 3,
			expectKinds: map[event.Kind]int{
				event.KindLoaded:   3,
				event.KindFinished: 3,
				event.KindStopped:  2,
			},
		},
		{
			description: "configured priorities",
			policy:      "mlq",
			files: map[string]string{
				"input/proc/s0": "1 1\ncalc\n",
				"input/proc/s1": "1 1\ncalc\n",
			},
			simulation: "2 1 2\n0 s0 130\n0 s1 120\n",
			expectLines: []string{
				"PID: 1 PRIO: 130",
				"PID: 2 PRIO: 120",
			},
			expectFinished: 2,
		},
		{
			description: "missing program",
			files:       map[string]string{},
			simulation:  "2 1 1\n0 missing\n",
			expectErr:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			fs := afs.New()
			ctx := context.Background()
			_ = fs.Delete(ctx, baseURL)
			upload(t, fs, tc.files)
			upload(t, fs, map[string]string{"input/sched": tc.simulation})

			output := &bytes.Buffer{}
			recorded := &recorder{}
			config := testConfig(tc.policy)
			if tc.journalBuffer > 0 {
				config.Journal.Buffer = tc.journalBuffer
			}
			srv, err := schedsim.New(
				schedsim.WithConfig(config),
				schedsim.WithFs(fs),
				schedsim.WithOutput(output),
				schedsim.WithEventHandler(recorded.handle),
			)
			require.NoError(t, err)
			sim, err := srv.LoadSimulation(ctx, baseURL+"/input/sched")
			require.NoError(t, err)

			aReport, err := srv.Runtime().Run(ctx, sim)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectFinished, aReport.Finished)
			assert.Equal(t, len(sim.Processes), aReport.Total)
			assert.NotEmpty(t, aReport.RunID)
			if tc.expectCounts != nil {
				assert.Equal(t, tc.expectCounts, []int64{aReport.Instructions, aReport.Faults})
			}

			console := output.String()
			for _, line := range tc.expectLines {
				assert.Contains(t, console, line)
			}
			for kind, count := range tc.expectKinds {
				assert.Len(t, recorded.ticks(kind), count, string(kind))
			}
			for kind, ticks := range tc.expectTicks {
				assert.Equal(t, ticks, recorded.ticks(kind), string(kind))
			}

			stats, err := fs.DownloadWithURL(ctx, baseURL+"/output/heap_stats.txt")
			require.NoError(t, err)
			assert.Len(t, strings.Split(strings.TrimSpace(string(stats)), "\n"), 3)
			if tc.expectStats != "" {
				assert.Equal(t, tc.expectStats, string(stats))
			}
			gantt, err := fs.DownloadWithURL(ctx, baseURL+"/output/gantt.txt")
			require.NoError(t, err)
			assert.Contains(t, string(gantt), "CPU 0 |")

			reportJSON, err := fs.DownloadWithURL(ctx, baseURL+"/output/report.json")
			require.NoError(t, err)
			decoded := &schedsim.Report{}
			require.NoError(t, sonnet.Unmarshal(reportJSON, decoded))
			assert.Equal(t, aReport.RunID, decoded.RunID)
			assert.Equal(t, aReport.Stats, decoded.Stats)

			finished, err := srv.Runtime().Processes(ctx, dao.NewParameter(criteria.State, model.StateFinished))
			require.NoError(t, err)
			assert.Len(t, finished, tc.expectFinished)
			for _, p := range finished {
				assert.NotNil(t, p.FinishedAt)
			}
			exported, err := fsprocess.New(fs, baseURL+"/output/proc")
			require.NoError(t, err)
			records, err := exported.List(ctx)
			require.NoError(t, err)
			assert.Len(t, records, len(finished))
		})
	}
}

func TestRuntime_RunInvalidSimulation(t *testing.T) {
	srv, err := schedsim.New(schedsim.WithOutput(nil))
	require.NoError(t, err)
	_, err = srv.Runtime().Run(context.Background(), &model.Simulation{TimeSlot: 0, CPUs: 1})
	assert.Error(t, err)
}

func TestRuntime_RunTraced(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	_ = fs.Delete(ctx, baseURL)
	upload(t, fs, map[string]string{
		"input/proc/p0": "1 2\ncalc\ncalc\n",
		"input/sched":   "1 1 1\n0 p0\n",
	})
	exporter := tracetest.NewInMemoryExporter()
	srv, err := schedsim.New(
		schedsim.WithConfig(testConfig("")),
		schedsim.WithFs(fs),
		schedsim.WithOutput(nil),
		schedsim.WithTracingExporter("schedsim", "test", exporter),
	)
	require.NoError(t, err)
	sim, err := srv.LoadSimulation(ctx, baseURL+"/input/sched")
	require.NoError(t, err)
	_, err = srv.Runtime().Run(ctx, sim)
	require.NoError(t, err)

	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
		if span.Name == "simulation.run" {
			assert.Contains(t, span.Attributes, attribute.String("simulation.finished", "1"))
			assert.Contains(t, span.Attributes, attribute.String("simulation.admitted", "true"))
		}
	}
	assert.Contains(t, names, "simulation.run")
	assert.Contains(t, names, "process.run "+baseURL+"/input/proc/p0")
}
