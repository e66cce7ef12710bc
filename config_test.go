package schedsim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/schedsim"
)

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		description string
		yaml        string
		expect      func() *schedsim.Config
		expectErr   bool
	}{
		{
			description: "defaults kept",
			yaml:        "tracing:\n  enabled: false\n",
			expect:      schedsim.DefaultConfig,
		},
		{
			description: "overrides",
			yaml:        "heap:\n  capacity: 4096\nscheduler:\n  policy: mlq\n  queueCapacity: 32\nstorage:\n  ganttURL: output/gantt.txt\n",
			expect: func() *schedsim.Config {
				ret := schedsim.DefaultConfig()
				ret.Heap.Capacity = 4096
				ret.Scheduler.Policy = "mlq"
				ret.Scheduler.QueueCapacity = 32
				ret.Storage.GanttURL = "output/gantt.txt"
				return ret
			},
		},
		{
			description: "environment expansion",
			yaml:        "storage:\n  procDir: ${env.SCHEDSIM_PROC_DIR}/proc\n",
			expect: func() *schedsim.Config {
				ret := schedsim.DefaultConfig()
				ret.Storage.ProcDir = "/opt/schedsim/proc"
				return ret
			},
		},
		{description: "unknown policy", yaml: "scheduler:\n  policy: lottery\n", expectErr: true},
		{description: "heap too small", yaml: "heap:\n  capacity: 8\n", expectErr: true},
		{
			description: "journal buffer",
			yaml:        "journal:\n  buffer: 16\n",
			expect: func() *schedsim.Config {
				ret := schedsim.DefaultConfig()
				ret.Journal.Buffer = 16
				return ret
			},
		},
		{description: "zero journal buffer", yaml: "journal:\n  buffer: 0\n", expectErr: true},
		{description: "zero queue", yaml: "scheduler:\n  queueCapacity: 0\n", expectErr: true},
		{description: "malformed", yaml: "heap: [", expectErr: true},
	}

	t.Setenv("SCHEDSIM_PROC_DIR", "/opt/schedsim")
	fs := afs.New()
	ctx := context.Background()
	for _, tc := range testCases {
		upload(t, fs, map[string]string{"config.yaml": tc.yaml})
		actual, err := schedsim.LoadConfig(ctx, fs, baseURL+"/config.yaml")
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		require.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect(), actual, tc.description)
	}
}

func TestNew(t *testing.T) {
	srv, err := schedsim.New()
	require.NoError(t, err)
	assert.Equal(t, "priority", srv.Policy().Name())
	assert.NotNil(t, srv.Runtime())

	config := schedsim.DefaultConfig()
	config.Scheduler.Policy = "mlq"
	srv, err = schedsim.New(schedsim.WithConfig(config))
	require.NoError(t, err)
	assert.Equal(t, "mlq", srv.Policy().Name())

	config = schedsim.DefaultConfig()
	config.Scheduler.Policy = "fifo"
	_, err = schedsim.New(schedsim.WithConfig(config))
	assert.Error(t, err)
}
