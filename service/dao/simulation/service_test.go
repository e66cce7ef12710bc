package simulation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/schedsim/model"
)

func intPtr(i int) *int { return &i }

func TestService_Parse(t *testing.T) {
	testCases := []struct {
		description string
		options     []Option
		input       string
		expect      *model.Simulation
		expectErr   bool
	}{
		{
			description: "plain",
			options:     []Option{WithProcDir("mem://localhost/proc")},
			input:       "2 1 2\n0 p0\n3 p1\n",
			expect: &model.Simulation{TimeSlot: 2, CPUs: 1, Processes: []*model.Descriptor{
				{StartTick: 0, Path: "mem://localhost/proc/p0"},
				{StartTick: 3, Path: "mem://localhost/proc/p1"},
			}},
		},
		{
			description: "configured priority",
			options:     []Option{WithProcDir(""), WithConfiguredPriority(true)},
			input:       "4 2 1\n1 s0 130\n",
			expect: &model.Simulation{TimeSlot: 4, CPUs: 2, Processes: []*model.Descriptor{
				{StartTick: 1, Path: "s0", Priority: intPtr(130)},
			}},
		},
		{
			description: "paging",
			options:     []Option{WithProcDir(""), WithPaging(true)},
			input:       "2 4 1\n1048576 16777216 0 0 0\n0 p0\n",
			expect: &model.Simulation{TimeSlot: 2, CPUs: 4,
				Memory:    &model.Memory{RAM: 1048576, Swap: []int{16777216, 0, 0, 0}},
				Processes: []*model.Descriptor{{StartTick: 0, Path: "p0"}},
			},
		},
		{
			description: "absolute program url kept",
			options:     []Option{WithProcDir("mem://localhost/proc")},
			input:       "1 1 1\n0 mem://localhost/other/p0\n",
			expect: &model.Simulation{TimeSlot: 1, CPUs: 1, Processes: []*model.Descriptor{
				{StartTick: 0, Path: "mem://localhost/other/p0"},
			}},
		},
		{description: "missing priority", options: []Option{WithConfiguredPriority(true)}, input: "2 1 1\n0 p0\n", expectErr: true},
		{description: "too few processes", input: "2 1 2\n0 p0\n", expectErr: true},
		{description: "process count beyond input", input: "2 1 999999999999999999\n0 p0\n", expectErr: true},
		{description: "negative start", input: "2 1 1\n-1 p0\n", expectErr: true},
		{description: "empty", input: "", expectErr: true},
	}

	for _, tc := range testCases {
		srv := New(afs.New(), tc.options...)
		actual, err := srv.Parse(tc.description, []byte(tc.input))
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		if !assert.NoError(t, err, tc.description) {
			continue
		}
		assert.EqualValues(t, tc.expect, actual, tc.description)
	}
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	srv := New(fs, WithProcDir("mem://localhost/input/proc"))

	URL := "mem://localhost/input/sched"
	assert.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader("4 2 3\n0 p1\n1 p2\n2 p3\n")))
	actual, err := srv.Load(ctx, URL)
	assert.NoError(t, err)
	assert.Equal(t, 3, len(actual.Processes))
	assert.Equal(t, "mem://localhost/input/proc/p2", actual.Processes[1].Path)

	invalid := "mem://localhost/input/invalid"
	assert.NoError(t, fs.Upload(ctx, invalid, file.DefaultFileOsMode, strings.NewReader("0 1 0\n")))
	_, err = srv.Load(ctx, invalid)
	assert.Error(t, err)

	_, err = srv.Load(ctx, "mem://localhost/input/missing")
	assert.Error(t, err)
}
