package program

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/schedsim/model"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expect      *model.Program
		expectErr   bool
	}{
		{
			description: "calc program",
			input:       "1 2\ncalc\ncalc\n",
			expect:      model.Calc(1, 2),
		},
		{
			description: "mixed instructions",
			input:       "3 4\nalloc 300 0\nwrite 100 0 20\nread 0 20 1\nfree 0\n",
			expect: model.NewProgram(3,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{300, 0}},
				&model.Instruction{Opcode: model.OpWrite, Args: []int{100, 0, 20}},
				&model.Instruction{Opcode: model.OpRead, Args: []int{0, 20, 1}},
				&model.Instruction{Opcode: model.OpFree, Args: []int{0}},
			),
		},
		{
			description: "empty program",
			input:       "0 0",
			expect:      model.NewProgram(0),
		},
		{description: "unknown opcode", input: "1 1\njump 3\n", expectErr: true},
		{description: "missing argument", input: "1 1\nalloc 300\n", expectErr: true},
		{description: "too few instructions", input: "1 3\ncalc\n", expectErr: true},
		{description: "instruction count beyond input", input: "1 999999999999999999\ncalc\n", expectErr: true},
		{description: "missing header", input: "calc", expectErr: true},
	}

	for _, tc := range testCases {
		actual, err := Parse(tc.description, []byte(tc.input))
		if tc.expectErr {
			assert.Error(t, err, tc.description)
			continue
		}
		if !assert.NoError(t, err, tc.description) {
			continue
		}
		if len(tc.expect.Instructions) == 0 {
			tc.expect.Instructions = []*model.Instruction{}
		}
		assert.EqualValues(t, tc.expect, actual, tc.description)
	}
}

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	URL := "mem://localhost/input/proc/p0"
	assert.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader("2 3\ncalc\nalloc 10 1\nfree 1\n")))

	srv := New(fs)
	actual, err := srv.Load(ctx, URL)
	assert.NoError(t, err)
	assert.Equal(t, 2, actual.Priority)
	assert.Equal(t, 3, actual.Size())

	_, err = srv.Load(ctx, "mem://localhost/input/proc/missing")
	assert.Error(t, err)
}
