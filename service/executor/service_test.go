package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/allocator"
)

func newHeap(t *testing.T) *allocator.Heap {
	heap := allocator.New()
	require.NoError(t, heap.Init(4096))
	return heap
}

func TestService_Execute(t *testing.T) {
	testCases := []struct {
		description string
		program     *model.Program
		expectErr   []bool
		expectFree  int
		expectHeld  []int
	}{
		{
			description: "calc only",
			program:     model.Calc(1, 3),
			expectErr:   []bool{false, false, false},
			expectFree:  4096,
		},
		{
			description: "alloc then free",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{100, 0}},
				&model.Instruction{Opcode: model.OpFree, Args: []int{0}},
			),
			expectErr:  []bool{false, false},
			expectFree: 4096,
		},
		{
			description: "alloc is held",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{100, 2}},
				&model.Instruction{Opcode: model.OpRead, Args: []int{2, 0, 1}},
				&model.Instruction{Opcode: model.OpWrite, Args: []int{7, 2, 0}},
			),
			expectErr:  []bool{false, false, false},
			expectFree: 4096 - 100 - allocator.HeaderSize,
			expectHeld: []int{2},
		},
		{
			description: "free of empty register",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpFree, Args: []int{3}},
			),
			expectErr:  []bool{true},
			expectFree: 4096,
		},
		{
			description: "register out of range",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{10, model.Registers}},
			),
			expectErr:  []bool{true},
			expectFree: 4096,
		},
		{
			description: "out of memory",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{1 << 20, 0}},
			),
			expectErr:  []bool{true},
			expectFree: 4096,
		},
		{
			description: "missing arguments",
			program: model.NewProgram(1,
				&model.Instruction{Opcode: model.OpAlloc, Args: []int{10}},
			),
			expectErr:  []bool{true},
			expectFree: 4096,
		},
	}

	for _, tc := range testCases {
		heap := newHeap(t)
		srv := NewService(heap)
		process := model.NewProcess(1, "p", tc.program)
		for i, expectErr := range tc.expectErr {
			err := srv.Execute(context.Background(), process)
			assert.Equal(t, expectErr, err != nil, "%v: step %d: %v", tc.description, i, err)
			assert.Equal(t, i+1, process.PC, tc.description)
		}
		assert.True(t, process.Finished(), tc.description)
		assert.Equal(t, tc.expectFree, heap.Stats().Free, tc.description)
		for _, reg := range tc.expectHeld {
			assert.True(t, process.Allocated[reg], tc.description)
		}
	}
}

func TestService_ExecuteCompleted(t *testing.T) {
	srv := NewService(newHeap(t))
	process := model.NewProcess(1, "p", model.Calc(0, 0))
	err := srv.Execute(context.Background(), process)
	assert.ErrorIs(t, err, ErrProgramCompleted)
}

func TestService_Release(t *testing.T) {
	heap := newHeap(t)
	var executed []string
	srv := NewService(heap, WithListener(func(process *model.Process, instruction *model.Instruction, err error) {
		executed = append(executed, instruction.String())
	}))
	process := model.NewProcess(1, "p", model.NewProgram(1,
		&model.Instruction{Opcode: model.OpAlloc, Args: []int{64, 0}},
		&model.Instruction{Opcode: model.OpAlloc, Args: []int{32, 1}},
	))
	for !process.Finished() {
		require.NoError(t, srv.Execute(context.Background(), process))
	}
	assert.Equal(t, []string{"alloc 64 0", "alloc 32 1"}, executed)
	assert.Less(t, heap.Stats().Free, 4096)

	srv.Release(process)
	assert.Equal(t, [model.Registers]bool{}, process.Allocated)
	// register 0 is released first, so its block never merges with the second one
	assert.Equal(t, allocator.Stats{Total: 4096, Free: 4096, FreeBlocks: 2}, heap.Stats())
}
