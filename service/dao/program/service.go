// Package program loads process programs.  A program file starts with a
// "<priority> <count>" header followed by count instructions, each an opcode
// and its integer arguments.
package program

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/schedsim/internal/location"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/dao/scan"
)

// Service loads programs through afs
type Service struct {
	fs afs.Service
}

// Load reads and parses the program at URL
func (s *Service) Load(ctx context.Context, URL string) (*model.Program, error) {
	data, err := s.fs.DownloadWithURL(ctx, location.Resolve(URL))
	if err != nil {
		return nil, fmt.Errorf("failed to load program from %s: %w", URL, err)
	}
	ret, err := Parse(URL, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse program from %s: %w", URL, err)
	}
	return ret, nil
}

// Parse decodes a program
func Parse(name string, data []byte) (*model.Program, error) {
	scanner := scan.New(name, data)
	priority, err := scanner.Int()
	if err != nil {
		return nil, fmt.Errorf("priority: %w", err)
	}
	count, err := scanner.Uint()
	if err != nil {
		return nil, fmt.Errorf("instruction count: %w", err)
	}
	ret := &model.Program{Priority: priority, Instructions: []*model.Instruction{}}
	for i := 0; i < count; i++ {
		instruction, err := parseInstruction(scanner)
		if err != nil {
			return nil, fmt.Errorf("instruction[%d]: %w", i, err)
		}
		ret.Instructions = append(ret.Instructions, instruction)
	}
	return ret, nil
}

func parseInstruction(scanner *scan.Scanner) (*model.Instruction, error) {
	word, err := scanner.Word()
	if err != nil {
		return nil, err
	}
	opcode := model.Opcode(word)
	arity := opcode.Arity()
	if arity < 0 {
		return nil, fmt.Errorf("unknown opcode: %q", word)
	}
	ret := &model.Instruction{Opcode: opcode}
	if arity == 0 {
		return ret, nil
	}
	ret.Args = make([]int, arity)
	for i := range ret.Args {
		if ret.Args[i], err = scanner.Int(); err != nil {
			return nil, fmt.Errorf("%v argument %d: %w", opcode, i, err)
		}
	}
	return ret, nil
}

// New creates a program loader
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
