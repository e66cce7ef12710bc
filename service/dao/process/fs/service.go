// Package fs stores process records as JSON files through afs, one file per
// PID under a base URL.
package fs

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sugawarayuuta/sonnet"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/schedsim/internal/location"
	"github.com/viant/schedsim/model"
	"github.com/viant/schedsim/service/dao"
	"github.com/viant/schedsim/service/dao/criteria"
)

// Service implements a file based process table
type Service struct {
	baseURL string
	fs      afs.Service
	mu      sync.RWMutex
}

var _ dao.Service[int, model.Process] = (*Service)(nil)

// Save writes the process record
func (s *Service) Save(ctx context.Context, process *model.Process) error {
	if process == nil {
		return dao.ErrNilEntity
	}
	if process.PID < 0 {
		return dao.ErrInvalidID
	}
	data, err := sonnet.Marshal(process.Clone())
	if err != nil {
		return fmt.Errorf("failed to marshal process %d: %w", process.PID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.processURL(process.PID)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save process to %s: %w", URL, err)
	}
	return nil
}

// Load reads the record of pid
func (s *Service) Load(ctx context.Context, pid int) (*model.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.processURL(pid)
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return nil, fmt.Errorf("%w: process %d", dao.ErrNotFound, pid)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read process %d: %w", pid, err)
	}
	ret := &model.Process{}
	if err = sonnet.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal process %d: %w", pid, err)
	}
	return ret, nil
}

// Delete removes the record of pid
func (s *Service) Delete(ctx context.Context, pid int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.processURL(pid)
	if ok, _ := s.fs.Exists(ctx, URL); !ok {
		return fmt.Errorf("%w: process %d", dao.ErrNotFound, pid)
	}
	return s.fs.Delete(ctx, URL)
}

// List reads every record ordered by PID; unreadable files are skipped.
// Supported parameters are criteria.State and criteria.CPU.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ok, _ := s.fs.Exists(ctx, s.baseURL); !ok {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list processes in %s: %w", s.baseURL, err)
	}
	var ret []*model.Process
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("failed to read process file %s: %v", object.URL(), err)
			continue
		}
		process := &model.Process{}
		if err = sonnet.Unmarshal(data, process); err != nil {
			log.Printf("failed to unmarshal process from %s: %v", object.URL(), err)
			continue
		}
		if !criteria.FilterByState(process.State, parameters) || !criteria.FilterByCPU(process.CPU, parameters) {
			continue
		}
		ret = append(ret, process)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].PID < ret[j].PID })
	return ret, nil
}

func (s *Service) processURL(pid int) string {
	return url.Join(s.baseURL, strconv.Itoa(pid)+".json")
}

// New creates a file based process table rooted at baseURL
func New(fs afs.Service, baseURL string) (*Service, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	return &Service{baseURL: location.Resolve(baseURL), fs: fs}, nil
}
