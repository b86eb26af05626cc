package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dunamismax/imgbox/internal/domain"
)

type MemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
}

func NewMemoryRunStore() *MemoryRunStore {
	return &MemoryRunStore{
		runs: make(map[string]domain.Run),
	}
}

func (s *MemoryRunStore) Create(_ context.Context, run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return nil
}

func (s *MemoryRunStore) Get(_ context.Context, id string) (domain.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return cloneRun(run), ok, nil
}

func (s *MemoryRunStore) UpdateStatus(_ context.Context, id string, update domain.StatusUpdate) (domain.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return domain.Run{}, ErrRunNotFound
	}

	applyUpdate(&run, update)
	run.UpdatedAt = time.Now().UTC()
	s.runs[id] = run
	return cloneRun(run), nil
}

func cloneRun(run domain.Run) domain.Run {
	run.Args = append([]string(nil), run.Args...)
	run.Outputs = append([]string(nil), run.Outputs...)
	return run
}
