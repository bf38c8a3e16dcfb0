package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store persists executions.
type Store interface {
	// Save inserts or replaces an execution.
	Save(ctx context.Context, e *Execution) error
	// List returns the latest executions, newest first. A limit of 0 returns all.
	List(ctx context.Context, limit int) ([]Execution, error)
	// Get returns the execution whose ID equals id or, failing that, is the
	// only one starting with id.
	Get(ctx context.Context, id string) (Execution, error)
}

// MemoryStore keeps executions in memory.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[string]Execution
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]Execution)}
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, e *Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[e.ID] = e.snapshot()
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Execution, 0, len(s.runs))
	for _, e := range s.runs {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.runs[id]; ok {
		return e, nil
	}
	var matches []Execution
	for runID, e := range s.runs {
		if id != "" && strings.HasPrefix(runID, id) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return Execution{}, fmt.Errorf("%w: %q", ErrExecutionNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Execution{}, fmt.Errorf("%w: %q matches %d executions", ErrAmbiguousExecution, id, len(matches))
	}
}
