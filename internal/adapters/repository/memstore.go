package repository

import (
	"context"
	"sort"
	"sync"
)

// MemStore is the in-memory Store used by single-process batch runs.
type MemStore struct {
	mu       sync.RWMutex
	outcomes map[string]Outcome
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{outcomes: make(map[string]Outcome)}
}

func (s *MemStore) Record(_ context.Context, o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[o.Path] = o
	return nil
}

func (s *MemStore) Get(_ context.Context, path string) (Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.outcomes[path]
	if !ok {
		return Outcome{}, ErrNotFound
	}
	return o, nil
}

// Summary orders outcomes so a reader scanning from the top sees the
// recordings that need attention first.
func (s *MemStore) Summary(_ context.Context) ([]Outcome, error) {
	s.mu.RLock()
	out := make([]Outcome, 0, len(s.outcomes))
	for _, o := range s.outcomes {
		out = append(out, o)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Failed() != b.Failed() {
			return a.Failed()
		}
		if a.Calibrated != b.Calibrated {
			return !a.Calibrated
		}
		if a.ErrEnd != b.ErrEnd {
			return a.ErrEnd > b.ErrEnd
		}
		return a.Path < b.Path
	})
	return out, nil
}

func (s *MemStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outcomes)
}
