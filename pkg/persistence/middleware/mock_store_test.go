package middleware

import (
	"context"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
)

// mockStore records the exact runs that reach the underlying layer, so
// tests can assert on what was actually persisted.
type mockStore struct {
	mu   sync.Mutex
	runs map[string]*domain.Run
}

func newMockStore() *mockStore {
	return &mockStore{runs: make(map[string]*domain.Run)}
}

func (s *mockStore) Save(_ context.Context, run *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *mockStore) Load(_ context.Context, id string) (*domain.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (s *mockStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	return nil
}

func (s *mockStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids, nil
}

// raw returns what the layer below the middleware holds for an ID.
func (s *mockStore) raw(id string) *domain.Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}
