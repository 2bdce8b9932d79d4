package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
)

// MemoryStore is an in-memory implementation of RunStore for testing purposes.
type MemoryStore struct {
	data map[string]*domain.Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]*domain.Run)}
}

func (m *MemoryStore) Save(ctx context.Context, run *domain.Run) error {
	// Shallow copy plus job slice copy to simulate serialization.
	copied := *run
	copied.Jobs = append([]domain.JobRun(nil), run.Jobs...)
	m.data[run.ID] = &copied
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*domain.Run, error) {
	run, ok := m.data[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

var _ ports.RunStore = (*MemoryStore)(nil)

func TestMemoryStoreContract(t *testing.T) {
	// The in-memory store doubles as the reference implementation for the
	// contract suite that real adapters (file, Redis) also run.
	ports.RunStoreContract(t, NewMemoryStore())
}
