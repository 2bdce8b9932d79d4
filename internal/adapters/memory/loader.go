package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
)

// Loader is an in-memory ports.WorkflowLoader, used by tests and embedders
// that build workflow definitions programmatically.
type Loader struct {
	mu        sync.RWMutex
	workflows map[string]domain.Workflow
}

// NewLoader creates a loader seeded with the given workflows.
func NewLoader(workflows ...domain.Workflow) *Loader {
	l := &Loader{workflows: make(map[string]domain.Workflow, len(workflows))}
	for _, wf := range workflows {
		l.workflows[wf.Name] = wf
	}
	return l
}

// Put adds or replaces a workflow.
func (l *Loader) Put(wf domain.Workflow) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.workflows[wf.Name] = wf
}

// Workflows returns all definitions sorted by name.
func (l *Loader) Workflows() ([]domain.Workflow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Workflow, 0, len(l.workflows))
	for _, wf := range l.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get retrieves one workflow by name.
func (l *Loader) Get(name string) (*domain.Workflow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wf, ok := l.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrWorkflowNotFound)
	}
	return &wf, nil
}
