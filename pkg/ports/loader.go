package ports

import (
	"context"

	"github.com/aretw0/gantry/pkg/domain"
)

// WorkflowLoader defines how the engine retrieves workflow definitions.
// This allows the storage layer (directory, embedded catalog, memory) to be
// decoupled.
type WorkflowLoader interface {
	// Workflows returns every loaded workflow definition.
	Workflows() ([]domain.Workflow, error)

	// Get retrieves one workflow by name.
	// Returns domain.ErrWorkflowNotFound if the name is unknown.
	Get(name string) (*domain.Workflow, error)
}

// Watchable defines an interface for loaders that can notify about backend
// changes. This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying
	// definitions change. It abstracts away the specific event details,
	// signaling only that a reload happened.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
