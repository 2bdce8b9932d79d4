package ports

import (
	"context"

	"github.com/aretw0/gantry/pkg/domain"
)

// RunStore defines the interface for persisting run records.
// Runs are written for observation only: no run reads another run's state.
type RunStore interface {
	// Save persists the run, keyed by run ID.
	Save(ctx context.Context, run *domain.Run) error

	// Load retrieves a run by ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, id string) (*domain.Run, error)

	// Delete removes the run record.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
