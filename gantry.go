package gantry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/gantry/internal/logging"
	"github.com/aretw0/gantry/internal/runtime"
	"github.com/aretw0/gantry/pkg/adapters/dir"
	"github.com/aretw0/gantry/pkg/adapters/exec"
	"github.com/aretw0/gantry/pkg/catalog"
	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/aretw0/gantry/pkg/schema"
)

// Engine is the high-level entry point for the Gantry library. It wraps the
// internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime     *runtime.Engine
	loader      ports.WorkflowLoader
	actions     ports.ActionRunner
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom WorkflowLoader, bypassing the default
// directory or catalog initialization.
func WithLoader(l ports.WorkflowLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithActionRunner replaces the default allow-list action runner.
func WithActionRunner(r ports.ActionRunner) Option {
	return func(e *Engine) {
		e.actions = r
	}
}

// WithStore enables run persistence.
func WithStore(store ports.RunStore) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithStore(store))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRuntimeOptions forwards options to the internal runtime, for callers
// that need metrics, a fake clock, or a custom token lifetime.
func WithRuntimeOptions(opts ...runtime.EngineOption) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, opts...)
	}
}

// New initializes a Gantry Engine. With a workflowDir it loads definitions
// from disk; with an empty dir it falls back to the embedded catalog. Every
// loaded workflow must pass validation.
func New(workflowDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if workflowDir == "" {
			eng.loader = catalog.NewLoader()
		} else {
			loader, err := dir.New(workflowDir)
			if err != nil {
				return nil, fmt.Errorf("failed to load workflows: %w", err)
			}
			eng.loader = loader
		}
	}

	if eng.actions == nil {
		eng.actions = exec.NewRunner()
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if err := eng.Validate(); err != nil {
		return nil, err
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)

	eng.runtime = runtime.NewEngine(eng.loader, eng.actions, runtimeOpts...)
	return eng, nil
}

// Dispatch routes an event to every workflow whose triggers match and
// executes them. It returns one run per triggered workflow.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error) {
	return e.runtime.Dispatch(ctx, ev)
}

// Validate checks every loaded workflow against the hardening rules.
func (e *Engine) Validate() error {
	wfs, err := e.loader.Workflows()
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}
	for i := range wfs {
		if err := schema.Validate(&wfs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Workflows returns the loaded workflow definitions.
func (e *Engine) Workflows() ([]domain.Workflow, error) {
	return e.loader.Workflows()
}

// Watch returns a channel that signals when the underlying definitions
// change. Returns an error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan struct{}, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, fmt.Errorf("current loader does not support watching")
}

// Loader returns the underlying WorkflowLoader used by the engine.
func (e *Engine) Loader() ports.WorkflowLoader {
	return e.loader
}
