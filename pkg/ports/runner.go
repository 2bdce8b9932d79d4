package ports

import (
	"context"

	"github.com/aretw0/gantry/pkg/domain"
)

// ActionCall carries everything an ActionRunner needs to execute one step.
type ActionCall struct {
	RunID string
	JobID string
	Step  domain.Step

	// Env is the merged environment for the step (job env over run env).
	Env map[string]string

	// Token is the short-lived publish credential, present only when the
	// job's effective grants include id-token: write.
	Token *domain.PublishToken
}

// ActionResult is the outcome of a successful step execution.
type ActionResult struct {
	Output string
}

// ActionRunner executes opaque external steps. Implementations decide how a
// `uses:` reference or a `run:` command maps to a real process; the engine
// only sees success or failure and surfaces the failure verbatim.
type ActionRunner interface {
	// Run executes the step. A non-nil error fails the step, which fails
	// the job (fail-fast) and the run.
	Run(ctx context.Context, call ActionCall) (ActionResult, error)

	// Requires returns the permission scopes an action reference needs at
	// execution time (e.g. the publish action needs id-token: write).
	// Nil means no elevated scope is required or the action is unknown.
	Requires(uses string) domain.Permissions
}
