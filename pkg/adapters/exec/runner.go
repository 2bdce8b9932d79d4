package exec

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Runner implements ports.ActionRunner by executing local processes.
// It follows a strict registry pattern: only allow-listed action references
// are executed, and `run:` steps must be enabled explicitly.
type Runner struct {
	registry map[string]RegisteredAction
	allowRun bool
	baseDir  string
	timeout  time.Duration
}

// RegisteredAction defines an allowed external action invocation: the local
// command that stands in for the opaque third-party step, and the permission
// scopes the action needs at execution time.
type RegisteredAction struct {
	Command  string
	Args     []string
	Requires domain.Permissions
}

// invocationParams is the conventional shape of a step's `with:` block as
// understood by this adapter. Unknown keys are passed through as
// KEY=value environment entries.
type invocationParams struct {
	Args       []string          `mapstructure:"args"`
	Env        map[string]string `mapstructure:"env"`
	WorkingDir string            `mapstructure:"working-directory"`
}

// Option configures the runner.
type Option func(*Runner)

// WithAction adds a trusted action to the allow-list. The key is the action
// repo without the pinned hash, e.g. "actions/checkout".
func WithAction(repo string, action RegisteredAction) Option {
	return func(r *Runner) {
		r.registry[repo] = action
	}
}

// WithRunSteps enables direct `run:` command execution via the shell.
func WithRunSteps(allow bool) Option {
	return func(r *Runner) {
		r.allowRun = allow
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout caps the wall time of a single step.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// NewRunner creates a process-backed action runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		registry: make(map[string]RegisteredAction),
		timeout:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted action outside the option chain.
func (r *Runner) Register(repo string, action RegisteredAction) {
	r.registry[repo] = action
}

// Requires returns the scopes a registered action needs, nil for unknown
// actions and `run:` steps.
func (r *Runner) Requires(uses string) domain.Permissions {
	action, ok := r.registry[ActionRepo(uses)]
	if !ok {
		return nil
	}
	return action.Requires
}

// Run executes one step.
func (r *Runner) Run(ctx context.Context, call ports.ActionCall) (ports.ActionResult, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if call.Step.Run != "" {
		return r.runShell(ctx, call)
	}
	return r.runAction(ctx, call)
}

// runShell executes a `run:` step through the shell.
func (r *Runner) runShell(ctx context.Context, call ports.ActionCall) (ports.ActionResult, error) {
	if !r.allowRun {
		return ports.ActionResult{}, fmt.Errorf("run steps are disabled for this runner")
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", call.Step.Run)
	cmd.Dir = r.baseDir
	cmd.Env = flattenEnv(call)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return ports.ActionResult{Output: out.String()},
			fmt.Errorf("run step %q: %w", call.Step.DisplayName(), err)
	}
	return ports.ActionResult{Output: out.String()}, nil
}

// runAction executes a registered `uses:` step.
func (r *Runner) runAction(ctx context.Context, call ports.ActionCall) (ports.ActionResult, error) {
	repo := ActionRepo(call.Step.Uses)
	action, ok := r.registry[repo]
	if !ok {
		return ports.ActionResult{}, fmt.Errorf("%q: %w", repo, domain.ErrUnknownAction)
	}

	var params invocationParams
	if call.Step.With != nil {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &params,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return ports.ActionResult{}, fmt.Errorf("failed to build with-decoder: %w", err)
		}
		if err := decoder.Decode(call.Step.With); err != nil {
			return ports.ActionResult{}, fmt.Errorf("invalid with block for %q: %w", repo, err)
		}
	}

	args := append(append([]string(nil), action.Args...), params.Args...)
	cmd := exec.CommandContext(ctx, action.Command, args...)
	cmd.Dir = r.baseDir
	if params.WorkingDir != "" {
		cmd.Dir = params.WorkingDir
	}

	env := flattenEnv(call)
	for k, v := range params.Env {
		env = append(env, k+"="+v)
	}
	cmd.Env = env

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		// Surface the external tool's failure verbatim.
		return ports.ActionResult{Output: out.String()},
			fmt.Errorf("action %q: %w", repo, err)
	}
	return ports.ActionResult{Output: out.String()}, nil
}

// flattenEnv builds the step environment: the merged call env plus the
// publish token, when one was minted for the job.
func flattenEnv(call ports.ActionCall) []string {
	env := make([]string, 0, len(call.Env)+3)
	for k, v := range call.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, "GANTRY_RUN_ID="+call.RunID)
	if call.Token != nil {
		env = append(env, "GANTRY_ID_TOKEN="+call.Token.Value)
	}
	return env
}

// ActionRepo strips the pinned hash from a `uses:` reference.
func ActionRepo(uses string) string {
	if idx := strings.LastIndex(uses, "@"); idx >= 0 {
		return uses[:idx]
	}
	return uses
}
