package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/observability"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/aretw0/gantry/pkg/trigger"
	"github.com/google/uuid"
)

// Engine is the core run executor. It evaluates events against loaded
// workflows and drives matching runs through their lifecycle
// (queued -> running -> succeeded/failed).
type Engine struct {
	loader  ports.WorkflowLoader
	actions ports.ActionRunner
	store   ports.RunStore
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	metrics *observability.Metrics

	now      func() time.Time
	tokenTTL time.Duration
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithStore sets the run persistence backend. Without one, runs are
// ephemeral (returned to the caller but not stored).
func WithStore(store ports.RunStore) EngineOption {
	return func(e *Engine) { e.store = store }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) { e.hooks = hooks }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *observability.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

// WithTokenTTL sets the lifetime of minted publish tokens.
func WithTokenTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) { e.tokenTTL = ttl }
}

// NewEngine creates an engine over a workflow source and an action backend.
func NewEngine(loader ports.WorkflowLoader, actions ports.ActionRunner, opts ...EngineOption) *Engine {
	e := &Engine{
		loader:   loader,
		actions:  actions,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		tokenTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dispatch evaluates the event against every loaded workflow. Each match
// yields an independent run; runs execute concurrently with no coordination,
// since none shares writable state. A trigger mismatch is not an error.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) ([]*domain.Run, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = e.now().UTC()
	}

	workflows, err := e.loader.Workflows()
	if err != nil {
		return nil, fmt.Errorf("failed to load workflows: %w", err)
	}

	var matched []domain.Workflow
	for _, wf := range workflows {
		// An addressed event (dispatch or schedule) targets one workflow.
		if ev.Workflow != "" && ev.Workflow != wf.Name {
			continue
		}
		if trigger.Matches(wf.On, ev) {
			matched = append(matched, wf)
		}
	}

	e.logger.Info("event dispatched",
		"event", string(ev.Kind), "ref", ev.Ref, "matched", len(matched))

	runs := make([]*domain.Run, len(matched))
	var wg sync.WaitGroup
	for i, wf := range matched {
		i, wf := i, wf
		wg.Add(1)
		go func() {
			defer wg.Done()
			runs[i] = e.Execute(ctx, wf, ev)
		}()
	}
	wg.Wait()

	sort.Slice(runs, func(i, j int) bool { return runs[i].WorkflowName < runs[j].WorkflowName })
	return runs, nil
}

// Execute runs one workflow against an event, unconditionally (trigger
// matching already happened in Dispatch, or the caller fires deliberately).
func (e *Engine) Execute(ctx context.Context, wf domain.Workflow, ev domain.Event) *domain.Run {
	run := domain.NewRun(uuid.NewString(), wf.Name, ev)
	run.StartedAt = e.now()
	e.persist(ctx, run)

	run.Status = domain.StatusRunning
	e.fireRunHook(ctx, e.hooks.OnRunStart, run, domain.HookRunStart)
	e.persist(ctx, run)

	logger := e.logger.With("run", run.ID, "workflow", wf.Name)
	logger.Info("run started", "event", string(ev.Kind), "ref", ev.Ref)

	for i := range wf.Jobs {
		job := &wf.Jobs[i]

		jobRuns := e.executeJob(ctx, run, &wf, job)
		run.Jobs = append(run.Jobs, jobRuns...)
		e.fireRunHook(ctx, e.hooks.OnJobFinish, run, domain.HookJobFinish)

		// Fail-fast across jobs: a failed job aborts the pipeline.
		if run.Failed() {
			break
		}
	}

	if run.Failed() {
		run.Status = domain.StatusFailed
	} else {
		run.Status = domain.StatusSucceeded
	}
	run.FinishedAt = e.now()

	if e.metrics != nil {
		e.metrics.RunsTotal.WithLabelValues(wf.Name, string(run.Status)).Inc()
	}
	e.fireRunHook(ctx, e.hooks.OnRunFinish, run, domain.HookRunFinish)
	e.persist(ctx, run)

	logger.Info("run finished", "status", string(run.Status))
	return run
}

// executeJob resolves permissions and the matrix, then executes each entry.
func (e *Engine) executeJob(ctx context.Context, run *domain.Run, wf *domain.Workflow, job *domain.Job) []domain.JobRun {
	perms := job.EffectivePermissions(wf.Permissions)

	// Jobs granted id-token: write receive a run-scoped publish credential
	// in place of any long-lived secret.
	var token *domain.PublishToken
	if perms.Allows(domain.ScopeIDToken, domain.AccessWrite) {
		minted := e.mintPublishToken(run)
		token = &minted
		if e.metrics != nil {
			e.metrics.TokensMinted.Inc()
		}
	}

	entries := ExpandMatrix(job.Strategy)
	if len(entries) == 1 {
		return []domain.JobRun{e.executeEntry(ctx, run, wf, job, perms, token, entries[0])}
	}
	return e.runMatrix(ctx, run, wf, job, perms, token, entries)
}

// executeEntry runs the steps of one job (or matrix entry) strictly in
// order. Step N does not begin until step N-1 succeeded; once a step fails,
// the remaining steps are recorded as skipped.
func (e *Engine) executeEntry(ctx context.Context, run *domain.Run, wf *domain.Workflow, job *domain.Job, perms domain.Permissions, token *domain.PublishToken, entry MatrixEntry) domain.JobRun {
	jr := domain.JobRun{
		JobID:       job.ID,
		MatrixKey:   entry.Key,
		Permissions: perms,
		Status:      domain.StatusRunning,
		StartedAt:   e.now(),
	}

	failed := false
	for _, step := range job.Steps {
		if failed {
			jr.Steps = append(jr.Steps, domain.StepRun{
				Name:       step.DisplayName(),
				Uses:       step.Uses,
				Conclusion: domain.ConclusionSkipped,
			})
			if e.metrics != nil {
				e.metrics.StepsSkipped.WithLabelValues(wf.Name, job.ID).Inc()
			}
			e.fireStepHook(ctx, run, job, step, domain.ConclusionSkipped, 0)
			continue
		}

		sr := e.executeStep(ctx, run, wf, job, step, perms, token, entry)
		jr.Steps = append(jr.Steps, sr)
		if sr.Conclusion == domain.ConclusionFailure {
			failed = true
		}
	}

	if failed {
		jr.Status = domain.StatusFailed
	} else {
		jr.Status = domain.StatusSucceeded
	}
	jr.FinishedAt = e.now()
	return jr
}

func (e *Engine) executeStep(ctx context.Context, run *domain.Run, wf *domain.Workflow, job *domain.Job, step domain.Step, perms domain.Permissions, token *domain.PublishToken, entry MatrixEntry) domain.StepRun {
	sr := domain.StepRun{
		Name:      step.DisplayName(),
		Uses:      step.Uses,
		StartedAt: e.now(),
	}

	// Permission gate: an action that needs a scope the effective grants do
	// not cover fails explicitly, before anything executes.
	if step.Uses != "" {
		for scope, access := range e.actions.Requires(step.Uses) {
			if perms.Allows(scope, access) {
				continue
			}
			sr.Conclusion = domain.ConclusionFailure
			sr.Error = fmt.Sprintf("scope %s: %s: %v", scope, access, domain.ErrPermissionDenied)
			sr.FinishedAt = e.now()
			if e.metrics != nil {
				e.metrics.PermissionDenied.WithLabelValues(wf.Name, scope).Inc()
			}
			e.fireStepHook(ctx, run, job, step, sr.Conclusion, sr.FinishedAt.Sub(sr.StartedAt))
			return sr
		}
	}

	res, err := e.actions.Run(ctx, ports.ActionCall{
		RunID: run.ID,
		JobID: job.ID,
		Step:  step,
		Env:   entry.MergeEnv(step.Env),
		Token: token,
	})

	sr.Output = res.Output
	sr.FinishedAt = e.now()
	duration := sr.FinishedAt.Sub(sr.StartedAt)

	if err != nil {
		sr.Conclusion = domain.ConclusionFailure
		sr.Error = err.Error()
		e.logger.Warn("step failed",
			"run", run.ID, "job", job.ID, "step", sr.Name, "err", err)
	} else {
		sr.Conclusion = domain.ConclusionSuccess
	}

	if e.metrics != nil {
		e.metrics.ObserveStep(wf.Name, job.ID, duration)
	}
	e.fireStepHook(ctx, run, job, step, sr.Conclusion, duration)
	return sr
}

// persist saves the run best-effort; storage is for observation, so a store
// failure is logged, not fatal to the run.
func (e *Engine) persist(ctx context.Context, run *domain.Run) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, run); err != nil {
		e.logger.Error("failed to persist run", "run", run.ID, "err", err)
	}
}

func (e *Engine) fireRunHook(ctx context.Context, hook func(context.Context, *domain.RunEvent), run *domain.Run, typ domain.HookEventType) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.RunEvent{
		Timestamp: e.now(),
		Type:      typ,
		RunID:     run.ID,
		Workflow:  run.WorkflowName,
		Status:    run.Status,
	})
}

func (e *Engine) fireStepHook(ctx context.Context, run *domain.Run, job *domain.Job, step domain.Step, conclusion domain.Conclusion, d time.Duration) {
	if e.hooks.OnStepFinish == nil {
		return
	}
	e.hooks.OnStepFinish(ctx, &domain.StepEvent{
		Timestamp:  e.now(),
		Type:       domain.HookStepFinish,
		RunID:      run.ID,
		JobID:      job.ID,
		Step:       step.DisplayName(),
		Conclusion: conclusion,
		Duration:   d,
	})
}
