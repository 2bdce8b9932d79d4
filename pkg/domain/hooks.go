package domain

import (
	"context"
	"time"
)

// HookEventType defines the category of a lifecycle event.
type HookEventType string

const (
	HookRunStart   HookEventType = "run_start"
	HookRunFinish  HookEventType = "run_finish"
	HookJobFinish  HookEventType = "job_finish"
	HookStepFinish HookEventType = "step_finish"
)

// RunEvent describes a run-level lifecycle transition.
type RunEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      HookEventType `json:"type"`
	RunID     string        `json:"run_id"`
	Workflow  string        `json:"workflow"`
	Status    RunStatus     `json:"status"`
}

// StepEvent describes a finished step, including skipped ones.
type StepEvent struct {
	Timestamp  time.Time     `json:"timestamp"`
	Type       HookEventType `json:"type"`
	RunID      string        `json:"run_id"`
	JobID      string        `json:"job_id"`
	Step       string        `json:"step"`
	Conclusion Conclusion    `json:"conclusion"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the execution path; keep them cheap.
type LifecycleHooks struct {
	OnRunStart   func(context.Context, *RunEvent)
	OnRunFinish  func(context.Context, *RunEvent)
	OnJobFinish  func(context.Context, *RunEvent)
	OnStepFinish func(context.Context, *StepEvent)
}
