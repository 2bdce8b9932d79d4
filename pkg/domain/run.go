package domain

import "time"

// RunStatus defines the lifecycle of a run or job run.
type RunStatus string

const (
	StatusQueued    RunStatus = "queued"
	StatusRunning   RunStatus = "running"
	StatusSucceeded RunStatus = "succeeded"
	StatusFailed    RunStatus = "failed"
)

// Conclusion is the terminal outcome of a single step.
type Conclusion string

const (
	ConclusionSuccess Conclusion = "success"
	ConclusionFailure Conclusion = "failure"

	// ConclusionSkipped marks steps that never ran because an earlier step
	// in the same job failed (fail-fast ordering).
	ConclusionSkipped Conclusion = "skipped"
)

// Run is one execution of a workflow against an event. Runs are stateless
// with respect to each other: no run consumes data a previous run persisted.
type Run struct {
	ID           string    `json:"id"`
	WorkflowName string    `json:"workflow"`
	Event        Event     `json:"event"`
	Status       RunStatus `json:"status"`
	Jobs         []JobRun  `json:"jobs"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`

	// Sealed carries the encrypted record when a store middleware seals
	// runs at rest. Empty for plaintext records.
	Sealed string `json:"sealed,omitempty"`
}

// NewRun creates a queued run for a workflow/event pair.
func NewRun(id, workflowName string, event Event) *Run {
	return &Run{
		ID:           id,
		WorkflowName: workflowName,
		Event:        event,
		Status:       StatusQueued,
	}
}

// Failed reports whether any job in the run failed.
func (r *Run) Failed() bool {
	for _, j := range r.Jobs {
		if j.Status == StatusFailed {
			return true
		}
	}
	return false
}

// JobRun is the execution record of one job (or one matrix entry of a job).
type JobRun struct {
	JobID string `json:"job_id"`

	// MatrixKey identifies the matrix entry, e.g. "language=go". Empty for
	// non-matrix jobs.
	MatrixKey string `json:"matrix_key,omitempty"`

	// Permissions are the effective grants the job ran with, after merging
	// job-level elevation over the workflow defaults.
	Permissions Permissions `json:"permissions,omitempty"`

	Status     RunStatus `json:"status"`
	Steps      []StepRun `json:"steps"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// StepRun records a single step outcome. The external tool's failure is
// surfaced verbatim in Error; no custom formatting is applied.
type StepRun struct {
	Name       string     `json:"name"`
	Uses       string     `json:"uses,omitempty"`
	Conclusion Conclusion `json:"conclusion"`
	Output     string     `json:"output,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at,omitempty"`
	FinishedAt time.Time  `json:"finished_at,omitempty"`
}
