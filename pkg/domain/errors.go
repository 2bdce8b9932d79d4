package domain

import "errors"

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrWorkflowNotFound is returned when a workflow name is unknown to the loader.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrPermissionDenied is returned when a step requires a scope the job's
// effective grants do not cover.
var ErrPermissionDenied = errors.New("permission denied")

// ErrUnknownAction is returned when a `uses:` reference has no registered
// handler in the action runner.
var ErrUnknownAction = errors.New("unknown action")
