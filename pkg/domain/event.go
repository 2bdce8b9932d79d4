package domain

import (
	"strings"
	"time"
)

// EventKind defines the category of a trigger event.
type EventKind string

const (
	EventPush        EventKind = "push"
	EventPullRequest EventKind = "pull_request"
	EventMergeGroup  EventKind = "merge_group"
	EventSchedule    EventKind = "schedule"
	EventDispatch    EventKind = "workflow_dispatch"
)

const (
	refHeadsPrefix = "refs/heads/"
	refTagsPrefix  = "refs/tags/"
)

// Event is one delivery on the trigger surface. Each event is evaluated
// against every loaded workflow independently; a mismatch is not an error,
// the workflow simply does not fire.
type Event struct {
	// ID is the delivery identifier (webhook delivery id or generated).
	ID string `json:"id"`

	Kind EventKind `json:"kind"`

	// Ref is the full git ref for push events, e.g. "refs/heads/main" or
	// "refs/tags/v1.2.3".
	Ref string `json:"ref,omitempty"`

	// Branch is the target branch for pull_request and merge_group events.
	Branch string `json:"branch,omitempty"`

	// HeadSHA is the commit the run evaluates.
	HeadSHA string `json:"head_sha,omitempty"`

	// Workflow names the target for workflow_dispatch events. Empty means
	// the dispatch addresses every dispatchable workflow.
	Workflow string `json:"workflow,omitempty"`

	ReceivedAt time.Time `json:"received_at"`
}

// IsTag reports whether the event ref points at a tag.
func (e Event) IsTag() bool {
	return strings.HasPrefix(e.Ref, refTagsPrefix)
}

// TagName returns the tag name without the refs/tags/ prefix, or "".
func (e Event) TagName() string {
	if !e.IsTag() {
		return ""
	}
	return strings.TrimPrefix(e.Ref, refTagsPrefix)
}

// BranchName returns the branch the event addresses. For push events it is
// derived from the ref; for pull_request and merge_group it is the target
// branch.
func (e Event) BranchName() string {
	if strings.HasPrefix(e.Ref, refHeadsPrefix) {
		return strings.TrimPrefix(e.Ref, refHeadsPrefix)
	}
	return e.Branch
}
