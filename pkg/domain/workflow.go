package domain

// Access defines the level granted for a permission scope.
type Access string

const (
	AccessNone  Access = "none"
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// Well-known permission scopes. The set is open: the platform may define more,
// but these are the ones the hardening rules reason about.
const (
	ScopeContents       = "contents"
	ScopeIDToken        = "id-token"
	ScopeActions        = "actions"
	ScopeSecurityEvents = "security-events"
)

// Permissions maps a scope to its granted access level.
// An absent scope means no access.
type Permissions map[string]Access

// Allows reports whether the grant set covers the requested access on a scope.
// Write implies read.
func (p Permissions) Allows(scope string, access Access) bool {
	granted, ok := p[scope]
	if !ok || granted == AccessNone {
		return false
	}
	if access == AccessRead {
		return granted == AccessRead || granted == AccessWrite
	}
	return granted == access
}

// Merge returns a copy of p overlaid with the job-level grants.
// Job-level permissions replace the workflow defaults per scope; this is
// where elevation happens, and only here.
func (p Permissions) Merge(job Permissions) Permissions {
	out := make(Permissions, len(p)+len(job))
	for scope, access := range p {
		out[scope] = access
	}
	for scope, access := range job {
		out[scope] = access
	}
	return out
}

// Workflow represents one pipeline definition: a trigger set, a default
// permission block, and an ordered list of jobs.
type Workflow struct {
	Name        string      `yaml:"name" json:"name"`
	On          Triggers    `yaml:"on" json:"on"`
	Permissions Permissions `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Jobs        []Job       `yaml:"jobs" json:"jobs"`
}

// Job returns the job with the given id, or nil.
func (w *Workflow) Job(id string) *Job {
	for i := range w.Jobs {
		if w.Jobs[i].ID == id {
			return &w.Jobs[i]
		}
	}
	return nil
}

// Triggers is the event predicate set of a workflow.
// A nil trigger means the workflow does not listen to that event kind.
type Triggers struct {
	Push             *PushTrigger       `yaml:"push,omitempty" json:"push,omitempty"`
	PullRequest      *PullRequestFilter `yaml:"pull_request,omitempty" json:"pull_request,omitempty"`
	MergeGroup       *MergeGroupFilter  `yaml:"merge_group,omitempty" json:"merge_group,omitempty"`
	Schedule         []ScheduleTrigger  `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	WorkflowDispatch *DispatchTrigger   `yaml:"workflow_dispatch,omitempty" json:"workflow_dispatch,omitempty"`
}

// PushTrigger filters push events by branch and/or tag patterns.
// Patterns support `*` (within one path segment) and `**` globs.
type PushTrigger struct {
	Branches []string `yaml:"branches,omitempty" json:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// PullRequestFilter filters pull request events by target branch.
// An empty branch list matches any pull request.
type PullRequestFilter struct {
	Branches []string `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// MergeGroupFilter filters merge-queue evaluation events by target branch.
type MergeGroupFilter struct {
	Branches []string `yaml:"branches,omitempty" json:"branches,omitempty"`
}

// ScheduleTrigger fires on a cron expression (standard 5-field spec, UTC).
type ScheduleTrigger struct {
	Cron string `yaml:"cron" json:"cron"`
}

// DispatchTrigger marks the workflow as manually dispatchable.
// Declare it as `workflow_dispatch: {}` so YAML presence is detectable.
type DispatchTrigger struct{}

// Job is a unit of execution: an ordered list of steps with an optional
// permission elevation and matrix strategy.
type Job struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name,omitempty" json:"name,omitempty"`
	Permissions Permissions `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Strategy    *Strategy   `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Steps       []Step      `yaml:"steps" json:"steps"`
}

// EffectivePermissions resolves the grants a job runs with, given the
// workflow-level defaults.
func (j *Job) EffectivePermissions(defaults Permissions) Permissions {
	return defaults.Merge(j.Permissions)
}

// Strategy declares a matrix expansion for a job.
type Strategy struct {
	// FailFast controls whether a failing matrix entry cancels its siblings.
	// Defaults to true when unset, matching the platform convention.
	FailFast *bool `yaml:"fail-fast,omitempty" json:"fail-fast,omitempty"`

	// Matrix maps a variable name to its value set. Entries are the cartesian
	// product of all variables.
	Matrix map[string][]string `yaml:"matrix,omitempty" json:"matrix,omitempty"`
}

// FailFastEnabled resolves the fail-fast flag with its default.
func (s *Strategy) FailFastEnabled() bool {
	if s == nil || s.FailFast == nil {
		return true
	}
	return *s.FailFast
}

// Step is a single instruction inside a job: either an external action
// invocation (Uses) or a shell command (Run), never both.
type Step struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Uses references an external action, pinned to a full commit hash:
	// "owner/repo@<40-hex>". The action itself is an opaque collaborator;
	// the engine only owns the invocation contract.
	Uses string `yaml:"uses,omitempty" json:"uses,omitempty"`

	// Run is a shell command executed directly on the runner.
	Run string `yaml:"run,omitempty" json:"run,omitempty"`

	With map[string]any    `yaml:"with,omitempty" json:"with,omitempty"`
	Env  map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// DisplayName returns the step name, falling back to the action ref or command.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Uses != "" {
		return s.Uses
	}
	return s.Run
}
