package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/trigger"
)

// pinnedActionRe matches "owner/repo@<sha>" (optionally with a sub-path,
// e.g. "github/codeql-action/init@<sha>") where <sha> is a full 40-hex
// commit hash. Mutable tags like "@v4" do not match.
var pinnedActionRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.\-/]+@[0-9a-f]{40}$`)

// HardenActionRepo is the action every job must invoke first, before any
// other step runs (network egress auditing).
const HardenActionRepo = "step-security/harden-runner"

// IsHardenRunner reports whether an action reference is a pinned invocation
// of the runner-hardening action.
func IsHardenRunner(uses string) bool {
	return strings.HasPrefix(uses, HardenActionRepo+"@")
}

// elevatedScopes are the scopes that must never be granted at workflow level.
var elevatedScopes = map[string]struct{}{
	domain.ScopeIDToken:        {},
	domain.ScopeActions:        {},
	domain.ScopeSecurityEvents: {},
}

// Validate checks a workflow against all structural and hardening rules.
// It returns nil, or an *AggregateError listing every violation found.
func Validate(wf *domain.Workflow) error {
	var errs []error

	if wf.Name == "" {
		errs = append(errs, violation("", "workflow-name", "workflow must have a name"))
	}

	errs = append(errs, checkTriggers(wf)...)
	errs = append(errs, checkDefaultPermissions(wf)...)

	if len(wf.Jobs) == 0 {
		errs = append(errs, violation("jobs", "non-empty", "workflow must define at least one job"))
	}

	seen := make(map[string]struct{}, len(wf.Jobs))
	for i := range wf.Jobs {
		job := &wf.Jobs[i]
		path := fmt.Sprintf("jobs[%s]", job.ID)

		if job.ID == "" {
			errs = append(errs, violation(fmt.Sprintf("jobs[%d]", i), "job-id", "job must have an id"))
		} else if _, dup := seen[job.ID]; dup {
			errs = append(errs, violation(path, "job-id", "duplicate job id"))
		}
		seen[job.ID] = struct{}{}

		errs = append(errs, checkJob(path, job)...)
	}

	if len(errs) > 0 {
		return &AggregateError{Workflow: wf.Name, Errors: errs}
	}
	return nil
}

func checkTriggers(wf *domain.Workflow) []error {
	var errs []error

	on := wf.On
	if on.Push == nil && on.PullRequest == nil && on.MergeGroup == nil &&
		len(on.Schedule) == 0 && on.WorkflowDispatch == nil {
		errs = append(errs, violation("on", "trigger-present", "workflow declares no trigger"))
	}

	for i, s := range on.Schedule {
		if _, err := trigger.ParseCron(s.Cron); err != nil {
			errs = append(errs, violation(
				fmt.Sprintf("on.schedule[%d]", i), "cron-valid", err.Error()))
		}
	}

	return errs
}

// checkDefaultPermissions enforces least privilege on the workflow-level
// block: nothing beyond contents: read before job-level elevation.
func checkDefaultPermissions(wf *domain.Workflow) []error {
	var errs []error

	for scope, access := range wf.Permissions {
		if access == domain.AccessNone {
			continue
		}
		if scope == domain.ScopeContents && access == domain.AccessRead {
			continue
		}
		errs = append(errs, violation("permissions", "least-privilege",
			fmt.Sprintf("workflow-level grant %s: %s exceeds contents: read", scope, access)))
	}

	return errs
}

func checkJob(path string, job *domain.Job) []error {
	var errs []error

	for scope, access := range job.Permissions {
		if _, ok := elevatedScopes[scope]; ok {
			continue
		}
		if scope == domain.ScopeContents && access != domain.AccessWrite {
			continue
		}
		errs = append(errs, violation(path+".permissions", "job-scope",
			fmt.Sprintf("job grant %s: %s is not an allowed elevation", scope, access)))
	}

	if job.Strategy != nil && len(job.Strategy.Matrix) > 0 {
		for name, values := range job.Strategy.Matrix {
			if len(values) == 0 {
				errs = append(errs, violation(path+".strategy.matrix", "matrix-values",
					fmt.Sprintf("matrix variable %q has no values", name)))
			}
		}
	}

	if len(job.Steps) == 0 {
		errs = append(errs, violation(path+".steps", "non-empty", "job must define at least one step"))
		return errs
	}

	if !IsHardenRunner(job.Steps[0].Uses) {
		errs = append(errs, violation(path+".steps[0]", "harden-first",
			"first step must be the environment-hardening action"))
	}

	for i, step := range job.Steps {
		sp := fmt.Sprintf("%s.steps[%d]", path, i)
		errs = append(errs, checkStep(sp, step)...)
	}

	return errs
}

func checkStep(path string, step domain.Step) []error {
	var errs []error

	switch {
	case step.Uses == "" && step.Run == "":
		errs = append(errs, violation(path, "step-action", "step must set either uses or run"))
	case step.Uses != "" && step.Run != "":
		errs = append(errs, violation(path, "step-action", "step must not set both uses and run"))
	case step.Uses != "" && !pinnedActionRe.MatchString(step.Uses):
		errs = append(errs, violation(path, "pinned-action",
			fmt.Sprintf("action %q is not pinned to a full commit hash", step.Uses)))
	}

	return errs
}

func violation(path, rule, reason string) error {
	return &RuleError{Path: path, Rule: rule, Reason: reason}
}
