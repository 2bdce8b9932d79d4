package trigger

import (
	"strings"

	"github.com/aretw0/gantry/pkg/domain"
)

// Matches reports whether the event fires the workflow's trigger set.
func Matches(on domain.Triggers, ev domain.Event) bool {
	switch ev.Kind {
	case domain.EventPush:
		return matchPush(on.Push, ev)
	case domain.EventPullRequest:
		return matchBranchFilter(on.PullRequest != nil, branchesOf(on.PullRequest), ev.BranchName())
	case domain.EventMergeGroup:
		return matchBranchFilter(on.MergeGroup != nil, mergeBranchesOf(on.MergeGroup), ev.BranchName())
	case domain.EventSchedule:
		return len(on.Schedule) > 0
	case domain.EventDispatch:
		return on.WorkflowDispatch != nil
	default:
		return false
	}
}

func branchesOf(f *domain.PullRequestFilter) []string {
	if f == nil {
		return nil
	}
	return f.Branches
}

func mergeBranchesOf(f *domain.MergeGroupFilter) []string {
	if f == nil {
		return nil
	}
	return f.Branches
}

func matchPush(f *domain.PushTrigger, ev domain.Event) bool {
	if f == nil {
		return false
	}

	if ev.IsTag() {
		return matchAny(f.Tags, ev.TagName())
	}

	return matchAny(f.Branches, ev.BranchName())
}

// matchBranchFilter handles pull_request and merge_group semantics: the
// trigger must be declared, and an empty branch list matches everything.
func matchBranchFilter(declared bool, patterns []string, branch string) bool {
	if !declared {
		return false
	}
	if len(patterns) == 0 {
		return true
	}
	return matchAny(patterns, branch)
}

func matchAny(patterns []string, name string) bool {
	if name == "" {
		return false
	}
	for _, p := range patterns {
		if MatchGlob(p, name) {
			return true
		}
	}
	return false
}

// MatchGlob matches a ref name against a branch/tag pattern.
// `*` matches any characters within one path segment, `**` crosses
// segment boundaries. No other metacharacters are supported.
func MatchGlob(pattern, name string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pat, name []string) bool {
	if len(pat) == 0 {
		return len(name) == 0
	}

	if pat[0] == "**" {
		// `**` may swallow zero or more whole segments.
		for i := 0; i <= len(name); i++ {
			if matchSegments(pat[1:], name[i:]) {
				return true
			}
		}
		return false
	}

	if len(name) == 0 {
		return false
	}
	if !matchSegment(pat[0], name[0]) {
		return false
	}
	return matchSegments(pat[1:], name[1:])
}

// matchSegment matches a single path segment, where `*` matches any run of
// characters except `/`.
func matchSegment(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	for i := 1; i < len(parts)-1; i++ {
		idx := strings.Index(s, parts[i])
		if idx < 0 {
			return false
		}
		s = s[idx+len(parts[i]):]
	}

	return strings.HasSuffix(s, parts[len(parts)-1])
}
