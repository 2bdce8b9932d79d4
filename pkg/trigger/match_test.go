package trigger

import (
	"testing"

	"github.com/aretw0/gantry/pkg/domain"
)

func releaseTriggers() domain.Triggers {
	return domain.Triggers{
		Push: &domain.PushTrigger{Tags: []string{"v*"}},
	}
}

func protectedBranchTriggers() domain.Triggers {
	return domain.Triggers{
		PullRequest: &domain.PullRequestFilter{},
		Push:        &domain.PushTrigger{Branches: []string{"main", "release/*"}},
		MergeGroup:  &domain.MergeGroupFilter{Branches: []string{"main"}},
	}
}

func TestMatchesReleaseTag(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.Event
		want bool
	}{
		{
			name: "Version Tag Fires",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/tags/v1.2.3"},
			want: true,
		},
		{
			name: "Bare v Tag Fires",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/tags/v2"},
			want: true,
		},
		{
			name: "Feature Branch Does Not Fire",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/heads/feature/x"},
			want: false,
		},
		{
			name: "Non Version Tag Does Not Fire",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/tags/nightly"},
			want: false,
		},
		{
			name: "Pull Request Does Not Fire",
			ev:   domain.Event{Kind: domain.EventPullRequest, Branch: "main"},
			want: false,
		},
	}

	on := releaseTriggers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(on, tt.ev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesProtectedBranches(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.Event
		want bool
	}{
		{
			name: "Any Pull Request Fires",
			ev:   domain.Event{Kind: domain.EventPullRequest, Branch: "feature/anything"},
			want: true,
		},
		{
			name: "Push To Main Fires",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/heads/main"},
			want: true,
		},
		{
			name: "Push To Release Branch Fires",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/heads/release/1.4"},
			want: true,
		},
		{
			name: "Push To Feature Branch Does Not Fire",
			ev:   domain.Event{Kind: domain.EventPush, Ref: "refs/heads/feature/x"},
			want: false,
		},
		{
			name: "Merge Queue On Main Fires",
			ev:   domain.Event{Kind: domain.EventMergeGroup, Branch: "main"},
			want: true,
		},
		{
			name: "Merge Queue On Other Branch Does Not Fire",
			ev:   domain.Event{Kind: domain.EventMergeGroup, Branch: "develop"},
			want: false,
		},
	}

	on := protectedBranchTriggers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(on, tt.ev); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesScheduleAndDispatch(t *testing.T) {
	on := domain.Triggers{
		Schedule:         []domain.ScheduleTrigger{{Cron: "42 15 * * 0"}},
		WorkflowDispatch: &domain.DispatchTrigger{},
	}

	if !Matches(on, domain.Event{Kind: domain.EventSchedule}) {
		t.Error("schedule event should fire a scheduled workflow")
	}
	if !Matches(on, domain.Event{Kind: domain.EventDispatch}) {
		t.Error("dispatch event should fire a dispatchable workflow")
	}
	if Matches(domain.Triggers{}, domain.Event{Kind: domain.EventDispatch}) {
		t.Error("dispatch should not fire a workflow without workflow_dispatch")
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"v*", "v1.2.3", true},
		{"v*", "v", true},
		{"v*", "version/1", false}, // `*` does not cross segments
		{"release/*", "release/1.4", true},
		{"release/*", "release/1/hotfix", false},
		{"release/**", "release/1/hotfix", true},
		{"main", "main", true},
		{"main", "maintenance", false},
		{"*-rc*", "v2-rc1", true},
	}

	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.name); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.name, got, tt.want)
		}
	}
}
