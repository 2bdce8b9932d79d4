package domain

import "testing"

func TestEventRefHelpers(t *testing.T) {
	tag := Event{Kind: EventPush, Ref: "refs/tags/v1.2.3"}
	if !tag.IsTag() {
		t.Error("refs/tags/v1.2.3 should be a tag")
	}
	if got := tag.TagName(); got != "v1.2.3" {
		t.Errorf("TagName() = %q, want %q", got, "v1.2.3")
	}
	if got := tag.BranchName(); got != "" {
		t.Errorf("BranchName() on a tag push = %q, want empty", got)
	}

	branch := Event{Kind: EventPush, Ref: "refs/heads/release/1.x"}
	if branch.IsTag() {
		t.Error("refs/heads/release/1.x should not be a tag")
	}
	if got := branch.BranchName(); got != "release/1.x" {
		t.Errorf("BranchName() = %q, want %q", got, "release/1.x")
	}

	pr := Event{Kind: EventPullRequest, Branch: "main"}
	if got := pr.BranchName(); got != "main" {
		t.Errorf("BranchName() for PR = %q, want %q", got, "main")
	}
}
