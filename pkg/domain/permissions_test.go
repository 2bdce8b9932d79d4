package domain

import "testing"

func TestPermissionsAllows(t *testing.T) {
	tests := []struct {
		name   string
		perms  Permissions
		scope  string
		access Access
		want   bool
	}{
		{
			name:   "Read Granted",
			perms:  Permissions{ScopeContents: AccessRead},
			scope:  ScopeContents,
			access: AccessRead,
			want:   true,
		},
		{
			name:   "Write Implies Read",
			perms:  Permissions{ScopeSecurityEvents: AccessWrite},
			scope:  ScopeSecurityEvents,
			access: AccessRead,
			want:   true,
		},
		{
			name:   "Read Does Not Imply Write",
			perms:  Permissions{ScopeContents: AccessRead},
			scope:  ScopeContents,
			access: AccessWrite,
			want:   false,
		},
		{
			name:   "Absent Scope",
			perms:  Permissions{ScopeContents: AccessRead},
			scope:  ScopeIDToken,
			access: AccessWrite,
			want:   false,
		},
		{
			name:   "Explicit None",
			perms:  Permissions{ScopeContents: AccessNone},
			scope:  ScopeContents,
			access: AccessRead,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.perms.Allows(tt.scope, tt.access); got != tt.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tt.scope, tt.access, got, tt.want)
			}
		})
	}
}

func TestJobEffectivePermissions(t *testing.T) {
	defaults := Permissions{ScopeContents: AccessRead}
	job := Job{
		ID:          "publish",
		Permissions: Permissions{ScopeIDToken: AccessWrite},
	}

	eff := job.EffectivePermissions(defaults)

	if !eff.Allows(ScopeContents, AccessRead) {
		t.Error("expected workflow default contents:read to survive the merge")
	}
	if !eff.Allows(ScopeIDToken, AccessWrite) {
		t.Error("expected job-level id-token:write elevation")
	}

	// The merge must not mutate the workflow defaults.
	if _, ok := defaults[ScopeIDToken]; ok {
		t.Error("Merge mutated the workflow default permission block")
	}
}

func TestJobOverridesDefaultScope(t *testing.T) {
	defaults := Permissions{ScopeContents: AccessRead}
	job := Job{Permissions: Permissions{ScopeContents: AccessNone}}

	eff := job.EffectivePermissions(defaults)
	if eff.Allows(ScopeContents, AccessRead) {
		t.Error("job-level none should override the workflow default grant")
	}
}
