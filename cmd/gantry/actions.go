package main

import (
	"github.com/aretw0/gantry/pkg/adapters/exec"
	"github.com/aretw0/gantry/pkg/domain"
)

// buildRunner assembles the allow-list action runner with local stand-ins
// for the catalog's trusted actions. The stand-in commands are no-ops; the
// engine still enforces ordering, permissions, and token minting around
// them.
func buildRunner(allowRun bool) *exec.Runner {
	return exec.NewRunner(
		exec.WithRunSteps(allowRun),
		exec.WithAction("step-security/harden-runner", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("actions/checkout", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("actions/setup-python", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("pre-commit/action", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("pypa/gh-action-pypi-publish", exec.RegisteredAction{
			Command:  "true",
			Requires: domain.Permissions{domain.ScopeIDToken: domain.AccessWrite},
		}),
		exec.WithAction("github/codeql-action/init", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("github/codeql-action/autobuild", exec.RegisteredAction{
			Command: "true",
		}),
		exec.WithAction("github/codeql-action/analyze", exec.RegisteredAction{
			Command:  "true",
			Requires: domain.Permissions{domain.ScopeSecurityEvents: domain.AccessWrite},
		}),
	)
}
