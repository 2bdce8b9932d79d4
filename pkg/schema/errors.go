package schema

import "fmt"

// RuleError represents a single hardening or structural rule failure.
type RuleError struct {
	Path   string // Location inside the workflow, e.g. "jobs[publish].steps[2]"
	Rule   string // Stable rule identifier, e.g. "pinned-action"
	Reason string // Human-readable reason for failure
}

func (e *RuleError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Rule, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Rule, e.Reason)
}

// AggregateError represents multiple rule failures for one workflow.
type AggregateError struct {
	Workflow string
	Errors   []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("workflow %q: %s", e.Workflow, e.Errors[0].Error())
	}
	msg := fmt.Sprintf("workflow %q: %d rule violations:\n", e.Workflow, len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// RuleErrors returns all rule errors if err is an AggregateError.
// Otherwise returns nil.
func RuleErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
