package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
)

type redactionMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks matches of the
// patterns inside step output before persisting. Third-party tools echo
// their environment freely, so anything resembling a credential is
// scrubbed from the durable record.
func NewRedactionMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactionMiddleware) Save(ctx context.Context, run *domain.Run) error {
	// Clone before masking so the in-memory run the engine holds keeps its
	// original output.
	cloned := *run
	cloned.Jobs = make([]domain.JobRun, len(run.Jobs))
	for i, job := range run.Jobs {
		cloned.Jobs[i] = job
		cloned.Jobs[i].Steps = make([]domain.StepRun, len(job.Steps))
		for j, step := range job.Steps {
			step.Output = m.mask(step.Output)
			step.Error = m.mask(step.Error)
			cloned.Jobs[i].Steps[j] = step
		}
	}

	return m.next.Save(ctx, &cloned)
}

func (m *redactionMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, "***")
	}
	return s
}

func (m *redactionMiddleware) Load(ctx context.Context, id string) (*domain.Run, error) {
	return m.next.Load(ctx, id)
}

func (m *redactionMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
