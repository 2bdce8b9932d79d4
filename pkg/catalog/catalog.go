// Package catalog ships the built-in workflow definitions embedded in the
// binary. It covers the three maintained pipelines: release publishing,
// scheduled security scanning, and commit-hook enforcement.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/gantry/pkg/domain"
)

//go:embed workflows/*.yaml
var workflowFS embed.FS

// Loader implements ports.WorkflowLoader over the embedded catalog.
// The zero value is not usable; construct it with NewLoader.
type Loader struct {
	once      sync.Once
	workflows map[string]domain.Workflow
	err       error
}

// NewLoader returns a loader backed by the embedded workflow files.
// Parsing is deferred to the first lookup.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) load() {
	entries, err := workflowFS.ReadDir("workflows")
	if err != nil {
		l.err = fmt.Errorf("failed to read embedded catalog: %w", err)
		return
	}

	l.workflows = make(map[string]domain.Workflow, len(entries))
	for _, entry := range entries {
		data, err := workflowFS.ReadFile("workflows/" + entry.Name())
		if err != nil {
			l.err = fmt.Errorf("failed to read embedded %s: %w", entry.Name(), err)
			return
		}

		var wf domain.Workflow
		if err := yaml.Unmarshal(data, &wf); err != nil {
			l.err = fmt.Errorf("failed to parse embedded %s: %w", entry.Name(), err)
			return
		}
		l.workflows[wf.Name] = wf
	}
}

// Workflows returns every built-in definition, sorted by name.
func (l *Loader) Workflows() ([]domain.Workflow, error) {
	l.once.Do(l.load)
	if l.err != nil {
		return nil, l.err
	}

	out := make([]domain.Workflow, 0, len(l.workflows))
	for _, wf := range l.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a built-in workflow by name.
func (l *Loader) Get(name string) (*domain.Workflow, error) {
	l.once.Do(l.load)
	if l.err != nil {
		return nil, l.err
	}

	wf, ok := l.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrWorkflowNotFound)
	}
	return &wf, nil
}
