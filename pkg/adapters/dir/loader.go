package dir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.WorkflowLoader over a directory of YAML files.
// Every *.yaml / *.yml file in the directory (non-recursive) is one workflow.
type Loader struct {
	dir string

	mu        sync.RWMutex
	workflows map[string]domain.Workflow
}

// New creates a Loader and performs the initial load.
func New(dir string) (*Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow directory: %w", err)
	}

	l := &Loader{dir: abs}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads every workflow file from disk, replacing the cache.
func (l *Loader) Reload() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("failed to read workflow directory: %w", err)
	}

	loaded := make(map[string]domain.Workflow)
	for _, entry := range entries {
		if entry.IsDir() || !isWorkflowFile(entry.Name()) {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", entry.Name(), err)
		}

		var wf domain.Workflow
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if wf.Name == "" {
			// Fall back to the file name so unnamed definitions stay addressable.
			wf.Name = trimWorkflowExt(entry.Name())
		}
		loaded[wf.Name] = wf
	}

	l.mu.Lock()
	l.workflows = loaded
	l.mu.Unlock()
	return nil
}

// Workflows returns the loaded definitions, sorted by name for determinism.
func (l *Loader) Workflows() ([]domain.Workflow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Workflow, 0, len(l.workflows))
	for _, wf := range l.workflows {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get retrieves one workflow by name.
func (l *Loader) Get(name string) (*domain.Workflow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	wf, ok := l.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, domain.ErrWorkflowNotFound)
	}
	return &wf, nil
}

// Watch signals whenever a workflow file changes on disk. The loader reloads
// itself before signaling, so consumers only need to re-read. The watcher
// stops when the context is canceled.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", l.dir, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isWorkflowFile(filepath.Base(event.Name)) {
					continue
				}
				if err := l.Reload(); err != nil {
					// Keep serving the last good set; the next change
					// retries the reload.
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return ch, nil
}

func isWorkflowFile(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func trimWorkflowExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
