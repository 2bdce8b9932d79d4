package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/gantry/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// MatrixEntry is one expanded combination of matrix variables.
type MatrixEntry struct {
	// Key identifies the entry, e.g. "language=go,os=linux". Empty for
	// non-matrix jobs.
	Key string

	// Values maps each matrix variable to its value for this entry.
	Values map[string]string
}

// MergeEnv overlays the step env over the matrix variables (exported as
// MATRIX_<VAR> entries).
func (m MatrixEntry) MergeEnv(stepEnv map[string]string) map[string]string {
	env := make(map[string]string, len(m.Values)+len(stepEnv))
	for k, v := range m.Values {
		env["MATRIX_"+strings.ToUpper(k)] = v
	}
	for k, v := range stepEnv {
		env[k] = v
	}
	return env
}

// ExpandMatrix computes the cartesian product of the strategy's matrix
// variables, in deterministic (sorted-key) order. A nil or empty strategy
// yields the single default entry.
func ExpandMatrix(s *domain.Strategy) []MatrixEntry {
	if s == nil || len(s.Matrix) == 0 {
		return []MatrixEntry{{}}
	}

	names := make([]string, 0, len(s.Matrix))
	for name := range s.Matrix {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := []MatrixEntry{{Values: map[string]string{}}}
	for _, name := range names {
		var next []MatrixEntry
		for _, entry := range entries {
			for _, value := range s.Matrix[name] {
				values := make(map[string]string, len(entry.Values)+1)
				for k, v := range entry.Values {
					values[k] = v
				}
				values[name] = value
				next = append(next, MatrixEntry{Values: values})
			}
		}
		entries = next
	}

	for i := range entries {
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, name+"="+entries[i].Values[name])
		}
		entries[i].Key = strings.Join(parts, ",")
	}
	return entries
}

// runMatrix executes the expanded entries as independent job runs.
// With fail-fast enabled (the default) a failing entry cancels its
// siblings; with fail-fast: false siblings continue independently.
func (e *Engine) runMatrix(ctx context.Context, run *domain.Run, wf *domain.Workflow, job *domain.Job, perms domain.Permissions, token *domain.PublishToken, entries []MatrixEntry) []domain.JobRun {
	results := make([]domain.JobRun, len(entries))

	if job.Strategy.FailFastEnabled() {
		g, gctx := errgroup.WithContext(ctx)
		for i, entry := range entries {
			i, entry := i, entry
			g.Go(func() error {
				results[i] = e.executeEntry(gctx, run, wf, job, perms, token, entry)
				if results[i].Status == domain.StatusFailed {
					return fmt.Errorf("matrix entry %s failed", entry.Key)
				}
				return nil
			})
		}
		_ = g.Wait() // the per-entry JobRun already records the failure
		return results
	}

	var wg sync.WaitGroup
	for i, entry := range entries {
		i, entry := i, entry
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = e.executeEntry(ctx, run, wf, job, perms, token, entry)
		}()
	}
	wg.Wait()
	return results
}
