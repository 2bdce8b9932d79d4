package dir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalWorkflow = `
name: hook-enforcer
on:
  pull_request: {}
permissions:
  contents: read
jobs:
  - id: checks
    steps:
      - uses: step-security/harden-runner@4d991eb9b905ef189e4c376166672c3f2f230481
      - name: Run hooks
        run: pre-commit run --all-files
`

func writeWorkflow(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoaderLoadsDirectory(t *testing.T) {
	tmp := t.TempDir()
	writeWorkflow(t, tmp, "precommit.yaml", minimalWorkflow)
	writeWorkflow(t, tmp, "notes.txt", "not a workflow")

	loader, err := New(tmp)
	require.NoError(t, err)

	wfs, err := loader.Workflows()
	require.NoError(t, err)
	require.Len(t, wfs, 1)
	assert.Equal(t, "hook-enforcer", wfs[0].Name)

	wf, err := loader.Get("hook-enforcer")
	require.NoError(t, err)
	require.NotNil(t, wf.On.PullRequest)
	require.Len(t, wf.Jobs, 1)
	assert.Equal(t, "checks", wf.Jobs[0].ID)
	assert.Equal(t, domain.AccessRead, wf.Permissions[domain.ScopeContents])
}

func TestLoaderGetUnknown(t *testing.T) {
	loader, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = loader.Get("nope")
	assert.True(t, errors.Is(err, domain.ErrWorkflowNotFound))
}

func TestLoaderWatchSignalsChange(t *testing.T) {
	tmp := t.TempDir()
	writeWorkflow(t, tmp, "precommit.yaml", minimalWorkflow)

	loader, err := New(tmp)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := loader.Watch(ctx)
	require.NoError(t, err)

	updated := minimalWorkflow + "      - name: Extra\n        run: echo done\n"
	writeWorkflow(t, tmp, "precommit.yaml", updated)

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a watch signal after the file changed")
	}

	wf, err := loader.Get("hook-enforcer")
	require.NoError(t, err)
	assert.Len(t, wf.Jobs[0].Steps, 3, "reload should have picked up the new step")
}
