package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a RunStore
// implementation adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	event := domain.Event{Kind: domain.EventPush, Ref: "refs/tags/v1.0.0"}

	t.Run("Save and Load", func(t *testing.T) {
		run := domain.NewRun(runID, "release-publisher", event)
		run.Status = domain.StatusSucceeded
		run.Jobs = []domain.JobRun{{
			JobID:  "publish",
			Status: domain.StatusSucceeded,
			Steps: []domain.StepRun{
				{Name: "Harden runner", Conclusion: domain.ConclusionSuccess},
				{Name: "Publish", Conclusion: domain.ConclusionSuccess},
			},
		}}

		err := store.Save(ctx, run)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.WorkflowName, loaded.WorkflowName)
		assert.Equal(t, domain.StatusSucceeded, loaded.Status)
		require.Len(t, loaded.Jobs, 1)
		assert.Equal(t, "publish", loaded.Jobs[0].JobID)
		assert.Len(t, loaded.Jobs[0].Steps, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewRun(runID, "release-publisher", event))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, domain.NewRun(id1, "release-publisher", event))
		_ = store.Save(ctx, domain.NewRun(id2, "security-scanner", event))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
