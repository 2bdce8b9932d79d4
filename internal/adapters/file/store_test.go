package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/gantry/pkg/domain"
	"github.com/aretw0/gantry/pkg/ports"
	"github.com/stretchr/testify/require"
)

func TestFileStoreContract(t *testing.T) {
	ports.RunStoreContract(t, New(t.TempDir()))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	run := domain.NewRun("run-1", "release-publisher", domain.Event{Kind: domain.EventPush})
	require.NoError(t, store.Save(context.Background(), run))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			continue
		}
		t.Errorf("unexpected leftover file %q", entry.Name())
	}
}
