package middleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMasksStepOutput(t *testing.T) {
	backend := newMockStore()
	store := NewRedactionMiddleware([]string{`gho_[A-Za-z0-9]+`})(backend)

	run := sampleRun()
	run.Jobs[0].Steps[0].Output = "pushing with token gho_abc123DEF"
	run.Jobs[0].Steps[0].Error = "auth failed for gho_abc123DEF"

	require.NoError(t, store.Save(context.Background(), run))

	stored := backend.raw("r1")
	require.NotNil(t, stored)
	assert.Equal(t, "pushing with token ***", stored.Jobs[0].Steps[0].Output)
	assert.Equal(t, "auth failed for ***", stored.Jobs[0].Steps[0].Error)

	// The engine's in-memory run is untouched.
	assert.Contains(t, run.Jobs[0].Steps[0].Output, "gho_abc123DEF")
}

func TestRedactionLoadPassesThrough(t *testing.T) {
	backend := newMockStore()
	store := NewRedactionMiddleware([]string{`secret`})(backend)

	require.NoError(t, store.Save(context.Background(), sampleRun()))

	loaded, err := store.Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "release-publisher", loaded.WorkflowName)
}

func TestChainOrder(t *testing.T) {
	backend := newMockStore()
	store := Chain(backend,
		NewRedactionMiddleware([]string{`secret`}),
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')}),
	)

	run := sampleRun()
	run.Jobs[0].Steps[0].Output = "the secret leaked"
	require.NoError(t, store.Save(context.Background(), run))

	// The durable record is sealed, and decrypting it shows the redacted
	// output: redaction ran before encryption.
	assert.NotEmpty(t, backend.raw("r1").Sealed)

	loaded, err := store.Load(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "the *** leaked", loaded.Jobs[0].Steps[0].Output)
}
