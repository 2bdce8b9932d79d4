package middleware

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/gantry/pkg/domain"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func sampleRun() *domain.Run {
	run := domain.NewRun("r1", "release-publisher", domain.Event{
		Kind: domain.EventPush,
		Ref:  "refs/tags/v1.0.0",
	})
	run.Status = domain.StatusSucceeded
	run.Jobs = []domain.JobRun{{
		JobID:  "publish",
		Status: domain.StatusSucceeded,
		Steps: []domain.StepRun{{
			Name:       "Build distributions",
			Conclusion: domain.ConclusionSuccess,
			Output:     "wrote dist/pkg-1.0.0.tar.gz",
		}},
	}}
	return run
}

func TestEncryptionRoundTrip(t *testing.T) {
	backend := newMockStore()
	store := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(backend)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleRun()))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, sampleRun(), loaded)
}

func TestEncryptionHidesRecordContents(t *testing.T) {
	backend := newMockStore()
	store := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(backend)

	require.NoError(t, store.Save(context.Background(), sampleRun()))

	stored := backend.raw("r1")
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.Sealed)
	assert.Empty(t, stored.Jobs)
	assert.Empty(t, stored.Event.Ref)
	assert.Empty(t, stored.WorkflowName)
	// Status stays readable for monitoring.
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
}

func TestEncryptionKeyRotation(t *testing.T) {
	backend := newMockStore()
	ctx := context.Background()

	oldStore := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(backend)
	require.NoError(t, oldStore.Save(ctx, sampleRun()))

	rotated := NewEncryptionMiddleware(EncryptionConfig{
		ActiveKey:    testKey('b'),
		FallbackKeys: [][]byte{testKey('a')},
	})(backend)

	loaded, err := rotated.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "release-publisher", loaded.WorkflowName)
}

func TestEncryptionWrongKeyFails(t *testing.T) {
	backend := newMockStore()
	ctx := context.Background()

	store := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(backend)
	require.NoError(t, store.Save(ctx, sampleRun()))

	other := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('z')})(backend)
	_, err := other.Load(ctx, "r1")
	assert.Error(t, err)
}

func TestEncryptionRejectsPlaintextRecords(t *testing.T) {
	backend := newMockStore()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, sampleRun()))

	store := NewEncryptionMiddleware(EncryptionConfig{ActiveKey: testKey('a')})(backend)
	_, err := store.Load(ctx, "r1")
	assert.Error(t, err)
}

func TestEncryptionRequires32ByteKey(t *testing.T) {
	assert.Panics(t, func() {
		NewEncryptionMiddleware(EncryptionConfig{ActiveKey: []byte("short")})
	})
}
