package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLocker(client, "gantry:"), mr
}

func TestTryLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, acquired, err := locker.TryLock(ctx, "schedule:security-scanner", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)
	assert.True(t, mr.Exists("gantry:lock:schedule:security-scanner"))

	// A second holder is refused while the lock is held.
	_, again, err := locker.TryLock(ctx, "schedule:security-scanner", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("gantry:lock:schedule:security-scanner"))

	_, retaken, err := locker.TryLock(ctx, "schedule:security-scanner", time.Minute)
	require.NoError(t, err)
	assert.True(t, retaken)
}

func TestUnlockOnlyReleasesOwnLock(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	unlock, acquired, err := locker.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	// Simulate expiry plus takeover by another holder.
	mr.FastForward(2 * time.Minute)
	_, taken, err := locker.TryLock(ctx, "job", time.Minute)
	require.NoError(t, err)
	require.True(t, taken)

	// The stale unlock must not release the new holder's lock.
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("gantry:lock:job"))
}

func TestLockBlocksUntilAvailable(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	unlock, acquired, err := locker.TryLock(ctx, "serial", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = unlock(context.Background())
	}()

	second, err := locker.Lock(ctx, "serial", time.Minute)
	require.NoError(t, err)
	require.NoError(t, second(ctx))
}

func TestLockHonorsContext(t *testing.T) {
	locker, _ := newTestLocker(t)

	_, acquired, err := locker.TryLock(context.Background(), "held", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "held", time.Minute)
	assert.ErrorIs(t, err, ErrLockAcquire)
}
