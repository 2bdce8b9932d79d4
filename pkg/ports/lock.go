package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates work across replicas. The scheduler uses it
// so a cron trigger fires once per cluster, not once per instance.
type DistributedLocker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)

	// TryLock attempts a single acquisition. The bool reports whether the
	// lock was obtained.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, bool, error)
}
