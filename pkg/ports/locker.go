package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker serializes writers of the same schema name, possibly across
// processes or replicas.
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is canceled.
	// ttl bounds how long a crashed holder can keep the lock, where the
	// implementation supports expiry. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
