package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/gofrs/flock"
)

// Locker implements ports.Locker with advisory file locks, one lock file
// per key under Dir. Locks are released by the OS when the holder exits,
// so ttl is ignored.
type Locker struct {
	Dir string
}

// NewLocker creates a Locker keeping its lock files in dir.
func NewLocker(dir string) *Locker {
	return &Locker{Dir: dir}
}

// Lock acquires the lock file for key, polling until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	if err := ports.ValidateName(key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure lock directory: %w", err)
	}

	lock := flock.New(filepath.Join(l.Dir, key+".lock"))
	ok, err := lock.TryLockContext(ctx, lockInterval)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("failed to acquire lock %s", key)
	}
	return func(context.Context) error {
		return lock.Unlock()
	}, nil
}
