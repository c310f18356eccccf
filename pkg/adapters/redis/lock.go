package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/arrayschema/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultLockTTL bounds a lock whose holder died before unlocking.
const DefaultLockTTL = 30 * time.Second

const lockPoll = 50 * time.Millisecond

// Releases the lock only if it still holds our token, a random uuid per
// Lock call.
var unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.Locker using SET NX PX.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a Redis locker. Lock keys are prefix+"_lock:"+key.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lock acquires the lock for key, polling until ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	lockKey := l.prefix + "_lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(lockPoll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return func(ctx context.Context) error {
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
