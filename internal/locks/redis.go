package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when this instance still owns it, so
// a lock that expired and was retaken elsewhere is never released from here.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX and a per-instance token. The
// TTL bounds how long a crashed holder can stall other instances.
type RedisLocker struct {
	client     *redis.Client
	instanceID string
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:     client,
		instanceID: uuid.New().String(),
	}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	ok, err := l.client.SetNX(ctx, lockKey, l.instanceID, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{lockKey}, l.instanceID).Err()
	}, nil
}
