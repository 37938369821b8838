package locks

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrLockHeld means another instance holds the lock right now. Callers are
// expected to skip the guarded step and let a later pass retry, not to
// block waiting.
var ErrLockHeld = errors.New("lock held by another instance")

// ReleaseFunc releases an acquired lock. Releasing twice is harmless.
type ReleaseFunc func(ctx context.Context) error

// Locker is a non-blocking distributed lock. TryAcquire either takes the
// lock immediately or reports ErrLockHeld.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// MemoryLocker is a process-local Locker for tests and single-instance runs.
type MemoryLocker struct {
	mu   sync.Mutex
	next uint64
	held map[string]memoryLease
}

type memoryLease struct {
	token  uint64
	expiry time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]memoryLease)}
}

func (l *MemoryLocker) TryAcquire(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lease, ok := l.held[key]; ok && time.Now().Before(lease.expiry) {
		return nil, ErrLockHeld
	}
	l.next++
	token := l.next
	l.held[key] = memoryLease{token: token, expiry: time.Now().Add(ttl)}
	// Compare-and-delete like the Redis path: a holder releasing after its
	// TTL expired must not evict whoever took the lock since.
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if lease, ok := l.held[key]; ok && lease.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}
