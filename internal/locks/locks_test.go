package locks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLockerExcludes(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	release, err := l.TryAcquire(ctx, "tournament:mtt1", time.Minute)
	require.NoError(t, err)

	_, err = l.TryAcquire(ctx, "tournament:mtt1", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	// A different key is independent.
	release2, err := l.TryAcquire(ctx, "tournament:mtt2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))

	require.NoError(t, release(ctx))
	release3, err := l.TryAcquire(ctx, "tournament:mtt1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release3(ctx))
}

func TestMemoryLockerExpiry(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	_, err := l.TryAcquire(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// An expired lock is free for the taking even without a release.
	release, err := l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

func TestMemoryLockerStaleReleaseKeepsSuccessor(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	stale, err := l.TryAcquire(ctx, "k", 10*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = l.TryAcquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	// The first holder's lease expired; its late release must not free the
	// successor's lock.
	require.NoError(t, stale(ctx))
	_, err = l.TryAcquire(ctx, "k", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)
}
