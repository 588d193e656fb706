package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockerIsExclusive(t *testing.T) {
	client, mr := setupTestRedis(t)
	locker := NewLocker(client)
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "lock:auto-lost", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "lock:auto-lost", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, release(ctx))

	_, ok, err = locker.TryLock(ctx, "lock:auto-lost", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, err = locker.TryLock(ctx, "lock:auto-lost", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is free again")
}
