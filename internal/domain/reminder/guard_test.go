package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLockKey = "travelagency:reminder:tick"

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisGuard_AcquireSetsTTLAndReleaseDeletesKey(t *testing.T) {
	mr, client := setupRedis(t)
	g := NewRedisGuard(client, "", 2*time.Minute)

	release, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, mr.Exists(testLockKey))
	assert.Equal(t, 2*time.Minute, mr.TTL(testLockKey))

	release()
	assert.False(t, mr.Exists(testLockKey))
}

func TestRedisGuard_KeyHeldElsewhereSkipsAndFreesLocalLock(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set(testLockKey, "other-process"))

	g := NewRedisGuard(client, "", time.Minute)

	release, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)

	// The local lock must not stay held after a skipped tick.
	mr.Del(testLockKey)
	release, ok, err = g.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	release()
}

func TestRedisGuard_TwoProcessesDoNotOverlap(t *testing.T) {
	mr, client := setupRedis(t)
	api := NewRedisGuard(client, "", time.Minute)
	cron := NewRedisGuard(client, "", time.Minute)

	release, ok, err := api.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = cron.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	release, ok, err = cron.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	release()
	assert.False(t, mr.Exists(testLockKey))
}

func TestRedisGuard_ExpiredLockCanBeTaken(t *testing.T) {
	mr, client := setupRedis(t)
	stuck := NewRedisGuard(client, "", time.Minute)
	next := NewRedisGuard(client, "", time.Minute)

	_, ok, err := stuck.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(time.Minute + time.Second)

	release, ok, err := next.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	release()
}

func TestRedisGuard_ReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setupRedis(t)
	g := NewRedisGuard(client, "", time.Minute)

	release, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// Our lock expired and another process took the key.
	require.NoError(t, mr.Set(testLockKey, "other-process"))

	release()
	got, err := mr.Get(testLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-process", got)
}

func TestRedisGuard_CustomKey(t *testing.T) {
	mr, client := setupRedis(t)
	g := NewRedisGuard(client, "tenant-a:tick", time.Minute)

	release, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("tenant-a:tick"))
	assert.False(t, mr.Exists(testLockKey))
	release()
}
