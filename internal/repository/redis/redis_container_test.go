//go:build container

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	ctr, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	endpoint, err := ctr.Endpoint(ctx, "")
	require.NoError(t, err)
	require.NoError(t, Init(Config{Addr: endpoint}))
	t.Cleanup(func() { _ = Close() })
	return Client
}

func TestSessionRepository_Container(t *testing.T) {
	ctx := context.Background()
	sessions := NewSessionRepository(startRedis(t), time.Minute)

	assert.ErrorIs(t, sessions.Check(ctx, "vendor", "v1", "tok-1"), ErrTokenNotFound)

	require.NoError(t, sessions.Add(ctx, "vendor", "v1", "tok-1"))
	assert.NoError(t, sessions.Check(ctx, "vendor", "v1", "tok-1"))

	// 再次登录会顶掉旧 token
	require.NoError(t, sessions.Add(ctx, "vendor", "v1", "tok-2"))
	assert.ErrorIs(t, sessions.Check(ctx, "vendor", "v1", "tok-1"), ErrTokenMismatch)

	// 不同角色互不影响
	assert.ErrorIs(t, sessions.Check(ctx, "community-organizer", "v1", "tok-2"), ErrTokenNotFound)

	require.NoError(t, sessions.Delete(ctx, "vendor", "v1"))
	assert.ErrorIs(t, sessions.Check(ctx, "vendor", "v1", "tok-2"), ErrTokenNotFound)
}

func TestDistLock_Container(t *testing.T) {
	ctx := context.Background()
	lock := &DistLock{RDB: startRedis(t)}

	got, err := lock.Acquire(ctx, "outbox:relay", "a", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = lock.Acquire(ctx, "outbox:relay", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, got)

	// 非持有者释放无效
	require.NoError(t, lock.Release(ctx, "outbox:relay", "b"))
	got, err = lock.Acquire(ctx, "outbox:relay", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, got)

	// 只有持有者能续期
	ok, err := lock.Extend(ctx, "outbox:relay", "b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = lock.Extend(ctx, "outbox:relay", "a", 2*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ttl, err := lock.RDB.PTTL(ctx, LockKeyPrefix+"outbox:relay").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Minute)

	require.NoError(t, lock.Release(ctx, "outbox:relay", "a"))
	got, err = lock.Acquire(ctx, "outbox:relay", "b", time.Minute)
	require.NoError(t, err)
	assert.True(t, got)

	ok, err = lock.Extend(ctx, "outbox:relay", "a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplayGuard_Container(t *testing.T) {
	ctx := context.Background()
	guard := NewReplayGuard(startRedis(t))

	first, err := guard.FirstSeen(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = guard.FirstSeen(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, guard.Forget(ctx, "stripe", "evt_1"))
	first, err = guard.FirstSeen(ctx, "stripe", "evt_1")
	require.NoError(t, err)
	assert.True(t, first)
}
